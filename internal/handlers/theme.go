package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"text/template"

	"github.com/gin-gonic/gin"

	"neor/internal/logger"
)

const ThemeCookieName = "theme"

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Switch() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Palette holds the colours substituted into the stylesheet.
type Palette struct {
	BodyBackground string
	MainFont       string
	Link           string
	LinkHover      string
	AuthorFont     string
	TagBackground  string
	Tag            string
}

var palettes = map[Theme]Palette{
	ThemeLight: {
		BodyBackground: "white",
		MainFont:       "black",
		Link:           "blue",
		LinkHover:      "#48c778",
		AuthorFont:     "rgb(92, 92, 92)",
		TagBackground:  "rgb(38, 38, 38)",
		Tag:            "white",
	},
	ThemeDark: {
		BodyBackground: "rgb(38, 38, 38)",
		MainFont:       "white",
		Link:           "pink",
		LinkHover:      "white",
		AuthorFont:     "#d3d3d3",
		TagBackground:  "rgba(255, 192, 203, 0.7)",
		Tag:            "white",
	},
}

func (t Theme) Palette() Palette {
	return palettes[t]
}

// ThemeOf reads the theme cookie, defaulting to light.
func ThemeOf(c *gin.Context) Theme {
	v, err := c.Cookie(ThemeCookieName)
	if err == nil && Theme(v) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

type ThemeHandler struct {
	style *template.Template
	log   *logger.Logger
}

// NewThemeHandler parses style.css from the templates directory once.
func NewThemeHandler(templatesDir string, log *logger.Logger) (*ThemeHandler, error) {
	style, err := template.ParseFiles(filepath.Join(templatesDir, "style.css"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse stylesheet: %w", err)
	}
	return &ThemeHandler{style: style, log: log.WithComponent("theme")}, nil
}

// Switch - 切换明暗主题 /switch-theme?back=
func (h *ThemeHandler) Switch(c *gin.Context) {
	next := ThemeOf(c).Switch()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ThemeCookieName, string(next), 60*60*24*365, "/", "", false, false)
	redirect(c, safeBack(c.Query("back")))
}

// Style - 渲染当前主题的样式表 /style.css
func (h *ThemeHandler) Style(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.style.Execute(&buf, ThemeOf(c).Palette()); err != nil {
		h.log.Errorw("Failed to render stylesheet", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "text/css; charset=utf-8", buf.Bytes())
}
