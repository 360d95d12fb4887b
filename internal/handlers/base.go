package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"neor/internal/apperr"
	"neor/internal/fields"
	"neor/internal/logger"
	"neor/internal/middleware"
	"neor/internal/pagination"
)

// limits are exposed to every template for maxlength attributes.
var limits = gin.H{
	"Title":           fields.TitleMaxChars,
	"Description":     fields.DescriptionMaxChars,
	"Content":         fields.ContentMaxChars,
	"Tags":            fields.TagsMaxChars,
	"Name":            fields.NameMaxChars,
	"UserDescription": fields.UserDescriptionMaxChars,
	"Email":           fields.EmailMaxChars,
	"Password":        fields.PasswordMaxChars,
	"Username":        fields.UsernameMaxChars,
	"Code":            fields.CodeLength,
}

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path
	obj["CurrentURL"] = c.Request.URL.RequestURI()
	obj["Theme"] = ThemeOf(c)
	obj["Limits"] = limits

	// 表单提交失败后通过 ?error= 回到原页面
	if _, ok := obj["Error"]; !ok {
		if msg := c.Query("error"); msg != "" {
			obj["Error"] = msg
		}
	}
	if msg := c.Query("message"); msg != "" {
		obj["Message"] = msg
	}

	c.HTML(code, name, obj)
}

// RenderError renders the error page, logging server failures.
func RenderError(c *gin.Context, log *logger.Logger, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		RenderNotFound(c)
		return
	case apperr.KindUnauthorized:
		status = http.StatusForbidden
	case apperr.KindValidation, apperr.KindConfirmation:
		status = http.StatusBadRequest
	case apperr.KindServer:
		log.Errorw("Request failed", "path", c.Request.URL.Path, "error", err)
		_ = c.Error(err)
	}
	Render(c, status, "error.html", gin.H{"Error": apperr.Message(err)})
}

func RenderNotFound(c *gin.Context) {
	Render(c, http.StatusNotFound, "not_found.html", nil)
}

// redirect answers a form submission with 303 See Other.
func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// redirectError sends the user back to location with the error message.
func redirectError(c *gin.Context, log *logger.Logger, location string, err error) {
	if apperr.KindOf(err) == apperr.KindServer {
		log.Errorw("Request failed", "path", c.Request.URL.Path, "error", err)
		_ = c.Error(err)
	}
	redirect(c, withQuery(location, "error", apperr.Message(err)))
}

func withQuery(location, key, value string) string {
	sep := "?"
	if strings.Contains(location, "?") {
		sep = "&"
	}
	return location + sep + key + "=" + url.QueryEscape(value)
}

// signInFirst sends anonymous visitors to sign in, returning to back.
func signInFirst(c *gin.Context, back string) {
	redirect(c, "/sign-in?back="+url.QueryEscape(back))
}

// safeBack only allows local paths as a redirect target.
func safeBack(back string) string {
	if back == "" || !strings.HasPrefix(back, "/") || strings.HasPrefix(back, "//") || strings.HasPrefix(back, "/\\") {
		return "/"
	}
	return back
}

func parseID(s string) (uint64, bool) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id > pagination.MaxID {
		return 0, false
	}
	return id, true
}

// optionalID parses an optional id form or query value. Empty means absent.
func optionalID(s string) (*uint64, bool) {
	if s == "" {
		return nil, true
	}
	id, ok := parseID(s)
	if !ok {
		return nil, false
	}
	return &id, true
}

func pageParams(c *gin.Context, order pagination.Order) pagination.Params {
	return pagination.ParseParams(c.Query("direction"), c.Query("start_id"), c.Query("limit"), order)
}

func commentAnchor(postID, commentID uint64) string {
	cid := strconv.FormatUint(commentID, 10)
	return "/post/" + strconv.FormatUint(postID, 10) + "?start_id=" + cid + "#" + cid
}
