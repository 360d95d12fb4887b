package handlers

import (
	"fmt"
	"html/template"
	"net/url"
	"path/filepath"
	"time"

	"github.com/gin-contrib/multitemplate"
)

// views are registered under their path relative to views/.
var views = []string{
	"post/list.html",
	"post/detail.html",
	"post/create.html",
	"post/edit.html",
	"post/delete.html",
	"post/anonymise.html",
	"comment/create.html",
	"comment/edit.html",
	"comment/delete.html",
	"comment/anonymise.html",
	"user/profile.html",
	"user/edit.html",
	"user/admin.html",
	"auth/sign_up.html",
	"auth/sign_in.html",
	"auth/email_verification.html",
	"auth/password_reset.html",
	"auth/password_change.html",
	"not_found.html",
	"error.html",
}

var funcMap = template.FuncMap{
	"dict": func(values ...any) (map[string]any, error) {
		if len(values)%2 != 0 {
			return nil, fmt.Errorf("invalid dict call")
		}
		dict := make(map[string]any, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict keys must be strings")
			}
			dict[key] = values[i+1]
		}
		return dict, nil
	},
	"timeAgo": timeAgo,
	"date": func(t time.Time) string {
		return t.UTC().Format("2006-01-02 15:04 UTC")
	},
	// 内容已在写入时经 bluemonday 清洗
	"safeHTML": func(s string) template.HTML {
		return template.HTML(s)
	},
	"urlquery": url.QueryEscape,
	"pathescape": url.PathEscape,
}

func timeAgo(t time.Time) string {
	seconds := int(time.Since(t).Seconds())
	plural := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s ago", unit)
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}
	switch {
	case seconds < 60:
		return "just now"
	case seconds < 3600:
		return plural(seconds/60, "minute")
	case seconds < 86400:
		return plural(seconds/3600, "hour")
	case seconds < 2592000:
		return plural(seconds/86400, "day")
	case seconds < 31536000:
		return plural(seconds/2592000, "month")
	}
	return plural(seconds/31536000, "year")
}

// LoadTemplates builds every view on top of the layouts and includes.
func LoadTemplates(templatesDir string) (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(filepath.Join(templatesDir, "layouts", "*.html"))
	if err != nil {
		return nil, err
	}
	includes, err := filepath.Glob(filepath.Join(templatesDir, "includes", "*.html"))
	if err != nil {
		return nil, err
	}
	if len(layouts) == 0 {
		return nil, fmt.Errorf("no layouts found in %s", templatesDir)
	}

	for _, view := range views {
		files := make([]string, 0, len(layouts)+len(includes)+1)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, filepath.Join(templatesDir, "views", view))
		r.AddFromFilesFuncs(view, funcMap, files...)
	}
	return r, nil
}
