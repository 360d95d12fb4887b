package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"neor/internal/access"
	"neor/internal/logger"
	"neor/internal/models"
)

const (
	CheckUserKey = "user"
	ViewerKey    = "viewer"

	// SessionTokenKey is the key of the user's session token inside the
	// signed cookie.
	SessionTokenKey = "token"
)

// Authenticator resolves a session token to its user, or nil.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// LoadUser retrieves the user of the session cookie and sets it to context.
// A stale or unknown token leaves the request anonymous.
func LoadUser(auth Authenticator, l *logger.Logger) gin.HandlerFunc {
	log := l.WithComponent("session")
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(SessionTokenKey).(string)

		if token != "" {
			user, err := auth.Authenticate(c.Request.Context(), token)
			if err != nil {
				log.Errorw("Failed to resolve session", "error", err)
			}
			if user != nil {
				c.Set(CheckUserKey, user)
				c.Set(ViewerKey, access.ViewerFor(user))
			}
		}
		c.Next()
	}
}

// AuthRequired redirects anonymous visitors to the sign in page, coming back
// to the current path afterwards.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentViewer(c) == nil {
			c.Redirect(http.StatusSeeOther, "/sign-in?back="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser is nil for anonymous visitors.
func CurrentUser(c *gin.Context) *models.User {
	if u, ok := c.Get(CheckUserKey); ok {
		if user, ok := u.(*models.User); ok {
			return user
		}
	}
	return nil
}

// CurrentViewer is nil for anonymous visitors.
func CurrentViewer(c *gin.Context) *access.Viewer {
	if v, ok := c.Get(ViewerKey); ok {
		if viewer, ok := v.(*access.Viewer); ok {
			return viewer
		}
	}
	return nil
}

// SetSession stores the token in the cookie. Without rememberMe the cookie
// ends with the browser session.
func SetSession(c *gin.Context, token string, rememberMe bool) error {
	session := sessions.Default(c)
	opts := sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode}
	if rememberMe {
		opts.MaxAge = 60 * 60 * 24 * 365
	}
	session.Options(opts)
	session.Set(SessionTokenKey, token)
	return session.Save()
}

// ClearSession removes the cookie.
func ClearSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}
