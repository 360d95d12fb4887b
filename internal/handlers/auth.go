package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"neor/internal/logger"
	"neor/internal/middleware"
	"neor/internal/services"
)

type AuthHandler struct {
	auth *services.AuthService
	log  *logger.Logger
}

func NewAuthHandler(auth *services.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log.WithComponent("auth_handler")}
}

func (h *AuthHandler) ShowSignUp(c *gin.Context) {
	Render(c, http.StatusOK, "auth/sign_up.html", nil)
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	err := h.auth.SignUp(c.Request.Context(), services.SignUpInput{
		Username:       c.PostForm("username"),
		Email:          c.PostForm("email"),
		Password:       c.PostForm("password"),
		PasswordRepeat: c.PostForm("password_repeat"),
	})
	if err != nil {
		redirectError(c, h.log, "/sign-up", err)
		return
	}
	redirect(c, "/email-verification")
}

func (h *AuthHandler) ShowEmailVerification(c *gin.Context) {
	Render(c, http.StatusOK, "auth/email_verification.html", nil)
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	if err := h.auth.VerifyEmail(c.Request.Context(), c.PostForm("code")); err != nil {
		redirectError(c, h.log, "/email-verification", err)
		return
	}
	redirect(c, withQuery("/sign-in", "message", "Successfully verified email"))
}

func (h *AuthHandler) ShowSignIn(c *gin.Context) {
	Render(c, http.StatusOK, "auth/sign_in.html", gin.H{"Back": c.Query("back")})
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	back := c.PostForm("back")
	token, err := h.auth.SignIn(c.Request.Context(), c.PostForm("email"), c.PostForm("password"))
	if err != nil {
		location := "/sign-in"
		if back != "" {
			location = withQuery(location, "back", back)
		}
		redirectError(c, h.log, location, err)
		return
	}

	rememberMe := c.PostForm("remember_me") != ""
	if err := middleware.SetSession(c, token, rememberMe); err != nil {
		h.log.Errorw("Failed to save session", "error", err)
	}
	redirect(c, safeBack(back))
}

// SignOut rotates the session token so every device is signed out.
func (h *AuthHandler) SignOut(c *gin.Context) {
	v := middleware.CurrentViewer(c)
	if v == nil {
		redirect(c, "/sign-in")
		return
	}
	if err := h.auth.SignOut(c.Request.Context(), v); err != nil {
		RenderError(c, h.log, err)
		return
	}
	if err := middleware.ClearSession(c); err != nil {
		h.log.Errorw("Failed to clear session", "error", err)
	}
	redirect(c, "/sign-in")
}

func (h *AuthHandler) ShowPasswordReset(c *gin.Context) {
	Render(c, http.StatusOK, "auth/password_reset.html", nil)
}

func (h *AuthHandler) PasswordReset(c *gin.Context) {
	if err := h.auth.RequestPasswordReset(c.Request.Context(), c.PostForm("email")); err != nil {
		redirectError(c, h.log, "/password-reset", err)
		return
	}
	redirect(c, "/password-change")
}

func (h *AuthHandler) ShowPasswordChange(c *gin.Context) {
	Render(c, http.StatusOK, "auth/password_change.html", nil)
}

func (h *AuthHandler) PasswordChange(c *gin.Context) {
	err := h.auth.ChangePassword(c.Request.Context(), services.PasswordChangeInput{
		Code:           c.PostForm("code"),
		Password:       c.PostForm("password"),
		PasswordRepeat: c.PostForm("password_repeat"),
	})
	if err != nil {
		redirectError(c, h.log, "/password-change", err)
		return
	}
	redirect(c, withQuery("/sign-in", "message", "Successfully changed password"))
}
