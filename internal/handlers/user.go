package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"neor/internal/apperr"
	"neor/internal/logger"
	"neor/internal/middleware"
	"neor/internal/models"
	"neor/internal/pagination"
	"neor/internal/services"
)

type UserHandler struct {
	users    *services.UserService
	posts    *services.PostService
	comments *services.CommentService
	log      *logger.Logger
}

func NewUserHandler(users *services.UserService, posts *services.PostService, comments *services.CommentService, log *logger.Logger) *UserHandler {
	return &UserHandler{users: users, posts: posts, comments: comments, log: log.WithComponent("user_handler")}
}

func userPath(username, action string) string {
	p := "/user/" + url.PathEscape(username)
	if action != "" {
		p += "/" + action
	}
	return p
}

// Profile - 用户主页，文章或评论 /user/:username?display=posts|comments
func (h *UserHandler) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	v := middleware.CurrentViewer(c)
	username := c.Param("username")

	view, err := h.users.Get(ctx, v, username)
	if err != nil {
		RenderError(c, h.log, err)
		return
	}

	display := c.DefaultQuery("display", "posts")
	params := pageParams(c, pagination.Descending)
	data := gin.H{
		"User":  view.User,
		"Flags": view.Flags,
	}

	if display == "comments" {
		page, err := h.comments.ListByUser(ctx, v, view.User.ID, params)
		if err != nil {
			RenderError(c, h.log, err)
			return
		}
		data["Comments"] = page.Items
		data["Links"] = page.Links(userPath(username, ""), url.Values{"display": {display}})
	} else {
		display = "posts"
		page, err := h.posts.ListByUser(ctx, view.User.ID, params)
		if err != nil {
			RenderError(c, h.log, err)
			return
		}
		data["Posts"] = page.Items
		data["Links"] = page.Links(userPath(username, ""), url.Values{"display": {display}})
	}
	data["Display"] = display

	Render(c, http.StatusOK, "user/profile.html", data)
}

func (h *UserHandler) showAction(c *gin.Context, action, tmpl string, allowed func(services.UserView) bool, denied error, extra gin.H) {
	username := c.Param("username")
	v := middleware.CurrentViewer(c)
	if v == nil {
		signInFirst(c, userPath(username, action))
		return
	}

	view, err := h.users.Get(c.Request.Context(), v, username)
	if err != nil {
		RenderError(c, h.log, err)
		return
	}
	if !allowed(view) && c.Query("error") == "" {
		redirectError(c, h.log, userPath(username, action), denied)
		return
	}

	data := gin.H{"User": view.User, "Flags": view.Flags}
	for k, val := range extra {
		data[k] = val
	}
	Render(c, http.StatusOK, tmpl, data)
}

func (h *UserHandler) ShowEdit(c *gin.Context) {
	h.showAction(c, "edit", "user/edit.html",
		func(v services.UserView) bool { return v.Flags.Editable }, apperr.ErrEditUserDenied, nil)
}

func (h *UserHandler) ShowAdmin(c *gin.Context) {
	h.showAction(c, "admin", "user/admin.html",
		func(v services.UserView) bool { return v.Flags.Adminable }, apperr.ErrAdminUserDenied,
		gin.H{"Roles": assignableRoles()})
}

func assignableRoles() []models.Role {
	var roles []models.Role
	for _, r := range models.Roles {
		if r.Assignable() {
			roles = append(roles, r)
		}
	}
	return roles
}

// Edit accepts a multipart form; the pfp part is optional.
func (h *UserHandler) Edit(c *gin.Context) {
	username := c.PostForm("username")
	v := middleware.CurrentViewer(c)
	if v == nil {
		signInFirst(c, userPath(username, "edit"))
		return
	}

	in := services.ProfileInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
	}

	if header, err := c.FormFile("pfp"); err == nil && header.Size > 0 {
		if header.Size > services.MaxPfpBytes {
			redirectError(c, h.log, userPath(username, "edit"), apperr.ErrInvalidPfp)
			return
		}
		file, err := header.Open()
		if err != nil {
			redirectError(c, h.log, userPath(username, "edit"), apperr.ErrInvalidPfp.Wrap(err))
			return
		}
		defer file.Close()
		in.Pfp = file
	}

	if err := h.users.Edit(c.Request.Context(), v, username, in); err != nil {
		redirectError(c, h.log, userPath(username, "edit"), err)
		return
	}
	redirect(c, userPath(username, ""))
}

func (h *UserHandler) Admin(c *gin.Context) {
	username := c.PostForm("username")
	v := middleware.CurrentViewer(c)
	if v == nil {
		signInFirst(c, userPath(username, "admin"))
		return
	}

	err := h.users.Admin(c.Request.Context(), v, username, services.AdminInput{
		Role:             c.PostForm("role"),
		ResetName:        c.PostForm("reset_name") != "",
		ResetDescription: c.PostForm("reset_description") != "",
		ResetPfp:         c.PostForm("reset_pfp") != "",
	})
	if err != nil {
		redirectError(c, h.log, userPath(username, "admin"), err)
		return
	}
	redirect(c, userPath(username, ""))
}
