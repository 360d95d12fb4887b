package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"neor/internal/apperr"
	"neor/internal/logger"
	"neor/internal/middleware"
	"neor/internal/pagination"
	"neor/internal/services"
)

type PostHandler struct {
	posts    *services.PostService
	comments *services.CommentService
	log      *logger.Logger
}

func NewPostHandler(posts *services.PostService, comments *services.CommentService, log *logger.Logger) *PostHandler {
	return &PostHandler{posts: posts, comments: comments, log: log.WithComponent("post_handler")}
}

func postPath(id uint64, action string) string {
	p := "/post/" + strconv.FormatUint(id, 10)
	if action != "" {
		p += "/" + action
	}
	return p
}

// Index - 首页，最新文章，可按标题搜索 /?query=
func (h *PostHandler) Index(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	page, err := h.posts.List(c.Request.Context(), query, pageParams(c, pagination.Descending))
	if err != nil {
		RenderError(c, h.log, err)
		return
	}
	Render(c, http.StatusOK, "post/list.html", gin.H{
		"Posts": page.Items,
		"Links": page.Links("/", url.Values{"query": {query}}),
		"Query": query,
	})
}

// ByTag - 标签下的文章列表 /tag/:tag
func (h *PostHandler) ByTag(c *gin.Context) {
	tag := c.Param("tag")
	page, err := h.posts.ListByTag(c.Request.Context(), tag, pageParams(c, pagination.Descending))
	if err != nil {
		RenderError(c, h.log, err)
		return
	}
	Render(c, http.StatusOK, "post/list.html", gin.H{
		"Posts": page.Items,
		"Links": page.Links("/tag/"+url.PathEscape(tag), nil),
		"Tag":   tag,
	})
}

// Detail - 文章详情页，评论按时间正序分页 /post/:id
func (h *PostHandler) Detail(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		RenderNotFound(c)
		return
	}
	v := middleware.CurrentViewer(c)

	view, err := h.posts.Get(c.Request.Context(), v, id)
	if err != nil {
		RenderError(c, h.log, err)
		return
	}
	comments, err := h.comments.ListForPost(c.Request.Context(), v, id, pageParams(c, pagination.Ascending))
	if err != nil {
		RenderError(c, h.log, err)
		return
	}

	Render(c, http.StatusOK, "post/detail.html", gin.H{
		"Post":     view.Post,
		"Flags":    view.Flags,
		"Comments": comments.Items,
		"Links":    comments.Links(postPath(id, ""), nil),
	})
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	v := middleware.CurrentViewer(c)
	if v == nil {
		signInFirst(c, "/post/create")
		return
	}
	if !v.Capabilities().Post && c.Query("error") == "" {
		redirectError(c, h.log, "/post/create", apperr.ErrCreatePostDenied)
		return
	}
	Render(c, http.StatusOK, "post/create.html", nil)
}

func postInput(c *gin.Context) services.PostInput {
	return services.PostInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Tags:        c.PostForm("tags"),
		Content:     c.PostForm("content"),
	}
}

func (h *PostHandler) Create(c *gin.Context) {
	v := middleware.CurrentViewer(c)
	if v == nil {
		signInFirst(c, "/post/create")
		return
	}
	id, err := h.posts.Create(c.Request.Context(), v, postInput(c))
	if err != nil {
		redirectError(c, h.log, "/post/create", err)
		return
	}
	redirect(c, postPath(id, ""))
}

// action pages share the same shape: sign in, load the post, check the flag.
func (h *PostHandler) showAction(c *gin.Context, action, tmpl string, allowed func(services.PostView) bool, denied error) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		RenderNotFound(c)
		return
	}
	v := middleware.CurrentViewer(c)
	if v == nil {
		signInFirst(c, postPath(id, action))
		return
	}

	view, err := h.posts.Get(c.Request.Context(), v, id)
	if err != nil {
		RenderError(c, h.log, err)
		return
	}
	if !allowed(view) && c.Query("error") == "" {
		redirectError(c, h.log, postPath(id, action), denied)
		return
	}
	Render(c, http.StatusOK, tmpl, gin.H{"Post": view.Post, "Flags": view.Flags})
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	h.showAction(c, "edit", "post/edit.html",
		func(v services.PostView) bool { return v.Flags.Editable }, apperr.ErrEditPostDenied)
}

func (h *PostHandler) ShowDelete(c *gin.Context) {
	h.showAction(c, "delete", "post/delete.html",
		func(v services.PostView) bool { return v.Flags.Deletable }, apperr.ErrDeletePostDenied)
}

func (h *PostHandler) ShowAnonymise(c *gin.Context) {
	h.showAction(c, "anonymise", "post/anonymise.html",
		func(v services.PostView) bool { return v.Flags.Anonymisable }, apperr.ErrAnonymisePostDenied)
}

func (h *PostHandler) Edit(c *gin.Context) {
	id, ok := parseID(c.PostForm("id"))
	if !ok {
		RenderNotFound(c)
		return
	}
	v := middleware.CurrentViewer(c)
	if v == nil {
		signInFirst(c, postPath(id, "edit"))
		return
	}
	if err := h.posts.Edit(c.Request.Context(), v, id, postInput(c)); err != nil {
		redirectError(c, h.log, postPath(id, "edit"), err)
		return
	}
	redirect(c, postPath(id, ""))
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := parseID(c.PostForm("post_id"))
	if !ok {
		RenderNotFound(c)
		return
	}
	v := middleware.CurrentViewer(c)
	if v == nil {
		signInFirst(c, postPath(id, "delete"))
		return
	}
	if err := h.posts.Delete(c.Request.Context(), v, id, c.PostForm("confirm")); err != nil {
		redirectError(c, h.log, postPath(id, "delete"), err)
		return
	}
	redirect(c, "/")
}

func (h *PostHandler) Anonymise(c *gin.Context) {
	id, ok := parseID(c.PostForm("post_id"))
	if !ok {
		RenderNotFound(c)
		return
	}
	v := middleware.CurrentViewer(c)
	if v == nil {
		signInFirst(c, postPath(id, "anonymise"))
		return
	}
	if err := h.posts.Anonymise(c.Request.Context(), v, id, c.PostForm("confirm")); err != nil {
		redirectError(c, h.log, postPath(id, "anonymise"), err)
		return
	}
	redirect(c, postPath(id, ""))
}
