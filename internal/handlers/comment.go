package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"neor/internal/apperr"
	"neor/internal/logger"
	"neor/internal/middleware"
	"neor/internal/services"
)

type CommentHandler struct {
	posts    *services.PostService
	comments *services.CommentService
	log      *logger.Logger
}

func NewCommentHandler(posts *services.PostService, comments *services.CommentService, log *logger.Logger) *CommentHandler {
	return &CommentHandler{posts: posts, comments: comments, log: log.WithComponent("comment_handler")}
}

func commentPath(id uint64, action string) string {
	return "/comment/" + strconv.FormatUint(id, 10) + "/" + action
}

func createCommentPath(postID uint64, replyTo *uint64) string {
	q := url.Values{"post_id": {strconv.FormatUint(postID, 10)}}
	if replyTo != nil {
		q.Set("reply_to_comment_id", strconv.FormatUint(*replyTo, 10))
	}
	return "/comment/create?" + q.Encode()
}

// ShowCreate - 发表评论或回复 /comment/create?post_id=&reply_to_comment_id=
func (h *CommentHandler) ShowCreate(c *gin.Context) {
	postID, ok := parseID(c.Query("post_id"))
	if !ok {
		RenderNotFound(c)
		return
	}
	replyTo, ok := optionalID(c.Query("reply_to_comment_id"))
	if !ok {
		RenderNotFound(c)
		return
	}
	v := middleware.CurrentViewer(c)
	if v == nil {
		signInFirst(c, createCommentPath(postID, replyTo))
		return
	}

	post, err := h.posts.Get(c.Request.Context(), v, postID)
	if err != nil {
		RenderError(c, h.log, err)
		return
	}
	data := gin.H{"Post": post.Post}

	if replyTo != nil {
		parent, err := h.comments.Get(c.Request.Context(), v, *replyTo)
		if err != nil {
			RenderError(c, h.log, err)
			return
		}
		data["ReplyTo"] = parent.Comment
		if !parent.Flags.Repliable && c.Query("error") == "" {
			redirectError(c, h.log, createCommentPath(postID, replyTo), apperr.ErrReplyDenied)
			return
		}
	} else if !post.Flags.Commentable && c.Query("error") == "" {
		redirectError(c, h.log, createCommentPath(postID, nil), apperr.ErrCommentDenied)
		return
	}

	Render(c, http.StatusOK, "comment/create.html", data)
}

func (h *CommentHandler) Create(c *gin.Context) {
	postID, ok := parseID(c.PostForm("post_id"))
	if !ok {
		RenderNotFound(c)
		return
	}
	replyTo, ok := optionalID(c.PostForm("reply_to_comment_id"))
	if !ok {
		RenderNotFound(c)
		return
	}
	v := middleware.CurrentViewer(c)
	if v == nil {
		signInFirst(c, createCommentPath(postID, replyTo))
		return
	}

	id, err := h.comments.Create(c.Request.Context(), v, postID, replyTo, c.PostForm("content"))
	if err != nil {
		redirectError(c, h.log, createCommentPath(postID, replyTo), err)
		return
	}
	redirect(c, commentAnchor(postID, id))
}

func (h *CommentHandler) showAction(c *gin.Context, action, tmpl string, allowed func(services.CommentView) bool, denied error) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		RenderNotFound(c)
		return
	}
	v := middleware.CurrentViewer(c)
	if v == nil {
		signInFirst(c, commentPath(id, action))
		return
	}

	view, err := h.comments.Get(c.Request.Context(), v, id)
	if err != nil {
		RenderError(c, h.log, err)
		return
	}
	if !allowed(view) && c.Query("error") == "" {
		redirectError(c, h.log, commentPath(id, action), denied)
		return
	}
	Render(c, http.StatusOK, tmpl, gin.H{"Comment": view.Comment, "Flags": view.Flags})
}

func (h *CommentHandler) ShowEdit(c *gin.Context) {
	h.showAction(c, "edit", "comment/edit.html",
		func(v services.CommentView) bool { return v.Flags.Editable }, apperr.ErrEditCommentDenied)
}

func (h *CommentHandler) ShowDelete(c *gin.Context) {
	h.showAction(c, "delete", "comment/delete.html",
		func(v services.CommentView) bool { return v.Flags.Deletable }, apperr.ErrDeleteCommentDenied)
}

func (h *CommentHandler) ShowAnonymise(c *gin.Context) {
	h.showAction(c, "anonymise", "comment/anonymise.html",
		func(v services.CommentView) bool { return v.Flags.Anonymisable }, apperr.ErrAnonCommentDenied)
}

func (h *CommentHandler) Edit(c *gin.Context) {
	id, ok := parseID(c.PostForm("id"))
	if !ok {
		RenderNotFound(c)
		return
	}
	v := middleware.CurrentViewer(c)
	if v == nil {
		signInFirst(c, commentPath(id, "edit"))
		return
	}
	view, err := h.comments.Edit(c.Request.Context(), v, id, c.PostForm("content"))
	if err != nil {
		redirectError(c, h.log, commentPath(id, "edit"), err)
		return
	}
	redirect(c, commentAnchor(view.Comment.PostID, id))
}

func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c.PostForm("comment_id"))
	if !ok {
		RenderNotFound(c)
		return
	}
	v := middleware.CurrentViewer(c)
	if v == nil {
		signInFirst(c, commentPath(id, "delete"))
		return
	}
	view, err := h.comments.Delete(c.Request.Context(), v, id, c.PostForm("confirm"))
	if err != nil {
		redirectError(c, h.log, commentPath(id, "delete"), err)
		return
	}
	redirect(c, commentAnchor(view.Comment.PostID, id))
}

func (h *CommentHandler) Anonymise(c *gin.Context) {
	id, ok := parseID(c.PostForm("comment_id"))
	if !ok {
		RenderNotFound(c)
		return
	}
	v := middleware.CurrentViewer(c)
	if v == nil {
		signInFirst(c, commentPath(id, "anonymise"))
		return
	}
	view, err := h.comments.Anonymise(c.Request.Context(), v, id, c.PostForm("confirm"))
	if err != nil {
		redirectError(c, h.log, commentPath(id, "anonymise"), err)
		return
	}
	redirect(c, commentAnchor(view.Comment.PostID, id))
}
