package services

import (
	"context"
	"errors"
	"time"

	"neor/internal/access"
	"neor/internal/apperr"
	"neor/internal/fields"
	"neor/internal/logger"
	"neor/internal/models"
	"neor/internal/pagination"
	"neor/internal/store"
	"neor/internal/utils"
)

type CommentService struct {
	store *store.Store
	log   *logger.Logger
	now   func() time.Time
}

func NewCommentService(s *store.Store, log *logger.Logger) *CommentService {
	return &CommentService{store: s, log: log.WithComponent("comments"), now: time.Now}
}

// CommentView is a comment with the viewer's permissions on it.
type CommentView struct {
	Comment *models.Comment
	Flags   access.CommentFlags
}

func (s *CommentService) view(v *access.Viewer, c *models.Comment, now time.Time) CommentView {
	return CommentView{
		Comment: c,
		Flags:   access.ForComment(v, c.PostedByUserID, c.PostedAt, now),
	}
}

func parseComment(raw string) (string, string, error) {
	content, err := fields.ParseContent(raw)
	if err != nil {
		return "", "", apperr.ErrInvalidContent
	}
	html, err := utils.RenderMarkdown(string(content))
	if err != nil {
		return "", "", apperr.ErrInvalidContent.Wrap(err)
	}
	return string(content), html, nil
}

// Create adds a comment to postID, optionally as a reply to another
// comment on the same post. It returns the new comment's id.
func (s *CommentService) Create(ctx context.Context, v *access.Viewer, postID uint64, replyToID *uint64, rawContent string) (uint64, error) {
	if v == nil {
		return 0, apperr.ErrSignInRequired
	}
	caps := v.Capabilities()
	if replyToID == nil && !caps.Comment {
		return 0, apperr.ErrCommentDenied
	}
	if replyToID != nil && !caps.Reply {
		return 0, apperr.ErrReplyDenied
	}

	if _, err := s.store.PostByID(ctx, postID); errors.Is(err, store.ErrNotFound) {
		return 0, apperr.ErrPostNotFound
	} else if err != nil {
		return 0, apperr.Server(err)
	}

	if replyToID != nil {
		parent, err := s.store.CommentByID(ctx, *replyToID)
		if errors.Is(err, store.ErrNotFound) {
			return 0, apperr.ErrCommentNotFound
		}
		if err != nil {
			return 0, apperr.Server(err)
		}
		if parent.PostID != postID {
			return 0, apperr.ErrReplyOtherPost
		}
	}

	content, html, err := parseComment(rawContent)
	if err != nil {
		return 0, err
	}

	c := models.Comment{
		PostID:         postID,
		Content:        content,
		ContentHTML:    html,
		PostedByUserID: &v.ID,
		ReplyToID:      replyToID,
		PostedAt:       s.now(),
	}
	if err := s.store.CreateComment(ctx, &c); err != nil {
		return 0, apperr.Server(err)
	}
	return c.ID, nil
}

func (s *CommentService) Get(ctx context.Context, v *access.Viewer, id uint64) (CommentView, error) {
	c, err := s.store.CommentByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return CommentView{}, apperr.ErrCommentNotFound
	}
	if err != nil {
		return CommentView{}, apperr.Server(err)
	}
	return s.view(v, c, s.now()), nil
}

// Edit replaces the content of the viewer's own comment within the edit
// window.
func (s *CommentService) Edit(ctx context.Context, v *access.Viewer, id uint64, rawContent string) (CommentView, error) {
	view, err := s.Get(ctx, v, id)
	if err != nil {
		return view, err
	}
	if !view.Flags.Editable {
		return view, apperr.ErrEditCommentDenied
	}

	content, html, err := parseComment(rawContent)
	if err != nil {
		return view, err
	}

	rows, err := s.store.UpdateComment(ctx, id, v.ID, content, html, s.now())
	if err != nil {
		return view, apperr.Server(err)
	}
	if rows == 0 {
		return view, apperr.ErrEditCommentDenied
	}
	return view, nil
}

// Delete removes a comment. confirm must equal the author's username, or
// "Anonymous" for an anonymised comment.
func (s *CommentService) Delete(ctx context.Context, v *access.Viewer, id uint64, confirm string) (CommentView, error) {
	view, err := s.Get(ctx, v, id)
	if err != nil {
		return view, err
	}
	if !view.Flags.Deletable {
		return view, apperr.ErrDeleteCommentDenied
	}
	if confirm != view.Comment.AuthorUsername() {
		return view, apperr.ErrCommentConfirmation
	}

	rows, err := s.store.DeleteComment(ctx, id, view.Comment.PostedByUserID)
	if err != nil {
		return view, apperr.Server(err)
	}
	if rows == 0 {
		// Anonymised or removed since it was read.
		return view, apperr.ErrCommentConfirmation
	}
	s.log.Infow("Comment deleted", "comment_id", id, "user_id", v.ID)
	return view, nil
}

// Anonymise detaches the author. confirm must equal the author's username.
func (s *CommentService) Anonymise(ctx context.Context, v *access.Viewer, id uint64, confirm string) (CommentView, error) {
	view, err := s.Get(ctx, v, id)
	if err != nil {
		return view, err
	}
	if !view.Flags.Anonymisable {
		return view, apperr.ErrAnonCommentDenied
	}
	if confirm != view.Comment.AuthorUsername() {
		return view, apperr.ErrCommentConfirmation
	}

	rows, err := s.store.AnonymiseComment(ctx, id, v.ID)
	if err != nil {
		return view, apperr.Server(err)
	}
	if rows == 0 {
		return view, apperr.ErrAnonCommentDenied
	}
	return view, nil
}

// ListForPost lists a post's comments oldest first, with flags.
func (s *CommentService) ListForPost(ctx context.Context, v *access.Viewer, postID uint64, p pagination.Params) (pagination.Page[CommentView], error) {
	page, err := s.store.ListComments(ctx, postID, p)
	if err != nil {
		return pagination.Page[CommentView]{}, apperr.Server(err)
	}
	now := s.now()
	return pagination.Map(page, func(c models.Comment) CommentView {
		return s.view(v, &c, now)
	}), nil
}

// ListByUser lists a user's comments newest first.
func (s *CommentService) ListByUser(ctx context.Context, v *access.Viewer, userID uint64, p pagination.Params) (pagination.Page[CommentView], error) {
	page, err := s.store.ListCommentsByUser(ctx, userID, p)
	if err != nil {
		return pagination.Page[CommentView]{}, apperr.Server(err)
	}
	now := s.now()
	return pagination.Map(page, func(c models.Comment) CommentView {
		return s.view(v, &c, now)
	}), nil
}
