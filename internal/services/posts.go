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

type PostService struct {
	store *store.Store
	log   *logger.Logger
	now   func() time.Time
}

func NewPostService(s *store.Store, log *logger.Logger) *PostService {
	return &PostService{store: s, log: log.WithComponent("posts"), now: time.Now}
}

// PostInput is the raw post form.
type PostInput struct {
	Title       string
	Description string
	Tags        string
	Content     string
}

// PostView is a post with the viewer's permissions on it.
type PostView struct {
	Post  *models.Post
	Flags access.PostFlags
}

func parsePost(in PostInput) (store.PostFields, error) {
	title, err := fields.ParseTitle(in.Title)
	if err != nil {
		return store.PostFields{}, apperr.ErrInvalidTitle
	}
	description, err := fields.ParseDescription(in.Description)
	if err != nil {
		return store.PostFields{}, apperr.ErrInvalidDescription
	}
	tags, err := fields.ParseTags(in.Tags)
	if err != nil {
		return store.PostFields{}, apperr.ErrInvalidTags.Wrap(err)
	}
	content, err := fields.ParseContent(in.Content)
	if err != nil {
		return store.PostFields{}, apperr.ErrInvalidContent
	}

	html, err := utils.RenderMarkdown(string(content))
	if err != nil {
		return store.PostFields{}, apperr.ErrInvalidContent.Wrap(err)
	}

	return store.PostFields{
		Title:       string(title),
		Description: string(description),
		Content:     string(content),
		ContentHTML: html,
		Tags:        tags,
	}, nil
}

// Create returns the id of the new post.
func (s *PostService) Create(ctx context.Context, v *access.Viewer, in PostInput) (uint64, error) {
	if v == nil {
		return 0, apperr.ErrSignInRequired
	}
	if !v.Capabilities().Post {
		return 0, apperr.ErrCreatePostDenied
	}

	f, err := parsePost(in)
	if err != nil {
		return 0, err
	}

	post, err := s.store.CreatePost(ctx, v.ID, f, s.now())
	if err != nil {
		return 0, apperr.Server(err)
	}
	s.log.Infow("Post created", "post_id", post.ID, "user_id", v.ID)
	return post.ID, nil
}

func (s *PostService) load(ctx context.Context, id uint64) (*models.Post, error) {
	post, err := s.store.PostByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.ErrPostNotFound
	}
	if err != nil {
		return nil, apperr.Server(err)
	}
	return post, nil
}

func (s *PostService) Get(ctx context.Context, v *access.Viewer, id uint64) (PostView, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return PostView{}, err
	}
	return PostView{
		Post:  post,
		Flags: access.ForPost(v, post.PostedByUserID, post.PostedAt, s.now()),
	}, nil
}

// Edit replaces title, description, tags and content. Permission and the
// edit window are re-checked here, not only when the form is shown.
func (s *PostService) Edit(ctx context.Context, v *access.Viewer, id uint64, in PostInput) error {
	view, err := s.Get(ctx, v, id)
	if err != nil {
		return err
	}
	if !view.Flags.Editable {
		return apperr.ErrEditPostDenied
	}

	f, err := parsePost(in)
	if err != nil {
		return err
	}

	rows, err := s.store.UpdatePost(ctx, id, v.ID, f, s.now())
	if err != nil {
		return apperr.Server(err)
	}
	if rows == 0 {
		return apperr.ErrEditPostDenied
	}
	return nil
}

// Delete removes the post and all its comments. confirm must equal the
// current title.
func (s *PostService) Delete(ctx context.Context, v *access.Viewer, id uint64, confirm string) error {
	view, err := s.Get(ctx, v, id)
	if err != nil {
		return err
	}
	if !view.Flags.Deletable {
		return apperr.ErrDeletePostDenied
	}
	if confirm != view.Post.Title {
		return apperr.ErrPostConfirmation
	}

	rows, err := s.store.DeletePost(ctx, id, confirm)
	if err != nil {
		return apperr.Server(err)
	}
	if rows == 0 {
		// Renamed or removed since it was read.
		return apperr.ErrPostConfirmation
	}
	s.log.Infow("Post deleted", "post_id", id, "user_id", v.ID)
	return nil
}

// Anonymise detaches the author. confirm must equal the current title.
func (s *PostService) Anonymise(ctx context.Context, v *access.Viewer, id uint64, confirm string) error {
	view, err := s.Get(ctx, v, id)
	if err != nil {
		return err
	}
	if !view.Flags.Anonymisable {
		return apperr.ErrAnonymisePostDenied
	}
	if confirm != view.Post.Title {
		return apperr.ErrPostConfirmation
	}

	rows, err := s.store.AnonymisePost(ctx, id, v.ID, confirm)
	if err != nil {
		return apperr.Server(err)
	}
	if rows == 0 {
		return apperr.ErrAnonymisePostDenied
	}
	return nil
}

// List is the front page listing, optionally filtered by title.
func (s *PostService) List(ctx context.Context, search string, p pagination.Params) (pagination.Page[models.Post], error) {
	page, err := s.store.ListPosts(ctx, search, p)
	if err != nil {
		return page, apperr.Server(err)
	}
	return page, nil
}

// ListByTag lists the posts with exactly this tag. A malformed tag simply
// matches nothing.
func (s *PostService) ListByTag(ctx context.Context, tag string, p pagination.Params) (pagination.Page[models.Post], error) {
	if _, err := fields.ParseTag(tag); err != nil {
		return pagination.Page[models.Post]{Params: p, Order: pagination.Descending, Cursors: pagination.CursorsFor(nil, pagination.Descending)}, nil
	}
	page, err := s.store.ListPostsByTag(ctx, tag, p)
	if err != nil {
		return page, apperr.Server(err)
	}
	return page, nil
}

func (s *PostService) ListByUser(ctx context.Context, userID uint64, p pagination.Params) (pagination.Page[models.Post], error) {
	page, err := s.store.ListPostsByUser(ctx, userID, p)
	if err != nil {
		return page, apperr.Server(err)
	}
	return page, nil
}
