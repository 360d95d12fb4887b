package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"neor/internal/models"
	"neor/internal/pagination"
)

func preloadCommentAuthor(db *gorm.DB) *gorm.DB {
	return db.Preload("PostedBy.MiniPfp")
}

func preloadReplyTo(db *gorm.DB) *gorm.DB {
	return db.Preload("ReplyTo.PostedBy")
}

func preloadCommentPost(db *gorm.DB) *gorm.DB {
	return db.Preload("Post")
}

func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error)
}

func (s *Store) CommentByID(ctx context.Context, id uint64) (*models.Comment, error) {
	var c models.Comment
	err := s.db.WithContext(ctx).
		Scopes(preloadCommentAuthor, preloadReplyTo, preloadCommentPost).
		First(&c, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// UpdateComment rewrites the content if ownerID still owns the comment.
func (s *Store) UpdateComment(ctx context.Context, id, ownerID uint64, content, contentHTML string, at time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ? AND posted_by_user_id = ?", id, ownerID).
		Updates(map[string]any{
			"content":      content,
			"content_html": contentHTML,
			"modified_at":  at,
		})
	return res.RowsAffected, translate(res.Error)
}

// DeleteComment removes a comment whose owner is still ownerID (nil for an
// anonymous comment). Replies to it become top-level comments.
func (s *Store) DeleteComment(ctx context.Context, id uint64, ownerID *uint64) (int64, error) {
	var rows int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Where("id = ?", id)
		if ownerID == nil {
			owned = owned.Where("posted_by_user_id IS NULL")
		} else {
			owned = owned.Where("posted_by_user_id = ?", *ownerID)
		}

		var n int64
		if err := owned.Model(&models.Comment{}).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return nil
		}

		err := tx.Model(&models.Comment{}).
			Where("reply_to_id = ?", id).
			Update("reply_to_id", gorm.Expr("NULL")).Error
		if err != nil {
			return err
		}

		res := tx.Delete(&models.Comment{}, id)
		rows = res.RowsAffected
		return res.Error
	})
	return rows, translate(err)
}

// AnonymiseComment detaches the owner and keeps the content.
func (s *Store) AnonymiseComment(ctx context.Context, id, ownerID uint64) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ? AND posted_by_user_id = ?", id, ownerID).
		Update("posted_by_user_id", gorm.Expr("NULL"))
	return res.RowsAffected, translate(res.Error)
}

func commentID(c *models.Comment) uint64 { return c.ID }

// ListComments lists the comments under a post, oldest first.
func (s *Store) ListComments(ctx context.Context, postID uint64, p pagination.Params) (pagination.Page[models.Comment], error) {
	q := pagination.Query{
		Column: "comments.id",
		Order:  pagination.Ascending,
		Filters: []pagination.Scope{func(db *gorm.DB) *gorm.DB {
			return db.Where("comments.post_id = ?", postID)
		}},
		Preloads: []pagination.Scope{preloadCommentAuthor, preloadReplyTo},
	}
	return pagination.Fetch(ctx, s.db, q, p, commentID)
}

// ListCommentsByUser lists a user's comments, newest first.
func (s *Store) ListCommentsByUser(ctx context.Context, userID uint64, p pagination.Params) (pagination.Page[models.Comment], error) {
	q := pagination.Query{
		Column: "comments.id",
		Order:  pagination.Descending,
		Filters: []pagination.Scope{func(db *gorm.DB) *gorm.DB {
			return db.Where("comments.posted_by_user_id = ?", userID)
		}},
		Preloads: []pagination.Scope{preloadCommentAuthor, preloadCommentPost},
	}
	return pagination.Fetch(ctx, s.db, q, p, commentID)
}
