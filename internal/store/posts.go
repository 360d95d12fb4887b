package store

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"neor/internal/models"
	"neor/internal/pagination"
)

// PostFields are the editable columns of a post.
type PostFields struct {
	Title       string
	Description string
	Content     string
	ContentHTML string
	Tags        []string
}

func preloadPostAuthor(db *gorm.DB) *gorm.DB {
	return db.Preload("PostedBy.MiniPfp")
}

func preloadTags(db *gorm.DB) *gorm.DB {
	return db.Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("tags.name")
	})
}

func (s *Store) CreatePost(ctx context.Context, ownerID uint64, f PostFields, at time.Time) (*models.Post, error) {
	post := models.Post{
		Title:          f.Title,
		Description:    f.Description,
		Content:        f.Content,
		ContentHTML:    f.ContentHTML,
		PostedByUserID: &ownerID,
		PostedAt:       at,
	}

	var cached map[string]uint64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&post).Error; err != nil {
			return err
		}
		ids, err := s.upsertTags(tx, f.Tags, ownerID, at)
		if err != nil {
			return err
		}
		cached = ids
		return replacePostTags(tx, post.ID, ids)
	})
	if err != nil {
		return nil, translate(err)
	}
	s.rememberTags(cached)
	return &post, nil
}

func (s *Store) PostByID(ctx context.Context, id uint64) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Scopes(preloadPostAuthor, preloadTags).
		First(&post, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// UpdatePost rewrites a post and its tags. The owner is checked again in
// the WHERE clause; zero rows means the post is gone or no longer owned.
func (s *Store) UpdatePost(ctx context.Context, id, ownerID uint64, f PostFields, at time.Time) (int64, error) {
	var (
		rows   int64
		cached map[string]uint64
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).
			Where("id = ? AND posted_by_user_id = ?", id, ownerID).
			Updates(map[string]any{
				"title":        f.Title,
				"description":  f.Description,
				"content":      f.Content,
				"content_html": f.ContentHTML,
				"modified_at":  at,
			})
		if res.Error != nil {
			return res.Error
		}
		rows = res.RowsAffected
		if rows == 0 {
			return nil
		}

		ids, err := s.upsertTags(tx, f.Tags, ownerID, at)
		if err != nil {
			return err
		}
		cached = ids
		return replacePostTags(tx, id, ids)
	})
	if err != nil {
		return 0, translate(err)
	}
	s.rememberTags(cached)
	return rows, nil
}

// DeletePost removes a post with its comments and tag links, provided the
// title still matches.
func (s *Store) DeletePost(ctx context.Context, id uint64, title string) (int64, error) {
	var rows int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Post{}).Where("id = ? AND title = ?", id, title).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return nil
		}

		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND title = ?", id, title).Delete(&models.Post{})
		rows = res.RowsAffected
		return res.Error
	})
	return rows, translate(err)
}

// AnonymisePost detaches the owner. Title, content and tags stay.
func (s *Store) AnonymisePost(ctx context.Context, id, ownerID uint64, title string) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ? AND posted_by_user_id = ? AND title = ?", id, ownerID, title).
		Update("posted_by_user_id", gorm.Expr("NULL"))
	return res.RowsAffected, translate(res.Error)
}

func postID(p *models.Post) uint64 { return p.ID }

func (s *Store) listPosts(ctx context.Context, p pagination.Params, filters ...pagination.Scope) (pagination.Page[models.Post], error) {
	q := pagination.Query{
		Column:   "posts.id",
		Order:    pagination.Descending,
		Filters:  filters,
		Preloads: []pagination.Scope{preloadPostAuthor, preloadTags},
	}
	page, err := pagination.Fetch(ctx, s.db, q, p, postID)
	if err != nil {
		return page, err
	}
	if err := s.fillCommentCounts(ctx, page.Items); err != nil {
		return page, err
	}
	return page, nil
}

// ListPosts lists posts whose title contains search (case-insensitive),
// newest first.
func (s *Store) ListPosts(ctx context.Context, search string, p pagination.Params) (pagination.Page[models.Post], error) {
	if search == "" {
		return s.listPosts(ctx, p)
	}
	return s.listPosts(ctx, p, func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER(posts.title) LIKE ? ESCAPE '\\'", "%"+likeEscaper.Replace(strings.ToLower(search))+"%")
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListPostsByTag lists posts carrying exactly tag, newest first.
func (s *Store) ListPostsByTag(ctx context.Context, tag string, p pagination.Params) (pagination.Page[models.Post], error) {
	return s.listPosts(ctx, p, func(db *gorm.DB) *gorm.DB {
		tagged := db.Session(&gorm.Session{NewDB: true}).
			Table("post_tags").
			Select("post_tags.post_id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.name = ?", tag)
		return db.Where("posts.id IN (?)", tagged)
	})
}

// ListPostsByUser lists the posts still attached to userID, newest first.
func (s *Store) ListPostsByUser(ctx context.Context, userID uint64, p pagination.Params) (pagination.Page[models.Post], error) {
	return s.listPosts(ctx, p, func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.posted_by_user_id = ?", userID)
	})
}

// fillCommentCounts 批量填充帖子的评论数量
func (s *Store) fillCommentCounts(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]uint64, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint64
		Count  int
	}
	var results []countResult
	err := s.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results).Error
	if err != nil {
		return translate(err)
	}

	counts := make(map[uint64]int, len(results))
	for _, r := range results {
		counts[r.PostID] = r.Count
	}
	for i := range posts {
		posts[i].CommentCount = counts[posts[i].ID]
	}
	return nil
}
