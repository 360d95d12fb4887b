package models

import (
	"time"
)

type Comment struct {
	ID             uint64     `gorm:"primaryKey" json:"id"`
	PostID         uint64     `gorm:"not null;index" json:"post_id"`
	Post           *Post      `gorm:"constraint:OnDelete:CASCADE;" json:"post,omitempty"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	ContentHTML    string     `gorm:"type:text;not null" json:"content_html"`
	PostedByUserID *uint64    `gorm:"index" json:"posted_by_user_id"`
	PostedBy       *User      `gorm:"foreignKey:PostedByUserID" json:"posted_by"`
	ReplyToID      *uint64    `gorm:"index" json:"reply_to_id"` // Nullable for top-level comments
	ReplyTo        *Comment   `gorm:"foreignKey:ReplyToID;constraint:OnDelete:SET NULL;" json:"reply_to,omitempty"`
	PostedAt       time.Time  `gorm:"not null" json:"posted_at"`
	ModifiedAt     *time.Time `json:"modified_at"`
}

// AuthorUsername is what a delete confirmation must match.
func (c *Comment) AuthorUsername() string {
	if c.PostedBy == nil {
		return AnonymousName
	}
	return c.PostedBy.Username
}
