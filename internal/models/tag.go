package models

import (
	"time"
)

type Tag struct {
	ID              uint64    `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:64;uniqueIndex;not null" json:"name"`
	CreatedByUserID *uint64   `json:"created_by_user_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// PostTag is the join row between posts and tags.
type PostTag struct {
	PostID uint64 `gorm:"primaryKey"`
	TagID  uint64 `gorm:"primaryKey"`
}
