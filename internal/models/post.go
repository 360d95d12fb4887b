package models

import (
	"time"
)

type Post struct {
	ID             uint64     `gorm:"primaryKey" json:"id"`
	Title          string     `gorm:"size:256;not null" json:"title"`
	Description    string     `gorm:"size:512;not null" json:"description"`
	Content        string     `gorm:"type:text;not null" json:"content"`     // markdown 原文
	ContentHTML    string     `gorm:"type:text;not null" json:"content_html"` // 渲染并清洗后的 HTML
	PostedByUserID *uint64    `gorm:"index" json:"posted_by_user_id"`         // 匿名化后为 NULL
	PostedBy       *User      `gorm:"foreignKey:PostedByUserID" json:"posted_by"`
	Tags           []Tag      `gorm:"many2many:post_tags;" json:"tags"`
	PostedAt       time.Time  `gorm:"not null" json:"posted_at"`
	ModifiedAt     *time.Time `json:"modified_at"`

	// 非数据库字段，用于查询时填充
	CommentCount int `gorm:"-" json:"comment_count"`
}

// TagNames returns the tag names in storage order.
func (p *Post) TagNames() []string {
	names := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		names[i] = t.Name
	}
	return names
}
