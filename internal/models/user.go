package models

import (
	"time"
)

type User struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"size:320;uniqueIndex;not null" json:"-"`
	Password    string    `gorm:"not null" json:"-"` // Hash
	Role        Role      `gorm:"size:16;not null;default:'Unverified'" json:"role"`
	Session     string    `gorm:"size:36;uniqueIndex;not null" json:"-"`
	Code        *string   `gorm:"size:6;uniqueIndex" json:"-"` // 邮箱验证/重置密码共用
	Name        string    `gorm:"size:256;not null;default:''" json:"name"`
	Description string    `gorm:"size:512;not null;default:''" json:"description"`
	PfpID       *uint64   `json:"pfp_id"`
	Pfp         *File     `gorm:"foreignKey:PfpID;constraint:OnDelete:SET NULL;" json:"-"`
	MiniPfpID   *uint64   `json:"mini_pfp_id"`
	MiniPfp     *File     `gorm:"foreignKey:MiniPfpID;constraint:OnDelete:SET NULL;" json:"-"`
	JoinedAt    time.Time `gorm:"not null" json:"joined_at"`
}

// DisplayName falls back to the username until a name is set.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// PfpPath is the public URL of the full size profile picture.
func (u *User) PfpPath() string {
	if u.Pfp != nil {
		return u.Pfp.Path()
	}
	return DefaultPfpPath
}

// MiniPfpPath is the public URL of the small profile picture.
func (u *User) MiniPfpPath() string {
	if u.MiniPfp != nil {
		return u.MiniPfp.Path()
	}
	return DefaultPfpPath
}
