package models

import (
	"strconv"
	"time"
)

const (
	DefaultPfpPath  = "/files/default.png"
	NotFoundPfpPath = "/files/not_found.png"
)

// File is an uploaded asset stored on disk as <id>.<extension>.
type File struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Extension string    `gorm:"size:8;not null" json:"extension"`
	CreatedAt time.Time `json:"created_at"`
}

func (f *File) Name() string {
	return strconv.FormatUint(f.ID, 10) + "." + f.Extension
}

func (f *File) Path() string {
	return "/files/" + f.Name()
}
