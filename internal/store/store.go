// Package store issues every database query of the forum.
package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"neor/internal/utils"
)

var (
	ErrNotFound = errors.New("store: not found")
	ErrConflict = errors.New("store: conflict")
)

const tagCacheSize = 1024

// Store wraps the gorm handle. Tag ids are cached by name since tags are
// never renamed or removed.
type Store struct {
	db     *gorm.DB
	tagIDs *utils.Cache[string, uint64]
}

func New(db *gorm.DB) (*Store, error) {
	tagIDs, err := utils.NewCache[string, uint64](tagCacheSize, 0)
	if err != nil {
		return nil, fmt.Errorf("store: tag cache: %w", err)
	}
	return &Store{db: db, tagIDs: tagIDs}, nil
}

// DB exposes the handle for health checks and tests.
func (s *Store) DB() *gorm.DB { return s.db }

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return err
	}
}
