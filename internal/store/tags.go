package store

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"neor/internal/models"
)

// upsertTags returns the id of every name, creating missing tags.
func (s *Store) upsertTags(tx *gorm.DB, names []string, creatorID uint64, at time.Time) (map[string]uint64, error) {
	ids := make(map[string]uint64, len(names))
	for _, name := range names {
		if id, ok := s.tagIDs.Get(name); ok {
			ids[name] = id
			continue
		}

		tag := models.Tag{Name: name, CreatedByUserID: &creatorID, CreatedAt: at}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&tag).Error
		if err != nil {
			return nil, err
		}

		if tag.ID == 0 {
			// Someone else created it first.
			if err := tx.Where("name = ?", name).First(&tag).Error; err != nil {
				return nil, err
			}
		}
		ids[name] = tag.ID
	}
	return ids, nil
}

// rememberTags is called once the transaction that created the tags has
// committed.
func (s *Store) rememberTags(ids map[string]uint64) {
	for name, id := range ids {
		s.tagIDs.Set(name, id)
	}
}

func replacePostTags(tx *gorm.DB, postID uint64, tagIDs map[string]uint64) error {
	if err := tx.Where("post_id = ?", postID).Delete(&models.PostTag{}).Error; err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}

	rows := make([]models.PostTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		rows = append(rows, models.PostTag{PostID: postID, TagID: id})
	}
	return tx.Create(&rows).Error
}
