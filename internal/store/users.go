package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"neor/internal/models"
)

func (s *Store) userBy(ctx context.Context, column string, value any) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Preload("Pfp").
		Preload("MiniPfp").
		Where(column+" = ?", value).
		First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) UserByID(ctx context.Context, id uint64) (*models.User, error) {
	return s.userBy(ctx, "id", id)
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userBy(ctx, "username", username)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.userBy(ctx, "email", email)
}

func (s *Store) UserBySession(ctx context.Context, token string) (*models.User, error) {
	return s.userBy(ctx, "session", token)
}

func (s *Store) exists(ctx context.Context, column string, value any) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where(column+" = ?", value).
		Limit(1).
		Count(&n).Error
	return n > 0, translate(err)
}

func (s *Store) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, "username", username)
}

func (s *Store) EmailTaken(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, "email", email)
}

func (s *Store) SessionInUse(ctx context.Context, token string) (bool, error) {
	return s.exists(ctx, "session", token)
}

func (s *Store) CodeInUse(ctx context.Context, code string) (bool, error) {
	return s.exists(ctx, "code", code)
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error)
}

// VerifyEmail promotes the unverified owner of code to Member and clears
// the code. It returns the number of rows changed.
func (s *Store) VerifyEmail(ctx context.Context, code string) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("code = ? AND role = ?", code, models.RoleUnverified).
		Updates(map[string]any{
			"code": gorm.Expr("NULL"),
			"role": models.RoleMember,
		})
	return res.RowsAffected, translate(res.Error)
}

// SetCodeByEmail stores a fresh reset code for the account with email.
func (s *Store) SetCodeByEmail(ctx context.Context, email, code string) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Update("code", code)
	return res.RowsAffected, translate(res.Error)
}

// ChangePasswordByCode consumes code and stores the new password hash.
// Holding the code proves ownership of the email, so an unverified account
// becomes a Member as well.
func (s *Store) ChangePasswordByCode(ctx context.Context, code, passwordHash string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("code = ?", code).First(&u).Error; err != nil {
			return err
		}

		updates := map[string]any{
			"password": passwordHash,
			"code":     gorm.Expr("NULL"),
		}
		if u.Role == models.RoleUnverified {
			updates["role"] = models.RoleMember
		}

		res := tx.Model(&models.User{}).
			Where("id = ? AND code = ?", u.ID, code).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) SetSession(ctx context.Context, userID uint64, token string) error {
	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("session", token)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ProfileUpdate carries the self-service profile fields. Nil pictures
// leave the current ones in place.
type ProfileUpdate struct {
	Name        string
	Description string
	Pfp         *models.File
	MiniPfp     *models.File
}

func (s *Store) UpdateProfile(ctx context.Context, userID uint64, upd ProfileUpdate) error {
	updates := map[string]any{
		"name":        upd.Name,
		"description": upd.Description,
	}
	if upd.Pfp != nil && upd.MiniPfp != nil {
		updates["pfp_id"] = upd.Pfp.ID
		updates["mini_pfp_id"] = upd.MiniPfp.ID
	}

	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdminUpdate is what an admin may change on another account.
type AdminUpdate struct {
	Role             models.Role
	ResetName        bool
	ResetDescription bool
	ResetPfp         bool
}

// ApplyAdminUpdate never touches admin accounts. It returns the number of
// rows changed.
func (s *Store) ApplyAdminUpdate(ctx context.Context, userID uint64, upd AdminUpdate) (int64, error) {
	updates := map[string]any{"role": upd.Role}
	if upd.ResetName {
		updates["name"] = ""
	}
	if upd.ResetDescription {
		updates["description"] = ""
	}
	if upd.ResetPfp {
		updates["pfp_id"] = gorm.Expr("NULL")
		updates["mini_pfp_id"] = gorm.Expr("NULL")
	}

	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND role <> ?", userID, models.RoleAdmin).
		Updates(updates)
	return res.RowsAffected, translate(res.Error)
}

// CreateFile reserves an id for an asset with the given extension.
func (s *Store) CreateFile(ctx context.Context, extension string) (*models.File, error) {
	f := models.File{Extension: extension}
	if err := s.db.WithContext(ctx).Create(&f).Error; err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

func (s *Store) DeleteFile(ctx context.Context, id uint64) error {
	return translate(s.db.WithContext(ctx).Delete(&models.File{}, id).Error)
}
