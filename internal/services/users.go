package services

import (
	"context"
	"errors"
	"io"

	"neor/internal/access"
	"neor/internal/apperr"
	"neor/internal/fields"
	"neor/internal/logger"
	"neor/internal/models"
	"neor/internal/store"
)

type UserService struct {
	store  *store.Store
	images *ImageService
	log    *logger.Logger
}

func NewUserService(s *store.Store, images *ImageService, log *logger.Logger) *UserService {
	return &UserService{store: s, images: images, log: log.WithComponent("users")}
}

// UserView is a profile with the viewer's permissions on it.
type UserView struct {
	User  *models.User
	Flags access.UserFlags
}

func (s *UserService) Get(ctx context.Context, v *access.Viewer, username string) (UserView, error) {
	user, err := s.store.UserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return UserView{}, apperr.ErrUserNotFound
	}
	if err != nil {
		return UserView{}, apperr.Server(err)
	}
	return UserView{User: user, Flags: access.ForUser(v, user.ID, user.Role)}, nil
}

type ProfileInput struct {
	Name        string
	Description string
	// Pfp is nil when no new picture was uploaded.
	Pfp io.Reader
}

// Edit updates the viewer's own profile.
func (s *UserService) Edit(ctx context.Context, v *access.Viewer, username string, in ProfileInput) error {
	view, err := s.Get(ctx, v, username)
	if err != nil {
		return err
	}
	if !view.Flags.Editable {
		return apperr.ErrEditUserDenied
	}

	name, err := fields.ParseName(in.Name)
	if err != nil {
		return apperr.ErrInvalidName
	}
	description, err := fields.ParseUserDescription(in.Description)
	if err != nil {
		return apperr.ErrInvalidDescription
	}

	upd := store.ProfileUpdate{Name: string(name), Description: string(description)}
	if in.Pfp != nil {
		pfp, mini, err := s.images.SaveProfilePicture(ctx, in.Pfp)
		if errors.Is(err, ErrInvalidImage) {
			return apperr.ErrInvalidPfp.Wrap(err)
		}
		if err != nil {
			return apperr.Server(err)
		}
		upd.Pfp, upd.MiniPfp = pfp, mini
	}

	if err := s.store.UpdateProfile(ctx, view.User.ID, upd); err != nil {
		return apperr.Server(err)
	}
	return nil
}

type AdminInput struct {
	Role             string
	ResetName        bool
	ResetDescription bool
	ResetPfp         bool
}

// Admin changes another user's role and optionally clears profile fields.
// Admin accounts cannot be targeted and nobody can be made Admin or
// Unverified this way.
func (s *UserService) Admin(ctx context.Context, v *access.Viewer, username string, in AdminInput) error {
	view, err := s.Get(ctx, v, username)
	if err != nil {
		return err
	}
	if !view.Flags.Adminable {
		return apperr.ErrAdminUserDenied
	}

	role, ok := models.ParseRole(in.Role)
	if !ok || !role.Assignable() {
		return apperr.ErrInvalidRole
	}

	rows, err := s.store.ApplyAdminUpdate(ctx, view.User.ID, store.AdminUpdate{
		Role:             role,
		ResetName:        in.ResetName,
		ResetDescription: in.ResetDescription,
		ResetPfp:         in.ResetPfp,
	})
	if err != nil {
		return apperr.Server(err)
	}
	if rows == 0 {
		return apperr.ErrAdminUserDenied
	}

	s.log.Infow("User administered", "target_id", view.User.ID, "admin_id", v.ID, "role", role)
	return nil
}
