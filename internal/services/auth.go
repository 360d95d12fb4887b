package services

import (
	"context"
	"errors"
	"time"

	"neor/internal/access"
	"neor/internal/apperr"
	"neor/internal/fields"
	"neor/internal/logger"
	"neor/internal/models"
	"neor/internal/store"
	"neor/internal/utils"
)

type AuthService struct {
	store  *store.Store
	mailer Mailer
	domain string
	log    *logger.Logger
	now    func() time.Time
}

func NewAuthService(s *store.Store, mailer Mailer, domain string, log *logger.Logger) *AuthService {
	return &AuthService{
		store:  s,
		mailer: mailer,
		domain: domain,
		log:    log.WithComponent("auth"),
		now:    time.Now,
	}
}

type SignUpInput struct {
	Username       string
	Email          string
	Password       string
	PasswordRepeat string
}

// SignUp creates an unverified account and mails its verification code.
// Nothing is stored if the mail cannot be sent.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) error {
	username, err := fields.ParseUsername(in.Username)
	if err != nil {
		return apperr.ErrInvalidUsername
	}
	email, err := fields.ParseEmail(in.Email)
	if err != nil {
		return apperr.ErrInvalidEmail
	}
	password, err := fields.ParsePassword(in.Password)
	if err != nil {
		return apperr.ErrInvalidPassword
	}
	repeat, err := fields.ParsePassword(in.PasswordRepeat)
	if err != nil {
		return apperr.ErrInvalidPassword
	}
	pair, err := fields.ParsePasswordPair(password, repeat)
	if err != nil {
		return apperr.ErrPasswordsMismatch
	}

	if taken, err := s.store.UsernameTaken(ctx, string(username)); err != nil {
		return apperr.Server(err)
	} else if taken {
		return apperr.ErrUsernameTaken
	}
	if taken, err := s.store.EmailTaken(ctx, string(email)); err != nil {
		return apperr.Server(err)
	} else if taken {
		return apperr.ErrEmailTaken
	}

	hash, err := utils.HashPassword(string(pair.Password()))
	if err != nil {
		return apperr.ErrHashPassword.Wrap(err)
	}

	session, err := NewSessionToken(ctx, s.store.SessionInUse)
	if err != nil {
		return apperr.Server(err)
	}
	code, err := NewCode(ctx, s.store.CodeInUse)
	if err != nil {
		return apperr.Server(err)
	}

	body, err := renderEmail("verification", map[string]string{"Code": code, "Domain": s.domain})
	if err != nil {
		return apperr.Server(err)
	}
	if err := s.mailer.Send(ctx, string(email), "neor registration", body); err != nil {
		return apperr.ErrSendEmail.Wrap(err)
	}

	user := models.User{
		Username: string(username),
		Email:    string(email),
		Password: hash,
		Role:     models.DefaultRole,
		Session:  session,
		Code:     &code,
		JoinedAt: s.now(),
	}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// Lost a race with a concurrent sign-up.
			return apperr.ErrUsernameTaken.Wrap(err)
		}
		return apperr.Server(err)
	}

	s.log.Infow("User signed up", "user_id", user.ID, "username", user.Username)
	return nil
}

// VerifyEmail turns the unverified holder of code into a Member.
func (s *AuthService) VerifyEmail(ctx context.Context, rawCode string) error {
	code, err := fields.ParseCode(rawCode)
	if err != nil {
		return apperr.ErrInvalidCode
	}

	rows, err := s.store.VerifyEmail(ctx, string(code))
	if err != nil {
		return apperr.Server(err)
	}
	if rows != 1 {
		return apperr.ErrInvalidCode
	}
	return nil
}

// SignIn returns the session token of the account.
func (s *AuthService) SignIn(ctx context.Context, rawEmail, rawPassword string) (string, error) {
	email, err := fields.ParseEmail(rawEmail)
	if err != nil {
		return "", apperr.ErrInvalidCredentials
	}
	password, err := fields.ParsePassword(rawPassword)
	if err != nil {
		return "", apperr.ErrInvalidCredentials
	}

	user, err := s.store.UserByEmail(ctx, string(email))
	if errors.Is(err, store.ErrNotFound) {
		return "", apperr.ErrInvalidCredentials
	}
	if err != nil {
		return "", apperr.Server(err)
	}

	if !utils.CheckPasswordHash(string(password), user.Password) {
		return "", apperr.ErrInvalidCredentials
	}
	return user.Session, nil
}

// SignOut rotates the viewer's session token, which invalidates every
// cookie holding the old one.
func (s *AuthService) SignOut(ctx context.Context, v *access.Viewer) error {
	if v == nil {
		return apperr.ErrSignInRequired
	}

	token, err := NewSessionToken(ctx, s.store.SessionInUse)
	if err != nil {
		return apperr.Server(err)
	}
	if err := s.store.SetSession(ctx, v.ID, token); err != nil {
		return apperr.Server(err)
	}
	return nil
}

// Authenticate resolves a session token. An unknown token is not an error:
// the request is simply anonymous.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	user, err := s.store.UserBySession(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !user.Role.Valid() {
		return nil, nil
	}
	return user, nil
}

// RequestPasswordReset stores a fresh code on the account and mails it.
func (s *AuthService) RequestPasswordReset(ctx context.Context, rawEmail string) error {
	email, err := fields.ParseEmail(rawEmail)
	if err != nil {
		return apperr.ErrInvalidEmail
	}

	code, err := NewCode(ctx, s.store.CodeInUse)
	if err != nil {
		return apperr.Server(err)
	}

	rows, err := s.store.SetCodeByEmail(ctx, string(email), code)
	if err != nil {
		return apperr.Server(err)
	}
	if rows == 0 {
		return apperr.ErrEmailNotFound
	}

	body, err := renderEmail("reset", map[string]string{"Code": code, "Domain": s.domain})
	if err != nil {
		return apperr.Server(err)
	}
	if err := s.mailer.Send(ctx, string(email), "neor password reset", body); err != nil {
		return apperr.ErrSendEmail.Wrap(err)
	}
	return nil
}

type PasswordChangeInput struct {
	Code           string
	Password       string
	PasswordRepeat string
}

// ChangePassword consumes a reset code and sets the new password.
func (s *AuthService) ChangePassword(ctx context.Context, in PasswordChangeInput) error {
	code, err := fields.ParseCode(in.Code)
	if err != nil {
		return apperr.ErrInvalidCode
	}
	password, err := fields.ParsePassword(in.Password)
	if err != nil {
		return apperr.ErrInvalidPassword
	}
	repeat, err := fields.ParsePassword(in.PasswordRepeat)
	if err != nil {
		return apperr.ErrInvalidPassword
	}
	pair, err := fields.ParsePasswordPair(password, repeat)
	if err != nil {
		return apperr.ErrPasswordsMismatch
	}

	hash, err := utils.HashPassword(string(pair.Password()))
	if err != nil {
		return apperr.ErrHashPassword.Wrap(err)
	}

	user, err := s.store.ChangePasswordByCode(ctx, string(code), hash)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.ErrInvalidCode
	}
	if err != nil {
		return apperr.Server(err)
	}

	body, err := renderEmail("changed", map[string]string{"Domain": s.domain})
	if err == nil {
		err = s.mailer.Send(ctx, user.Email, "neor password changed", body)
	}
	if err != nil {
		// The password is already changed; the notice is best effort.
		s.log.Warnw("Password change notice not sent", "user_id", user.ID, "error", err)
	}
	return nil
}
