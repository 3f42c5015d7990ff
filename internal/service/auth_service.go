package service

import (
	"context"
	"errors"
	"strings"

	"schedly/internal/domain"
	"schedly/internal/models"

	"github.com/rs/zerolog"
)

// ErrUnexpectedResponse is returned when signup or login succeeds without a
// usable user record.
var ErrUnexpectedResponse = errors.New("Unexpected response from server.")

// Session is the caller's view of who is logged in. The backend cookie is
// the authority; a Session is only a snapshot of it.
type Session struct {
	User *models.User
}

func (s Session) Authenticated() bool {
	return s.User != nil && s.User.ID != ""
}

func (s Session) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}

type AuthService struct {
	auth   domain.AuthGateway
	logger *zerolog.Logger
}

func NewAuthService(auth domain.AuthGateway, logger *zerolog.Logger) *AuthService {
	return &AuthService{auth: auth, logger: logger}
}

func credentials(email, password string) (string, string, error) {
	email = models.NormalizeEmail(email)
	password = strings.TrimSpace(password)
	if email == "" {
		return "", "", invalid("email", "Email is required.")
	}
	if password == "" {
		return "", "", invalid("password", "Password is required.")
	}
	return email, password, nil
}

func (s *AuthService) Signup(ctx context.Context, email, password string) (Session, error) {
	email, password, err := credentials(email, password)
	if err != nil {
		return Session{}, err
	}
	user, err := s.auth.Signup(ctx, email, password)
	return s.session(user, err, "signup")
}

func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	email, password, err := credentials(email, password)
	if err != nil {
		return Session{}, err
	}
	user, err := s.auth.Login(ctx, email, password)
	return s.session(user, err, "login")
}

func (s *AuthService) session(user *models.User, err error, op string) (Session, error) {
	if err != nil {
		return Session{}, err
	}
	if user == nil || user.ID == "" {
		s.logger.Warn().Str("op", op).Msg("auth response without user id")
		return Session{}, ErrUnexpectedResponse
	}
	user.Password = ""
	s.logger.Info().Str("user_id", user.ID).Str("op", op).Msg("session started")
	return Session{User: user}, nil
}

// Current asks the backend who the session belongs to.
func (s *AuthService) Current(ctx context.Context) Session {
	return Session{User: s.auth.CurrentUser(ctx)}
}

// UpdateSettings saves the PayPal handle and, when newPassword is set, the
// password. The handle is always sent so it can be cleared; a nil
// paypalHandle keeps the current one.
func (s *AuthService) UpdateSettings(ctx context.Context, paypalHandle *string, newPassword, confirm string) (*models.User, error) {
	if newPassword != "" && newPassword != confirm {
		return nil, invalid("password", "Passwords do not match.")
	}

	var handle string
	if paypalHandle != nil {
		handle = strings.TrimSpace(*paypalHandle)
	} else {
		user := s.auth.CurrentUser(ctx)
		if user == nil {
			return nil, invalid("session", "You must be logged in.")
		}
		handle = user.PayPalHandle
	}

	update := models.ProfileUpdate{PayPalHandle: &handle}
	if newPassword != "" {
		update.Password = newPassword
	}
	return s.auth.UpdateProfile(ctx, update)
}

func (s *AuthService) Logout(ctx context.Context) {
	s.auth.Logout(ctx)
}
