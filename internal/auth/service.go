package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Autonom664/hr-performance-dstchemicals/internal"
)

// Service owns session lifecycle and credential verification.
type Service struct {
	sessions       SessionStore
	directory      Directory
	sessionTTL     time.Duration
	bcryptCost     int
	minPasswordLen int
	logger         *slog.Logger
}

func NewService(sessions SessionStore, directory Directory, sessionTTL time.Duration, bcryptCost, minPasswordLen int, logger *slog.Logger) *Service {
	if sessionTTL <= 0 {
		sessionTTL = internal.DefaultSessionTTL
	}
	return &Service{
		sessions:       sessions,
		directory:      directory,
		sessionTTL:     sessionTTL,
		bcryptCost:     bcryptCost,
		minPasswordLen: minPasswordLen,
		logger:         logger,
	}
}

// Login verifies credentials and opens a session. Bad credentials and
// unknown users are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	email := NormalizeEmail(dto.Email)

	user, err := s.directory.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Warn("login failed: unknown user", "email", email)
		return nil, internal.ErrInvalidCredentials
	}

	hash, err := s.directory.GetCredentials(ctx, email)
	if err != nil || hash == "" {
		s.logger.Warn("login failed: no credentials on file", "email", email)
		return nil, internal.ErrInvalidCredentials
	}

	if err := VerifyPassword(hash, dto.Password); err != nil {
		s.logger.Warn("login failed: password mismatch", "email", email)
		return nil, internal.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.logger.Warn("login rejected: inactive account", "email", email)
		return nil, internal.ErrUserInactive
	}

	session, err := s.CreateSession(ctx, email)
	if err != nil {
		return nil, internal.NewInternalError("failed to create session", err)
	}

	s.logger.Info("login successful", "email", email, "expires_at", session.ExpiresAt)

	return &LoginResponse{
		Token:              session.Token,
		User:               user,
		MustChangePassword: user.MustChangePassword,
	}, nil
}

// CreateSession opens a session for an already-authenticated user.
func (s *Service) CreateSession(ctx context.Context, userEmail string) (*Session, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	now := time.Now().UTC()
	session := &Session{
		ID:        uuid.NewString(),
		UserEmail: NormalizeEmail(userEmail),
		Token:     token,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return session, nil
}

// Resolve maps a bearer token to its user. Read-only: no sliding expiration.
// Valid only while the session is unexpired and the owner exists and is active.
func (s *Service) Resolve(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, internal.ErrSessionRequired
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil || session == nil {
		return nil, internal.ErrSessionRequired
	}

	if session.Expired(time.Now().UTC()) {
		return nil, internal.ErrSessionExpired
	}

	user, err := s.directory.GetByEmail(ctx, session.UserEmail)
	if err != nil {
		return nil, internal.ErrSessionRequired
	}
	if !user.IsActive {
		return nil, internal.ErrUserInactive
	}

	return user, nil
}

// Revoke deletes one session. Unknown tokens are not an error.
func (s *Service) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// RevokeAll deletes every session for a user; used on password reset so a
// stolen token dies with the old credential.
func (s *Service) RevokeAll(ctx context.Context, userEmail string) (int64, error) {
	return s.sessions.DeleteAllForUser(ctx, NormalizeEmail(userEmail))
}

// ChangePassword verifies the current credential, applies the new one and
// clears the must-change flag. The caller's current session stays valid.
func (s *Service) ChangePassword(ctx context.Context, user *User, dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if len(dto.NewPassword) < s.minPasswordLen {
		return internal.NewValidationError(
			fmt.Sprintf("new password must be at least %d characters", s.minPasswordLen),
			internal.ErrCodePasswordTooShort)
	}

	hash, err := s.directory.GetCredentials(ctx, user.Email)
	if err != nil {
		return internal.NewInternalError("failed to load credentials", err)
	}

	if err := VerifyPassword(hash, dto.CurrentPassword); err != nil {
		s.logger.Warn("password change rejected: current password mismatch", "email", user.Email)
		return internal.NewValidationError("current password is incorrect", internal.ErrCodeInvalidCredentials)
	}

	newHash, err := HashPassword(dto.NewPassword, s.bcryptCost)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}

	if err := s.directory.SetCredentials(ctx, user.Email, newHash, false); err != nil {
		return internal.NewInternalError("failed to store credentials", err)
	}

	s.logger.Info("password changed", "email", user.Email)
	return nil
}
