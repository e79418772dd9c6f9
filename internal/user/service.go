package user

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Autonom664/hr-performance-dstchemicals/internal"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/auth"
)

type Repository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, email string) error
}

// ConversationPurger removes every conversation an account appears in,
// whether as employee or as snapshotted manager.
type ConversationPurger interface {
	DeleteForUser(ctx context.Context, email string) (int64, error)
}

type Service struct {
	repo          Repository
	sessions      auth.SessionStore
	conversations ConversationPurger
	bcryptCost    int
	logger        *slog.Logger
}

func NewService(repo Repository, sessions auth.SessionStore, conversations ConversationPurger, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:          repo,
		sessions:      sessions,
		conversations: conversations,
		bcryptCost:    bcryptCost,
		logger:        logger,
	}
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, auth.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	email := auth.NormalizeEmail(dto.Email)
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, internal.ErrUserExists
	}

	now := time.Now().UTC()
	u := &User{
		ID:         uuid.New().String(),
		Email:      email,
		Name:       dto.Name,
		Department: dto.Department,
		Roles:      dto.Roles,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if dto.ManagerEmail != nil && *dto.ManagerEmail != "" {
		normalized := auth.NormalizeEmail(*dto.ManagerEmail)
		u.ManagerEmail = &normalized
	}
	u.NormalizeRoles()

	if dto.Password != "" {
		hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		u.PasswordHash = hash
	} else {
		otp, err := GenerateOneTimePassword()
		if err != nil {
			return nil, internal.NewInternalError("failed to generate password", err)
		}
		hash, err := auth.HashPassword(otp, s.bcryptCost)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		u.PasswordHash = hash
		u.MustChangePassword = true
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, internal.ErrUserExists
		}
		return nil, err
	}
	if err := s.PromoteManagers(ctx); err != nil {
		s.logger.Warn("manager role promotion after create failed", "error", err)
	}

	s.logger.Info("user created", "email", u.Email, "roles", u.Roles)
	return u, nil
}

func (s *Service) Update(ctx context.Context, email string, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		u.Name = *dto.Name
	}
	if dto.Department != nil {
		u.Department = *dto.Department
	}
	if dto.ManagerEmail != nil {
		if *dto.ManagerEmail == "" {
			u.ManagerEmail = nil
		} else {
			normalized := auth.NormalizeEmail(*dto.ManagerEmail)
			u.ManagerEmail = &normalized
		}
	}
	if dto.Roles != nil {
		u.Roles = dto.Roles
		u.NormalizeRoles()
	}
	if dto.IsActive != nil {
		u.IsActive = *dto.IsActive
	}
	u.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	if err := s.PromoteManagers(ctx); err != nil {
		s.logger.Warn("manager role promotion after update failed", "error", err)
	}

	// A deactivated account must not keep live sessions.
	if dto.IsActive != nil && !*dto.IsActive {
		if _, err := s.sessions.DeleteAllForUser(ctx, u.Email); err != nil {
			s.logger.Warn("failed to revoke sessions for deactivated user", "email", u.Email, "error", err)
		}
	}

	return u, nil
}

// Delete removes the account together with its conversations (as employee
// or as manager) and any live sessions.
func (s *Service) Delete(ctx context.Context, email string) (*DeleteUserResponse, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	conversationsDeleted, err := s.conversations.DeleteForUser(ctx, u.Email)
	if err != nil {
		return nil, err
	}
	sessionsRevoked, err := s.sessions.DeleteAllForUser(ctx, u.Email)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, u.Email); err != nil {
		return nil, err
	}

	s.logger.Info("user deleted",
		"email", u.Email,
		"conversations_deleted", conversationsDeleted,
		"sessions_revoked", sessionsRevoked)

	return &DeleteUserResponse{
		Email:                u.Email,
		ConversationsDeleted: conversationsDeleted,
		SessionsRevoked:      sessionsRevoked,
	}, nil
}

// PromoteManagers grants the manager role to every user referenced as
// someone's manager. Promotion is monotonic: roles are only ever added.
func (s *Service) PromoteManagers(ctx context.Context) error {
	users, err := s.repo.List(ctx)
	if err != nil {
		return err
	}

	byEmail := make(map[string]*User, len(users))
	for _, u := range users {
		byEmail[u.Email] = u
	}

	for _, u := range users {
		if u.ManagerEmail == nil {
			continue
		}
		manager, ok := byEmail[*u.ManagerEmail]
		if !ok {
			continue
		}
		if manager.GrantRole(auth.RoleManager) {
			manager.UpdatedAt = time.Now().UTC()
			if err := s.repo.Update(ctx, manager); err != nil {
				return err
			}
			s.logger.Info("manager role granted", "email", manager.Email)
		}
	}
	return nil
}

// ResetPassword issues a one-time password for the account and revokes
// all of its sessions.
func (s *Service) ResetPassword(ctx context.Context, email string) (*ResetPasswordResponse, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	otp, err := s.resetCredentials(ctx, u)
	if err != nil {
		return nil, err
	}
	revoked, err := s.sessions.DeleteAllForUser(ctx, u.Email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("password reset", "email", u.Email, "sessions_revoked", revoked)
	return &ResetPasswordResponse{
		Email:           u.Email,
		OneTimePassword: otp,
		SessionsRevoked: revoked,
	}, nil
}

// ResetAllPasswords issues one-time passwords for every active account
// and returns the credentials as a CSV artifact.
func (s *Service) ResetAllPasswords(ctx context.Context) (*ResetAllPasswordsResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	credentials := make([]Credential, 0, len(users))
	for _, u := range users {
		if !u.IsActive {
			continue
		}
		otp, err := s.resetCredentials(ctx, u)
		if err != nil {
			return nil, err
		}
		if _, err := s.sessions.DeleteAllForUser(ctx, u.Email); err != nil {
			s.logger.Warn("failed to revoke sessions during bulk reset", "email", u.Email, "error", err)
		}
		credentials = append(credentials, Credential{Email: u.Email, OneTimePassword: otp})
	}

	csv, err := BuildCredentialsCSV(credentials)
	if err != nil {
		return nil, internal.NewInternalError("failed to build credentials csv", err)
	}

	s.logger.Info("bulk password reset", "count", len(credentials))
	return &ResetAllPasswordsResponse{Reset: len(credentials), CredentialsCSV: csv}, nil
}

func (s *Service) resetCredentials(ctx context.Context, u *User) (string, error) {
	otp, err := GenerateOneTimePassword()
	if err != nil {
		return "", internal.NewInternalError("failed to generate password", err)
	}
	hash, err := auth.HashPassword(otp, s.bcryptCost)
	if err != nil {
		return "", internal.NewInternalError("failed to hash password", err)
	}
	u.PasswordHash = hash
	u.MustChangePassword = true
	u.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return "", err
	}
	return otp, nil
}
