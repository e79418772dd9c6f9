package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrUnknownUser is returned by Directory implementations when no identity
// exists for an email.
var ErrUnknownUser = errors.New("user not found")

// Role names. Every user carries at least RoleEmployee; RoleManager is
// derived from the manager graph, never asserted directly.
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

// User is the authenticated principal attached to the request context.
type User struct {
	ID                 string   `json:"id"`
	Email              string   `json:"email"`
	Name               string   `json:"name"`
	Department         string   `json:"department"`
	ManagerEmail       *string  `json:"manager_email"`
	Roles              []string `json:"roles"`
	IsActive           bool     `json:"is_active"`
	MustChangePassword bool     `json:"must_change_password"`
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

func (u *User) IsManager() bool {
	return u.HasRole(RoleManager) || u.HasRole(RoleAdmin)
}

// Session is one opaque bearer session. Possession of the token is
// authentication; validity is purely now < ExpiresAt.
type Session struct {
	ID        string
	UserEmail string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionStore persists sessions. Implementations: GORM (postgres) and Redis.
type SessionStore interface {
	Create(ctx context.Context, session *Session) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteAllForUser(ctx context.Context, userEmail string) (int64, error)
}

// Directory resolves identities for authentication. Implemented by the user
// repository; kept narrow so auth never sees write operations on identities.
type Directory interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetCredentials(ctx context.Context, email string) (passwordHash string, err error)
	SetCredentials(ctx context.Context, email, passwordHash string, mustChange bool) error
}

type ctxKey string

const ContextUserKey ctxKey = "authUser"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

// NormalizeEmail lowercases and trims an address; email is the primary
// lookup key everywhere, so normalization happens at every boundary.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GenerateSessionToken returns a 256-bit random token, URL-safe encoded.
func GenerateSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
