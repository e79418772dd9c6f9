package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/Autonom664/hr-performance-dstchemicals/internal/auth"
	sessionDatamodel "github.com/Autonom664/hr-performance-dstchemicals/internal/core/datamodel/session"
)

// SessionRepository implements auth.SessionStore on the sessions table.
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *auth.Session) error {
	row := &sessionDatamodel.Session{
		ID:        s.ID,
		UserEmail: s.UserEmail,
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*auth.Session, error) {
	var row sessionDatamodel.Session
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &auth.Session{
		ID:        row.ID,
		UserEmail: row.UserEmail,
		Token:     row.Token,
		ExpiresAt: row.ExpiresAt,
		CreatedAt: row.CreatedAt,
	}, nil
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&sessionDatamodel.Session{}).Error
}

func (r *SessionRepository) DeleteAllForUser(ctx context.Context, userEmail string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_email = ?", userEmail).Delete(&sessionDatamodel.Session{})
	return res.RowsAffected, res.Error
}
