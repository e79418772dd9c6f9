package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Autonom664/hr-performance-dstchemicals/internal/auth"
)

// Directory implements auth.Directory with raw queries against the users
// table, so the auth package never depends on the user feature package.
type Directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	var (
		u     auth.User
		roles string
	)
	query := `SELECT id, email, name, department, manager_email, roles, is_active, must_change_password
	          FROM users WHERE email = ?`

	row := d.db.WithContext(ctx).Raw(query, auth.NormalizeEmail(email)).Row()
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Department, &u.ManagerEmail, &roles, &u.IsActive, &u.MustChangePassword); err != nil {
		if err == sql.ErrNoRows {
			return nil, auth.ErrUnknownUser
		}
		return nil, err
	}
	u.Roles = strings.Split(roles, ",")
	return &u, nil
}

func (d *Directory) GetCredentials(ctx context.Context, email string) (string, error) {
	var hash string
	row := d.db.WithContext(ctx).Raw(`SELECT password_hash FROM users WHERE email = ?`, auth.NormalizeEmail(email)).Row()
	if err := row.Scan(&hash); err != nil {
		if err == sql.ErrNoRows {
			return "", auth.ErrUnknownUser
		}
		return "", err
	}
	return hash, nil
}

func (d *Directory) SetCredentials(ctx context.Context, email, passwordHash string, mustChange bool) error {
	return d.db.WithContext(ctx).
		Exec(`UPDATE users SET password_hash = ?, must_change_password = ?, updated_at = ? WHERE email = ?`,
			passwordHash, mustChange, time.Now().UTC(), auth.NormalizeEmail(email)).Error
}
