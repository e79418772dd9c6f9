package session

import "time"

// Session is the persistence model for opaque bearer sessions. The token is
// the sole capability needed to act as the user.
type Session struct {
	ID        string    `gorm:"primaryKey;column:id"`
	UserEmail string    `gorm:"column:user_email;not null;index"`
	Token     string    `gorm:"column:token;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (Session) TableName() string {
	return "sessions"
}
