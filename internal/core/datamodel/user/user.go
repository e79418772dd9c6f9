package user

import "time"

// User is the persistence model for identity records. Roles are stored as a
// comma-joined list; the domain layer owns the set semantics.
type User struct {
	ID                 string    `gorm:"primaryKey;column:id"`
	Email              string    `gorm:"column:email;uniqueIndex;not null"`
	Name               string    `gorm:"column:name"`
	Department         string    `gorm:"column:department"`
	ManagerEmail       *string   `gorm:"column:manager_email"`
	Roles              string    `gorm:"column:roles;not null;default:employee"`
	IsActive           bool      `gorm:"column:is_active;default:true"`
	PasswordHash       string    `gorm:"column:password_hash"`
	MustChangePassword bool      `gorm:"column:must_change_password;default:false"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}
