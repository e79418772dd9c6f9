package user

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/Autonom664/hr-performance-dstchemicals/internal/auth"
	userDatamodel "github.com/Autonom664/hr-performance-dstchemicals/internal/core/datamodel/user"
)

type User struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	Department         string    `json:"department"`
	ManagerEmail       *string   `json:"manager_email"`
	Roles              []string  `json:"roles"`
	IsActive           bool      `json:"is_active"`
	PasswordHash       string    `json:"-"`
	MustChangePassword bool      `json:"must_change_password"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("user already exists")
)

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.HasRole(auth.RoleAdmin)
}

// GrantRole adds a role if missing and reports whether anything changed.
func (u *User) GrantRole(role string) bool {
	if u.HasRole(role) {
		return false
	}
	u.Roles = append(u.Roles, role)
	sortRoles(u.Roles)
	return true
}

// NormalizeRoles guarantees the employee baseline role and a stable order.
func (u *User) NormalizeRoles() {
	if !u.HasRole(auth.RoleEmployee) {
		u.Roles = append(u.Roles, auth.RoleEmployee)
	}
	sortRoles(u.Roles)
}

// sortRoles keeps employee first, then manager, then admin.
func sortRoles(roles []string) {
	rank := map[string]int{auth.RoleEmployee: 0, auth.RoleManager: 1, auth.RoleAdmin: 2}
	sort.SliceStable(roles, func(i, j int) bool {
		return rank[roles[i]] < rank[roles[j]]
	})
}

func (u *User) ToAuthUser() *auth.User {
	return &auth.User{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		Department:         u.Department,
		ManagerEmail:       u.ManagerEmail,
		Roles:              u.Roles,
		IsActive:           u.IsActive,
		MustChangePassword: u.MustChangePassword,
	}
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		Department:         u.Department,
		ManagerEmail:       u.ManagerEmail,
		Roles:              strings.Join(u.Roles, ","),
		IsActive:           u.IsActive,
		PasswordHash:       u.PasswordHash,
		MustChangePassword: u.MustChangePassword,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func FromDataModel(m *userDatamodel.User) *User {
	roles := []string{}
	if m.Roles != "" {
		roles = strings.Split(m.Roles, ",")
	}
	return &User{
		ID:                 m.ID,
		Email:              m.Email,
		Name:               m.Name,
		Department:         m.Department,
		ManagerEmail:       m.ManagerEmail,
		Roles:              roles,
		IsActive:           m.IsActive,
		PasswordHash:       m.PasswordHash,
		MustChangePassword: m.MustChangePassword,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func FromDataModelSlice(models []*userDatamodel.User) []*User {
	result := make([]*User, len(models))
	for i, m := range models {
		result[i] = FromDataModel(m)
	}
	return result
}
