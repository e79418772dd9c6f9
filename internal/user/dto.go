package user

import (
	"net/mail"
	"strings"

	"github.com/Autonom664/hr-performance-dstchemicals/internal/auth"
)

type CreateUserDTO struct {
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	Department   string   `json:"department"`
	ManagerEmail *string  `json:"manager_email"`
	Roles        []string `json:"roles"`
	Password     string   `json:"password"`
}

type UpdateUserDTO struct {
	Name         *string  `json:"name"`
	Department   *string  `json:"department"`
	ManagerEmail *string  `json:"manager_email"`
	Roles        []string `json:"roles"`
	IsActive     *bool    `json:"is_active"`
}

// ImportItem is one row of a bulk user import, JSON or CSV sourced.
// The admin flag is carried explicitly; the manager role is always
// derived from the manager graph after the batch.
type ImportItem struct {
	EmployeeEmail string `json:"employee_email"`
	EmployeeName  string `json:"employee_name"`
	Department    string `json:"department"`
	ManagerEmail  string `json:"manager_email"`
	IsAdmin       bool   `json:"is_admin"`
}

type ImportError struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

type ImportResult struct {
	Imported       int           `json:"imported"`
	Updated        int           `json:"updated"`
	Errors         []ImportError `json:"errors"`
	CredentialsCSV string        `json:"credentials_csv,omitempty"`
}

// Credential pairs an email with a freshly generated one-time password.
type Credential struct {
	Email           string `json:"email"`
	OneTimePassword string `json:"one_time_password"`
}

type ResetPasswordResponse struct {
	Email           string `json:"email"`
	OneTimePassword string `json:"one_time_password"`
	SessionsRevoked int64  `json:"sessions_revoked"`
}

type ResetAllPasswordsResponse struct {
	Reset          int    `json:"reset"`
	CredentialsCSV string `json:"credentials_csv"`
}

type DeleteUserResponse struct {
	Email                string `json:"email"`
	ConversationsDeleted int64  `json:"conversations_deleted"`
	SessionsRevoked      int64  `json:"sessions_revoked"`
}

type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string {
	return e.Msg
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func validRoles(roles []string) bool {
	for _, r := range roles {
		switch r {
		case auth.RoleEmployee, auth.RoleManager, auth.RoleAdmin:
		default:
			return false
		}
	}
	return true
}

func (d CreateUserDTO) Validate() error {
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	if !validEmail(auth.NormalizeEmail(d.Email)) {
		return ValidationError{Msg: "email is not a valid address"}
	}
	if strings.TrimSpace(d.Name) == "" {
		return ValidationError{Msg: "name is required"}
	}
	if !validRoles(d.Roles) {
		return ValidationError{Msg: "roles must be one of employee, manager, admin"}
	}
	return nil
}

func (d UpdateUserDTO) Validate() error {
	if d.Name != nil && strings.TrimSpace(*d.Name) == "" {
		return ValidationError{Msg: "name cannot be empty"}
	}
	if d.ManagerEmail != nil && *d.ManagerEmail != "" && !validEmail(auth.NormalizeEmail(*d.ManagerEmail)) {
		return ValidationError{Msg: "manager_email is not a valid address"}
	}
	if !validRoles(d.Roles) {
		return ValidationError{Msg: "roles must be one of employee, manager, admin"}
	}
	return nil
}

func (i ImportItem) Validate() error {
	if i.EmployeeEmail == "" {
		return ValidationError{Msg: "employee_email is required"}
	}
	if !validEmail(auth.NormalizeEmail(i.EmployeeEmail)) {
		return ValidationError{Msg: "employee_email is not a valid address"}
	}
	if strings.TrimSpace(i.EmployeeName) == "" {
		return ValidationError{Msg: "employee_name is required"}
	}
	return nil
}
