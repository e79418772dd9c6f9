package auth

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordDTO carries a self-service password change.
type ChangePasswordDTO struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// LoginResponse is returned on successful authentication. The token is also
// set as an HttpOnly cookie for browser clients.
type LoginResponse struct {
	Token              string `json:"token"`
	User               *User  `json:"user"`
	MustChangePassword bool   `json:"must_change_password"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// Validate checks required fields and returns a ValidationError on failure.
func (d LoginDTO) Validate() error {
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

func (d ChangePasswordDTO) Validate() error {
	if d.CurrentPassword == "" {
		return ValidationError{Msg: "current_password is required"}
	}
	if d.NewPassword == "" {
		return ValidationError{Msg: "new_password is required"}
	}
	return nil
}
