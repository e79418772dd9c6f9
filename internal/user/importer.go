package user

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Autonom664/hr-performance-dstchemicals/internal"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/auth"
)

// GenerateOneTimePassword returns a random url-safe password for
// freshly imported or reset accounts.
func GenerateOneTimePassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Import upserts every row keyed on normalized email. New accounts get
// a generated one-time password; existing accounts keep their
// credentials and only non-empty fields are merged in. A second pass
// promotes referenced managers, so rows may arrive in any order.
func (s *Service) Import(ctx context.Context, items []ImportItem) (*ImportResult, error) {
	result := &ImportResult{Errors: []ImportError{}}
	credentials := []Credential{}

	for _, item := range items {
		if err := item.Validate(); err != nil {
			result.Errors = append(result.Errors, ImportError{Email: item.EmployeeEmail, Error: err.Error()})
			continue
		}

		email := auth.NormalizeEmail(item.EmployeeEmail)
		existing, err := s.repo.GetByEmail(ctx, email)
		if err != nil {
			result.Errors = append(result.Errors, ImportError{Email: email, Error: err.Error()})
			continue
		}

		if existing == nil {
			otp, err := s.importCreate(ctx, email, item)
			if err != nil {
				result.Errors = append(result.Errors, ImportError{Email: email, Error: err.Error()})
				continue
			}
			credentials = append(credentials, Credential{Email: email, OneTimePassword: otp})
			result.Imported++
		} else {
			if err := s.importMerge(ctx, existing, item); err != nil {
				result.Errors = append(result.Errors, ImportError{Email: email, Error: err.Error()})
				continue
			}
			result.Updated++
		}
	}

	if err := s.PromoteManagers(ctx); err != nil {
		return nil, err
	}

	if len(credentials) > 0 {
		csvData, err := BuildCredentialsCSV(credentials)
		if err != nil {
			return nil, internal.NewInternalError("failed to build credentials csv", err)
		}
		result.CredentialsCSV = csvData
	}

	s.logger.Info("user import finished",
		"imported", result.Imported,
		"updated", result.Updated,
		"errors", len(result.Errors))
	return result, nil
}

func (s *Service) importCreate(ctx context.Context, email string, item ImportItem) (string, error) {
	otp, err := GenerateOneTimePassword()
	if err != nil {
		return "", err
	}
	hash, err := auth.HashPassword(otp, s.bcryptCost)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	u := &User{
		ID:                 uuid.New().String(),
		Email:              email,
		Name:               strings.TrimSpace(item.EmployeeName),
		Department:         strings.TrimSpace(item.Department),
		IsActive:           true,
		PasswordHash:       hash,
		MustChangePassword: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if item.IsAdmin {
		u.Roles = []string{auth.RoleAdmin}
	}
	if m := auth.NormalizeEmail(item.ManagerEmail); m != "" {
		u.ManagerEmail = &m
	}
	u.NormalizeRoles()

	if err := s.repo.Create(ctx, u); err != nil {
		return "", err
	}
	return otp, nil
}

// importMerge overwrites only fields the row actually carries; empty
// cells leave the stored value alone. The admin flag grants, never
// revokes.
func (s *Service) importMerge(ctx context.Context, u *User, item ImportItem) error {
	if name := strings.TrimSpace(item.EmployeeName); name != "" {
		u.Name = name
	}
	if dept := strings.TrimSpace(item.Department); dept != "" {
		u.Department = dept
	}
	if m := auth.NormalizeEmail(item.ManagerEmail); m != "" {
		u.ManagerEmail = &m
	}
	if item.IsAdmin {
		u.GrantRole(auth.RoleAdmin)
	}
	u.NormalizeRoles()
	u.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, u)
}

// ParseImportCSV reads rows with an
// employee_email,employee_name,department,manager_email,is_admin
// header. Column order does not matter; unknown columns are ignored.
func ParseImportCSV(r io.Reader) ([]ImportItem, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ValidationError{Msg: "csv file is empty"}
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	if _, ok := index["employee_email"]; !ok {
		return nil, ValidationError{Msg: "csv header must contain an employee_email column"}
	}

	cell := func(record []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var items []ImportItem
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}
		items = append(items, ImportItem{
			EmployeeEmail: cell(record, "employee_email"),
			EmployeeName:  cell(record, "employee_name"),
			Department:    cell(record, "department"),
			ManagerEmail:  cell(record, "manager_email"),
			IsAdmin:       truthyCell(cell(record, "is_admin")),
		})
	}
	return items, nil
}

func truthyCell(raw string) bool {
	switch strings.ToLower(raw) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// BuildCredentialsCSV renders email/one_time_password pairs for the
// admin to distribute out of band.
func BuildCredentialsCSV(credentials []Credential) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write([]string{"email", "one_time_password"}); err != nil {
		return "", err
	}
	for _, c := range credentials {
		if err := w.Write([]string{c.Email, c.OneTimePassword}); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
