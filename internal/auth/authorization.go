package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Autonom664/hr-performance-dstchemicals/internal"
)

// IsSelf reports whether the acting user is the employee in question.
func IsSelf(u *User, employeeEmail string) bool {
	return u.Email == NormalizeEmail(employeeEmail)
}

// IsDirectManager reports whether the acting user is the current manager of
// a user whose manager link is managerEmail. The link is live, not the
// snapshot stored on a conversation.
func IsDirectManager(u *User, managerEmail *string) bool {
	return managerEmail != nil && *managerEmail == u.Email
}

// Authorization provides role-gate middlewares. Relationship checks (is this
// my report?) live in the services, because they need the target record.
type Authorization struct {
	logger *slog.Logger
}

func NewAuthorization(logger *slog.Logger) *Authorization {
	return &Authorization{logger: logger}
}

// RequireAdmin gates admin-only routes. Role-gate failures are 403; they
// never depend on any resource, so nothing leaked.
func (a *Authorization) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				writeAppError(w, internal.ErrSessionRequired)
				return
			}

			if !user.IsAdmin() {
				a.logger.WarnContext(r.Context(), "access denied: admin role required", "email", user.Email)
				writeAppError(w, internal.ErrAccessDenied)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireManager gates manager-scoped routes; admins pass as well.
func (a *Authorization) RequireManager() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				writeAppError(w, internal.ErrSessionRequired)
				return
			}

			if !user.IsManager() {
				a.logger.WarnContext(r.Context(), "access denied: manager role required", "email", user.Email)
				writeAppError(w, internal.ErrAccessDenied)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAppError(w http.ResponseWriter, appErr *internal.AppError) {
	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
