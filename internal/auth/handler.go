package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Autonom664/hr-performance-dstchemicals/internal"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/transport"
	"github.com/Autonom664/hr-performance-dstchemicals/pkg/logger"
)

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error)
	Resolve(ctx context.Context, token string) (*User, error)
	Revoke(ctx context.Context, token string) error
	ChangePassword(ctx context.Context, user *User, dto ChangePasswordDTO) error
}

type Handler struct {
	*transport.BaseHandler
	Service      ServiceAPI
	sessionTTL   time.Duration
	cookieSecure bool
}

func NewHandler(svc ServiceAPI, sessionTTL time.Duration, cookieSecure bool) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	if sessionTTL <= 0 {
		sessionTTL = internal.DefaultSessionTTL
	}
	return &Handler{
		BaseHandler:  transport.NewBaseHandler(lg),
		Service:      svc,
		sessionTTL:   sessionTTL,
		cookieSecure: cookieSecure,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.Logger.Error("authentication failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.setSessionCookie(w, resp.Token)
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractToken(r)
	if token != "" {
		if err := h.Service.Revoke(r.Context(), token); err != nil {
			h.Logger.Error("failed to revoke session", "error", err)
		}
	}

	h.clearSessionCookie(w)
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ChangePasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.ChangePassword(r.Context(), user, dto); err != nil {
		h.Logger.Error("password change failed", "error", err, "email", user.Email)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

// AuthMiddleware resolves the session token and loads the user into context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractToken(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		user, err := h.Service.Resolve(r.Context(), token)
		if err != nil {
			h.Logger.Warn("session resolution failed", "error", err)
			h.WriteError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}

		ctx := ContextWithUser(r.Context(), user)
		ctx = logger.With(ctx, "email", user.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     transport.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.sessionTTL / time.Second),
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     transport.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
