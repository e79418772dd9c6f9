package user

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/Autonom664/hr-performance-dstchemicals/internal"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, dto CreateUserDTO) (*User, error)
	Update(ctx context.Context, email string, dto UpdateUserDTO) (*User, error)
	Delete(ctx context.Context, email string) (*DeleteUserResponse, error)
	Import(ctx context.Context, items []ImportItem) (*ImportResult, error)
	ResetPassword(ctx context.Context, email string) (*ResetPasswordResponse, error)
	ResetAllPasswords(ctx context.Context) (*ResetAllPasswordsResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	userService ServiceAPI
}

func NewHandler(userService ServiceAPI, lg *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		userService: userService,
	}
}

// ListUsers godoc
// @Summary List all user accounts
// @Tags admin
// @Produce json
// @Success 200 {array} User
// @Router /admin/users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, users)
}

// CreateUser godoc
// @Summary Create a user account
// @Tags admin
// @Accept json
// @Produce json
// @Success 201 {object} User
// @Router /admin/users [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var dto CreateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.userService.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}

// UpdateUser godoc
// @Summary Update a user account
// @Tags admin
// @Accept json
// @Produce json
// @Success 200 {object} User
// @Router /admin/users/{email} [patch]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	var dto UpdateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.userService.Update(r.Context(), email, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

// DeleteUser godoc
// @Summary Delete a user account and its conversations
// @Tags admin
// @Produce json
// @Success 200 {object} DeleteUserResponse
// @Router /admin/users/{email} [delete]
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	result, err := h.userService.Delete(r.Context(), email)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

// ImportUsers godoc
// @Summary Bulk import users from a JSON payload
// @Tags admin
// @Accept json
// @Produce json
// @Success 200 {object} ImportResult
// @Router /admin/users/import [post]
func (h *Handler) ImportUsers(w http.ResponseWriter, r *http.Request) {
	var items []ImportItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(items) == 0 {
		h.WriteError(w, http.StatusBadRequest, "import payload is empty")
		return
	}

	result, err := h.userService.Import(r.Context(), items)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

// ImportUsersCSV godoc
// @Summary Bulk import users from an uploaded CSV file
// @Tags admin
// @Accept mpfd
// @Produce json
// @Success 200 {object} ImportResult
// @Router /admin/users/import/csv [post]
func (h *Handler) ImportUsersCSV(w http.ResponseWriter, r *http.Request) {
	body, err := h.importCSVBody(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer body.Close()

	items, err := ParseImportCSV(body)
	if err != nil {
		h.HandleServiceError(w, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed))
		return
	}
	if len(items) == 0 {
		h.WriteError(w, http.StatusBadRequest, "csv file has no data rows")
		return
	}

	result, err := h.userService.Import(r.Context(), items)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

// importCSVBody accepts either a multipart upload under the "file"
// field or a raw text/csv request body.
func (h *Handler) importCSVBody(r *http.Request) (io.ReadCloser, error) {
	if err := r.ParseMultipartForm(10 << 20); err == nil {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, ValidationError{Msg: "multipart upload must carry a file field"}
		}
		return file, nil
	}
	return r.Body, nil
}

// ResetPassword godoc
// @Summary Issue a one-time password for an account
// @Tags admin
// @Produce json
// @Success 200 {object} ResetPasswordResponse
// @Router /admin/users/{email}/reset-password [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	result, err := h.userService.ResetPassword(r.Context(), email)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

// ResetAllPasswords godoc
// @Summary Issue one-time passwords for every active account
// @Tags admin
// @Produce json
// @Success 200 {object} ResetAllPasswordsResponse
// @Router /admin/users/reset-passwords [post]
func (h *Handler) ResetAllPasswords(w http.ResponseWriter, r *http.Request) {
	result, err := h.userService.ResetAllPasswords(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}
