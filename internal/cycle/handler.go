package cycle

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/Autonom664/hr-performance-dstchemicals/internal"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateCycleDTO) (*Cycle, error)
	List(ctx context.Context) ([]*Cycle, error)
	GetByID(ctx context.Context, id string) (*Cycle, error)
	GetActive(ctx context.Context) (*Cycle, error)
	SetStatus(ctx context.Context, id, status string) (*Cycle, error)
	Delete(ctx context.Context, id string) (*DeleteCycleResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	cycleService ServiceAPI
}

func NewHandler(cycleService ServiceAPI, lg *slog.Logger) *Handler {
	return &Handler{
		BaseHandler:  transport.NewBaseHandler(lg),
		cycleService: cycleService,
	}
}

// CreateCycle godoc
// @Summary Create a review cycle in draft status
// @Tags admin
// @Accept json
// @Produce json
// @Success 201 {object} Cycle
// @Router /admin/cycles [post]
func (h *Handler) CreateCycle(w http.ResponseWriter, r *http.Request) {
	var dto CreateCycleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.cycleService.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}

// ListCycles godoc
// @Summary List all review cycles
// @Tags admin
// @Produce json
// @Success 200 {array} Cycle
// @Router /admin/cycles [get]
func (h *Handler) ListCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.cycleService.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, cycles)
}

// UpdateCycleStatus godoc
// @Summary Change a review cycle's status
// @Tags admin
// @Produce json
// @Param status query string true "target status"
// @Success 200 {object} Cycle
// @Router /admin/cycles/{id} [patch]
func (h *Handler) UpdateCycleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status := r.URL.Query().Get("status")
	if status == "" {
		h.WriteError(w, http.StatusBadRequest, "status query parameter is required")
		return
	}

	updated, err := h.cycleService.SetStatus(r.Context(), id, status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

// DeleteCycle godoc
// @Summary Delete a review cycle and its conversations
// @Tags admin
// @Produce json
// @Success 200 {object} DeleteCycleResponse
// @Router /admin/cycles/{id} [delete]
func (h *Handler) DeleteCycle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.cycleService.Delete(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

// GetActiveCycle godoc
// @Summary Get the currently active review cycle, or null when none is active
// @Tags cycles
// @Produce json
// @Success 200 {object} Cycle
// @Router /cycles/active [get]
func (h *Handler) GetActiveCycle(w http.ResponseWriter, r *http.Request) {
	active, err := h.cycleService.GetActive(r.Context())
	if errors.Is(err, internal.ErrNoActiveCycle) {
		// Clients poll this between cycles; no active cycle is a
		// normal state, not an error.
		h.WriteJSON(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, active)
}

// ListAllCycles godoc
// @Summary List every review cycle for signed-in users
// @Tags cycles
// @Produce json
// @Success 200 {array} Cycle
// @Router /cycles/all [get]
func (h *Handler) ListAllCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.cycleService.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, cycles)
}
