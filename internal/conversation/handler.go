package conversation

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/Autonom664/hr-performance-dstchemicals/internal"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/auth"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/transport"
)

type ServiceAPI interface {
	GetMine(ctx context.Context, actor *auth.User) (*Conversation, error)
	UpdateMine(ctx context.Context, actor *auth.User, dto EmployeeUpdateDTO) (*Conversation, error)
	History(ctx context.Context, actor *auth.User) ([]*HistoryEntry, error)
	GetForReport(ctx context.Context, actor *auth.User, employeeEmail string) (*ReportConversationResponse, error)
	UpdateForReport(ctx context.Context, actor *auth.User, employeeEmail string, dto ManagerUpdateDTO) (*Conversation, error)
	HistoryForReport(ctx context.Context, actor *auth.User, employeeEmail string) ([]*HistoryEntry, error)
	Reports(ctx context.Context, actor *auth.User) ([]*ReportEntry, error)
	GetByID(ctx context.Context, actor *auth.User, id string) (*Conversation, error)
}

type Handler struct {
	*transport.BaseHandler
	conversationService ServiceAPI
}

func NewHandler(conversationService ServiceAPI, lg *slog.Logger) *Handler {
	return &Handler{
		BaseHandler:         transport.NewBaseHandler(lg),
		conversationService: conversationService,
	}
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.HandleServiceError(w, internal.ErrSessionRequired)
		return nil, false
	}
	return user, true
}

// GetMyConversation godoc
// @Summary Get (or lazily create) my conversation for the active cycle
// @Tags conversations
// @Produce json
// @Success 200 {object} Conversation
// @Router /conversations/me [get]
func (h *Handler) GetMyConversation(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	conv, err := h.conversationService.GetMine(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, conv)
}

// UpdateMyConversation godoc
// @Summary Update my conversation's employee sections
// @Tags conversations
// @Accept json
// @Produce json
// @Success 200 {object} Conversation
// @Router /conversations/me [put]
func (h *Handler) UpdateMyConversation(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto EmployeeUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conv, err := h.conversationService.UpdateMine(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, conv)
}

// GetMyHistory godoc
// @Summary List my conversations across all cycles
// @Tags conversations
// @Produce json
// @Success 200 {array} HistoryEntry
// @Router /conversations/me/history [get]
func (h *Handler) GetMyHistory(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	entries, err := h.conversationService.History(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, entries)
}

// GetConversation godoc
// @Summary Get a conversation by id
// @Tags conversations
// @Produce json
// @Success 200 {object} Conversation
// @Router /conversations/{id} [get]
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	conv, err := h.conversationService.GetByID(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, conv)
}

// GetReportConversation godoc
// @Summary Get (or lazily create) a direct report's conversation
// @Tags manager
// @Produce json
// @Success 200 {object} ReportConversationResponse
// @Router /manager/conversations/{employee_email} [get]
func (h *Handler) GetReportConversation(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	resp, err := h.conversationService.GetForReport(r.Context(), actor, chi.URLParam(r, "employee_email"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// UpdateReportConversation godoc
// @Summary Update a direct report's conversation (manager sections)
// @Tags manager
// @Accept json
// @Produce json
// @Success 200 {object} Conversation
// @Router /manager/conversations/{employee_email} [put]
func (h *Handler) UpdateReportConversation(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto ManagerUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conv, err := h.conversationService.UpdateForReport(r.Context(), actor, chi.URLParam(r, "employee_email"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, conv)
}

// GetReports godoc
// @Summary List my direct reports with their review state
// @Tags manager
// @Produce json
// @Success 200 {array} ReportEntry
// @Router /manager/reports [get]
func (h *Handler) GetReports(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	entries, err := h.conversationService.Reports(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, entries)
}

// GetReportHistory godoc
// @Summary List a direct report's conversations across cycles
// @Tags manager
// @Produce json
// @Success 200 {array} HistoryEntry
// @Router /manager/reports/{email}/history [get]
func (h *Handler) GetReportHistory(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	entries, err := h.conversationService.HistoryForReport(r.Context(), actor, chi.URLParam(r, "email"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, entries)
}
