package report

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/Autonom664/hr-performance-dstchemicals/internal"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/auth"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/transport"
)

type ServiceAPI interface {
	Export(ctx context.Context, actor *auth.User, conversationID string) (*Result, error)
}

type Handler struct {
	*transport.BaseHandler
	reportService ServiceAPI
}

func NewHandler(reportService ServiceAPI, lg *slog.Logger) *Handler {
	return &Handler{
		BaseHandler:   transport.NewBaseHandler(lg),
		reportService: reportService,
	}
}

// ExportConversationPDF godoc
// @Summary Download a conversation as a PDF document
// @Tags conversations
// @Produce application/pdf
// @Success 200 {file} binary
// @Router /conversations/{id}/pdf [get]
func (h *Handler) ExportConversationPDF(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.HandleServiceError(w, internal.ErrSessionRequired)
		return
	}

	result, err := h.reportService.Export(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", result.MimeType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		h.Logger.Error("failed to write pdf response", "error", err)
	}
}
