package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ticketdesk/ticketdesk/internal/handler/dto"
	"github.com/ticketdesk/ticketdesk/internal/service"
)

// SolutionHandler proxies a ticket's description to the generation server.
type SolutionHandler struct {
	svc    *service.SolutionService
	logger *slog.Logger
}

// NewSolutionHandler creates a new SolutionHandler.
func NewSolutionHandler(svc *service.SolutionService, logger *slog.Logger) *SolutionHandler {
	return &SolutionHandler{svc: svc, logger: logger}
}

// Get handles GET /tickets/{id}/solution.
func (h *SolutionHandler) Get(w http.ResponseWriter, r *http.Request) {
	text, err := h.svc.GetSolution(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err, msgDatabaseError)
		return
	}

	writeJSON(w, http.StatusOK, dto.SolutionResponse{Solution: text})
}
