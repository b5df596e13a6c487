package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ticketdesk/ticketdesk/internal/auth"
	"github.com/ticketdesk/ticketdesk/internal/handler/dto"
	"github.com/ticketdesk/ticketdesk/internal/service"
)

// CommentHandler handles the comment thread under a ticket.
type CommentHandler struct {
	svc    *service.CommentService
	logger *slog.Logger
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(svc *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{svc: svc, logger: logger}
}

// Create handles POST /tickets/{id}/comments.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.svc.AddComment(r.Context(), chi.URLParam(r, "id"), req.Content, auth.MustAuthFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.logger, err, msgDatabaseError)
		return
	}

	writeJSON(w, http.StatusOK, comment)
}

// List handles GET /tickets/{id}/comments. An unknown ticket yields an empty list.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	comments, err := h.svc.ListComments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err, msgDatabaseError)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}
