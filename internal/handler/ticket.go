package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ticketdesk/ticketdesk/internal/auth"
	"github.com/ticketdesk/ticketdesk/internal/handler/dto"
	"github.com/ticketdesk/ticketdesk/internal/model"
	"github.com/ticketdesk/ticketdesk/internal/service"
)

// TicketHandler handles HTTP requests for ticket operations.
type TicketHandler struct {
	svc    *service.TicketService
	logger *slog.Logger
}

// NewTicketHandler creates a new TicketHandler.
func NewTicketHandler(svc *service.TicketService, logger *slog.Logger) *TicketHandler {
	return &TicketHandler{svc: svc, logger: logger}
}

// Create handles POST /tickets.
func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTicketRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ticket, err := h.svc.CreateTicket(r.Context(), service.CreateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Owner:       auth.MustAuthFromContext(r.Context()),
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err, msgDatabaseError)
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}

// List handles GET /tickets?status=&search=.
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	tickets, err := h.svc.ListTickets(r.Context(), model.TicketFilter{
		Status: query.Get("status"),
		Search: query.Get("search"),
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err, msgDatabaseError)
		return
	}

	writeJSON(w, http.StatusOK, tickets)
}

// Get handles GET /tickets/{id}.
func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.svc.GetTicket(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err, msgDatabaseError)
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}

// Update handles PUT /tickets/{id}.
func (h *TicketHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateTicketRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ticket, err := h.svc.UpdateTicket(r.Context(), service.UpdateTicketInput{
		ID:          chi.URLParam(r, "id"),
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Caller:      auth.MustAuthFromContext(r.Context()),
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err, msgDatabaseError)
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}

// Delete handles DELETE /tickets/{id}.
func (h *TicketHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteTicket(r.Context(), chi.URLParam(r, "id"), auth.MustAuthFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.logger, err, msgDatabaseError)
		return
	}

	writeJSON(w, http.StatusOK, dto.DeleteResponse{Success: true})
}
