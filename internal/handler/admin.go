package handler

import (
	"log/slog"
	"net/http"

	"github.com/ticketdesk/ticketdesk/internal/service"
)

// AdminHandler serves the admin-only listings.
type AdminHandler struct {
	svc    *service.AdminService
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc *service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, logger: logger}
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, msgDatabaseError)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// ListTickets handles GET /admin/tickets.
func (h *AdminHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.svc.ListTickets(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, msgDatabaseError)
		return
	}

	writeJSON(w, http.StatusOK, tickets)
}
