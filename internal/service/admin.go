package service

import (
	"context"
	"fmt"

	"github.com/ticketdesk/ticketdesk/internal/model"
)

// AdminService serves the read-only admin listings. Callers must already
// have passed the admin gate.
type AdminService struct {
	users   UserStore
	tickets TicketStore
}

// NewAdminService creates a new AdminService.
func NewAdminService(users UserStore, tickets TicketStore) *AdminService {
	return &AdminService{users: users, tickets: tickets}
}

// ListUsers returns every account without password hashes.
func (s *AdminService) ListUsers(ctx context.Context) ([]model.UserSummary, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]model.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToSummary())
	}
	return out, nil
}

// ListTickets returns every ticket, unfiltered.
func (s *AdminService) ListTickets(ctx context.Context) ([]*model.Ticket, error) {
	tickets, err := s.tickets.ListTickets(ctx, model.TicketFilter{})
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}
