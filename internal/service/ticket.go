package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ticketdesk/ticketdesk/internal/metrics"
	"github.com/ticketdesk/ticketdesk/internal/model"
	"github.com/ticketdesk/ticketdesk/internal/repository"
)

const msgTitleDescriptionRequired = "Title and description required"

// TicketService handles ticket business logic.
type TicketService struct {
	tickets TicketStore
	logger  *slog.Logger
	metrics metrics.Recorder
	// restrictMutations limits update and delete to the owner or an admin.
	restrictMutations bool
}

// TicketServiceOption configures a TicketService.
type TicketServiceOption func(*TicketService)

// WithOwnershipCheck limits update and delete to the ticket owner or an admin.
func WithOwnershipCheck(enabled bool) TicketServiceOption {
	return func(s *TicketService) {
		s.restrictMutations = enabled
	}
}

// NewTicketService creates a new TicketService.
func NewTicketService(tickets TicketStore, logger *slog.Logger, recorder metrics.Recorder, opts ...TicketServiceOption) *TicketService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &TicketService{
		tickets: tickets,
		logger:  logger.With("component", "tickets"),
		metrics: recorder,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTicketInput defines input for creating a ticket.
type CreateTicketInput struct {
	Title       string
	Description string
	Owner       *model.AuthContext
}

// CreateTicket validates and stores a new open ticket.
func (s *TicketService) CreateTicket(ctx context.Context, input CreateTicketInput) (*model.Ticket, error) {
	title, description, err := validateTicketText(input.Title, input.Description)
	if err != nil {
		return nil, err
	}
	if input.Owner == nil || input.Owner.UserID == "" {
		return nil, fmt.Errorf("create ticket: missing owner")
	}

	ticket := &model.Ticket{
		ID:          newID(),
		Title:       title,
		Description: description,
		Status:      model.TicketStatusOpen,
		UserID:      input.Owner.UserID,
		CreatedAt:   now(),
	}
	if err := s.tickets.CreateTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	s.metrics.IncTicketCreated()
	return ticket, nil
}

// GetTicket returns a ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*model.Ticket, error) {
	ticket, err := s.tickets.GetTicket(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return ticket, nil
}

// ListTickets returns tickets matching the filter in creation order.
func (s *TicketService) ListTickets(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, error) {
	tickets, err := s.tickets.ListTickets(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

// UpdateTicketInput defines input for updating a ticket.
type UpdateTicketInput struct {
	ID          string
	Title       string
	Description string
	// Status is stored as given; empty means "open".
	Status string
	Caller *model.AuthContext
}

// UpdateTicket replaces a ticket's title, description and status.
func (s *TicketService) UpdateTicket(ctx context.Context, input UpdateTicketInput) (*model.Ticket, error) {
	title, description, err := validateTicketText(input.Title, input.Description)
	if err != nil {
		return nil, err
	}

	if err := s.checkMutation(ctx, input.ID, input.Caller); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = model.TicketStatusOpen
	}

	ticket := &model.Ticket{
		ID:          input.ID,
		Title:       title,
		Description: description,
		Status:      status,
	}
	if err := s.tickets.UpdateTicket(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("update ticket: %w", err)
	}

	s.metrics.IncTicketUpdated()
	return ticket, nil
}

// DeleteTicket removes a ticket together with its comments.
func (s *TicketService) DeleteTicket(ctx context.Context, id string, caller *model.AuthContext) error {
	if err := s.checkMutation(ctx, id, caller); err != nil {
		return err
	}

	removed, err := s.tickets.DeleteTicket(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return ErrTicketNotFound
		}
		return fmt.Errorf("delete ticket: %w", err)
	}

	s.metrics.IncTicketDeleted()
	s.logger.Info("ticket deleted",
		"ticket_id", id,
		"user_id", callerID(caller),
		"comments_removed", removed,
	)
	return nil
}

// checkMutation enforces ownership when enabled. It loads the ticket so an
// unknown id still reports not found rather than forbidden.
func (s *TicketService) checkMutation(ctx context.Context, id string, caller *model.AuthContext) error {
	if !s.restrictMutations {
		return nil
	}
	if caller == nil {
		return ErrForbidden
	}

	ticket, err := s.GetTicket(ctx, id)
	if err != nil {
		return err
	}
	if caller.IsAdmin || ticket.OwnedBy(caller.UserID) {
		return nil
	}
	return ErrForbidden
}

func validateTicketText(title, description string) (string, string, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return "", "", invalid(msgTitleDescriptionRequired)
	}
	return title, description, nil
}

func callerID(c *model.AuthContext) string {
	if c == nil {
		return ""
	}
	return c.UserID
}
