// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ticketdesk/ticketdesk/internal/model"
)

// Service errors.
var (
	ErrValidation         = errors.New("validation failed")
	ErrUsernameTaken      = errors.New("username taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrForbidden          = errors.New("forbidden")
)

// ValidationError names the rule a request broke. It matches ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is lets errors.Is(err, ErrValidation) succeed.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// UpstreamError wraps a failed call to the generation server.
type UpstreamError struct {
	Detail string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("generation failed: %s", e.Detail)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	CountAdmins(ctx context.Context) (int, error)
}

// TicketStore persists tickets. DeleteTicket also removes the ticket's comments.
type TicketStore interface {
	CreateTicket(ctx context.Context, ticket *model.Ticket) error
	GetTicket(ctx context.Context, id string) (*model.Ticket, error)
	ListTickets(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, error)
	UpdateTicket(ctx context.Context, ticket *model.Ticket) error
	DeleteTicket(ctx context.Context, id string) (int64, error)
}

// CommentStore persists comments.
type CommentStore interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	ListComments(ctx context.Context, ticketID string) ([]*model.Comment, error)
	SweepOrphanComments(ctx context.Context) (int64, error)
}

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	Issue(user *model.User) (string, error)
}

func newID() string {
	return ulid.Make().String()
}

// now is UTC truncated to what Postgres stores, so values read back compare equal.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
