package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ticketdesk/ticketdesk/internal/model"
)

// ErrTicketNotFound is returned when no ticket has the requested id.
var ErrTicketNotFound = errors.New("ticket not found")

// ticketColumns selects a ticket with its owner's username resolved.
// The owner row may be gone, in which case the username is empty.
const ticketColumns = `
	t.id, t.title, t.description, t.status, t.created_at, t.user_id, COALESCE(u.username, '')
`

// CreateTicket inserts a ticket and fills in the owner's username.
func (r *Repository) CreateTicket(ctx context.Context, ticket *model.Ticket) error {
	query := `
		WITH t AS (
			INSERT INTO tickets (id, title, description, status, user_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING *
		)
		SELECT COALESCE(u.username, '')
		FROM t LEFT JOIN users u ON u.id = t.user_id
	`

	err := r.pool.QueryRow(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.UserID,
		ticket.CreatedAt,
	).Scan(&ticket.Username)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	return nil
}

// GetTicket retrieves a ticket by id.
func (r *Repository) GetTicket(ctx context.Context, id string) (*model.Ticket, error) {
	query := `SELECT` + ticketColumns + `
		FROM tickets t
		LEFT JOIN users u ON u.id = t.user_id
		WHERE t.id = $1
	`

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return ticket, nil
}

// ListTickets returns tickets matching the filter, oldest first.
// Status is matched exactly. Search is a case-insensitive substring of
// title or description.
func (r *Repository) ListTickets(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, error) {
	query := `SELECT` + ticketColumns + `
		FROM tickets t
		LEFT JOIN users u ON u.id = t.user_id
		WHERE TRUE
	`
	args := []any{}
	argIndex := 1

	if filter.Status != "" {
		query += fmt.Sprintf(" AND t.status = $%d", argIndex)
		args = append(args, filter.Status)
		argIndex++
	}

	if filter.Search != "" {
		query += fmt.Sprintf(` AND (t.title ILIKE $%d ESCAPE '\' OR t.description ILIKE $%d ESCAPE '\')`, argIndex, argIndex)
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		argIndex++
	}

	query += " ORDER BY t.created_at ASC, t.id ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]*model.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}

	return tickets, nil
}

// UpdateTicket replaces title, description and status. The ticket's owner
// and creation time are left untouched and copied back into ticket.
func (r *Repository) UpdateTicket(ctx context.Context, ticket *model.Ticket) error {
	query := `
		WITH t AS (
			UPDATE tickets
			SET title = $2, description = $3, status = $4
			WHERE id = $1
			RETURNING *
		)
		SELECT` + ticketColumns + `
		FROM t LEFT JOIN users u ON u.id = t.user_id
	`

	updated, err := scanTicket(r.pool.QueryRow(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTicketNotFound
		}
		return fmt.Errorf("failed to update ticket: %w", err)
	}

	*ticket = *updated
	return nil
}

// DeleteTicket removes a ticket and every comment attached to it in one
// transaction. It returns the number of comments removed.
func (r *Repository) DeleteTicket(ctx context.Context, id string) (int64, error) {
	var removed int64

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete ticket: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrTicketNotFound
		}

		tag, err = tx.Exec(ctx, `DELETE FROM comments WHERE ticket_id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}
		removed = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}

	return removed, nil
}

// scanTicket scans a single ticket row.
func scanTicket(row pgx.Row) (*model.Ticket, error) {
	var ticket model.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.CreatedAt,
		&ticket.UserID,
		&ticket.Username,
	)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
