package repository

import (
	"context"
	"fmt"

	"github.com/ticketdesk/ticketdesk/internal/model"
)

// CreateComment inserts a comment and fills in the author's username.
// The ticket id is stored as given; it is not checked against tickets.
func (r *Repository) CreateComment(ctx context.Context, comment *model.Comment) error {
	query := `
		WITH c AS (
			INSERT INTO comments (id, ticket_id, user_id, content, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING user_id
		)
		SELECT COALESCE(u.username, '')
		FROM c LEFT JOIN users u ON u.id = c.user_id
	`

	err := r.pool.QueryRow(ctx, query,
		comment.ID,
		comment.TicketID,
		comment.UserID,
		comment.Content,
		comment.CreatedAt,
	).Scan(&comment.Username)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// ListComments returns the comments on a ticket, oldest first. An unknown
// ticket id yields an empty slice.
func (r *Repository) ListComments(ctx context.Context, ticketID string) ([]*model.Comment, error) {
	query := `
		SELECT c.id, c.ticket_id, c.user_id, c.content, c.created_at, COALESCE(u.username, '')
		FROM comments c
		LEFT JOIN users u ON u.id = c.user_id
		WHERE c.ticket_id = $1
		ORDER BY c.created_at ASC, c.id ASC
	`

	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*model.Comment, 0)
	for rows.Next() {
		var comment model.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.UserID,
			&comment.Content,
			&comment.CreatedAt,
			&comment.Username,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return comments, nil
}

// SweepOrphanComments deletes comments whose ticket no longer exists.
// Idempotent; returns the number of rows removed.
func (r *Repository) SweepOrphanComments(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM comments c
		WHERE NOT EXISTS (SELECT 1 FROM tickets t WHERE t.id = c.ticket_id)
	`

	tag, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep orphan comments: %w", err)
	}
	return tag.RowsAffected(), nil
}
