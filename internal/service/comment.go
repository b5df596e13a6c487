package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ticketdesk/ticketdesk/internal/metrics"
	"github.com/ticketdesk/ticketdesk/internal/model"
)

// CommentService handles ticket comments.
type CommentService struct {
	comments CommentStore
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewCommentService creates a new CommentService.
func NewCommentService(comments CommentStore, logger *slog.Logger, recorder metrics.Recorder) *CommentService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentService{
		comments: comments,
		logger:   logger.With("component", "comments"),
		metrics:  recorder,
	}
}

// AddComment appends a comment to ticketID. The ticket is not looked up:
// a comment may reference a ticket that does not exist.
func (s *CommentService) AddComment(ctx context.Context, ticketID, content string, author *model.AuthContext) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("Comment required")
	}
	if author == nil || author.UserID == "" {
		return nil, fmt.Errorf("add comment: missing author")
	}

	comment := &model.Comment{
		ID:        newID(),
		TicketID:  ticketID,
		UserID:    author.UserID,
		Content:   content,
		CreatedAt: now(),
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}

	s.metrics.IncCommentCreated()
	return comment, nil
}

// ListComments returns a ticket's comments oldest first.
func (s *CommentService) ListComments(ctx context.Context, ticketID string) ([]*model.Comment, error) {
	comments, err := s.comments.ListComments(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// SweepOrphans removes comments left behind by tickets that no longer exist.
func (s *CommentService) SweepOrphans(ctx context.Context) (int64, error) {
	removed, err := s.comments.SweepOrphanComments(ctx)
	if err != nil {
		return 0, fmt.Errorf("sweep orphan comments: %w", err)
	}
	if removed > 0 {
		s.logger.Warn("removed orphan comments", "count", removed)
	}
	return removed, nil
}
