package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/ticketdesk/ticketdesk/internal/metrics"
)

// SolutionService asks the generation server for a suggested fix.
type SolutionService struct {
	tickets   *TicketService
	generator Generator
	logger    *slog.Logger
	metrics   metrics.Recorder
}

// NewSolutionService creates a new SolutionService.
func NewSolutionService(tickets *TicketService, generator Generator, logger *slog.Logger, recorder metrics.Recorder) *SolutionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SolutionService{
		tickets:   tickets,
		generator: generator,
		logger:    logger.With("component", "solution"),
		metrics:   recorder,
	}
}

// GetSolution sends the ticket's description as the prompt and returns the
// generated text unchanged. Each call goes upstream; nothing is cached or retried.
func (s *SolutionService) GetSolution(ctx context.Context, ticketID string) (string, error) {
	ticket, err := s.tickets.GetTicket(ctx, ticketID)
	if err != nil {
		return "", err
	}

	start := time.Now()
	text, err := s.generator.Generate(ctx, ticket.Description)
	duration := time.Since(start)
	s.metrics.ObserveSolution(err == nil, duration)

	if err != nil {
		s.logger.Warn("generation failed",
			"ticket_id", ticketID,
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return "", &UpstreamError{Detail: err.Error(), Err: err}
	}

	return text, nil
}
