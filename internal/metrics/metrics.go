// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Ticket lifecycle
	IncTicketCreated()
	IncTicketUpdated()
	IncTicketDeleted()
	IncCommentCreated()

	// Generation proxy; success is false on any upstream failure.
	ObserveSolution(success bool, duration time.Duration)

	// Authentication; ok is false for rejected attempts.
	IncSignup(ok bool)
	IncLogin(ok bool)
	IncRateLimited()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
