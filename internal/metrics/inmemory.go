package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	TicketsCreated  uint64
	TicketsUpdated  uint64
	TicketsDeleted  uint64
	CommentsCreated uint64

	SolutionSuccess         uint64
	SolutionFailure         uint64
	SolutionDurationTotalNs int64

	SignupSuccess uint64
	SignupFailure uint64
	LoginSuccess  uint64
	LoginFailure  uint64
	RateLimited   uint64
}

// SolutionCount is the number of observed generation calls.
func (s Snapshot) SolutionCount() uint64 {
	return s.SolutionSuccess + s.SolutionFailure
}

// InMemoryRecorder keeps counters in process memory. It backs /metrics.
type InMemoryRecorder struct {
	ticketsCreated  atomic.Uint64
	ticketsUpdated  atomic.Uint64
	ticketsDeleted  atomic.Uint64
	commentsCreated atomic.Uint64

	solutionSuccess atomic.Uint64
	solutionFailure atomic.Uint64
	solutionNs      atomic.Int64

	signupSuccess atomic.Uint64
	signupFailure atomic.Uint64
	loginSuccess  atomic.Uint64
	loginFailure  atomic.Uint64
	rateLimited   atomic.Uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		TicketsCreated:          m.ticketsCreated.Load(),
		TicketsUpdated:          m.ticketsUpdated.Load(),
		TicketsDeleted:          m.ticketsDeleted.Load(),
		CommentsCreated:         m.commentsCreated.Load(),
		SolutionSuccess:         m.solutionSuccess.Load(),
		SolutionFailure:         m.solutionFailure.Load(),
		SolutionDurationTotalNs: m.solutionNs.Load(),
		SignupSuccess:           m.signupSuccess.Load(),
		SignupFailure:           m.signupFailure.Load(),
		LoginSuccess:            m.loginSuccess.Load(),
		LoginFailure:            m.loginFailure.Load(),
		RateLimited:             m.rateLimited.Load(),
	}
}

func (m *InMemoryRecorder) IncTicketCreated() { m.ticketsCreated.Add(1) }
func (m *InMemoryRecorder) IncTicketUpdated() { m.ticketsUpdated.Add(1) }
func (m *InMemoryRecorder) IncTicketDeleted() { m.ticketsDeleted.Add(1) }
func (m *InMemoryRecorder) IncCommentCreated() { m.commentsCreated.Add(1) }
func (m *InMemoryRecorder) IncRateLimited() { m.rateLimited.Add(1) }

// ObserveSolution records one generation call.
func (m *InMemoryRecorder) ObserveSolution(success bool, duration time.Duration) {
	if success {
		m.solutionSuccess.Add(1)
	} else {
		m.solutionFailure.Add(1)
	}
	m.solutionNs.Add(duration.Nanoseconds())
}

// IncSignup counts a signup attempt by outcome.
func (m *InMemoryRecorder) IncSignup(ok bool) {
	if ok {
		m.signupSuccess.Add(1)
		return
	}
	m.signupFailure.Add(1)
}

// IncLogin counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLogin(ok bool) {
	if ok {
		m.loginSuccess.Add(1)
		return
	}
	m.loginFailure.Add(1)
}
