package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncTicketCreated() {}
func (n *NoopRecorder) IncTicketUpdated() {}
func (n *NoopRecorder) IncTicketDeleted() {}
func (n *NoopRecorder) IncCommentCreated() {}
func (n *NoopRecorder) ObserveSolution(bool, time.Duration) {}
func (n *NoopRecorder) IncSignup(bool) {}
func (n *NoopRecorder) IncLogin(bool) {}
func (n *NoopRecorder) IncRateLimited() {}
