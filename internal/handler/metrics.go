package handler

import (
	"fmt"
	"net/http"

	"github.com/ticketdesk/ticketdesk/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "ticketdesk_tickets_created_total %d\n", snap.TicketsCreated)
	writeMetric(w, "ticketdesk_tickets_updated_total %d\n", snap.TicketsUpdated)
	writeMetric(w, "ticketdesk_tickets_deleted_total %d\n", snap.TicketsDeleted)
	writeMetric(w, "ticketdesk_comments_created_total %d\n", snap.CommentsCreated)

	writeMetric(w, "ticketdesk_solution_requests_total{status=\"success\"} %d\n", snap.SolutionSuccess)
	writeMetric(w, "ticketdesk_solution_requests_total{status=\"failure\"} %d\n", snap.SolutionFailure)
	writeMetric(w, "ticketdesk_solution_duration_seconds_count %d\n", snap.SolutionCount())
	writeMetric(w, "ticketdesk_solution_duration_seconds_sum %.6f\n", float64(snap.SolutionDurationTotalNs)/1e9)

	writeMetric(w, "ticketdesk_signups_total{status=\"success\"} %d\n", snap.SignupSuccess)
	writeMetric(w, "ticketdesk_signups_total{status=\"failure\"} %d\n", snap.SignupFailure)
	writeMetric(w, "ticketdesk_logins_total{status=\"success\"} %d\n", snap.LoginSuccess)
	writeMetric(w, "ticketdesk_logins_total{status=\"failure\"} %d\n", snap.LoginFailure)

	writeMetric(w, "ticketdesk_rate_limited_total %d\n", snap.RateLimited)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
