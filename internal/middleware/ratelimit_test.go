package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ticketdesk/ticketdesk/internal/cache"
	"github.com/ticketdesk/ticketdesk/internal/metrics"
)

// countingLimiter allows the first `budget` calls per scope+ip.
type countingLimiter struct {
	mu     sync.Mutex
	budget int
	seen   map[string]int
	err    error
}

func newCountingLimiter(budget int) *countingLimiter {
	return &countingLimiter{budget: budget, seen: make(map[string]int)}
}

func (l *countingLimiter) CheckIPRateLimit(_ context.Context, scope, ip string, _, _ int) (*cache.RateLimitResult, error) {
	if l.err != nil {
		return &cache.RateLimitResult{Allowed: true}, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	key := scope + "|" + ip
	l.seen[key]++
	used := l.seen[key]
	if used > l.budget {
		return &cache.RateLimitResult{Allowed: false, RetryAfter: 2 * time.Second, ResetAt: time.Now()}, nil
	}
	return &cache.RateLimitResult{Allowed: true, Remaining: int64(l.budget - used), ResetAt: time.Now()}, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func postFrom(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = ip + ":5555"
	return req
}

func TestRateLimitIP_BlocksAfterBudget(t *testing.T) {
	limiter := newCountingLimiter(2)
	rec := metrics.NewInMemory()
	h := RateLimitIP(RateLimitConfig{
		Logger:  discardLogger(),
		Limiter: limiter,
		Metrics: rec,
		Enabled: true,
		RPS:     1,
		Burst:   2,
	}, "login")(okHandler())

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, postFrom("10.0.0.1"))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, w.Code)
		}
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, postFrom("10.0.0.1"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "2" {
		t.Errorf("Retry-After = %q, want 2", got)
	}
	if got := decodeError(t, w); got != MsgRateLimited {
		t.Errorf("error = %q, want %q", got, MsgRateLimited)
	}
	if got := rec.Snapshot().RateLimited; got != 1 {
		t.Errorf("RateLimited = %d, want 1", got)
	}

	// Another client has its own bucket.
	w = httptest.NewRecorder()
	h.ServeHTTP(w, postFrom("10.0.0.2"))
	if w.Code != http.StatusOK {
		t.Errorf("other ip: status = %d, want 200", w.Code)
	}
}

func TestRateLimitIP_ScopesAreSeparate(t *testing.T) {
	limiter := newCountingLimiter(1)
	cfg := RateLimitConfig{Logger: discardLogger(), Limiter: limiter, Enabled: true, RPS: 1, Burst: 1}
	login := RateLimitIP(cfg, "login")(okHandler())
	signup := RateLimitIP(cfg, "signup")(okHandler())

	w := httptest.NewRecorder()
	login.ServeHTTP(w, postFrom("10.0.0.1"))
	if w.Code != http.StatusOK {
		t.Fatalf("login: status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	signup.ServeHTTP(w, postFrom("10.0.0.1"))
	if w.Code != http.StatusOK {
		t.Errorf("signup after login: status = %d, want 200", w.Code)
	}
}

func TestRateLimitIP_FailsOpen(t *testing.T) {
	limiter := newCountingLimiter(0)
	limiter.err = errors.New("redis down")

	h := RateLimitIP(RateLimitConfig{Logger: discardLogger(), Limiter: limiter, Enabled: true, RPS: 1, Burst: 1}, "login")(okHandler())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, postFrom("10.0.0.1"))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when limiter fails", w.Code)
	}
}

func TestRateLimitIP_Disabled(t *testing.T) {
	limiter := newCountingLimiter(0)
	h := RateLimitIP(RateLimitConfig{Logger: discardLogger(), Limiter: limiter, Enabled: false}, "login")(okHandler())

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, postFrom("10.0.0.1"))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	}
	if len(limiter.seen) != 0 {
		t.Error("limiter consulted while disabled")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{"forwarded for first hop", "203.0.113.7, 10.0.0.1", "", "10.0.0.1:1234", "203.0.113.7"},
		{"real ip", "", " 198.51.100.2 ", "10.0.0.1:1234", "198.51.100.2"},
		{"remote addr strips port", "", "", "192.0.2.9:40000", "192.0.2.9"},
		{"remote addr without port", "", "", "192.0.2.9", "192.0.2.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
