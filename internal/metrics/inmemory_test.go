package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestInMemoryRecorder_Counters(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncTicketCreated()
	m.IncTicketCreated()
	m.IncTicketUpdated()
	m.IncTicketDeleted()
	m.IncCommentCreated()
	m.ObserveSolution(true, 2*time.Second)
	m.ObserveSolution(false, time.Second)
	m.IncSignup(true)
	m.IncSignup(false)
	m.IncLogin(false)
	m.IncRateLimited()

	snap := m.Snapshot()
	if snap.TicketsCreated != 2 || snap.TicketsUpdated != 1 || snap.TicketsDeleted != 1 {
		t.Errorf("unexpected ticket counters: %+v", snap)
	}
	if snap.CommentsCreated != 1 {
		t.Errorf("CommentsCreated = %d, want 1", snap.CommentsCreated)
	}
	if snap.SolutionCount() != 2 || snap.SolutionSuccess != 1 || snap.SolutionFailure != 1 {
		t.Errorf("unexpected solution counters: %+v", snap)
	}
	if snap.SolutionDurationTotalNs != (3 * time.Second).Nanoseconds() {
		t.Errorf("SolutionDurationTotalNs = %d", snap.SolutionDurationTotalNs)
	}
	if snap.SignupSuccess != 1 || snap.SignupFailure != 1 || snap.LoginSuccess != 0 || snap.LoginFailure != 1 {
		t.Errorf("unexpected auth counters: %+v", snap)
	}
	if snap.RateLimited != 1 {
		t.Errorf("RateLimited = %d, want 1", snap.RateLimited)
	}
}

func TestInMemoryRecorder_Concurrent(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncCommentCreated()
		}()
	}
	wg.Wait()

	if got := m.Snapshot().CommentsCreated; got != 50 {
		t.Errorf("CommentsCreated = %d, want 50", got)
	}
}
