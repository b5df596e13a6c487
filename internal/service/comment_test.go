package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAddComment(t *testing.T) {
	t.Parallel()
	tickets, comments, _, rec := newTicketEnv(t)
	ctx := context.Background()
	tk := mustCreate(t, tickets, "Printer", "jam", alice)

	c, err := comments.AddComment(ctx, tk.ID, "  try power cycling ", bob)
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if c.Content != "try power cycling" || c.TicketID != tk.ID || c.UserID != bob.UserID || c.Username != "bob" {
		t.Errorf("unexpected comment: %+v", c)
	}
	if rec.Snapshot().CommentsCreated != 1 {
		t.Error("comment should be counted")
	}
}

func TestAddComment_RejectsBlank(t *testing.T) {
	t.Parallel()
	_, comments, _, _ := newTicketEnv(t)

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := comments.AddComment(context.Background(), "any", content, bob)
		if !errors.Is(err, ErrValidation) || err.Error() != "Comment required" {
			t.Errorf("AddComment(%q) = %v, want Comment required", content, err)
		}
	}
}

func TestAddComment_UnknownTicketAccepted(t *testing.T) {
	t.Parallel()
	_, comments, _, _ := newTicketEnv(t)
	ctx := context.Background()

	if _, err := comments.AddComment(ctx, "no-such-ticket", "hello", bob); err != nil {
		t.Fatalf("comment on unknown ticket should be accepted: %v", err)
	}
	got, _ := comments.ListComments(ctx, "no-such-ticket")
	if len(got) != 1 {
		t.Errorf("expected 1 comment, got %d", len(got))
	}
}

func TestListComments_Ordered(t *testing.T) {
	t.Parallel()
	_, comments, _, _ := newTicketEnv(t)
	ctx := context.Background()

	for _, body := range []string{"first", "second", "third"} {
		if _, err := comments.AddComment(ctx, "t1", body, alice); err != nil {
			t.Fatal(err)
		}
		time.Sleep(time.Millisecond)
	}

	got, err := comments.ListComments(ctx, "t1")
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(got) != 3 || got[0].Content != "first" || got[2].Content != "third" {
		t.Errorf("comments out of order: %+v", got)
	}

	empty, err := comments.ListComments(ctx, "t2")
	if err != nil || len(empty) != 0 || empty == nil {
		t.Errorf("unknown ticket should give an empty, non-nil list; got %v, %v", empty, err)
	}
}

func TestSweepOrphans(t *testing.T) {
	t.Parallel()
	tickets, comments, _, _ := newTicketEnv(t)
	ctx := context.Background()
	tk := mustCreate(t, tickets, "Printer", "jam", alice)

	_, _ = comments.AddComment(ctx, tk.ID, "keep", bob)
	_, _ = comments.AddComment(ctx, "gone", "drop", bob)

	removed, err := comments.SweepOrphans(ctx)
	if err != nil || removed != 1 {
		t.Fatalf("SweepOrphans = %d, %v; want 1", removed, err)
	}
	removed, _ = comments.SweepOrphans(ctx)
	if removed != 0 {
		t.Errorf("second sweep removed %d, want 0", removed)
	}
}
