package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ticketdesk/ticketdesk/internal/metrics"
	"github.com/ticketdesk/ticketdesk/internal/model"
	"github.com/ticketdesk/ticketdesk/internal/testutil/memstore"
)

var (
	alice = &model.AuthContext{UserID: "user-alice", Username: "alice"}
	bob   = &model.AuthContext{UserID: "user-bob", Username: "bob"}
	root  = &model.AuthContext{UserID: "user-root", Username: "admin", IsAdmin: true}
)

func newTicketEnv(t *testing.T, opts ...TicketServiceOption) (*TicketService, *CommentService, *memstore.Store, *metrics.InMemoryRecorder) {
	t.Helper()
	store := memstore.New()
	for _, ac := range []*model.AuthContext{alice, bob, root} {
		_ = store.CreateUser(context.Background(), &model.User{ID: ac.UserID, Username: ac.Username, IsAdmin: ac.IsAdmin})
	}
	rec := metrics.NewInMemory()
	return NewTicketService(store, discardLogger(), rec, opts...),
		NewCommentService(store, discardLogger(), rec),
		store, rec
}

func mustCreate(t *testing.T, svc *TicketService, title, description string, owner *model.AuthContext) *model.Ticket {
	t.Helper()
	tk, err := svc.CreateTicket(context.Background(), CreateTicketInput{Title: title, Description: description, Owner: owner})
	if err != nil {
		t.Fatalf("CreateTicket(%q): %v", title, err)
	}
	return tk
}

func TestCreateTicket_Defaults(t *testing.T) {
	t.Parallel()
	svc, _, _, rec := newTicketEnv(t)

	tk := mustCreate(t, svc, "  Printer jammed ", "\tpaper stuck\n", alice)
	if tk.Title != "Printer jammed" || tk.Description != "paper stuck" {
		t.Errorf("fields should be trimmed: %+v", tk)
	}
	if tk.Status != model.TicketStatusOpen {
		t.Errorf("Status = %q, want open", tk.Status)
	}
	if tk.Username != "alice" || tk.UserID != alice.UserID {
		t.Errorf("owner not resolved: %+v", tk)
	}
	if tk.ID == "" || tk.CreatedAt.IsZero() {
		t.Errorf("id and created_at should be set: %+v", tk)
	}
	if rec.Snapshot().TicketsCreated != 1 {
		t.Error("creation should be counted")
	}
}

func TestCreateTicket_RejectsBlankText(t *testing.T) {
	t.Parallel()
	svc, _, store, _ := newTicketEnv(t)
	ctx := context.Background()

	cases := []struct{ title, description string }{
		{"", "desc"},
		{"title", ""},
		{"   ", "desc"},
		{"title", " \t\n"},
		{"", ""},
	}
	for _, c := range cases {
		_, err := svc.CreateTicket(ctx, CreateTicketInput{Title: c.title, Description: c.description, Owner: alice})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("CreateTicket(%q,%q) = %v, want ErrValidation", c.title, c.description, err)
		}
	}

	all, _ := store.ListTickets(ctx, model.TicketFilter{})
	if len(all) != 0 {
		t.Errorf("rejected tickets must not be persisted, found %d", len(all))
	}
}

func TestListTickets_StatusIsExact(t *testing.T) {
	t.Parallel()
	svc, _, _, _ := newTicketEnv(t)
	ctx := context.Background()

	open := mustCreate(t, svc, "a", "a", alice)
	closed := mustCreate(t, svc, "b", "b", alice)
	upper := mustCreate(t, svc, "c", "c", alice)
	if _, err := svc.UpdateTicket(ctx, UpdateTicketInput{ID: closed.ID, Title: "b", Description: "b", Status: "closed", Caller: alice}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateTicket(ctx, UpdateTicketInput{ID: upper.ID, Title: "c", Description: "c", Status: "OPEN", Caller: alice}); err != nil {
		t.Fatal(err)
	}

	got, err := svc.ListTickets(ctx, model.TicketFilter{Status: "open"})
	if err != nil {
		t.Fatalf("ListTickets: %v", err)
	}
	if len(got) != 1 || got[0].ID != open.ID {
		t.Errorf("status=open should match exactly one ticket, got %d", len(got))
	}
}

func TestListTickets_SearchTitleOrDescription(t *testing.T) {
	t.Parallel()
	svc, _, _, _ := newTicketEnv(t)

	inTitle := mustCreate(t, svc, "FOO printer", "broken", alice)
	inDesc := mustCreate(t, svc, "VPN", "the Foobar host is down", bob)
	_ = mustCreate(t, svc, "Mail", "quota", bob)

	got, err := svc.ListTickets(context.Background(), model.TicketFilter{Search: "foo"})
	if err != nil {
		t.Fatalf("ListTickets: %v", err)
	}
	if len(got) != 2 || got[0].ID != inTitle.ID || got[1].ID != inDesc.ID {
		t.Errorf("search should return the union in creation order, got %+v", got)
	}
}

func TestGetTicket_NotFound(t *testing.T) {
	t.Parallel()
	svc, _, _, _ := newTicketEnv(t)

	if _, err := svc.GetTicket(context.Background(), "missing"); !errors.Is(err, ErrTicketNotFound) {
		t.Errorf("expected ErrTicketNotFound, got %v", err)
	}
}

func TestUpdateTicket(t *testing.T) {
	t.Parallel()
	svc, _, _, rec := newTicketEnv(t)
	ctx := context.Background()
	tk := mustCreate(t, svc, "Printer", "jam", alice)

	updated, err := svc.UpdateTicket(ctx, UpdateTicketInput{ID: tk.ID, Title: " Printer ", Description: "fixed", Status: "closed", Caller: bob})
	if err != nil {
		t.Fatalf("UpdateTicket: %v", err)
	}
	if updated.Status != "closed" || updated.Title != "Printer" || updated.UserID != alice.UserID {
		t.Errorf("unexpected update result: %+v", updated)
	}

	got, _ := svc.GetTicket(ctx, tk.ID)
	if got.Status != "closed" {
		t.Errorf("GET after PUT should reflect closed, got %q", got.Status)
	}

	// Omitted status resets to open.
	updated, err = svc.UpdateTicket(ctx, UpdateTicketInput{ID: tk.ID, Title: "Printer", Description: "again", Caller: bob})
	if err != nil || updated.Status != model.TicketStatusOpen {
		t.Errorf("empty status should default to open, got %+v, %v", updated, err)
	}

	// Free-form status is accepted.
	updated, err = svc.UpdateTicket(ctx, UpdateTicketInput{ID: tk.ID, Title: "Printer", Description: "x", Status: "waiting-on-vendor", Caller: bob})
	if err != nil || updated.Status != "waiting-on-vendor" {
		t.Errorf("free-form status should be stored, got %+v, %v", updated, err)
	}

	if _, err := svc.UpdateTicket(ctx, UpdateTicketInput{ID: tk.ID, Title: "", Description: "x", Caller: bob}); !errors.Is(err, ErrValidation) {
		t.Errorf("blank title: expected ErrValidation, got %v", err)
	}
	if _, err := svc.UpdateTicket(ctx, UpdateTicketInput{ID: "missing", Title: "a", Description: "b", Caller: bob}); !errors.Is(err, ErrTicketNotFound) {
		t.Errorf("missing id: expected ErrTicketNotFound, got %v", err)
	}

	if rec.Snapshot().TicketsUpdated != 3 {
		t.Errorf("TicketsUpdated = %d, want 3", rec.Snapshot().TicketsUpdated)
	}
}

func TestDeleteTicket_CascadesComments(t *testing.T) {
	t.Parallel()
	svc, comments, _, _ := newTicketEnv(t)
	ctx := context.Background()

	tk := mustCreate(t, svc, "Printer", "jam", alice)
	other := mustCreate(t, svc, "VPN", "down", alice)
	for _, id := range []string{tk.ID, tk.ID, other.ID} {
		if _, err := comments.AddComment(ctx, id, "note", bob); err != nil {
			t.Fatalf("AddComment: %v", err)
		}
	}

	if err := svc.DeleteTicket(ctx, tk.ID, bob); err != nil {
		t.Fatalf("DeleteTicket: %v", err)
	}

	if _, err := svc.GetTicket(ctx, tk.ID); !errors.Is(err, ErrTicketNotFound) {
		t.Errorf("ticket should be gone, got %v", err)
	}
	left, err := comments.ListComments(ctx, tk.ID)
	if err != nil || len(left) != 0 {
		t.Errorf("comments after delete = %d, %v; want empty, nil", len(left), err)
	}
	kept, _ := comments.ListComments(ctx, other.ID)
	if len(kept) != 1 {
		t.Errorf("other ticket's comments should survive, got %d", len(kept))
	}

	if err := svc.DeleteTicket(ctx, tk.ID, bob); !errors.Is(err, ErrTicketNotFound) {
		t.Errorf("second delete: expected ErrTicketNotFound, got %v", err)
	}
}

func TestOwnershipCheck(t *testing.T) {
	t.Parallel()
	svc, _, _, _ := newTicketEnv(t, WithOwnershipCheck(true))
	ctx := context.Background()
	tk := mustCreate(t, svc, "Printer", "jam", alice)

	in := UpdateTicketInput{ID: tk.ID, Title: "x", Description: "y", Caller: bob}
	if _, err := svc.UpdateTicket(ctx, in); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner update: expected ErrForbidden, got %v", err)
	}
	if err := svc.DeleteTicket(ctx, tk.ID, bob); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner delete: expected ErrForbidden, got %v", err)
	}

	in.Caller = alice
	if _, err := svc.UpdateTicket(ctx, in); err != nil {
		t.Errorf("owner update: %v", err)
	}
	in.Caller = root
	if _, err := svc.UpdateTicket(ctx, in); err != nil {
		t.Errorf("admin update: %v", err)
	}

	if err := svc.DeleteTicket(ctx, "missing", bob); !errors.Is(err, ErrTicketNotFound) {
		t.Errorf("unknown id should be not found before forbidden, got %v", err)
	}
	if err := svc.DeleteTicket(ctx, tk.ID, root); err != nil {
		t.Errorf("admin delete: %v", err)
	}
}

func TestTicketService_StoreFailure(t *testing.T) {
	t.Parallel()
	svc, _, store, _ := newTicketEnv(t)
	store.FailWith(errStoreDown)

	_, err := svc.ListTickets(context.Background(), model.TicketFilter{})
	if !errors.Is(err, errStoreDown) || errors.Is(err, ErrTicketNotFound) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}
