// Package memstore is an in-memory stand-in for the Postgres repository,
// used by service and handler tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/ticketdesk/ticketdesk/internal/model"
	"github.com/ticketdesk/ticketdesk/internal/repository"
)

// Store is an in-memory user, ticket and comment store with the same error
// contract as the Postgres repository. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	users    map[string]*model.User
	tickets  map[string]*model.Ticket
	comments []*model.Comment
	failWith error
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:   make(map[string]*model.User),
		tickets: make(map[string]*model.Ticket),
	}
}

func (m *Store) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	for _, u := range m.users {
		if u.Username == user.Username {
			return repository.ErrUsernameExists
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *Store) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *Store) ListUsers(_ context.Context) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]*model.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Store) CountAdmins(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	n := 0
	for _, u := range m.users {
		if u.IsAdmin {
			n++
		}
	}
	return n, nil
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (m *Store) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// SetAdmin flips the stored admin flag, leaving issued tokens untouched.
func (m *Store) SetAdmin(username string, admin bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			u.IsAdmin = admin
		}
	}
}

// usernameOf must be called with mu held.
func (m *Store) usernameOf(id string) string {
	if u, ok := m.users[id]; ok {
		return u.Username
	}
	return ""
}

func (m *Store) CreateTicket(_ context.Context, ticket *model.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	ticket.Username = m.usernameOf(ticket.UserID)
	cp := *ticket
	m.tickets[ticket.ID] = &cp
	return nil
}

func (m *Store) GetTicket(_ context.Context, id string) (*model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	t, ok := m.tickets[id]
	if !ok {
		return nil, repository.ErrTicketNotFound
	}
	cp := *t
	cp.Username = m.usernameOf(t.UserID)
	return &cp, nil
}

func (m *Store) ListTickets(_ context.Context, filter model.TicketFilter) ([]*model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	needle := strings.ToLower(filter.Search)
	out := make([]*model.Ticket, 0)
	for _, t := range m.tickets {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			continue
		}
		cp := *t
		cp.Username = m.usernameOf(t.UserID)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Store) UpdateTicket(_ context.Context, ticket *model.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	t, ok := m.tickets[ticket.ID]
	if !ok {
		return repository.ErrTicketNotFound
	}
	t.Title, t.Description, t.Status = ticket.Title, ticket.Description, ticket.Status
	*ticket = *t
	ticket.Username = m.usernameOf(t.UserID)
	return nil
}

func (m *Store) DeleteTicket(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	if _, ok := m.tickets[id]; !ok {
		return 0, repository.ErrTicketNotFound
	}
	delete(m.tickets, id)
	var removed int64
	kept := m.comments[:0]
	for _, c := range m.comments {
		if c.TicketID == id {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	m.comments = kept
	return removed, nil
}

func (m *Store) CreateComment(_ context.Context, comment *model.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	comment.Username = m.usernameOf(comment.UserID)
	cp := *comment
	m.comments = append(m.comments, &cp)
	return nil
}

func (m *Store) ListComments(_ context.Context, ticketID string) ([]*model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]*model.Comment, 0)
	for _, c := range m.comments {
		if c.TicketID == ticketID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Store) SweepOrphanComments(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	kept := m.comments[:0]
	for _, c := range m.comments {
		if _, ok := m.tickets[c.TicketID]; !ok {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	m.comments = kept
	return removed, nil
}
