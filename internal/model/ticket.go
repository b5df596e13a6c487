package model

import "time"

// TicketStatusOpen is assigned when no status is supplied. Status is otherwise
// free-form: clients conventionally use "open" and "closed".
const (
	TicketStatusOpen   = "open"
	TicketStatusClosed = "closed"
)

// Ticket is a support request.
type Ticket struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UserID      string    `json:"user_id"`
	// Username is resolved from UserID at read time; empty if the owner is gone.
	Username string `json:"username"`
}

// OwnedBy reports whether the ticket belongs to the given user.
func (t *Ticket) OwnedBy(userID string) bool {
	return userID != "" && t.UserID == userID
}

// TicketFilter narrows a ticket listing. Empty fields match everything.
type TicketFilter struct {
	// Status is compared exactly, case-sensitive.
	Status string
	// Search is a case-insensitive substring matched against title or description.
	Search string
}
