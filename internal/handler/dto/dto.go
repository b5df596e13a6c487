// Package dto provides Data Transfer Objects for API requests and responses.
// Entity responses reuse the model types directly; they already carry the wire tags.
package dto

// CredentialsRequest is the body of POST /signup and POST /login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateTicketRequest is the body of POST /tickets.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateTicketRequest is the body of PUT /tickets/{id}. Every field is
// replaced; an empty status resets the ticket to "open".
type UpdateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// CreateCommentRequest is the body of POST /tickets/{id}/comments.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// SolutionResponse carries generated text verbatim.
type SolutionResponse struct {
	Solution string `json:"solution"`
}

// DeleteResponse acknowledges a delete.
type DeleteResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
