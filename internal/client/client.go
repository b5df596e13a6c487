// Package client is a typed HTTP client for the TicketDesk API.
//
// Entity types come from the model package; request bodies from the
// handler's dto package, so the wire format has one definition.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ticketdesk/ticketdesk/internal/handler/dto"
	"github.com/ticketdesk/ticketdesk/internal/model"
)

// DefaultTimeout covers the slowest route, the solution proxy.
const DefaultTimeout = 2 * time.Minute

// maxErrorBody caps how much of a non-JSON error reply is kept.
const maxErrorBody = 4 << 10

// APIError is a non-2xx reply from the server.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// AuthResponse is returned by Signup and Login.
type AuthResponse struct {
	Token    string `json:"token"`
	IsAdmin  bool   `json:"is_admin"`
	Username string `json:"username"`
}

// Client talks to one TicketDesk server. It is safe for concurrent use;
// WithToken returns a copy rather than mutating the receiver.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBearerToken sets the session token sent on every request.
func WithBearerToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Token returns the bearer token in use, if any.
func (c *Client) Token() string {
	return c.token
}

// Signup creates an account. The returned token is not applied to c.
func (c *Client) Signup(ctx context.Context, username, password string) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/signup", dto.CredentialsRequest{Username: username, Password: password}, &out); err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	return &out, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/login", dto.CredentialsRequest{Username: username, Password: password}, &out); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &out, nil
}

// ListTickets returns tickets matching filter, oldest first.
func (c *Client) ListTickets(ctx context.Context, filter model.TicketFilter) ([]model.Ticket, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	path := "/tickets"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var out []model.Ticket
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return out, nil
}

// GetTicket fetches one ticket.
func (c *Client) GetTicket(ctx context.Context, id string) (*model.Ticket, error) {
	var out model.Ticket
	if err := c.do(ctx, http.MethodGet, ticketPath(id), nil, &out); err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return &out, nil
}

// CreateTicket opens a ticket owned by the token's user.
func (c *Client) CreateTicket(ctx context.Context, title, description string) (*model.Ticket, error) {
	var out model.Ticket
	body := dto.CreateTicketRequest{Title: title, Description: description}
	if err := c.do(ctx, http.MethodPost, "/tickets", body, &out); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	return &out, nil
}

// UpdateTicket replaces title, description and status.
func (c *Client) UpdateTicket(ctx context.Context, id string, req dto.UpdateTicketRequest) (*model.Ticket, error) {
	var out model.Ticket
	if err := c.do(ctx, http.MethodPut, ticketPath(id), req, &out); err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}
	return &out, nil
}

// DeleteTicket removes a ticket and its comments.
func (c *Client) DeleteTicket(ctx context.Context, id string) error {
	var out dto.DeleteResponse
	if err := c.do(ctx, http.MethodDelete, ticketPath(id), nil, &out); err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	return nil
}

// Solution asks the server for a generated fix for the ticket.
func (c *Client) Solution(ctx context.Context, id string) (string, error) {
	var out dto.SolutionResponse
	if err := c.do(ctx, http.MethodGet, ticketPath(id)+"/solution", nil, &out); err != nil {
		return "", fmt.Errorf("solution: %w", err)
	}
	return out.Solution, nil
}

// ListComments returns a ticket's comments, oldest first.
func (c *Client) ListComments(ctx context.Context, ticketID string) ([]model.Comment, error) {
	var out []model.Comment
	if err := c.do(ctx, http.MethodGet, ticketPath(ticketID)+"/comments", nil, &out); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return out, nil
}

// AddComment posts a comment as the token's user.
func (c *Client) AddComment(ctx context.Context, ticketID, content string) (*model.Comment, error) {
	var out model.Comment
	body := dto.CreateCommentRequest{Content: content}
	if err := c.do(ctx, http.MethodPost, ticketPath(ticketID)+"/comments", body, &out); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return &out, nil
}

// AdminUsers lists every account. Requires an admin token.
func (c *Client) AdminUsers(ctx context.Context) ([]model.UserSummary, error) {
	var out []model.UserSummary
	if err := c.do(ctx, http.MethodGet, "/admin/users", nil, &out); err != nil {
		return nil, fmt.Errorf("admin users: %w", err)
	}
	return out, nil
}

// AdminTickets lists every ticket. Requires an admin token.
func (c *Client) AdminTickets(ctx context.Context) ([]model.Ticket, error) {
	var out []model.Ticket
	if err := c.do(ctx, http.MethodGet, "/admin/tickets", nil, &out); err != nil {
		return nil, fmt.Errorf("admin tickets: %w", err)
	}
	return out, nil
}

func ticketPath(id string) string {
	return "/tickets/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body dto.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Details = body.Details
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(raw))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
