// Package llm talks to the text-generation server that drafts ticket solutions.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	// DialTimeout is the connection timeout. There is no overall request
	// timeout; generation is bounded only by the caller's context.
	DialTimeout = 10 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 10 * time.Second

	generatePath = "/api/generate"
	// maxErrorBody caps how much of a failed response is read into the error.
	maxErrorBody = 4 << 10
)

// ErrMalformedResponse is returned when the reply is not the expected JSON.
var ErrMalformedResponse = errors.New("malformed generation response")

// StatusError reports a non-2xx reply from the generation server.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status code %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status code %d: %s", e.StatusCode, e.Message)
}

// NewHTTPClient creates an HTTP client for generation calls.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: TLSHandshakeTimeout,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Client calls POST {baseURL}/api/generate.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a Client for the given server and model.
// A nil httpClient uses NewHTTPClient.
func New(baseURL, model string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    httpClient,
		logger:  logger.With("component", "llm"),
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

// Generate sends prompt to the model and returns the generated text verbatim.
// Streaming is disabled on the request; if the server streams anyway the
// newline-delimited chunks are joined.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Model: c.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	text, err := decodeGenerate(resp.Body)
	if err != nil {
		return "", err
	}

	c.logger.Debug("generation complete",
		"model", c.model,
		"prompt_len", len(prompt),
		"response_len", len(text),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return text, nil
}

// decodeGenerate reads one JSON object or a stream of them.
func decodeGenerate(r io.Reader) (string, error) {
	dec := json.NewDecoder(r)
	var sb strings.Builder
	seen := false

	for {
		var chunk generateChunk
		if err := dec.Decode(&chunk); err != nil {
			if errors.Is(err, io.EOF) && seen {
				break
			}
			return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		seen = true

		if chunk.Error != "" {
			return "", errors.New(chunk.Error)
		}
		sb.WriteString(chunk.Response)
		if chunk.Done {
			break
		}
	}

	return sb.String(), nil
}

// errorMessage extracts {"error": "..."} from a failed reply, falling back
// to the trimmed body text.
func errorMessage(raw []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(raw))
}
