// Package api is the typed HTTP gateway to the plog backend.
//
// It attaches the session credential, serializes JSON bodies, and collapses
// every remote failure (transport errors, non-2xx statuses with or without a
// structured message) into a single *Error carrying a human-readable message.
// Nothing past this boundary sees a raw transport error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000"

// apiKeyHeader carries the session credential on authenticated requests.
const apiKeyHeader = "X-API-Key"

const httpTimeout = 30 * time.Second

// Error is the single error shape surfaced for any failed remote call.
// Callers display Message; they never branch on the failure kind.
type Error struct {
	Message    string
	StatusCode int // 0 for transport-level failures
}

func (e *Error) Error() string {
	return e.Message
}

// Client issues requests against one backend base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the given base URL. An empty baseURL falls
// back to DefaultBaseURL; a trailing slash is stripped so paths join cleanly.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: httpTimeout,
		},
	}
}

// BaseURL returns the resolved backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CallOptions controls a single request.
type CallOptions struct {
	// APIKey, when non-empty, is sent in the X-API-Key header.
	APIKey string
	// Body, when non-nil, is JSON-encoded with a matching Content-Type.
	// A []byte or io.Reader body is passed through unchanged.
	Body any
	// Out, when non-nil, receives the decoded JSON response body. When nil
	// the response body is discarded even if the server attached one.
	Out any
}

// Call performs one HTTP request against the backend. On any failure the
// returned error is a *Error whose message is, in order of preference: the
// server's structured "detail" message, the raw HTTP status text, or the
// transport error.
func (c *Client) Call(ctx context.Context, method, path string, opts CallOptions) error {
	body, contentType, err := encodeBody(opts.Body)
	if err != nil {
		return &Error{Message: fmt.Sprintf("encoding request body: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Message: fmt.Sprintf("creating request: %v", err)}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if opts.APIKey != "" {
		req.Header.Set(apiKeyHeader, opts.APIKey)
	}

	slog.Debug("api call", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Message: fmt.Sprintf("reading response body: %v", err), StatusCode: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Message: errorMessage(resp, respBody), StatusCode: resp.StatusCode}
	}

	if opts.Out == nil {
		return nil
	}

	if err := json.Unmarshal(respBody, opts.Out); err != nil {
		return &Error{
			Message:    fmt.Sprintf("parsing response (status %d): %v", resp.StatusCode, err),
			StatusCode: resp.StatusCode,
		}
	}
	return nil
}

// encodeBody prepares the request body. Raw readers and byte slices pass
// through untouched; anything else is marshaled as JSON.
func encodeBody(v any) (io.Reader, string, error) {
	switch b := v.(type) {
	case nil:
		return nil, "", nil
	case io.Reader:
		return b, "", nil
	case []byte:
		return bytes.NewReader(b), "", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// errorMessage extracts a human-readable message from a non-2xx response.
// The backend reports failures as {"detail": "..."}; when that is missing or
// unparseable the HTTP status text stands in.
func errorMessage(resp *http.Response, body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status %d", resp.StatusCode)
}
