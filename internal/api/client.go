// Package api provides a typed client for the marketplace backend's REST
// API. It implements a deep module interface - simple per-resource methods
// hiding the request plumbing, envelope normalization and error mapping.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Error is the typed failure every non-2xx response maps to. Callers
// distinguish "not found" / "unauthorized" / "server error" by Status.
type Error struct {
	Status     int
	StatusText string
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// IsNotFound reports whether err is an API error with a 404 status.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsUnauthorized reports whether err is an API error with a 401 or 403
// status, i.e. an authentication or ownership failure.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) &&
		(apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden)
}

// Client talks to the marketplace backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithToken returns a copy of the client that authenticates with the given
// bearer token. The zero token means anonymous requests.
func (c *Client) WithToken(token string) *Client {
	return &Client{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		token:      token,
	}
}

// BaseURL returns the backend base URL the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// LoginURL returns the backend's GitHub OAuth entry point. The redirect
// parameter tells the backend where to send the browser after the handoff.
func (c *Client) LoginURL(redirect string) string {
	u := c.baseURL + "/auth/github/login"
	if redirect != "" {
		u += "?redirect=" + url.QueryEscape(redirect)
	}
	return u
}

// PreviewURL returns the backend redirect endpoint for a component
// version's live preview.
func (c *Client) PreviewURL(slug, version string) string {
	return fmt.Sprintf("%s/preview/%s/%s", c.baseURL, url.PathEscape(slug), url.PathEscape(version))
}

// get performs a GET request and decodes the normalized response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// post performs a POST request with an optional JSON body and decodes the
// normalized response into out.
func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// do issues one request. Caching is disabled on every request; non-2xx
// responses never decode into out - they always return *Error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Status:     resp.StatusCode,
			StatusText: resp.Status,
			Message:    extractMessage(raw, resp.StatusCode, resp.Status),
		}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}

	return normalize(raw, out)
}

// envelope is the backend's optional response wrapper. Older endpoints
// return the payload directly; newer ones wrap it in {success, data}.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// normalize decodes a response body into out, unwrapping the
// {success, data} envelope when present and falling back to treating the
// body as the direct payload.
func normalize(raw []byte, out interface{}) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Success != nil && *env.Success && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decoding response data: %w", err)
		}
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// extractMessage pulls the most useful error text out of a failure body:
// JSON "error" or "message" fields first, then the raw body, then a
// generic "HTTP <status>: <statusText>".
func extractMessage(raw []byte, status int, statusText string) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	if len(raw) > 0 {
		return string(raw)
	}
	return fmt.Sprintf("HTTP %d: %s", status, statusText)
}
