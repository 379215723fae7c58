package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// MaxResponseSize is the maximum allowed response body size (1MB)
const MaxResponseSize = 1 << 20

// DefaultTimeout applies to every request unless overridden
const DefaultTimeout = 10 * time.Second

var (
	// ErrResponseTooLarge is returned when a response exceeds MaxResponseSize
	ErrResponseTooLarge = errors.New("response body exceeds maximum allowed size")
	// ErrUnauthorized matches a *StatusError carrying 401
	ErrUnauthorized = errors.New("unauthorized")
)

// StatusError is a non-2xx response from the backend
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: server returned status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: server returned status %d: %s", e.Method, e.Path, e.Code, e.Message)
}

// Is lets errors.Is(err, ErrUnauthorized) match a 401
func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.Code == http.StatusUnauthorized
}

// TokenSource yields the bearer token for outgoing requests. An error
// matching session.ErrNoToken means "send the request without one".
type TokenSource interface {
	Token() (string, error)
}

// Client is the console's single configured connection to the backend
type Client struct {
	baseURL        string
	timeout        time.Duration
	tokens         TokenSource
	onUnauthorized func(*http.Request)
	base           http.RoundTripper
	log            zerolog.Logger
	httpClient     *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithTimeout overrides DefaultTimeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithTokenSource enables bearer authentication
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithUnauthorizedHandler registers fn to run when an authenticated request
// comes back 401
func WithUnauthorizedHandler(fn func(*http.Request)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithLogger sets the interceptor logger
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithTransport replaces the underlying round tripper
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.base = rt }
}

// NewClient creates a new API client rooted at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		base:    http.DefaultTransport,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.httpClient = &http.Client{
		Timeout:   c.timeout,
		Transport: chain(c.base, c.requestInterceptor, c.responseInterceptor),
	}
	return c
}

// BaseURL returns the fixed base address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HealthResponse represents the server health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// Health checks if the server is healthy
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if _, err := c.do(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// do sends one JSON request and decodes a JSON response into out. Non-2xx
// responses come back as *StatusError.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to server: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := readLimitedResponse(resp.Body, MaxResponseSize)
	if err != nil {
		return resp.StatusCode, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &StatusError{
			Method:  method,
			Path:    path,
			Code:    resp.StatusCode,
			Message: errorMessage(data),
		}
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// errorMessage pulls {"error": "..."} out of a rejection body, falling back
// to the raw text
func errorMessage(data []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(data))
}

// readLimitedResponse reads up to maxSize bytes and fails if the body is
// larger
func readLimitedResponse(r io.Reader, maxSize int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, ErrResponseTooLarge
	}
	return data, nil
}
