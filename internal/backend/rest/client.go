// Package rest implements the service.Service interface against the duties REST API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"duties/internal/service"
)

const (
	// DefaultBaseURL is used when no API URL is configured.
	DefaultBaseURL = "http://localhost:3001/api"

	// DefaultTimeout bounds every API call.
	DefaultTimeout = 10 * time.Second

	// RequestIDHeader carries a per-request correlation id.
	RequestIDHeader = "X-Request-ID"

	// MaxResponseSize caps the body read from a single response.
	MaxResponseSize = 4 << 20
)

// ErrResponseTooLarge is wrapped when a response body exceeds MaxResponseSize.
var ErrResponseTooLarge = errors.New("response body too large")

// Client implements service.Service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url: unsupported scheme %q", u.Scheme)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: DefaultTimeout,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope is the success payload shape: {success, data}.
type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

// errorEnvelope is the failure payload shape: {error, message, details?}.
type errorEnvelope struct {
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

func get[T any](ctx context.Context, c *Client, path string) (T, error) {
	status, data, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](status, data)
}

func post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	status, data, err := c.send(ctx, http.MethodPost, path, body)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](status, data)
}

func put[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	status, data, err := c.send(ctx, http.MethodPut, path, body)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](status, data)
}

// delete issues a DELETE. Any 2xx is success; the body is ignored.
func (c *Client) delete(ctx context.Context, path string) error {
	_, _, err := c.send(ctx, http.MethodDelete, path, nil)
	return err
}

// send performs one request and returns the status and body of a 2xx response.
// Every failure is returned as a *service.NetworkError.
func (c *Client) send(ctx context.Context, method, path string, body any) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, service.NewNetworkError(0, "", fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, service.NewNetworkError(0, "", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("api request failed",
			"method", method, "path", path, "request_id", requestID,
			"duration", time.Since(start), "error", err)
		return 0, nil, wrapError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return resp.StatusCode, nil, wrapError(err)
	}
	if len(data) > MaxResponseSize {
		c.log.Debug("api response too large",
			"method", method, "path", path, "status", resp.StatusCode, "request_id", requestID)
		return resp.StatusCode, nil, service.NewNetworkError(resp.StatusCode, "response too large",
			fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, MaxResponseSize))
	}

	c.log.Debug("api request",
		"method", method, "path", path, "status", resp.StatusCode,
		"request_id", requestID, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, nil, decodeError(resp.StatusCode, data)
	}
	return resp.StatusCode, data, nil
}

func decode[T any](status int, data []byte) (T, error) {
	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		var zero T
		return zero, service.NewNetworkError(status, "", fmt.Errorf("decode response: %w", err))
	}
	if !env.Success {
		var zero T
		return zero, service.NewNetworkError(status, "", errors.New("response not marked successful"))
	}
	return env.Data, nil
}

// decodeError turns a non-2xx body into a NetworkError, preferring the
// server-supplied message.
func decodeError(status int, data []byte) error {
	var env errorEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return service.NewNetworkError(status, "", fmt.Errorf("http status %d", status))
	}
	ne := service.NewNetworkError(status, env.Message, fmt.Errorf("http status %d", status))
	ne.Code = env.Error
	ne.Details = env.Details
	return ne
}

// wrapError wraps transport errors with user-friendly messages.
func wrapError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return service.NewNetworkError(0, "request timed out", err)
	case errors.Is(err, context.Canceled):
		return service.NewNetworkError(0, "request cancelled", err)
	default:
		return service.NewNetworkError(0, "", err)
	}
}
