package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/goccy/go-json"

	"multibroker-console/internal/logger"
)

// Client represents an HTTP client with common configuration and utilities
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
	useLogging bool
}

// StatusError is returned for non-2xx responses so callers can tell a
// backend rejection apart from an unreachable backend.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// IsStatus reports whether err is a non-2xx response error.
func IsStatus(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

func (c *Client) logDebug(ctx context.Context, msg string, args ...interface{}) {
	if c.useLogging {
		logger.Debug(ctx, msg, args...)
	}
}

func (c *Client) logWarn(ctx context.Context, msg string, args ...interface{}) {
	if c.useLogging {
		logger.Warn(ctx, msg, args...)
	}
}

func (c *Client) logError(ctx context.Context, msg string, args ...interface{}) {
	if c.useLogging {
		logger.Error(ctx, msg, args...)
	}
}

// ClientOption configures the API client
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithBaseURL sets the base URL for all requests
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHeader sets a default header for all requests
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithLogging enables request/response logging
func WithLogging(enabled bool) ClientOption {
	return func(c *Client) {
		c.useLogging = enabled
	}
}

// NewClient creates a new API client with the given options
func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// SetHeader sets or clears a default header after construction. Used for the
// session token once login succeeds.
func (c *Client) SetHeader(key, value string) {
	if value == "" {
		delete(c.headers, key)
		return
	}
	c.headers[key] = value
}

// Request represents an HTTP request configuration
type Request struct {
	Method  string
	URL     string
	Body    interface{}
	Headers map[string]string
	Query   map[string]string
	ctx     context.Context
}

// Response represents an HTTP response
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// NewRequest creates a new request
func NewRequest(method, url string) *Request {
	return &Request{
		Method:  method,
		URL:     url,
		Headers: make(map[string]string),
		ctx:     context.Background(),
	}
}

// WithContext sets the context for the request
func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

// WithBody sets the request body (will be JSON encoded)
func (r *Request) WithBody(body interface{}) *Request {
	r.Body = body
	return r
}

// WithQuery sets a query parameter
func (r *Request) WithQuery(key, value string) *Request {
	if r.Query == nil {
		r.Query = make(map[string]string)
	}
	r.Query[key] = value
	return r
}

// Do executes the HTTP request
func (c *Client) Do(req *Request) (*Response, error) {
	url := req.URL
	if c.baseURL != "" {
		url = c.baseURL + req.URL
	}

	var bodyReader io.Reader
	if req.Body != nil {
		jsonBody, err := json.Marshal(req.Body)
		if err != nil {
			c.logError(req.ctx, "Failed to marshal request body", "error", err)
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(req.ctx, req.Method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	for key, value := range c.headers {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	c.logDebug(req.ctx, "HTTP Request", "method", req.Method, "url", url)

	startTime := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Supersede-cancellation is routine, not worth an error record.
		if req.ctx.Err() == nil {
			c.logError(req.ctx, "HTTP request failed", "method", req.Method, "url", url, "error", err)
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logDebug(req.ctx, "HTTP Response",
		"method", req.Method,
		"url", url,
		"status", httpResp.StatusCode,
		"duration", time.Since(startTime),
		"bodySize", len(body))

	if httpResp.StatusCode >= 400 {
		c.logWarn(req.ctx, "HTTP error response",
			"method", req.Method,
			"url", url,
			"status", httpResp.StatusCode,
			"body", string(body))
		return nil, &StatusError{StatusCode: httpResp.StatusCode, Body: string(body)}
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       body,
		Headers:    httpResp.Header,
	}, nil
}

// GET performs a GET request
func (c *Client) GET(ctx context.Context, url string, query ...map[string]string) (*Response, error) {
	req := NewRequest(http.MethodGet, url).WithContext(ctx)
	if len(query) > 0 {
		for key, value := range query[0] {
			req.WithQuery(key, value)
		}
	}
	return c.Do(req)
}

// POST performs a POST request
func (c *Client) POST(ctx context.Context, url string, body interface{}) (*Response, error) {
	return c.Do(NewRequest(http.MethodPost, url).WithContext(ctx).WithBody(body))
}

// DELETE performs a DELETE request
func (c *Client) DELETE(ctx context.Context, url string) (*Response, error) {
	return c.Do(NewRequest(http.MethodDelete, url).WithContext(ctx))
}

// ParseJSON parses the response body as JSON into the given struct
func (r *Response) ParseJSON(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return nil
}

// String returns the response body as a string
func (r *Response) String() string {
	return string(r.Body)
}

// RetryConfig configures retry behavior
type RetryConfig struct {
	MaxAttempts uint
	InitialWait time.Duration
	MaxWait     time.Duration
}

// DefaultRetryConfig returns default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Second,
		MaxWait:     5 * time.Second,
	}
}

// DoWithRetry executes a request with exponential backoff. Backend
// rejections (4xx) are permanent: retrying a rejected payload cannot
// succeed, so only transport failures and 5xx are retried.
func (c *Client) DoWithRetry(req *Request, config *RetryConfig) (*Response, error) {
	if config == nil {
		config = DefaultRetryConfig()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = config.InitialWait
	b.MaxInterval = config.MaxWait

	operation := func() (*Response, error) {
		resp, err := c.Do(req)
		if err != nil {
			var se *StatusError
			if errors.As(err, &se) && se.StatusCode < 500 {
				return nil, backoff.Permanent(err)
			}
			c.logWarn(req.ctx, "Request failed, retrying", "url", req.URL, "error", err)
			return nil, err
		}
		return resp, nil
	}

	resp, err := backoff.Retry(req.ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(config.MaxAttempts),
	)
	if err != nil {
		return nil, fmt.Errorf("all %d retry attempts failed: %w", config.MaxAttempts, err)
	}
	return resp, nil
}
