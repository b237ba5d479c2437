// ABOUTME: HTTP client for the Rerng Addicted admin API
// ABOUTME: Auth calls use the bare transport; data calls go through the interceptor chain

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rerng-addicted/rerng-admin/internal/cache"
	"github.com/rerng-addicted/rerng-admin/internal/transport"
)

// DefaultTimeout bounds every request when no timeout option is given
const DefaultTimeout = 30 * time.Second

// Client is the API client for the admin backend
type Client struct {
	baseURL      string
	timeout      time.Duration
	logger       *slog.Logger
	base         http.RoundTripper
	interceptors []transport.Interceptor
	cacheTTL     time.Duration

	authClient  *http.Client
	httpClient  *http.Client
	detailCache *cache.Cache[*SeriesDetailsResponse]
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger used for request logging
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithBaseTransport replaces the underlying round tripper for every request
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.base = rt }
}

// WithInterceptors wraps data requests with the given interceptors (first is outermost)
func WithInterceptors(interceptors ...transport.Interceptor) Option {
	return func(c *Client) { c.interceptors = append(c.interceptors, interceptors...) }
}

// WithCache enables caching of series detail lookups for ttl
func WithCache(ttl time.Duration) Option {
	return func(c *Client) { c.cacheTTL = ttl }
}

// New creates a new API client with the given base URL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.base == nil {
		c.base = http.DefaultTransport
	}

	logged := transport.LogRequests(c.logger)
	c.authClient = &http.Client{
		Timeout:   c.timeout,
		Transport: transport.Chain(c.base, logged),
	}
	// No cookie jar: the bearer header is the only credential sent
	c.httpClient = &http.Client{
		Timeout:   c.timeout,
		Transport: transport.Chain(c.base, append([]transport.Interceptor{logged}, c.interceptors...)...),
	}
	if c.cacheTTL > 0 {
		c.detailCache = cache.New[*SeriesDetailsResponse](c.cacheTTL)
	}
	return c
}

// BaseURL returns the configured API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PurgeCache drops cached responses, e.g. after the session ends
func (c *Client) PurgeCache() {
	if c.detailCache != nil {
		c.detailCache.Purge()
	}
}

// Close releases background resources
func (c *Client) Close() {
	if c.detailCache != nil {
		c.detailCache.Close()
	}
}

// envelope is the response wrapper used by every backend endpoint
type envelope[T any] struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
}

// doJSON sends a request and decodes a 2xx envelope into out
func (c *Client) doJSON(ctx context.Context, hc *http.Client, method, path string, body any, header http.Header, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := hc.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("request canceled: %w", ctx.Err())
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", ctx.Err())
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	statusErr := &StatusError{StatusCode: resp.StatusCode}

	var errResp envelope[json.RawMessage]
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
		statusErr.Message = errResp.Message
		statusErr.Code = errResp.Code
		statusErr.Detail = errResp.Error
	}
	return statusErr
}
