// Package client is the typed HTTP wrapper every resource service goes
// through. It owns the base URL, bearer-token injection and the 401
// redirect-to-login behaviour.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SigNoz/ecommerce-console/internal/metrics"
	"github.com/SigNoz/ecommerce-console/internal/models"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxBodyBytes = 16 << 20

// TokenSource is where the bearer token lives between requests
type TokenSource interface {
	Get(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// LoginRedirector is told once for every 401 response
type LoginRedirector interface {
	RedirectToLogin(ctx context.Context)
}

// Response is the raw envelope of a successful call
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client talks JSON to the upstream REST API
type Client struct {
	baseURL    *url.URL
	http       *http.Client
	tokens     TokenSource
	redirector LoginRedirector
	metrics    *metrics.AppMetrics
	logger     zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRedirector sets who is told about 401 responses
func WithRedirector(r LoginRedirector) Option {
	return func(c *Client) { c.redirector = r }
}

// WithMetrics records upstream request metrics
func WithMetrics(m *metrics.AppMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the client logger
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client rooted at baseURL, e.g. http://localhost:8000/api/v1
func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme and host required", baseURL)
	}

	c := &Client{
		baseURL: u,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   15 * time.Second,
		},
		tokens:  tokens,
		metrics: metrics.NewNoop(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get issues GET path with optional query parameters
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

// Post issues POST path with a JSON body
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

// Put issues PUT path with a JSON body
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, nil, body)
}

// Patch issues PATCH path with a JSON body
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPatch, path, nil, body)
}

// Delete issues DELETE path
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	start := time.Now()
	resource := resourceOf(path)

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamRequest(ctx, method, resource, 0, start)
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("upstream request failed")
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.metrics.RecordUpstreamRequest(ctx, method, resource, resp.StatusCode, start)
	if err != nil {
		return nil, fmt.Errorf("%s %s: failed to read response: %w", method, path, err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("upstream request")

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(ctx)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(data),
			Body:       data,
		}
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s %s: failed to encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		token, err := c.tokens.Get(ctx)
		if err != nil {
			c.logger.Warn().Err(err).Msg("could not read access token, sending request without it")
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// handleUnauthorized clears the stored token and redirects to login. It
// never re-issues the request, so one 401 yields exactly one redirect.
func (c *Client) handleUnauthorized(ctx context.Context) {
	if c.tokens != nil {
		if err := c.tokens.Clear(ctx); err != nil {
			c.logger.Error().Err(err).Msg("failed to clear access token after 401")
		}
	}
	if c.redirector != nil {
		c.redirector.RedirectToLogin(ctx)
	}
}

// Decode unmarshals a response body into T
func Decode[T any](resp *Response) (T, error) {
	var out T
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return out, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}

// DecodePage normalizes a list response into the single page envelope
func DecodePage[T any](resp *Response) (models.Page[T], error) {
	page, err := models.ParsePage[T](resp.Body)
	if err != nil {
		return page, fmt.Errorf("failed to decode list response: %w", err)
	}
	return page, nil
}

func resourceOf(path string) string {
	trimmed := strings.Trim(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}
