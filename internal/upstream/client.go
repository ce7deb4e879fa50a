package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"paradas.buscoruna.org/internal/logging"
	"paradas.buscoruna.org/internal/metrics"
)

// ErrUnavailable is returned (wrapped in *Error) whenever the transit API
// cannot be reached or answers with something other than a JSON document.
var ErrUnavailable = errors.New("transit_api_unavailable")

// Error describes a failed upstream request.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: GET %s: HTTP %d", ErrUnavailable, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: GET %s: %v", ErrUnavailable, e.URL, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUnavailable}
	}
	return []error{ErrUnavailable, e.Err}
}

// Client performs single GET requests against the transit API. It never retries.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Collector
	userAgent  string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its timeout is overwritten.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) { c.metrics = m }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a client whose requests are bounded by timeout.
func New(timeout time.Duration, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		httpClient: &http.Client{},
		logger:     logger.With(slog.String("component", "upstream_client")),
		userAgent:  "paradas/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient.Timeout = timeout
	return c
}

// FetchJSON issues one GET to url and decodes the body. Numbers are decoded as
// json.Number so integer ids survive untouched.
func (c *Client) FetchJSON(ctx context.Context, url string) (any, error) {
	start := time.Now()
	value, err := c.fetch(ctx, url)
	c.metrics.ObserveUpstream(endpointFromContext(ctx), err, time.Since(start))
	if err != nil {
		logging.LogError(c.logger, "transit api request failed", err, slog.String("url", url))
		return nil, err
	}
	return value, nil
}

// FetchObject is FetchJSON for endpoints that must answer with a JSON object.
func (c *Client) FetchObject(ctx context.Context, url string) (map[string]any, error) {
	value, err := c.FetchJSON(ctx, url)
	if err != nil {
		return nil, err
	}
	obj, ok := value.(map[string]any)
	if !ok {
		err := &Error{URL: url, Err: fmt.Errorf("expected JSON object, got %T", value)}
		logging.LogError(c.logger, "transit api returned unexpected payload", err, slog.String("url", url))
		return nil, err
	}
	return obj, nil
}

func (c *Client) fetch(ctx context.Context, url string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	defer logging.SafeCloseWithLogging(resp.Body, c.logger, "http_response_body")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return nil, &Error{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, &Error{URL: url, Err: fmt.Errorf("decoding body: %w", err)}
	}
	if dec.More() {
		return nil, &Error{URL: url, Err: errors.New("decoding body: trailing data after JSON document")}
	}
	return value, nil
}

type endpointKey struct{}

// WithEndpoint labels requests made with ctx for metrics (see metrics.Endpoint*).
func WithEndpoint(ctx context.Context, endpoint string) context.Context {
	return context.WithValue(ctx, endpointKey{}, endpoint)
}

func endpointFromContext(ctx context.Context) string {
	if e, ok := ctx.Value(endpointKey{}).(string); ok && e != "" {
		return e
	}
	return metrics.EndpointOther
}
