// Package httpapi is the shared outbound HTTP client used by every feature that
// talks to a hosted API.
//
// Each Client guards one upstream service with a circuit breaker and a token
// bucket, deduplicates identical in-flight GETs and records Prometheus metrics.
// Requests are never retried.
package httpapi

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
	"time"

	"github.com/pscheid92/nano/internal/metrics"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 4 << 20

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Service, e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 from an upstream service.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

type Client struct {
	name      string
	http      *http.Client
	userAgent string
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	group     singleflight.Group
}

type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client (tests point it at httptest servers).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRate caps outbound requests per second with the given burst.
func WithRate(perSecond float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// New builds a client for one upstream service. The breaker opens after five
// consecutive transport or 5xx failures and half-opens after 30 seconds.
func New(name string, opts ...Option) *Client {
	c := &Client{
		name:    name,
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed",
				"component", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.CircuitBreakerStateChanges.WithLabelValues(name, to.String()).Inc()
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return c
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Name is the service label used in logs and metrics.
func (c *Client) Name() string {
	return c.name
}

// GetBody fetches rawURL with query appended. Identical concurrent GETs share one request.
func (c *Client) GetBody(ctx context.Context, rawURL string, query url.Values) ([]byte, error) {
	target, err := withQuery(rawURL, query)
	if err != nil {
		return nil, err
	}

	v, err, shared := c.group.Do(target, func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to build request: %w", c.name, err)
		}
		return c.do(req)
	})
	if shared {
		metrics.ExternalRequestsCoalesced.WithLabelValues(c.name).Inc()
	}
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// GetJSON fetches rawURL and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, query url.Values, out any) error {
	body, err := c.GetBody(ctx, rawURL, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", c.name, err)
	}
	return nil
}

// PostJSON sends payload as a JSON body and decodes the JSON reply into out.
func (c *Client) PostJSON(ctx context.Context, rawURL string, header http.Header, payload, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: failed to encode request: %w", c.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", c.name, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", c.name, err)
	}
	return nil
}

type response struct {
	status int
	body   []byte
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		c.record("rate_limited", 0)
		return nil, fmt.Errorf("%s: rate limiter: %w", c.name, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	// Only transport errors and 5xx count against the breaker; 4xx is a valid answer.
	v, err := c.breaker.Execute(func() (any, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, err
		}
		r := response{status: resp.StatusCode, body: body}
		if resp.StatusCode >= http.StatusInternalServerError {
			return r, c.statusError(r)
		}
		return r, nil
	})
	elapsed := time.Since(start)

	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			c.record("http_error", elapsed)
			return nil, err
		}
		c.record("error", elapsed)
		return nil, fmt.Errorf("%s: request failed: %w", c.name, err)
	}

	r := v.(response)
	if r.status < 200 || r.status > 299 {
		c.record("http_error", elapsed)
		return nil, c.statusError(r)
	}

	c.record("success", elapsed)
	return r.body, nil
}

func (c *Client) statusError(r response) *StatusError {
	body := string(r.body)
	if len(body) > 200 {
		body = body[:200]
	}
	return &StatusError{Service: c.name, StatusCode: r.status, Body: body}
}

func (c *Client) record(result string, elapsed time.Duration) {
	metrics.ExternalRequestsTotal.WithLabelValues(c.name, result).Inc()
	if elapsed > 0 {
		metrics.ExternalRequestDuration.WithLabelValues(c.name).Observe(elapsed.Seconds())
	}
}

func withQuery(rawURL string, query url.Values) (string, error) {
	if len(query) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
