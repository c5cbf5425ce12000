// Package httpclient is the outbound HTTP transport shared by the events feed
// and the weather providers: optional rate limiting, a circuit breaker, and a
// single TransportError type for every network or status failure.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-events/internal/metrics"
)

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// maxBodyBytes bounds a single response body.
const maxBodyBytes = 32 << 20

// TransportError reports a failed request: network error, non-2xx status or an
// open circuit. URL never carries the query string so API keys stay out of logs.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport: GET %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport: GET %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is (or wraps) a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// NewHTTPClient returns a client with a tuned transport and an overall timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// Getter issues GET requests for one upstream target.
type Getter struct {
	name    string
	client  *http.Client
	limiter *rate.Limiter
	circuit *gobreaker.CircuitBreaker
	metrics *metrics.Collector
}

// Option customizes a Getter.
type Option func(*Getter)

// WithRateLimit throttles requests to rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(g *Getter) {
		if burst <= 0 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMetrics records outbound request outcomes on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(g *Getter) { g.metrics = c }
}

// NewGetter creates a Getter named after its upstream; the name labels the
// circuit breaker and metrics.
func NewGetter(name string, client *http.Client, opts ...Option) *Getter {
	g := &Getter{
		name:   name,
		client: client,
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Interval:    1 * time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Get fetches rawURL and returns the response body. Any failure before a 2xx
// body is fully read is a *TransportError. There are no retries.
func (g *Getter) Get(ctx context.Context, rawURL string) ([]byte, error) {
	safeURL := Redact(rawURL)
	if g.client == nil {
		return nil, &TransportError{URL: safeURL, Err: errNoHTTPClient}
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			g.metrics.RecordOutbound(g.name, "canceled")
			return nil, &TransportError{URL: safeURL, Err: fmt.Errorf("rate limit wait canceled: %w", err)}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &TransportError{URL: safeURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	var status int
	result, err := g.circuit.Execute(func() (interface{}, error) {
		resp, execErr := g.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		// Handle rate limiting and server errors explicitly.
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, errRateLimited
		}
		if resp.StatusCode >= 500 {
			return nil, errServerError
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, errUnexpected
		}

		return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		g.metrics.RecordOutbound(g.name, "error")
		return nil, &TransportError{URL: safeURL, StatusCode: status, Err: err}
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, &TransportError{URL: safeURL, Err: fmt.Errorf("unexpected result type from circuit breaker")}
	}
	g.metrics.RecordOutbound(g.name, "ok")
	return body, nil
}

// GetJSON fetches rawURL and decodes the body into out.
func (g *Getter) GetJSON(ctx context.Context, rawURL string, out interface{}) error {
	body, err := g.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", g.name, err)
	}
	return nil
}

// Redact drops the query string and fragment from u for logging.
func Redact(u string) string {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return "(unparseable url)"
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	parsed.User = nil
	return parsed.String()
}
