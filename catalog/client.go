package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	defaultRetryDelay = time.Second
)

// Client queries a photometric catalog over HTTP. Requests are rate
// limited and transient failures are retried with exponential backoff;
// malformed queries fail immediately.
type Client struct {
	base    string
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger

	maxRetries int
	retryDelay time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient substitutes the HTTP transport.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithRateLimit sets the sustained request rate and burst size.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger attaches a logger; retries are logged at debug level.
func WithLogger(log *zap.Logger) ClientOption {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMaxRetries caps retry attempts for transient failures.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithRetryDelay sets the initial backoff delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.retryDelay = d
		}
	}
}

// NewClient builds a Client for a catalog service base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		base:       baseURL,
		http:       &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(5), 10),
		log:        zap.NewNop(),
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// ConeSearch implements Querier.
func (c *Client) ConeSearch(ctx context.Context, ra, dec, radius float64) ([]Source, error) {
	q := url.Values{}
	q.Set("ra", fmt.Sprintf("%.6f", ra))
	q.Set("dec", fmt.Sprintf("%.6f", dec))
	q.Set("radius", fmt.Sprintf("%.6f", radius))
	endpoint := c.base + "/cone?" + q.Encode()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay << (attempt - 1)
			c.log.Debug("retrying catalog query",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		sources, retryable, err := c.fetch(ctx, endpoint)
		if err == nil {
			return sources, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %d attempts: %v", ErrUnavailable, c.maxRetries+1, lastErr)
}

func (c *Client) fetch(ctx context.Context, endpoint string) (sources []Source, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrBadQuery, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("status %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("%w: status %d", ErrBadQuery, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&sources); err != nil {
		return nil, false, fmt.Errorf("%w: decode: %v", ErrBadQuery, err)
	}
	if len(sources) == 0 {
		return nil, false, ErrEmpty
	}
	return sources, false, nil
}
