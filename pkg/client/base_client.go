package client

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig bundles the settings shared by all upstream clients.
type ClientConfig struct {
	Timeout time.Duration
	// RateLimitCooldown is slept between attempts after an HTTP 429.
	RateLimitCooldown time.Duration
	// RateLimitMaxAttempts caps the total attempts per request; values
	// below 1 disable the retry entirely.
	RateLimitMaxAttempts int
	BreakerTimeout       time.Duration
}

// BaseClient wraps an HTTP client with a circuit breaker and the bounded
// rate-limit retry policy shared by both collectors.
type BaseClient struct {
	client         HTTPClient
	logger         *zap.Logger
	circuitBreaker *gobreaker.CircuitBreaker
	cooldown       time.Duration
	maxAttempts    int
	sleep          func(ctx context.Context, d time.Duration) error
}

func NewBaseClient(name string, config ClientConfig, logger *zap.Logger) *BaseClient {
	httpClient := &http.Client{
		Timeout: config.Timeout,
	}

	breakerSettings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				zap.String("client", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	maxAttempts := config.RateLimitMaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &BaseClient{
		client:         httpClient,
		logger:         logger,
		circuitBreaker: gobreaker.NewCircuitBreaker(breakerSettings),
		cooldown:       config.RateLimitCooldown,
		maxAttempts:    maxAttempts,
		sleep:          sleepContext,
	}
}

type httpResult struct {
	status int
	body   []byte
}

// do executes one request through the circuit breaker. The breaker trips on
// transport failures only; HTTP status policy lives in the callers.
func (c *BaseClient) do(req *http.Request) (int, []byte, error) {
	result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return httpResult{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		return 0, nil, &TransportError{Err: err}
	}
	r := result.(httpResult)
	return r.status, r.body, nil
}

// Get issues a GET and applies the shared status policy: 2xx returns the
// body, 429 sleeps the fixed cooldown and retries up to the attempt cap,
// anything else fails with the body captured as the error detail.
func (c *BaseClient) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		mergeHeader(req, header)

		status, body, err := c.do(req)
		if err != nil {
			c.logger.Warn("HTTP request failed",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return nil, err
		}

		switch {
		case status >= 200 && status < 300:
			c.logger.Debug("Request successful",
				zap.String("url", rawURL),
				zap.Int("status", status),
				zap.Int("body_size", len(body)))
			return body, nil

		case status == http.StatusTooManyRequests:
			if attempt >= c.maxAttempts {
				return nil, &RateLimitError{Attempts: attempt, Cooldown: c.cooldown}
			}
			c.logger.Warn("Rate limited, cooling down",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Duration("cooldown", c.cooldown))
			if err := c.sleep(ctx, c.cooldown); err != nil {
				return nil, err
			}

		default:
			return nil, &UpstreamError{StatusCode: status, Body: string(body)}
		}
	}
}

// PostForm issues a single form-encoded POST and returns the raw status and
// body; the caller owns the status policy. Used by the token exchange, which
// must not be retried.
func (c *BaseClient) PostForm(ctx context.Context, rawURL string, header http.Header, form url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	mergeHeader(req, header)
	return c.do(req)
}

func mergeHeader(req *http.Request, header http.Header) {
	for key, values := range header {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
