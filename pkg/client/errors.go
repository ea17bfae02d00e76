package client

import (
	"fmt"
	"time"
)

// AuthError reports a failed token exchange. The exchange is never retried
// automatically.
type AuthError struct {
	StatusCode int
	Detail     string
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("auth failed: HTTP %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("auth failed: %s", e.Detail)
}

// UpstreamError reports a non-200, non-429 API response. The response body
// is captured as the error detail.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned HTTP %d: %s", e.StatusCode, e.Body)
}

// TransportError reports a network-level failure (DNS, timeout, connection
// reset) or an open circuit breaker.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport failure: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// RateLimitError reports that the bounded rate-limit retry loop was
// exhausted without a successful response.
type RateLimitError struct {
	Attempts int
	Cooldown time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited after %d attempts (cooldown %s)", e.Attempts, e.Cooldown)
}
