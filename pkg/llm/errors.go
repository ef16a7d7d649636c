package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// HTTPError carries the status code of a failed provider call so the retry
// decorator can distinguish transient failures from permanent ones.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("llm provider error: status %d, body: %s", e.Status, e.Body)
}

// IsTransient reports whether an error is worth retrying: retryable HTTP
// statuses and timeouts, but never context cancellation.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.Status {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	// Unwrapped transport errors (connection refused, reset) are transient
	return true
}
