package apperrors

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// IsRetryable reports whether err is a transient transport failure worth retrying:
// request timeouts, rate limiting, server errors and network timeouts.
// Cancelled or expired contexts are never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var transportErr *ErrTransport
	if !errors.As(err, &transportErr) {
		return false
	}
	switch code := transportErr.StatusCode; {
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests, code >= http.StatusInternalServerError:
		return true
	case code != 0:
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
