package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"service unavailable", NewStatusError("search", http.StatusServiceUnavailable), true},
		{"too many requests", NewStatusError("search", http.StatusTooManyRequests), true},
		{"request timeout", NewStatusError("search", http.StatusRequestTimeout), true},
		{"unauthorized", NewStatusError("search", http.StatusUnauthorized), false},
		{"not found", NewStatusError("search", http.StatusNotFound), false},
		{"network timeout", NewTransportError("search", timeoutError{}), true},
		{"connection refused", NewTransportError("search", errors.New("connection refused")), false},
		{"wrapped status", fmt.Errorf("catalog: %w", NewStatusError("search", http.StatusBadGateway)), true},
		{"context canceled", NewTransportError("search", context.Canceled), false},
		{"deadline exceeded", NewTransportError("search", context.DeadlineExceeded), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
