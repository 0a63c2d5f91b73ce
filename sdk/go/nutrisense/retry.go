package nutrisense

import (
	"context"
	"strings"
	"time"
)

// Validation failures will not succeed on retry; everything else
// (rate limits, upstream hiccups, transport errors) is worth another try.
var nonRetryableMarkers = []string{
	"exceeds",
	"required",
	"invalid",
	"Invalid",
	"cannot be empty",
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range nonRetryableMarkers {
		if strings.Contains(msg, marker) {
			return false
		}
	}
	return true
}

// withRetry runs fn up to attempts times with linearly growing delays
// between tries. The last error is returned once attempts are exhausted.
func withRetry[T any](ctx context.Context, attempts int, baseDelay time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(baseDelay * time.Duration(attempt)):
		}
	}

	return zero, lastErr
}
