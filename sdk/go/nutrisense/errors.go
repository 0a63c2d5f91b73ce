// Package nutrisense provides a Go client for the NutriSense analysis API.
package nutrisense

import (
	"errors"
	"fmt"
)

// Error represents an error response from the NutriSense API with the HTTP
// status code and the server's user-facing message.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("nutrisense: %d: %s", e.StatusCode, e.Message)
}

// IsRateLimited returns true if the error is a 429 (Too Many Requests).
func IsRateLimited(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode == 429
	}
	return false
}

// IsQuotaExceeded returns true if the error is a 402 (Payment Required).
func IsQuotaExceeded(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode == 402
	}
	return false
}

// IsNotFound returns true if the error is a 404.
func IsNotFound(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode == 404
	}
	return false
}
