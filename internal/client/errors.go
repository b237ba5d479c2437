// ABOUTME: Error values returned by the API client
// ABOUTME: StatusError carries the HTTP status so callers can react to rejections

package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingToken means an auth endpoint answered without a usable token
	ErrMissingToken = errors.New("response did not contain a token")
	// ErrInvalidResponse means the body could not be decoded
	ErrInvalidResponse = errors.New("invalid response from backend")
)

// StatusError is returned for any non-2xx response
type StatusError struct {
	StatusCode int
	Message    string
	Code       int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// IsUnauthorized reports whether err is a 401 or 422 rejection
func IsUnauthorized(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.StatusCode == http.StatusUnauthorized ||
		statusErr.StatusCode == http.StatusUnprocessableEntity
}

// ServerMessage returns the backend-supplied message carried by err, if any
func ServerMessage(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Message
	}
	return ""
}
