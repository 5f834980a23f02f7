package arkham

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery is returned when a search query is blank.
	ErrEmptyQuery = errors.New("search query is empty")

	// ErrNoAPIKey is returned when an authenticated endpoint is called without a key.
	ErrNoAPIKey = errors.New("API key is required")

	// ErrUnhealthy is returned when the health endpoint answers with anything but "ok".
	ErrUnhealthy = errors.New("API health check failed")

	// ErrInvalidBaseURL is returned when the API base URL is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid API base URL")
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	// Code is the HTTP status code.
	Code int

	// Body is the (truncated) response body.
	Body string
}

// Error implements error.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http status %d", e.Code)
	}
	return fmt.Sprintf("http status %d: %s", e.Code, e.Body)
}

// IsStatus reports whether err is a *StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
