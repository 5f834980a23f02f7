package arkham

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// KeyStatus is the outcome of an API key check.
type KeyStatus struct {
	// OK is true when the key was accepted.
	OK bool `json:"ok"`

	// Message describes a rejection or failure. Empty when OK.
	Message string `json:"message,omitempty"`
}

// CheckKey verifies the configured API key against an authenticated endpoint.
// It never returns an error; failures are described in the status.
func (c *Client) CheckKey(ctx context.Context) KeyStatus {
	if c.apiKey == "" {
		return KeyStatus{Message: ErrNoAPIKey.Error()}
	}

	_, err := c.get(ctx, "/chains", nil, c.apiKey)
	if err == nil {
		return KeyStatus{OK: true}
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return KeyStatus{Message: fmt.Sprintf("API key rejected (%s)", se.Error())}
		default:
			return KeyStatus{Message: se.Error()}
		}
	}
	return KeyStatus{Message: err.Error()}
}

// Health probes the unauthenticated health endpoint.
// It succeeds iff the body, trimmed and lower-cased, equals "ok".
func (c *Client) Health(ctx context.Context) error {
	body, err := c.get(ctx, "/health", nil, "")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if got := strings.ToLower(strings.TrimSpace(string(body))); got != "ok" {
		return fmt.Errorf("%w: unexpected body %q", ErrUnhealthy, truncate(got, 64))
	}
	return nil
}
