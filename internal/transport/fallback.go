package transport

import (
	"log/slog"
	"net/http"
)

// Fallback tries primary first and, when it fails with a network-level
// error, retries the request exactly once through secondary.
// A cancelled or expired request context is never retried.
type Fallback struct {
	primary   Sender
	secondary Sender
	logger    *slog.Logger
}

// NewFallback creates a Fallback sender. A nil logger uses slog.Default().
func NewFallback(primary, secondary Sender, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

// Send implements Sender.
func (f *Fallback) Send(req *http.Request) (*http.Response, error) {
	resp, err := f.primary.Send(req)
	if err == nil {
		return resp, nil
	}

	if ctxErr := req.Context().Err(); ctxErr != nil {
		return nil, err
	}

	f.logger.Warn("direct request failed, retrying through forwarder",
		"host", req.URL.Host,
		"path", req.URL.Path,
		"error", err,
	)

	return f.secondary.Send(req)
}

// New builds the sender used by the API client: Direct alone, or
// Fallback(Direct, Forwarding(Direct)) when forwardURL is set.
func New(forwardURL string, logger *slog.Logger, opts ...DirectOption) (Sender, error) {
	direct, err := NewDirect(opts...)
	if err != nil {
		return nil, err
	}
	if forwardURL == "" {
		return direct, nil
	}
	fwd, err := NewForwarding(forwardURL, direct)
	if err != nil {
		return nil, err
	}
	return NewFallback(direct, fwd, logger), nil
}
