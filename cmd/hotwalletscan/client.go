package main

import (
	"fmt"
	"log/slog"

	"github.com/nao1215/hotwalletscan/internal/arkham"
	"github.com/nao1215/hotwalletscan/internal/config"
	"github.com/nao1215/hotwalletscan/internal/transport"
)

// newClient creates an API client with the transport chain described by cfg:
// a direct sender, optionally through a SOCKS proxy, falling back to the
// forwarding proxy when one is configured.
func newClient(cfg *config.Config, logger *slog.Logger, extra ...arkham.Option) (*arkham.Client, error) {
	directOpts := []transport.DirectOption{
		transport.WithUserAgent(cfg.UserAgent),
	}
	if cfg.SOCKSProxy != "" {
		directOpts = append(directOpts, transport.WithSOCKSProxy(cfg.SOCKSProxy))
	}

	sender, err := transport.New(cfg.ForwardURL, logger, directOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	opts := []arkham.Option{
		arkham.WithAPIKey(cfg.APIKey),
		arkham.WithSender(sender),
		arkham.WithLogger(logger),
	}
	opts = append(opts, extra...)

	return arkham.NewClient(cfg.BaseURL, opts...)
}
