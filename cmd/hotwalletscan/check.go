package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// errCheckFailed is returned when the key or the health probe fails.
var errCheckFailed = errors.New("API check failed")

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the API key and API health",
		Long: `Check calls the unauthenticated health endpoint and an authenticated
endpoint with the configured API key, then prints both results.

Examples:
  hotwalletscan check
  hotwalletscan check --api-key <key>`,
		Args: cobra.NoArgs,
		RunE: runCheckCmd,
	}
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateConnection(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	client, err := newClient(cfg, newLogger(cmd, cfg))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ctx := cmd.Context()
	ok := true

	fmt.Fprintf(out, "API:    %s\n", client.BaseURL())
	if err := client.Health(ctx); err != nil {
		ok = false
		fmt.Fprintf(out, "Health: FAIL (%v)\n", err)
	} else {
		fmt.Fprintln(out, "Health: OK")
	}

	if status := client.CheckKey(ctx); status.OK {
		fmt.Fprintln(out, "Key:    OK")
	} else {
		ok = false
		fmt.Fprintf(out, "Key:    FAIL (%s)\n", status.Message)
	}

	if !ok {
		return errCheckFailed
	}
	return nil
}
