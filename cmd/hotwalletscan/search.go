package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/hotwalletscan/internal/config"
	"github.com/nao1215/hotwalletscan/internal/report"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search entities by name",
		Long: `Search looks up entities matching the query and prints their IDs.
Use an ID with 'hotwalletscan scan' to crawl that exact entity.

Examples:
  hotwalletscan search binance
  hotwalletscan search "wintermute" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearchCmd,
	}
	cmd.Flags().BoolP("json", "j", false, "Output entities as JSON")
	return cmd
}

// runSearchCmd executes the search command.
func runSearchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return config.ErrNoAPIKey
	}
	if err := cfg.ValidateConnection(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	client, err := newClient(cfg, newLogger(cmd, cfg))
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	entities, err := client.SearchEntities(cmd.Context(), query)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		_, err := report.NewJSONWriter(out, report.WithPrettyPrint()).WriteValue(entities)
		return err
	}

	if len(entities) == 0 {
		return fmt.Errorf("no entity matches %q", query)
	}
	fmt.Fprintf(out, "  %-32s  %-14s  %s\n", "ID", "Type", "Name")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 70))
	for _, e := range entities {
		typ := e.Type
		if typ == "" {
			typ = "-"
		}
		fmt.Fprintf(out, "  %-32s  %-14s  %s\n", e.ID, typ, e.Name)
	}
	return nil
}
