package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/hotwalletscan/internal/config"
	"github.com/nao1215/hotwalletscan/internal/database"
	"github.com/nao1215/hotwalletscan/internal/report"
)

const historyTimeLayout = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [entity-id]",
		Short: "List recorded runs",
		Long: `History lists the runs recorded by 'hotwalletscan scan'.

Without arguments it lists every entity in the database. With an entity ID it
lists the runs of that entity, newest first. --wallet looks up the runs in
which an address was reported.

Examples:
  # Entities with recorded runs
  hotwalletscan history

  # Runs of one entity
  hotwalletscan history binance

  # Runs that reported an address
  hotwalletscan history --wallet bc1qm34lsc65zpw79lxes69zkqmk6ee3ewf0j77s3h`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}
	cmd.Flags().StringP("wallet", "w", "", "Find the runs that reported this address")
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")
	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	wallet, err := cmd.Flags().GetString("wallet")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	// Validate arguments before opening the database.
	if wallet != "" && len(args) > 0 {
		return errors.New("--wallet cannot be combined with an entity ID")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	switch {
	case wallet != "":
		return listSightings(ctx, out, db, wallet, jsonOutput)
	case len(args) == 0:
		return listEntities(ctx, out, db, jsonOutput)
	default:
		return listRuns(ctx, out, db, args[0], jsonOutput)
	}
}

// openHistory opens the history database in the configured directory.
func openHistory(cfg *config.Config) (*database.HistoryDB, error) {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func writeJSON(out io.Writer, v any) error {
	_, err := report.NewJSONWriter(out, report.WithPrettyPrint()).WriteValue(v)
	return err
}

// listEntities lists every entity that has recorded runs.
func listEntities(ctx context.Context, out io.Writer, db *database.HistoryDB, jsonOutput bool) error {
	entities, err := db.ListEntities(ctx)
	if err != nil {
		return fmt.Errorf("failed to list entities: %w", err)
	}
	if jsonOutput {
		return writeJSON(out, entities)
	}

	if len(entities) == 0 {
		fmt.Fprintln(out, "No runs found in the database.")
		fmt.Fprintln(out, "\nUse 'hotwalletscan scan <entity>' to crawl an entity.")
		return nil
	}

	fmt.Fprintf(out, "Entities (%d):\n\n", len(entities))
	fmt.Fprintf(out, "  %-24s  %-24s  %-5s  %s\n", "ID", "Name", "Runs", "Last run")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 76))
	for _, e := range entities {
		fmt.Fprintf(out, "  %-24s  %-24s  %-5d  %s\n",
			e.ID, truncate(e.Name, 24), e.Runs, e.LastRun.Local().Format(historyTimeLayout))
	}
	fmt.Fprintln(out, "\nUse 'hotwalletscan history <entity-id>' to see the runs of an entity.")
	return nil
}

// listRuns lists the runs of one entity.
func listRuns(ctx context.Context, out io.Writer, db *database.HistoryDB, entityID string, jsonOutput bool) error {
	runs, err := db.GetRunHistory(ctx, entityID)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}
	if jsonOutput {
		return writeJSON(out, runs)
	}

	if len(runs) == 0 {
		fmt.Fprintf(out, "No runs found for %s\n", entityID)
		return nil
	}

	fmt.Fprintf(out, "Runs of %s (%d):\n\n", entityID, len(runs))
	fmt.Fprintf(out, "  %-36s  %-19s  %-6s  %-9s  %s\n", "Run ID", "Started", "Chains", "Addresses", "Failed")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 86))
	for _, r := range runs {
		fmt.Fprintf(out, "  %-36s  %-19s  %-6d  %-9d  %d\n",
			r.ID,
			r.StartedAt.Local().Format(historyTimeLayout),
			len(r.Chains),
			r.Addresses,
			r.FailedChains,
		)
	}
	fmt.Fprintln(out, "\nUse 'hotwalletscan compare "+entityID+"' to compare the latest two runs.")
	return nil
}

// listSightings lists the runs in which an address was reported.
func listSightings(ctx context.Context, out io.Writer, db *database.HistoryDB, address string, jsonOutput bool) error {
	sightings, err := db.FindWallet(ctx, address)
	if err != nil {
		return fmt.Errorf("failed to find wallet: %w", err)
	}
	if jsonOutput {
		return writeJSON(out, sightings)
	}

	if len(sightings) == 0 {
		fmt.Fprintf(out, "%s was not reported by any recorded run\n", address)
		return nil
	}

	fmt.Fprintf(out, "%s (%d sightings):\n\n", address, len(sightings))
	for _, s := range sightings {
		fmt.Fprintf(out, "  %s  %-12s  %s (%s)  run %s\n",
			s.SeenAt.Local().Format(historyTimeLayout), s.Row.Chain, s.EntityName, s.EntityID, s.RunID)
	}
	return nil
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
