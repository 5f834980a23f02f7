package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/hotwalletscan/internal/database"
	"github.com/nao1215/hotwalletscan/internal/model"
)

// NewCompareCmd creates the compare command.
// This command compares the wallets of two recorded runs of an entity.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <entity-id>",
		Short: "Compare the wallets of two recorded runs",
		Long: `Compare shows which hot wallets appeared and which disappeared between
two runs of an entity.

By default the latest two runs are compared. --with-run-id compares the latest
run with an older one. Use 'hotwalletscan history <entity-id>' to list run IDs.

Examples:
  # Compare the latest two runs
  hotwalletscan compare binance

  # Compare the latest run with a specific one
  hotwalletscan compare binance --with-run-id 3f6c2a0e-5d1b-4e2f-9a77-0c1d2e3f4a5b

  # Output comparison in JSON format
  hotwalletscan compare binance --json`,
		Args: cobra.ExactArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().StringP("with-run-id", "i", "",
		"Compare the latest run with this run (use 'history' to see IDs)")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	withRunID, err := cmd.Flags().GetString("with-run-id")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return errors.New("--json and --markdown cannot be used together")
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

	result, err := compareRuns(cmd.Context(), db, args[0], withRunID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case jsonOutput:
		return writeJSON(out, result)
	case markdownOutput:
		return outputComparisonMarkdown(out, result)
	default:
		outputComparisonText(out, result)
		return nil
	}
}

// ComparisonResult holds the result of comparing two runs.
type ComparisonResult struct {
	// Entity is the compared entity.
	Entity model.Entity `json:"entity"`

	// PreviousRun and CurrentRun describe the compared runs.
	PreviousRun RunSummary `json:"previous_run"`
	CurrentRun  RunSummary `json:"current_run"`

	// Diff holds the added and removed wallets.
	Diff model.WalletDiff `json:"diff"`
}

// RunSummary contains run metadata for comparison display.
type RunSummary struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	Addresses    int       `json:"addresses"`
	FailedChains int       `json:"failed_chains"`
}

func summarizeRun(r *model.RunReport) RunSummary {
	return RunSummary{
		ID:           r.ID,
		StartedAt:    r.StartedAt,
		Addresses:    len(r.Rows),
		FailedChains: r.FailedChains(),
	}
}

// compareRuns loads the runs to compare and diffs their wallets.
func compareRuns(ctx context.Context, db *database.HistoryDB, entityID, withRunID string) (*ComparisonResult, error) {
	want := 2
	if withRunID != "" {
		want = 1
	}
	runs, err := db.GetLatestRuns(ctx, entityID, want)
	if err != nil {
		return nil, fmt.Errorf("failed to get runs: %w", err)
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no runs found for %s", entityID)
	}

	current := runs[0]
	var previous *model.RunReport
	if withRunID != "" {
		previous, err = db.GetRun(ctx, withRunID)
		if err != nil {
			return nil, fmt.Errorf("failed to get run %s: %w", withRunID, err)
		}
		if previous == nil {
			return nil, fmt.Errorf("run %s not found", withRunID)
		}
		if previous.Entity.ID != entityID {
			return nil, fmt.Errorf("run %s belongs to %s, not %s", withRunID, previous.Entity.ID, entityID)
		}
	} else {
		if len(runs) < 2 {
			return nil, fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(runs))
		}
		previous = runs[1]
	}

	return &ComparisonResult{
		Entity:      current.Entity,
		PreviousRun: summarizeRun(previous),
		CurrentRun:  summarizeRun(current),
		Diff:        model.DiffWallets(previous.Rows, current.Rows),
	}, nil
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(out io.Writer, result *ComparisonResult) {
	fmt.Fprintf(out, "Run Comparison: %s\n", result.Entity)
	fmt.Fprintln(out, strings.Repeat("=", 60))

	fmt.Fprintf(out, "\nPrevious run: %s  %s  (%d addresses)\n",
		result.PreviousRun.StartedAt.Local().Format(historyTimeLayout), result.PreviousRun.ID, result.PreviousRun.Addresses)
	fmt.Fprintf(out, "Current run:  %s  %s  (%d addresses)\n",
		result.CurrentRun.StartedAt.Local().Format(historyTimeLayout), result.CurrentRun.ID, result.CurrentRun.Addresses)
	if result.PreviousRun.FailedChains > 0 || result.CurrentRun.FailedChains > 0 {
		fmt.Fprintln(out, "\nNote: at least one run has failed chains; differences may be partial.")
	}

	if !result.Diff.HasChanges() {
		fmt.Fprintf(out, "\nNo changes (%d wallets unchanged)\n", result.Diff.Unchanged)
		return
	}

	if len(result.Diff.Added) > 0 {
		fmt.Fprintf(out, "\nNew wallets (%d):\n", len(result.Diff.Added))
		for _, r := range result.Diff.Added {
			fmt.Fprintf(out, "  [+] %-12s  %s\n", r.Chain, r.Address)
		}
	}
	if len(result.Diff.Removed) > 0 {
		fmt.Fprintf(out, "\nDisappeared wallets (%d):\n", len(result.Diff.Removed))
		for _, r := range result.Diff.Removed {
			fmt.Fprintf(out, "  [-] %-12s  %s\n", r.Chain, r.Address)
		}
	}
	fmt.Fprintf(out, "\nUnchanged: %d wallets\n", result.Diff.Unchanged)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(out io.Writer, result *ComparisonResult) error {
	md := markdown.NewMarkdown(out)
	md.H1("Run Comparison: " + result.Entity.String())
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current"},
		Rows: [][]string{
			{"Run ID", "`" + result.PreviousRun.ID + "`", "`" + result.CurrentRun.ID + "`"},
			{"Started",
				result.PreviousRun.StartedAt.Format("2006-01-02 15:04"),
				result.CurrentRun.StartedAt.Format("2006-01-02 15:04")},
			{"Addresses", strconv.Itoa(result.PreviousRun.Addresses), strconv.Itoa(result.CurrentRun.Addresses)},
			{"Failed chains", strconv.Itoa(result.PreviousRun.FailedChains), strconv.Itoa(result.CurrentRun.FailedChains)},
		},
	})
	md.PlainText("")

	writeRows := func(title string, rows []model.HotWalletRow) {
		if len(rows) == 0 {
			return
		}
		md.H2(title + " (" + strconv.Itoa(len(rows)) + ")")
		md.PlainText("")
		table := make([][]string, len(rows))
		for i, r := range rows {
			table[i] = []string{r.Chain, "`" + r.Address + "`", "[explorer](" + r.ArkmURL + ")"}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Chain", "Address", "Explorer"},
			Rows:   table,
		})
		md.PlainText("")
	}
	writeRows("New Wallets", result.Diff.Added)
	writeRows("Disappeared Wallets", result.Diff.Removed)

	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*%d wallets unchanged*", result.Diff.Unchanged)
	return md.Build()
}
