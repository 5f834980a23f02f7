package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/hotwalletscan/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty lists chains that found nothing in the wallet section.
	showEmpty bool

	// verbose adds pagination details per chain.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeChains(&sb, report)
	w.writeWallets(&sb, report)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       HOT WALLET SCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Entity:     %s\n", report.Entity)
	fmt.Fprintf(sb, "Run ID:     %s\n", report.ID)
	fmt.Fprintf(sb, "Started:    %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Elapsed:    %s\n", report.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(sb, "Pagination: %d pages x %d transfers\n", report.PageCount, report.PageSize)
	fmt.Fprintf(sb, "Progress:   %d%% (%d/%d chains)\n",
		report.Progress.Percent(), report.Progress.CompletedChains, report.Progress.TotalChains)
	fmt.Fprintf(sb, "Addresses:  %d\n", len(report.Rows))

	if report.ErrorMessage != "" {
		fmt.Fprintf(sb, "Status:     ERROR - %s\n", report.ErrorMessage)
	} else if n := report.FailedChains(); n > 0 {
		fmt.Fprintf(sb, "Status:     %d chain(s) failed (partial results)\n", n)
	} else {
		sb.WriteString("Status:     Complete\n")
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeChains(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CHAINS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, chain := range report.Chains {
		cr, ok := chainResult(report, chain)
		if !ok {
			fmt.Fprintf(sb, "  [ ] %-14s pending\n", chain)
			continue
		}
		marker := "+"
		if cr.IsFailure() {
			marker = "!"
		}
		fmt.Fprintf(sb, "  [%s] %-14s %s\n", marker, chain, cr.Status())
		if w.verbose {
			fmt.Fprintf(sb, "      outcome: %s, pages fetched: %d\n", cr.Outcome, cr.PagesFetched)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeWallets(sb *strings.Builder, report *model.RunReport) {
	if len(report.Rows) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("HOT WALLETS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	byChain := report.RowsByChain()
	for _, chain := range report.Chains {
		rows := byChain[chain.String()]
		if len(rows) == 0 {
			if w.showEmpty {
				fmt.Fprintf(sb, "%s: none\n\n", chain)
			}
			continue
		}
		fmt.Fprintf(sb, "%s (%d)\n", chain, len(rows))
		for _, row := range rows {
			fmt.Fprintf(sb, "  * %s\n", row.Address)
			if w.verbose {
				fmt.Fprintf(sb, "    %s\n", row.ArkmURL)
			}
		}
		sb.WriteString("\n")
	}
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by hotwalletscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
