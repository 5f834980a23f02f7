package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/hotwalletscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format for sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeChains(md, report)
	w.writeWallets(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("Hot Wallet Report: " + report.Entity.String())
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Entity", report.Entity.String()},
			{"Run ID", "`" + report.ID + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pagination", strconv.Itoa(report.PageCount) + " pages x " + strconv.Itoa(report.PageSize)},
			{"Addresses", strconv.Itoa(len(report.Rows))},
			{"Status", w.statusText(report)},
		},
	})
	md.PlainText("")

	switch {
	case report.ErrorMessage != "":
		md.Cautionf("The run did not complete: %s", report.ErrorMessage)
	case report.FailedChains() > 0:
		md.Warningf("%d chain(s) failed. Their rows are partial.", report.FailedChains())
	case len(report.Rows) == 0:
		md.Note("No hot wallets were found for this entity.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) statusText(report *model.RunReport) string {
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	if report.FailedChains() > 0 {
		return "⚠️ Partial (" + strconv.Itoa(report.FailedChains()) + " failed)"
	}
	return "✅ Complete"
}

func (w *MarkdownWriter) writeChains(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Chains")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Chains))
	for _, chain := range report.Chains {
		cr, ok := chainResult(report, chain)
		if !ok {
			rows = append(rows, []string{chain.String(), "pending", "-", "-"})
			continue
		}
		rows = append(rows, []string{
			chain.String(),
			truncateString(cr.Status(), 60),
			cr.Outcome.String(),
			strconv.Itoa(cr.PagesFetched),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Chain", "Status", "Outcome", "Pages"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(report.Rows) > 0 {
		w.writePieChart(md, report)
	}
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.RunReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Hot Wallets by Chain"),
		piechart.WithShowData(true),
	)

	byChain := report.RowsByChain()
	for _, chain := range report.Chains {
		if n := len(byChain[chain.String()]); n > 0 {
			chart.LabelAndIntValue(chain.String(), uint64(n))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeWallets(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Hot Wallets")
	md.PlainText("")

	if len(report.Rows) == 0 {
		md.PlainText("No hot wallets found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Rows))
	for i, r := range report.Rows {
		rows[i] = []string{r.Chain, "`" + r.Address + "`", "[explorer](" + r.ArkmURL + ")", r.Label}
	}
	md.Table(markdown.TableSet{
		Header: model.CSVHeader,
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by hotwalletscan*")
}
