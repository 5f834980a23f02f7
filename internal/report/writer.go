package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/hotwalletscan/internal/model"
)

// Writer renders a run report to its destination.
type Writer interface {
	// Write outputs the report and returns the number of bytes written.
	Write(report *model.RunReport) (int, error)
}

// Format names an output format.
type Format string

// Supported output formats.
const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
)

// ParseFormat returns the format named s. Matching is case-insensitive and
// "md" is accepted for Markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown report format %q (use text, json, markdown or csv)", s)
	}
}

// NewWriter returns the writer for format writing to output.
// version is embedded by formats that carry it.
func NewWriter(format Format, output io.Writer, version string) Writer {
	switch format {
	case FormatJSON:
		return NewFullJSONWriter(output, version, WithPrettyPrint())
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	case FormatCSV:
		return NewCSVWriter(output)
	default:
		return NewSimpleWriter(output)
	}
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// chainResult returns the result recorded for chain, if any.
func chainResult(report *model.RunReport, chain model.Chain) (model.ChainResult, bool) {
	for _, cr := range report.ChainResults {
		if cr.Chain == chain {
			return cr, true
		}
	}
	return model.ChainResult{}, false
}

// truncateString truncates a string to maxLen bytes with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
