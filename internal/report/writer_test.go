package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/hotwalletscan/internal/model"
)

// createTestReport creates a report with one successful and one failed chain.
func createTestReport() *model.RunReport {
	report := model.NewRunReport(
		model.Entity{ID: "acme", Name: "Acme"},
		[]model.Chain{model.ChainBitcoin, model.ChainEthereum, model.ChainTron},
		500, 2,
	)
	report.StartedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	report.Elapsed = 2500 * time.Millisecond
	btc := []model.HotWalletRow{
		{Chain: "bitcoin", Address: "bc1xyz", ArkmURL: model.ExplorerURL("bc1xyz"), Label: model.HotWalletLabel},
		{Chain: "bitcoin", Address: "1A2b,3C", ArkmURL: model.ExplorerURL("1A2b,3C"), Label: model.HotWalletLabel},
	}
	report.Rows = btc
	report.ChainResults = []model.ChainResult{
		model.Succeeded(model.ChainBitcoin, btc, model.OutcomePageLimitReached, 2, 1200*time.Millisecond),
		model.Failed(model.ChainEthereum, nil, errors.New("page request timed out after 15s (page 1)"), 0, 15*time.Second),
		model.Succeeded(model.ChainTron, nil, model.OutcomeExhausted, 0, 300*time.Millisecond),
	}
	report.Progress = model.Progress{CompletedChains: 3, TotalChains: 3, CompletedPages: 6, TotalPages: 6}
	return report
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatText},
		{in: "TEXT", want: FormatText},
		{in: "json", want: FormatJSON},
		{in: "md", want: FormatMarkdown},
		{in: "Markdown", want: FormatMarkdown},
		{in: "csv", want: FormatCSV},
		{in: "xml", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestNewWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, ok := NewWriter(FormatJSON, &buf, "v1").(*FullJSONWriter); !ok {
		t.Error("expected FullJSONWriter for json")
	}
	if _, ok := NewWriter(FormatMarkdown, &buf, "v1").(*MarkdownWriter); !ok {
		t.Error("expected MarkdownWriter for markdown")
	}
	if _, ok := NewWriter(FormatCSV, &buf, "v1").(*CSVWriter); !ok {
		t.Error("expected CSVWriter for csv")
	}
	if _, ok := NewWriter(FormatText, &buf, "v1").(*SimpleWriter); !ok {
		t.Error("expected SimpleWriter for text")
	}
}

func TestCSVWriter(t *testing.T) {
	t.Parallel()

	t.Run("round trip keeps quoted fields", func(t *testing.T) {
		t.Parallel()

		row := model.HotWalletRow{Chain: "bitcoin", Address: "1A2b,3C", ArkmURL: "https://x", Label: "Hot Wallet"}

		var buf bytes.Buffer
		n, err := NewCSVWriter(&buf).WriteRows([]model.HotWalletRow{row})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
		}
		if !strings.Contains(buf.String(), `"1A2b,3C"`) {
			t.Errorf("expected quoted address, got %q", buf.String())
		}

		rows, err := ReadCSV(&buf)
		if err != nil {
			t.Fatalf("ReadCSV failed: %v", err)
		}
		if len(rows) != 1 || rows[0] != row {
			t.Errorf("expected %+v, got %+v", row, rows)
		}
	})

	t.Run("quotes and newlines", func(t *testing.T) {
		t.Parallel()

		row := model.HotWalletRow{Chain: "ton", Address: "say \"hi\"\nthere", ArkmURL: "u", Label: "Hot Wallet"}

		var buf bytes.Buffer
		if _, err := NewCSVWriter(&buf).WriteRows([]model.HotWalletRow{row}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), `"say ""hi""`) {
			t.Errorf("expected doubled quotes, got %q", buf.String())
		}
		rows, err := ReadCSV(&buf)
		if err != nil {
			t.Fatalf("ReadCSV failed: %v", err)
		}
		if rows[0].Address != row.Address {
			t.Errorf("expected %q, got %q", row.Address, rows[0].Address)
		}
	})

	t.Run("writes header first", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewCSVWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if lines[0] != "chain,address,arkm_url,label" {
			t.Errorf("unexpected header %q", lines[0])
		}
		if len(lines) != 3 {
			t.Errorf("expected 3 lines, got %d", len(lines))
		}
	})

	t.Run("rejects foreign header", func(t *testing.T) {
		t.Parallel()

		if _, err := ReadCSV(strings.NewReader("a,b,c,d\n")); err == nil {
			t.Error("expected header error")
		}
		if _, err := ReadCSV(strings.NewReader("")); err == nil {
			t.Error("expected error for empty input")
		}
	})
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and statuses", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"HOT WALLET SCAN REPORT",
			"Acme (acme)",
			"Progress:   100% (3/3 chains)",
			"1 chain(s) failed",
			"2 found in 1.2s",
			"failed: page request timed out",
			"0 found in 300ms",
			"bc1xyz",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("verbose adds details", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "outcome: page_limit_reached, pages fetched: 2") {
			t.Error("expected pagination details")
		}
		if !strings.Contains(buf.String(), model.ExplorerURL("bc1xyz")) {
			t.Error("expected explorer URL")
		}
	})

	t.Run("show empty lists chains without wallets", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithShowEmpty(true)).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "tron: none") {
			t.Error("expected empty chain line")
		}
	})

	t.Run("pending chain", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.ChainResults = report.ChainResults[:1]

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "pending") {
			t.Error("expected pending chain")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact output decodes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var decoded model.RunReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded.Rows) != 2 || decoded.Entity.ID != "acme" {
			t.Errorf("unexpected decoded report %+v", decoded)
		}
		if strings.Contains(buf.String(), "\n  ") {
			t.Error("expected compact output")
		}
	})

	t.Run("full writer wraps with metadata", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewFullJSONWriter(&buf, "1.2.3", WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var decoded JSONReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Version != "1.2.3" || decoded.Percent != 100 {
			t.Errorf("unexpected metadata %+v", decoded)
		}
		if !strings.HasPrefix(decoded.Statuses["ethereum"], "failed: ") {
			t.Errorf("unexpected ethereum status %q", decoded.Statuses["ethereum"])
		}
	})

	t.Run("custom indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithIndent(">", "\t")).WriteValue(map[string]int{"a": 1}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), ">\t\"a\": 1") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"# Hot Wallet Report: Acme",
		"## Chains",
		"## Hot Wallets",
		"```mermaid",
		"`bc1xyz`",
		"[explorer](" + model.ExplorerURL("bc1xyz") + ")",
		"1 chain(s) failed",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
}

func TestMarkdownWriterNoWallets(t *testing.T) {
	t.Parallel()

	report := createTestReport()
	report.Rows = nil
	report.ChainResults = nil

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "No hot wallets found.") {
		t.Error("expected empty message")
	}
	if strings.Contains(buf.String(), "```mermaid") {
		t.Error("pie chart must be omitted without wallets")
	}
}

func TestMarkdownWriterUnnamedEntity(t *testing.T) {
	t.Parallel()

	report := model.NewRunReport(model.Entity{ID: "e-123"}, []model.Chain{model.ChainBitcoin}, 500, 1)

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "# Hot Wallet Report: e-123") {
		t.Errorf("expected the ID in the title, got %q", buf.String())
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		max  int
		want string
	}{
		{in: "short", max: 10, want: "short"},
		{in: "exactly10!", max: 10, want: "exactly10!"},
		{in: "this is long", max: 8, want: "this ..."},
		{in: "abcdef", max: 3, want: "abc"},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
