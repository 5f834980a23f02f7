package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/hotwalletscan/internal/model"
)

// CSVWriter writes the wallet export file: a chain,address,arkm_url,label
// header followed by one record per row. Fields are quoted per RFC 4180.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the rows of the report.
func (w *CSVWriter) Write(report *model.RunReport) (int, error) {
	return w.WriteRows(report.Rows)
}

// WriteRows outputs the header and rows.
func (w *CSVWriter) WriteRows(rows []model.HotWalletRow) (int, error) {
	cw := &countingWriter{w: w.output}
	enc := csv.NewWriter(cw)

	if err := enc.Write(model.CSVHeader); err != nil {
		return cw.n, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := enc.Write(row.Record()); err != nil {
			return cw.n, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	enc.Flush()
	return cw.n, enc.Error()
}

// ReadCSV parses an export file written by CSVWriter.
func ReadCSV(r io.Reader) ([]model.HotWalletRow, error) {
	dec := csv.NewReader(r)
	dec.FieldsPerRecord = len(model.CSVHeader)

	header, err := dec.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty CSV input")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if strings.Join(header, ",") != strings.Join(model.CSVHeader, ",") {
		return nil, fmt.Errorf("unexpected CSV header %q", strings.Join(header, ","))
	}

	rows := make([]model.HotWalletRow, 0)
	for {
		rec, err := dec.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		rows = append(rows, model.HotWalletRow{
			Chain:   rec[0],
			Address: rec[1],
			ArkmURL: rec[2],
			Label:   rec[3],
		})
	}
	return rows, nil
}

// countingWriter counts bytes written through it.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
