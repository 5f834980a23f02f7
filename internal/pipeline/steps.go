package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/hotwalletscan/internal/database"
	"github.com/nao1215/hotwalletscan/internal/model"
	"github.com/nao1215/hotwalletscan/internal/report"
)

// exportFileMode is the permission of exported CSV files.
const exportFileMode os.FileMode = 0o644

// RunStore persists run reports. *database.HistoryDB satisfies it.
type RunStore interface {
	SaveRun(ctx context.Context, report *model.RunReport) error
}

var _ RunStore = (*database.HistoryDB)(nil)

// SaveStep records the run in the history database so later runs can be
// compared against it.
type SaveStep struct {
	store  RunStore
	logger *slog.Logger
}

// NewSaveStep creates a step that saves the report to store.
func NewSaveStep(store RunStore, logger *slog.Logger) *SaveStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SaveStep{store: store, logger: logger}
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return "save"
}

// Do saves the report.
func (s *SaveStep) Do(ctx context.Context, r *model.RunReport) error {
	if err := s.store.SaveRun(ctx, r); err != nil {
		return fmt.Errorf("failed to save run %s: %w", r.ID, err)
	}
	s.logger.Debug("run saved", "run_id", r.ID, "rows", len(r.Rows))
	return nil
}

// ExportStep writes the rows of the run as a CSV file.
type ExportStep struct {
	path   string
	logger *slog.Logger
}

// ExportStepOption configures an ExportStep.
type ExportStepOption func(*ExportStep)

// WithExportLogger sets a custom logger for the export step.
func WithExportLogger(logger *slog.Logger) ExportStepOption {
	return func(s *ExportStep) {
		s.logger = logger
	}
}

// NewExportStep creates a step that exports rows to path.
func NewExportStep(path string, opts ...ExportStepOption) *ExportStep {
	s := &ExportStep{
		path:   path,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ExportStep) Name() string {
	return "export"
}

// Path returns the export file path.
func (s *ExportStep) Path() string {
	return s.path
}

// Do writes the CSV file. The file is written to a temporary name in the same
// directory and renamed into place, so a failed export never leaves a
// truncated file behind.
func (s *ExportStep) Do(_ context.Context, r *model.RunReport) (err error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".hotwalletscan-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()           //nolint:errcheck // already failing
			_ = os.Remove(tmp.Name()) //nolint:errcheck // best effort cleanup
		}
	}()

	n, err := report.NewCSVWriter(tmp).WriteRows(r.Rows)
	if err != nil {
		return fmt.Errorf("failed to export rows: %w", err)
	}
	// CreateTemp uses 0600; exports are ordinary shareable files.
	if err = tmp.Chmod(exportFileMode); err != nil {
		return fmt.Errorf("failed to set export file mode: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to move export file into place: %w", err)
	}

	s.logger.Info("rows exported", "path", s.path, "rows", len(r.Rows), "bytes", n)
	return nil
}

// ReportStep renders the report with a report.Writer.
type ReportStep struct {
	writer report.Writer
}

// NewReportStep creates a step that renders the report with w.
func NewReportStep(w report.Writer) *ReportStep {
	return &ReportStep{writer: w}
}

// Name returns the step name.
func (s *ReportStep) Name() string {
	return "report"
}

// Do renders the report.
func (s *ReportStep) Do(_ context.Context, r *model.RunReport) error {
	if _, err := s.writer.Write(r); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// ReportFileStep renders the report into a file, creating or truncating it.
type ReportFileStep struct {
	path    string
	format  report.Format
	version string
}

// NewReportFileStep creates a step that writes a report of the given format to path.
func NewReportFileStep(path string, format report.Format, version string) *ReportFileStep {
	return &ReportFileStep{path: path, format: format, version: version}
}

// Name returns the step name.
func (s *ReportFileStep) Name() string {
	return "report_file"
}

// Do writes the report file.
func (s *ReportFileStep) Do(ctx context.Context, r *model.RunReport) error {
	f, err := os.Create(s.path) //nolint:gosec // path is chosen by the user
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := NewReportStep(report.NewWriter(s.format, f, s.version)).Do(ctx, r); err != nil {
		_ = f.Close() //nolint:errcheck // already failing
		return err
	}
	return f.Close()
}

// PostRunConfig configures PostRun.
type PostRunConfig struct {
	// Store saves the run. Nil skips saving.
	Store RunStore

	// ExportPath is the CSV export file. Empty skips the export.
	ExportPath string

	// Output receives the rendered report. Nil skips rendering.
	Output io.Writer

	// Format is the format of the rendered report.
	Format report.Format

	// Version is embedded in JSON reports.
	Version string

	// Logger is used by the steps.
	Logger *slog.Logger
}

// PostRun builds the steps that follow a crawl: save, export, then report.
func PostRun(cfg PostRunConfig) []Step {
	steps := make([]Step, 0, 3)
	if cfg.Store != nil {
		steps = append(steps, NewSaveStep(cfg.Store, cfg.Logger))
	}
	if cfg.ExportPath != "" {
		opts := []ExportStepOption{}
		if cfg.Logger != nil {
			opts = append(opts, WithExportLogger(cfg.Logger))
		}
		steps = append(steps, NewExportStep(cfg.ExportPath, opts...))
	}
	if cfg.Output != nil {
		steps = append(steps, NewReportStep(report.NewWriter(cfg.Format, cfg.Output, cfg.Version)))
	}
	return steps
}
