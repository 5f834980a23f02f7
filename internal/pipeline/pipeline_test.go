package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nao1215/hotwalletscan/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, report *model.RunReport) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, report *model.RunReport) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, report)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestReport() *model.RunReport {
	return model.NewRunReport(
		model.Entity{ID: "acme", Name: "Acme"},
		[]model.Chain{model.ChainBitcoin},
		500, 1,
	)
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()

		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))

		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("adds single step", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "crawl"})

		if p.StepCount() != 1 {
			t.Errorf("expected 1 step, got %d", p.StepCount())
		}
	})

	t.Run("maintains step order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(&mockStep{name: "crawl"}, &mockStep{name: "save"})
		p.AddStep(&mockStep{name: "export"})

		names := p.StepNames()
		want := []string{"crawl", "save", "export"}
		if len(names) != len(want) {
			t.Fatalf("expected %d names, got %d", len(want), len(names))
		}
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("step %d: expected %q, got %q", i, want[i], names[i])
			}
		}
	})

	t.Run("returns empty names for empty pipeline", func(t *testing.T) {
		t.Parallel()

		if names := New().StepNames(); len(names) != 0 {
			t.Errorf("expected no names, got %v", names)
		}
	})
}

// TestPipelineExecute tests pipeline execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		record := func(name string) *mockStep {
			return &mockStep{
				name: name,
				doFunc: func(_ context.Context, _ *model.RunReport) error {
					order = append(order, name)
					return nil
				},
			}
		}

		p := New(WithLogger(discardLogger()))
		p.AddSteps(record("crawl"), record("save"), record("export"))

		report := newTestReport()
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(order) != 3 || order[0] != "crawl" || order[2] != "export" {
			t.Errorf("unexpected order %v", order)
		}
		if len(report.PerformedSteps) != 3 {
			t.Errorf("expected 3 performed steps, got %v", report.PerformedSteps)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		errSave := errors.New("disk full")
		save := &mockStep{
			name: "save",
			doFunc: func(_ context.Context, _ *model.RunReport) error {
				return errSave
			},
		}
		export := &mockStep{name: "export"}

		p := New(WithLogger(discardLogger()))
		p.AddSteps(&mockStep{name: "crawl"}, save, export)

		report := newTestReport()
		err := p.Execute(context.Background(), report)
		if !errors.Is(err, errSave) {
			t.Fatalf("expected %v, got %v", errSave, err)
		}
		if export.callCount != 0 {
			t.Error("expected export not to run")
		}
		if report.ErrorMessage != "disk full" {
			t.Errorf("expected error recorded, got %q", report.ErrorMessage)
		}
		if len(report.PerformedSteps) != 1 || report.PerformedSteps[0] != "crawl" {
			t.Errorf("unexpected performed steps %v", report.PerformedSteps)
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		failing := &mockStep{
			name: "export",
			doFunc: func(_ context.Context, _ *model.RunReport) error {
				return errors.New("permission denied")
			},
		}
		after := &mockStep{name: "report"}

		p := New(WithLogger(discardLogger()), WithContinueOnError(true))
		p.AddSteps(failing, after)

		report := newTestReport()
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if after.callCount != 1 {
			t.Error("expected following step to run")
		}
		if report.Error == nil {
			t.Error("expected error recorded in report")
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		first := &mockStep{
			name: "crawl",
			doFunc: func(_ context.Context, _ *model.RunReport) error {
				cancel()
				return nil
			},
		}
		second := &mockStep{name: "save"}

		p := New(WithLogger(discardLogger()))
		p.AddSteps(first, second)

		report := newTestReport()
		err := p.Execute(ctx, report)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if second.callCount != 0 {
			t.Error("expected second step to be skipped")
		}
		if !errors.Is(report.Error, context.Canceled) {
			t.Errorf("expected cancellation recorded, got %v", report.Error)
		}
	})
	t.Run("calls step hook", func(t *testing.T) {
		t.Parallel()

		type call struct {
			name string
			err  error
		}
		var calls []call
		hook := func(name string, elapsed time.Duration, err error) {
			if elapsed < 0 {
				t.Errorf("negative elapsed for %s", name)
			}
			calls = append(calls, call{name, err})
		}

		stepErr := errors.New("disk full")
		p := New(WithLogger(discardLogger()), WithContinueOnError(true), WithStepHook(hook))
		p.AddSteps(
			&mockStep{name: "crawl"},
			&mockStep{name: "export", doFunc: func(context.Context, *model.RunReport) error { return stepErr }},
		)

		if err := p.Execute(context.Background(), newTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(calls) != 2 {
			t.Fatalf("expected 2 hook calls, got %d", len(calls))
		}
		if calls[0].name != "crawl" || calls[0].err != nil {
			t.Errorf("unexpected first call %+v", calls[0])
		}
		if calls[1].name != "export" || !errors.Is(calls[1].err, stepErr) {
			t.Errorf("unexpected second call %+v", calls[1])
		}
	})
}
