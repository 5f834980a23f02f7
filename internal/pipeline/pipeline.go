package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/hotwalletscan/internal/model"
)

// Step is one stage of a run. The crawl step fills the report; later steps
// read it to save, export or render the run.
type Step interface {
	// Do executes the step against the shared run report.
	Do(ctx context.Context, report *model.RunReport) error

	// Name identifies the step in logs, metrics and report.PerformedSteps.
	Name() string
}

// StepHook is called after every executed step with its duration and error.
type StepHook func(name string, elapsed time.Duration, err error)

// Pipeline executes a crawl run and its follow-up steps in order.
type Pipeline struct {
	steps           []Step
	logger          *slog.Logger
	hook            StepHook
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps executing later steps after one fails, so a
// failed export still lets the report be rendered.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// WithStepHook registers a hook that observes every executed step.
func WithStepHook(hook StepHook) Option {
	return func(p *Pipeline) {
		p.hook = hook
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence.
//
// ctx is checked before each step; a cancelled context stops the pipeline and
// is returned. Step errors are recorded in report.Error. Without
// WithContinueOnError the first step error is also returned.
func (p *Pipeline) Execute(ctx context.Context, report *model.RunReport) error {
	logger := p.logger.With("run", report.ID, "entity", report.Entity.ID)

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			logger.Warn("pipeline cancelled", "step", step.Name(), "reason", err)
			report.Error = err
			report.ErrorMessage = err.Error()
			return err
		}

		if err := p.runStep(ctx, logger, step, report); err != nil {
			report.Error = err
			report.ErrorMessage = err.Error()
			if !p.continueOnError {
				return err
			}
			continue
		}
		report.PerformedSteps = append(report.PerformedSteps, step.Name())
	}
	return nil
}

func (p *Pipeline) runStep(ctx context.Context, logger *slog.Logger, step Step, report *model.RunReport) error {
	logger.Info("executing step", "step", step.Name())

	start := time.Now()
	err := step.Do(ctx, report)
	elapsed := time.Since(start)

	if p.hook != nil {
		p.hook(step.Name(), elapsed, err)
	}
	if err != nil {
		logger.Error("step failed", "step", step.Name(), "elapsed", elapsed, "error", err)
		return err
	}
	logger.Debug("step completed", "step", step.Name(), "elapsed", elapsed)
	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
