package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of units a BatchProcessor runs at once
// when WithConcurrency is not given.
const DefaultConcurrency = 3

// Worker processes one item. It receives the item's index in the input slice.
// A worker must convert its own failures into its result value; the batch
// processor never inspects results and never aborts a batch.
type Worker[T, R any] func(ctx context.Context, item T, index int) R

// BatchProcessor runs independent units of work with a bounded number active
// at any instant, using errgroup.SetLimit for admission.
type BatchProcessor struct {
	// concurrency is the maximum number of workers running at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent workers.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// Concurrency returns the configured concurrency limit.
func (bp *BatchProcessor) Concurrency() int {
	return bp.concurrency
}

// Process runs worker for every item and returns the results in input order,
// regardless of completion order. At most bp.Concurrency() workers run at once.
// It returns once every worker has returned.
//
// Cancellation of ctx is not handled here: the worker receives ctx and is
// expected to fail fast and report that through its result.
func Process[T, R any](ctx context.Context, bp *BatchProcessor, items []T, worker Worker[T, R]) []R {
	return ProcessWithCallback(ctx, bp, items, worker, nil)
}

// ProcessWithCallback is Process with a callback invoked as each worker
// finishes. The callback runs on the worker's goroutine, so it must be safe
// for concurrent use if it touches shared state. A nil callback is allowed.
func ProcessWithCallback[T, R any](
	ctx context.Context,
	bp *BatchProcessor,
	items []T,
	worker Worker[T, R],
	callback func(result R, index int),
) []R {
	bp.logger.Debug("starting batch processing",
		"total", len(items),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Each goroutine writes only its own slot, so no lock is needed.
	results := make([]R, len(items))

	var g errgroup.Group
	g.SetLimit(bp.concurrency)

	for i, item := range items {
		g.Go(func() error {
			result := worker(ctx, item, i)
			results[i] = result

			if callback != nil {
				callback(result, i)
			}
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // workers never return errors

	bp.logger.Debug("batch processing complete",
		"total", len(items),
		"elapsed", time.Since(startTime),
	)

	return results
}
