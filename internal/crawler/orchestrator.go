package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/hotwalletscan/internal/model"
	"github.com/nao1215/hotwalletscan/internal/pipeline"
)

// Request describes one crawl run.
type Request struct {
	Entity    model.Entity
	APIKey    string
	PageSize  int
	PageCount int
	Chains    []model.Chain
}

// Validate checks the request. It is the only way a run can fail.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Entity.ID) == "" {
		return ErrNoEntity
	}
	if len(r.Chains) == 0 {
		return ErrNoChains
	}
	for _, c := range r.Chains {
		if !c.IsSupported() {
			return fmt.Errorf("%w: %s", model.ErrUnsupportedChain, c)
		}
	}
	if r.PageSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, r.PageSize)
	}
	if r.PageCount <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPageCount, r.PageCount)
	}
	if strings.TrimSpace(r.APIKey) == "" {
		return ErrNoAPIKey
	}
	return nil
}

// Result is the outcome of a run.
type Result struct {
	// Rows is the concatenation of every chain's rows in request chain order.
	Rows []model.HotWalletRow

	// ChainResults holds one result per requested chain, in request order.
	ChainResults []model.ChainResult

	// Progress is the final progress snapshot.
	Progress model.Progress

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}

// Orchestrator fans a ChainCrawler out over the requested chains.
type Orchestrator struct {
	crawler  *ChainCrawler
	batch    *pipeline.BatchProcessor
	observer Observer
	logger   *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*orchestratorConfig)

type orchestratorConfig struct {
	concurrency int
	observer    Observer
	logger      *slog.Logger
}

// WithObserver sets the event observer.
func WithObserver(o Observer) OrchestratorOption {
	return func(c *orchestratorConfig) {
		c.observer = o
	}
}

// WithChainConcurrency sets how many chains are crawled at once.
func WithChainConcurrency(n int) OrchestratorOption {
	return func(c *orchestratorConfig) {
		c.concurrency = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(c *orchestratorConfig) {
		c.logger = logger
	}
}

// NewOrchestrator creates an Orchestrator. Chains run pipeline.DefaultConcurrency
// at a time unless WithChainConcurrency says otherwise.
func NewOrchestrator(crawler *ChainCrawler, opts ...OrchestratorOption) *Orchestrator {
	cfg := &orchestratorConfig{
		concurrency: pipeline.DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.observer == nil {
		cfg.observer = NopObserver{}
	}

	return &Orchestrator{
		crawler: crawler,
		batch: pipeline.NewBatchProcessor(
			pipeline.WithConcurrency(cfg.concurrency),
			pipeline.WithBatchLogger(cfg.logger),
		),
		observer: cfg.observer,
		logger:   cfg.logger,
	}
}

// Run crawls every requested chain and returns the aggregated rows.
// It returns an error only when req is invalid; once started, a run always
// completes and returns whatever rows were gathered, including partial rows
// of failed chains.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	run := NewRunState(len(req.Chains), req.PageCount, o.observer)
	for _, chain := range req.Chains {
		run.QueueChain(chain)
	}

	target := Target{
		Entity:    req.Entity,
		APIKey:    req.APIKey,
		PageSize:  req.PageSize,
		PageCount: req.PageCount,
	}

	o.logger.Info("crawl started",
		"entity", req.Entity.ID,
		"chains", len(req.Chains),
		"page_size", req.PageSize,
		"pages", req.PageCount,
	)

	results := pipeline.ProcessWithCallback(ctx, o.batch, req.Chains,
		func(ctx context.Context, chain model.Chain, _ int) model.ChainResult {
			return o.crawler.Crawl(ctx, run, target, chain)
		},
		func(result model.ChainResult, _ int) {
			run.FinishChain(result)
		},
	)

	rows := make([]model.HotWalletRow, 0)
	failed := 0
	for _, r := range results {
		rows = append(rows, r.Rows...)
		if r.IsFailure() {
			failed++
		}
	}

	res := &Result{
		Rows:         rows,
		ChainResults: results,
		Progress:     run.Progress(),
		Elapsed:      time.Since(start),
	}

	o.logger.Info("crawl finished",
		"entity", req.Entity.ID,
		"addresses", len(rows),
		"failed_chains", failed,
		"elapsed", res.Elapsed,
	)

	return res, nil
}
