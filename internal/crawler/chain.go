package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/hotwalletscan/internal/arkham"
	"github.com/nao1215/hotwalletscan/internal/extract"
	"github.com/nao1215/hotwalletscan/internal/model"
)

const (
	// DefaultPageDelay is the pause before every page after the first.
	DefaultPageDelay = 1 * time.Second

	// DefaultPageTimeout bounds a single page request.
	DefaultPageTimeout = 15 * time.Second
)

// TransferFetcher fetches one page of transfers. *arkham.Client implements it.
type TransferFetcher interface {
	FetchTransfers(ctx context.Context, q arkham.TransferQuery) (*arkham.TransferPage, error)
}

// Target is what a chain crawl looks for.
type Target struct {
	Entity    model.Entity
	APIKey    string
	PageSize  int
	PageCount int
}

// ChainCrawler drives the paginated fetch loop of one chain.
// Pages of a chain are fetched strictly one after another so that offsets
// stay consistent; a ChainCrawler may be shared by concurrent chain crawls.
type ChainCrawler struct {
	fetcher TransferFetcher

	// delay is waited before every page after the first.
	delay time.Duration

	// timeout bounds each page request. Zero disables it.
	timeout time.Duration

	// pacer is waited on before every page, outside the page timeout.
	pacer Pacer

	logger *slog.Logger
}

// ChainOption configures a ChainCrawler.
type ChainOption func(*ChainCrawler)

// WithPageDelay sets the inter-page delay.
func WithPageDelay(d time.Duration) ChainOption {
	return func(c *ChainCrawler) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// WithPageTimeout sets the per-page request timeout.
func WithPageTimeout(d time.Duration) ChainOption {
	return func(c *ChainCrawler) {
		if d >= 0 {
			c.timeout = d
		}
	}
}

// WithPacer paces page requests. The wait happens before the page timeout
// starts, so a slow pacer delays a page instead of failing it.
func WithPacer(p Pacer) ChainOption {
	return func(c *ChainCrawler) {
		c.pacer = p
	}
}

// WithChainLogger sets the logger.
func WithChainLogger(logger *slog.Logger) ChainOption {
	return func(c *ChainCrawler) {
		c.logger = logger
	}
}

// NewChainCrawler creates a ChainCrawler that fetches pages with fetcher.
func NewChainCrawler(fetcher TransferFetcher, opts ...ChainOption) *ChainCrawler {
	c := &ChainCrawler{
		fetcher: fetcher,
		delay:   DefaultPageDelay,
		timeout: DefaultPageTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Crawl fetches up to target.PageCount pages of chain and returns the rows
// found. It never returns an error: failures become a Failed result that
// still carries the rows gathered before the failure.
//
// Every page of the chain is credited to run exactly once, whether fetched,
// skipped after an empty page, or abandoned after a failure.
func (c *ChainCrawler) Crawl(ctx context.Context, run *RunState, target Target, chain model.Chain) model.ChainResult {
	start := time.Now()
	acc := extract.NewAccumulator()
	pages := target.PageCount
	logger := c.logger.With("chain", chain.String(), "entity", target.Entity.ID)

	fail := func(fetched int, err error) model.ChainResult {
		run.AdvancePages(pages - fetched)
		logger.Warn("chain crawl failed",
			"page", fetched,
			"found", acc.Len(),
			"error", err,
		)
		return model.Failed(chain, acc.Rows(), err, fetched, time.Since(start))
	}

	for i := range pages {
		if err := ctx.Err(); err != nil {
			return fail(i, err)
		}
		if i > 0 && c.delay > 0 {
			if err := sleep(ctx, c.delay); err != nil {
				return fail(i, err)
			}
		}

		if c.pacer != nil {
			if err := c.pacer.Wait(ctx); err != nil {
				return fail(i, err)
			}
		}

		page, err := c.fetchPage(ctx, target, chain, i)
		if err != nil {
			return fail(i, err)
		}

		if len(page.Transfers) == 0 {
			run.AdvancePages(pages - i)
			logger.Debug("chain exhausted", "page", i, "found", acc.Len())
			return model.Succeeded(chain, acc.Rows(), model.OutcomeExhausted, i, time.Since(start))
		}

		fresh := acc.MergePage(page.Transfers, chain, target.Entity.Name)
		run.RowsFound(chain, fresh)
		run.AdvancePages(1)
		run.ChainProgress(chain, acc.Len(), i+1)

		logger.Debug("page fetched",
			"page", i,
			"transfers", len(page.Transfers),
			"new", len(fresh),
			"found", acc.Len(),
		)
	}

	return model.Succeeded(chain, acc.Rows(), model.OutcomePageLimitReached, pages, time.Since(start))
}

// fetchPage requests page index under its own timeout derived from ctx.
func (c *ChainCrawler) fetchPage(ctx context.Context, target Target, chain model.Chain, index int) (*arkham.TransferPage, error) {
	pageCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		pageCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	page, err := c.fetcher.FetchTransfers(pageCtx, arkham.TransferQuery{
		EntityID: target.Entity.ID,
		Chain:    chain,
		Limit:    target.PageSize,
		Offset:   index * target.PageSize,
		APIKey:   target.APIKey,
	})
	if err != nil {
		// Only the page deadline is reported as a timeout; a cancelled
		// parent context keeps its own error.
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s (page %d)", ErrPageTimeout, c.timeout, index+1)
		}
		return nil, fmt.Errorf("page %d: %w", index+1, err)
	}
	if page == nil {
		page = &arkham.TransferPage{}
	}
	return page, nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
