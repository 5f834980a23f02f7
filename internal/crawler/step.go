package crawler

import (
	"context"
	"fmt"

	"github.com/nao1215/hotwalletscan/internal/model"
	"github.com/nao1215/hotwalletscan/internal/pipeline"
)

// CrawlStep runs the orchestrator as the first step of a run pipeline and
// fills the report with its results.
type CrawlStep struct {
	orchestrator *Orchestrator
	apiKey       string
}

var _ pipeline.Step = (*CrawlStep)(nil)

// NewCrawlStep creates a CrawlStep that crawls with apiKey.
func NewCrawlStep(o *Orchestrator, apiKey string) *CrawlStep {
	return &CrawlStep{orchestrator: o, apiKey: apiKey}
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do crawls report.Entity over report.Chains.
func (s *CrawlStep) Do(ctx context.Context, report *model.RunReport) error {
	res, err := s.orchestrator.Run(ctx, Request{
		Entity:    report.Entity,
		APIKey:    s.apiKey,
		PageSize:  report.PageSize,
		PageCount: report.PageCount,
		Chains:    report.Chains,
	})
	if err != nil {
		return fmt.Errorf("crawl: %w", err)
	}

	report.Rows = res.Rows
	report.ChainResults = res.ChainResults
	report.Progress = res.Progress
	report.Elapsed = res.Elapsed
	return nil
}
