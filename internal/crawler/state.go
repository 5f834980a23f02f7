package crawler

import (
	"sync"

	"github.com/nao1215/hotwalletscan/internal/model"
)

// RunState is the progress and result list of one crawl run.
// The orchestrator creates one per run and hands it to every chain crawl;
// all mutation goes through its methods, which hold the mutex while
// updating state and notifying the observer.
type RunState struct {
	mu       sync.Mutex
	progress model.Progress
	rows     []model.HotWalletRow
	observer Observer
}

// NewRunState returns the initial state of a run.
// A nil observer is replaced with NopObserver.
func NewRunState(totalChains, pagesPerChain int, observer Observer) *RunState {
	if observer == nil {
		observer = NopObserver{}
	}
	return &RunState{
		progress: model.NewProgress(totalChains, pagesPerChain),
		rows:     make([]model.HotWalletRow, 0),
		observer: observer,
	}
}

// QueueChain announces a chain before crawling starts.
func (s *RunState) QueueChain(chain model.Chain) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer.ChainQueued(chain)
}

// AdvancePages credits n pages to the run and emits the new progress.
// CompletedPages never exceeds TotalPages.
func (s *RunState) AdvancePages(n int) model.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n > 0 {
		s.progress.CompletedPages += n
		if s.progress.CompletedPages > s.progress.TotalPages {
			s.progress.CompletedPages = s.progress.TotalPages
		}
	}
	s.observer.Progress(s.progress)
	return s.progress
}

// RowsFound forwards newly discovered rows of a chain.
func (s *RunState) RowsFound(chain model.Chain, rows []model.HotWalletRow) {
	if len(rows) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer.RowsFound(chain, rows)
}

// ChainProgress reports a chain's running distinct address count.
func (s *RunState) ChainProgress(chain model.Chain, found, pagesFetched int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer.ChainProgress(chain, found, pagesFetched)
}

// FinishChain appends the chain's rows to the run's result list, marks the
// chain completed and emits ChainDone followed by Summary.
func (s *RunState) FinishChain(result model.ChainResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = append(s.rows, result.Rows...)
	if s.progress.CompletedChains < s.progress.TotalChains {
		s.progress.CompletedChains++
	}

	s.observer.ChainDone(result)
	s.observer.Summary(Summary{
		CompletedChains: s.progress.CompletedChains,
		TotalChains:     s.progress.TotalChains,
		Addresses:       len(s.rows),
	})
}

// Progress returns a snapshot of the run progress.
func (s *RunState) Progress() model.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Rows returns a copy of the rows of every finished chain, in completion order.
func (s *RunState) Rows() []model.HotWalletRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.HotWalletRow, len(s.rows))
	copy(out, s.rows)
	return out
}
