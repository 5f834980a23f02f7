package model

import "math"

// Progress is a snapshot of run-wide crawl progress.
//
// Invariants: TotalPages == TotalChains * pages per chain,
// CompletedPages <= TotalPages and CompletedChains <= TotalChains.
type Progress struct {
	CompletedChains int `json:"completed_chains"`
	TotalChains     int `json:"total_chains"`
	CompletedPages  int `json:"completed_pages"`
	TotalPages      int `json:"total_pages"`
}

// NewProgress returns the initial progress for a run.
func NewProgress(totalChains, pagesPerChain int) Progress {
	return Progress{
		TotalChains: totalChains,
		TotalPages:  totalChains * pagesPerChain,
	}
}

// Percent returns CompletedPages/TotalPages as an integer percentage in [0, 100].
func (p Progress) Percent() int {
	if p.TotalPages <= 0 {
		return 0
	}
	pct := int(math.Round(float64(p.CompletedPages) * 100 / float64(p.TotalPages)))
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// Done reports whether every chain has completed.
func (p Progress) Done() bool {
	return p.CompletedChains >= p.TotalChains
}
