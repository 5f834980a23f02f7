package model

import (
	"fmt"
	"time"
)

// Outcome is the terminal state of one chain's crawl.
type Outcome int

const (
	// OutcomePending means the chain has not finished yet.
	OutcomePending Outcome = iota

	// OutcomeExhausted means a page returned no transfers before the page limit.
	OutcomeExhausted

	// OutcomePageLimitReached means every configured page was fetched.
	OutcomePageLimitReached

	// OutcomeFailed means a page request failed. Rows gathered before the
	// failure are kept.
	OutcomeFailed
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomePageLimitReached:
		return "page_limit_reached"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ChainResult is what the chain crawler returns instead of an error.
// It is either a success (Exhausted or PageLimitReached) or a failure
// carrying the reason; both variants carry the rows found.
type ChainResult struct {
	Chain        Chain          `json:"chain"`
	Rows         []HotWalletRow `json:"rows"`
	Outcome      Outcome        `json:"outcome"`
	Err          error          `json:"-"`
	Reason       string         `json:"reason,omitempty"`
	PagesFetched int            `json:"pages_fetched"`
	Elapsed      time.Duration  `json:"elapsed"`
}

// Succeeded builds a successful result.
func Succeeded(chain Chain, rows []HotWalletRow, outcome Outcome, pages int, elapsed time.Duration) ChainResult {
	return ChainResult{
		Chain:        chain,
		Rows:         rows,
		Outcome:      outcome,
		PagesFetched: pages,
		Elapsed:      elapsed,
	}
}

// Failed builds a failed result. err must be non-nil.
func Failed(chain Chain, rows []HotWalletRow, err error, pages int, elapsed time.Duration) ChainResult {
	return ChainResult{
		Chain:        chain,
		Rows:         rows,
		Outcome:      OutcomeFailed,
		Err:          err,
		Reason:       err.Error(),
		PagesFetched: pages,
		Elapsed:      elapsed,
	}
}

// IsFailure reports whether the chain ended in failure.
func (r ChainResult) IsFailure() bool {
	return r.Outcome == OutcomeFailed
}

// Status returns the per-chain status line shown to users.
func (r ChainResult) Status() string {
	if r.IsFailure() {
		return "failed: " + r.Reason
	}
	return fmt.Sprintf("%d found in %s", len(r.Rows), r.Elapsed.Round(time.Millisecond))
}
