package model

import (
	"time"

	"github.com/google/uuid"
)

// RunReport is the complete result of one crawl run.
// It is persisted to the history database and rendered by report writers.
type RunReport struct {
	// ID uniquely identifies the run.
	ID string `json:"id"`

	// Entity is the crawled entity.
	Entity Entity `json:"entity"`

	// Chains are the requested chains in input order.
	Chains []Chain `json:"chains"`

	// PageSize and PageCount are the pagination settings of the run.
	PageSize  int `json:"page_size"`
	PageCount int `json:"page_count"`

	// Rows is the aggregated result list in chain order.
	Rows []HotWalletRow `json:"rows"`

	// ChainResults holds one entry per requested chain, in input order.
	ChainResults []ChainResult `json:"chain_results"`

	// Progress is the final progress snapshot.
	Progress Progress `json:"progress"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the wall-clock duration of the crawl.
	Elapsed time.Duration `json:"elapsed"`

	// PerformedSteps lists post-run pipeline steps that completed.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error holds the last step error, if any. ErrorMessage is its serialized form.
	Error        error  `json:"-"`
	ErrorMessage string `json:"error,omitempty"`
}

// NewRunReport creates a report for a new run with a fresh ID.
func NewRunReport(entity Entity, chains []Chain, pageSize, pageCount int) *RunReport {
	return &RunReport{
		ID:        uuid.NewString(),
		Entity:    entity,
		Chains:    chains,
		PageSize:  pageSize,
		PageCount: pageCount,
		Rows:      make([]HotWalletRow, 0),
		StartedAt: time.Now(),
	}
}

// FailedChains returns the number of chains that ended in failure.
func (r *RunReport) FailedChains() int {
	n := 0
	for _, cr := range r.ChainResults {
		if cr.IsFailure() {
			n++
		}
	}
	return n
}

// RowsByChain groups rows by chain name.
func (r *RunReport) RowsByChain() map[string][]HotWalletRow {
	out := make(map[string][]HotWalletRow)
	for _, row := range r.Rows {
		out[row.Chain] = append(out[row.Chain], row)
	}
	return out
}
