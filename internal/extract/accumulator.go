package extract

import "github.com/nao1215/hotwalletscan/internal/model"

// Accumulator is the per-chain dedup map from "address@chain" to row.
// It is owned by exactly one chain crawl and is not safe for concurrent use.
type Accumulator struct {
	rows  map[string]model.HotWalletRow
	order []string
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		rows: make(map[string]model.HotWalletRow),
	}
}

// Put inserts or overwrites the row under its key and reports whether the key is new.
// A later row with the same key replaces the stored one.
func (a *Accumulator) Put(row model.HotWalletRow) bool {
	key := row.Key()
	_, exists := a.rows[key]
	a.rows[key] = row
	if !exists {
		a.order = append(a.order, key)
	}
	return !exists
}

// Get returns the stored row for key.
func (a *Accumulator) Get(key string) (model.HotWalletRow, bool) {
	row, ok := a.rows[key]
	return row, ok
}

// Len returns the number of distinct keys.
func (a *Accumulator) Len() int {
	return len(a.rows)
}

// Rows flattens the map into a list in first-insertion order.
func (a *Accumulator) Rows() []model.HotWalletRow {
	out := make([]model.HotWalletRow, 0, len(a.order))
	for _, key := range a.order {
		out = append(out, a.rows[key])
	}
	return out
}

// MergePage runs Extract over every record of a page and merges the matches.
// It returns only the rows whose keys were added by this page.
func (a *Accumulator) MergePage(records []model.TransferRecord, chain model.Chain, targetName string) []model.HotWalletRow {
	var added []string
	for _, rec := range records {
		row, ok := Extract(SenderCounterparty(rec, chain), targetName)
		if !ok {
			continue
		}
		if a.Put(row) {
			added = append(added, row.Key())
		}
	}

	fresh := make([]model.HotWalletRow, 0, len(added))
	for _, key := range added {
		fresh = append(fresh, a.rows[key])
	}
	return fresh
}
