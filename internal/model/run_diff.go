package model

import "sort"

// WalletDiff is the difference between the wallets of two runs.
type WalletDiff struct {
	// Added are wallets found in the current run only.
	Added []HotWalletRow `json:"added"`

	// Removed are wallets found in the previous run only.
	Removed []HotWalletRow `json:"removed"`

	// Unchanged is the number of wallets found in both runs.
	Unchanged int `json:"unchanged"`
}

// HasChanges reports whether any wallet was added or removed.
func (d WalletDiff) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0
}

// DiffWallets compares two wallet lists by key.
// Added and Removed are sorted by chain, then address.
func DiffWallets(previous, current []HotWalletRow) WalletDiff {
	prev := make(map[string]HotWalletRow, len(previous))
	for _, r := range previous {
		prev[r.Key()] = r
	}
	cur := make(map[string]HotWalletRow, len(current))
	for _, r := range current {
		cur[r.Key()] = r
	}

	diff := WalletDiff{
		Added:   make([]HotWalletRow, 0),
		Removed: make([]HotWalletRow, 0),
	}
	for key, r := range cur {
		if _, ok := prev[key]; ok {
			diff.Unchanged++
			continue
		}
		diff.Added = append(diff.Added, r)
	}
	for key, r := range prev {
		if _, ok := cur[key]; !ok {
			diff.Removed = append(diff.Removed, r)
		}
	}

	sortRows(diff.Added)
	sortRows(diff.Removed)
	return diff
}

func sortRows(rows []HotWalletRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Chain != rows[j].Chain {
			return rows[i].Chain < rows[j].Chain
		}
		return rows[i].Address < rows[j].Address
	})
}
