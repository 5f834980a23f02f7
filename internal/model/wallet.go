package model

import "strings"

// HotWalletLabel is the sentinel label that marks an address as a hot wallet.
// Matching is exact and case-sensitive.
const HotWalletLabel = "Hot Wallet"

// DefaultExplorerURL is the base of the arkm_url column.
const DefaultExplorerURL = "https://intel.arkm.com/explorer/address/"

// HotWalletRow is the unit of output: one discovered wallet on one chain.
// Rows are uniquely identified by Key.
type HotWalletRow struct {
	Chain   string `json:"chain"`
	Address string `json:"address"`
	ArkmURL string `json:"arkm_url"` //nolint:tagliatelle // export column name
	Label   string `json:"label"`
}

// Key returns the dedup key "address@chain".
func (r HotWalletRow) Key() string {
	return WalletKey(r.Address, r.Chain)
}

// WalletKey builds the dedup key for an address on a chain.
func WalletKey(address, chain string) string {
	return address + "@" + chain
}

// ExplorerURL returns the explorer link for address.
func ExplorerURL(address string) string {
	return DefaultExplorerURL + strings.TrimSpace(address)
}

// CSVHeader is the column order of the export file.
var CSVHeader = []string{"chain", "address", "arkm_url", "label"}

// Record returns the row as CSV fields in CSVHeader order.
func (r HotWalletRow) Record() []string {
	return []string{r.Chain, r.Address, r.ArkmURL, r.Label}
}
