// Package database stores crawl run history in SQLite.
//
// Each run is saved as:
//   - a row in runs, with summary columns and the full report as JSON
//   - one row per discovered wallet in wallets
//   - one row per chain in chain_results
//
// The database is a single file in the XDG data directory and is opened
// with modernc.org/sqlite, which needs no cgo. History queries read the
// summary columns; the JSON column is decoded only when a full report is
// requested.
package database
