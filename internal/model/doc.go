// Package model defines the core data structures used by hotwalletscan.
//
// This package contains types for:
//   - Entities and chains as exposed by the intelligence API
//   - Transfer records returned by the transfer-list endpoint
//   - Hot wallet rows, the unit of output
//   - Crawl progress and per-chain results
//   - Run reports that are persisted and rendered
//
// The model package has no dependencies on other internal packages so that
// every other layer (crawler, report, database) can share these types.
package model
