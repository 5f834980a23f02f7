// Package pipeline provides the two execution primitives of hotwalletscan.
//
// BatchProcessor with Process/ProcessWithCallback runs independent units of
// work (one per chain) with a bounded number active at once and returns
// results in input order.
//
// Pipeline runs a crawl and its follow-up steps (saving the run to history,
// exporting CSV, rendering a report) in sequence against a model.RunReport.
package pipeline
