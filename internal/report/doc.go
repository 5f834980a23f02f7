// Package report renders crawl run reports.
//
// Writers for the supported formats:
//   - CSVWriter: the chain,address,arkm_url,label export file
//   - SimpleWriter: human-readable text for terminal display
//   - JSONWriter / FullJSONWriter: structured output for tool integration
//   - MarkdownWriter: a shareable document with per-chain tables
//
// Writers implement the Writer interface so they can be selected by Format.
package report
