// Package crawler implements the paginated multi-chain crawl.
//
// # Components
//
//   - ChainCrawler: fetches the pages of one chain in order, extracts hot
//     wallets from each page and ends in a model.ChainResult
//   - Orchestrator: validates a Request and runs a ChainCrawler per chain,
//     at most three chains at a time, through pipeline.ProcessWithCallback
//   - RunState: the run-scoped progress counters and result list, shared by
//     the chain crawls of one run and guarded by a mutex
//   - Observer: receives queued, rows-found, progress and summary events
//   - CrawlStep: adapts the Orchestrator to a pipeline.Step
//
// # Progress
//
// A run has TotalChains*PageCount pages. Every chain credits exactly
// PageCount pages: one per fetched page, the remaining ones at once when a
// page comes back empty, and the unfetched ones when the chain fails. The
// percentage therefore reaches 100 when the last chain finishes.
//
// # Failures
//
// A page error (HTTP status, network failure or the per-page timeout) ends
// that chain only. Its rows are kept and its status reports the reason;
// other chains continue.
//
// # Usage
//
//	client, _ := arkham.NewClient("", arkham.WithAPIKey(key))
//	o := crawler.NewOrchestrator(crawler.NewChainCrawler(client))
//	res, err := o.Run(ctx, crawler.Request{
//		Entity:    entity,
//		APIKey:    key,
//		PageSize:  500,
//		PageCount: 5,
//		Chains:    []model.Chain{model.ChainBitcoin, model.ChainEthereum},
//	})
package crawler
