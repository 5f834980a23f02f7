package crawler

import (
	"fmt"

	"github.com/nao1215/hotwalletscan/internal/model"
)

// Observer receives crawl events.
// Calls are serialized by the RunState, so implementations need no locking
// and must not block for long.
type Observer interface {
	// ChainQueued is called once per chain before any crawling starts.
	ChainQueued(chain model.Chain)

	// RowsFound carries only the rows first seen on the latest page.
	RowsFound(chain model.Chain, rows []model.HotWalletRow)

	// ChainProgress reports the running distinct address count of a chain.
	ChainProgress(chain model.Chain, found, pagesFetched int)

	// Progress reports the run-wide progress after every page.
	Progress(p model.Progress)

	// ChainDone reports a chain's terminal result.
	ChainDone(result model.ChainResult)

	// Summary is emitted after every finished chain.
	Summary(s Summary)
}

// Summary is the run-wide line shown after each chain completes.
type Summary struct {
	CompletedChains int
	TotalChains     int
	Addresses       int
}

// String returns "<done>/<total> chains, <n> addresses".
func (s Summary) String() string {
	return fmt.Sprintf("%d/%d chains, %d addresses", s.CompletedChains, s.TotalChains, s.Addresses)
}

// NopObserver ignores every event.
type NopObserver struct{}

var _ Observer = NopObserver{}

func (NopObserver) ChainQueued(model.Chain) {}
func (NopObserver) RowsFound(model.Chain, []model.HotWalletRow) {}
func (NopObserver) ChainProgress(model.Chain, int, int) {}
func (NopObserver) Progress(model.Progress) {}
func (NopObserver) ChainDone(model.ChainResult) {}
func (NopObserver) Summary(Summary) {}

// ObserverFuncs adapts optional functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnChainQueued   func(chain model.Chain)
	OnRowsFound     func(chain model.Chain, rows []model.HotWalletRow)
	OnChainProgress func(chain model.Chain, found, pagesFetched int)
	OnProgress      func(p model.Progress)
	OnChainDone     func(result model.ChainResult)
	OnSummary       func(s Summary)
}

var _ Observer = (*ObserverFuncs)(nil)

// ChainQueued implements Observer.
func (f *ObserverFuncs) ChainQueued(chain model.Chain) {
	if f.OnChainQueued != nil {
		f.OnChainQueued(chain)
	}
}

// RowsFound implements Observer.
func (f *ObserverFuncs) RowsFound(chain model.Chain, rows []model.HotWalletRow) {
	if f.OnRowsFound != nil {
		f.OnRowsFound(chain, rows)
	}
}

// ChainProgress implements Observer.
func (f *ObserverFuncs) ChainProgress(chain model.Chain, found, pagesFetched int) {
	if f.OnChainProgress != nil {
		f.OnChainProgress(chain, found, pagesFetched)
	}
}

// Progress implements Observer.
func (f *ObserverFuncs) Progress(p model.Progress) {
	if f.OnProgress != nil {
		f.OnProgress(p)
	}
}

// ChainDone implements Observer.
func (f *ObserverFuncs) ChainDone(result model.ChainResult) {
	if f.OnChainDone != nil {
		f.OnChainDone(result)
	}
}

// Summary implements Observer.
func (f *ObserverFuncs) Summary(s Summary) {
	if f.OnSummary != nil {
		f.OnSummary(s)
	}
}

// Observers fans every event out to each observer in order.
type Observers []Observer

var _ Observer = Observers(nil)

// ChainQueued implements Observer.
func (o Observers) ChainQueued(chain model.Chain) {
	for _, obs := range o {
		obs.ChainQueued(chain)
	}
}

// RowsFound implements Observer.
func (o Observers) RowsFound(chain model.Chain, rows []model.HotWalletRow) {
	for _, obs := range o {
		obs.RowsFound(chain, rows)
	}
}

// ChainProgress implements Observer.
func (o Observers) ChainProgress(chain model.Chain, found, pagesFetched int) {
	for _, obs := range o {
		obs.ChainProgress(chain, found, pagesFetched)
	}
}

// Progress implements Observer.
func (o Observers) Progress(p model.Progress) {
	for _, obs := range o {
		obs.Progress(p)
	}
}

// ChainDone implements Observer.
func (o Observers) ChainDone(result model.ChainResult) {
	for _, obs := range o {
		obs.ChainDone(result)
	}
}

// Summary implements Observer.
func (o Observers) Summary(s Summary) {
	for _, obs := range o {
		obs.Summary(s)
	}
}
