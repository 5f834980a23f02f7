package crawler

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/nao1215/hotwalletscan/internal/arkham"
	"github.com/nao1215/hotwalletscan/internal/model"
)

// fetchFunc adapts a function to TransferFetcher.
type fetchFunc func(ctx context.Context, q arkham.TransferQuery) (*arkham.TransferPage, error)

func (f fetchFunc) FetchTransfers(ctx context.Context, q arkham.TransferQuery) (*arkham.TransferPage, error) {
	return f(ctx, q)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// hotTransfer returns a transfer sent from a hot wallet of entityName.
func hotTransfer(address string, chain model.Chain, entityName string) model.TransferRecord {
	return model.TransferRecord{
		FromAddressOwner: &model.AddressInfo{
			Address:      address,
			Chain:        chain.String(),
			ArkhamEntity: &model.EntityRef{ID: "id-" + entityName, Name: entityName},
			ArkhamLabel:  &model.Label{Name: model.HotWalletLabel},
		},
	}
}

func pageOf(records ...model.TransferRecord) *arkham.TransferPage {
	return &arkham.TransferPage{Transfers: records}
}

// recorder is an Observer that keeps every event. RunState serializes
// observer calls, and tests read it only after Run returns.
type recorder struct {
	queued   []model.Chain
	found    map[model.Chain][][]model.HotWalletRow
	progress []model.Progress
	done     []model.ChainResult
	summary  []Summary
}

func newRecorder() *recorder {
	return &recorder{found: make(map[model.Chain][][]model.HotWalletRow)}
}

func (r *recorder) ChainQueued(c model.Chain) { r.queued = append(r.queued, c) }
func (r *recorder) RowsFound(c model.Chain, rows []model.HotWalletRow) {
	r.found[c] = append(r.found[c], rows)
}
func (r *recorder) ChainProgress(model.Chain, int, int) {}
func (r *recorder) Progress(p model.Progress) { r.progress = append(r.progress, p) }
func (r *recorder) ChainDone(res model.ChainResult) { r.done = append(r.done, res) }
func (r *recorder) Summary(s Summary) { r.summary = append(r.summary, s) }

func resultFor(t testing.TB, results []model.ChainResult, chain model.Chain) model.ChainResult {
	t.Helper()

	for _, r := range results {
		if r.Chain == chain {
			return r
		}
	}
	t.Fatalf("no result for chain %s", chain)
	return model.ChainResult{}
}
