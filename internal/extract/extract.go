// Package extract implements the hot wallet rule applied to every transfer record.
//
// A transfer counterparty qualifies when its owning entity name equals the
// target entity name and its label equals model.HotWalletLabel. Both
// comparisons are exact. Qualifying rows are merged into an Accumulator keyed
// by "address@chain".
package extract

import (
	"strings"

	"github.com/nao1215/hotwalletscan/internal/model"
)

// Extract returns a row when c is a hot wallet of targetName.
// Missing fields never match, so malformed records simply yield no row.
func Extract(c model.Counterparty, targetName string) (model.HotWalletRow, bool) {
	if targetName == "" || c.EntityName != targetName {
		return model.HotWalletRow{}, false
	}
	if c.LabelName != model.HotWalletLabel {
		return model.HotWalletRow{}, false
	}
	address := strings.TrimSpace(c.Address)
	if address == "" {
		return model.HotWalletRow{}, false
	}
	return model.HotWalletRow{
		Chain:   c.Chain,
		Address: address,
		ArkmURL: model.ExplorerURL(address),
		Label:   c.LabelName,
	}, true
}

// SenderCounterparty returns the sender side of a transfer.
// Owner info is preferred; the sender address info is the fallback.
// When the counterparty carries no chain, fallbackChain is used.
func SenderCounterparty(r model.TransferRecord, fallbackChain model.Chain) model.Counterparty {
	info := r.FromAddressOwner
	if info == nil {
		info = r.FromAddress
	}
	c := info.Counterparty()
	if c.Chain == "" {
		c.Chain = r.Chain
	}
	if c.Chain == "" {
		c.Chain = fallbackChain.String()
	}
	if c.Address == "" && r.FromAddress != nil {
		c.Address = r.FromAddress.Address
	}
	return c
}
