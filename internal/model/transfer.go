package model

import "time"

// EntityRef is the owning entity attached to an address by the intelligence API.
type EntityRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Label is a human-readable tag attached to an address (e.g. "Hot Wallet").
type Label struct {
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
	ChainType string `json:"chainType,omitempty"`
}

// AddressInfo describes one side of a transfer.
// Every field may be absent in API responses.
type AddressInfo struct {
	Address      string     `json:"address"`
	Chain        string     `json:"chain"`
	ArkhamEntity *EntityRef `json:"arkhamEntity,omitempty"`
	ArkhamLabel  *Label     `json:"arkhamLabel,omitempty"`
}

// TransferRecord is one item of a transfer-list page.
// Records are read-only and are discarded once extraction has run.
type TransferRecord struct {
	ID               string       `json:"id"`
	TransactionHash  string       `json:"transactionHash,omitempty"`
	Chain            string       `json:"chain,omitempty"`
	FromAddress      *AddressInfo `json:"fromAddress,omitempty"`
	FromAddressOwner *AddressInfo `json:"fromAddressOwner,omitempty"`
	ToAddress        *AddressInfo `json:"toAddress,omitempty"`
	ToAddressOwner   *AddressInfo `json:"toAddressOwner,omitempty"`
	HistoricalUSD    float64      `json:"historicalUSD,omitempty"`
	BlockTimestamp   time.Time    `json:"blockTimestamp,omitempty"`
}

// Counterparty is the flattened view of an AddressInfo used by extraction.
type Counterparty struct {
	Address    string
	Chain      string
	EntityName string
	LabelName  string
}

// Counterparty flattens the address info. A nil receiver yields the zero value.
func (a *AddressInfo) Counterparty() Counterparty {
	if a == nil {
		return Counterparty{}
	}
	c := Counterparty{
		Address: a.Address,
		Chain:   a.Chain,
	}
	if a.ArkhamEntity != nil {
		c.EntityName = a.ArkhamEntity.Name
	}
	if a.ArkhamLabel != nil {
		c.LabelName = a.ArkhamLabel.Name
	}
	return c
}
