package arkham

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/nao1215/hotwalletscan/internal/model"
)

// Fixed filters applied to every transfer-list request.
const (
	transferFlow     = "out"
	transferMinUSD   = "1"
	transferSortKey  = "time"
	transferSortDesc = "desc"
)

// TransferQuery selects one page of outgoing transfers.
type TransferQuery struct {
	// EntityID is the sending entity.
	EntityID string

	// Chain restricts transfers to one network.
	Chain model.Chain

	// Limit is the page size; Offset is the number of records to skip.
	Limit  int
	Offset int

	// APIKey overrides the client's default key when non-empty.
	APIKey string
}

// Validate checks the query fields.
func (q TransferQuery) Validate() error {
	if q.EntityID == "" {
		return errors.New("transfer query: entity ID is required")
	}
	if q.Chain == "" {
		return errors.New("transfer query: chain is required")
	}
	if q.Limit <= 0 {
		return fmt.Errorf("transfer query: limit must be positive, got %d", q.Limit)
	}
	if q.Offset < 0 {
		return fmt.Errorf("transfer query: offset must not be negative, got %d", q.Offset)
	}
	return nil
}

// Values encodes the query string of the transfer-list endpoint.
func (q TransferQuery) Values() url.Values {
	v := url.Values{}
	v.Set("base", q.EntityID)
	v.Set("flow", transferFlow)
	v.Set("usdGte", transferMinUSD)
	v.Set("sortKey", transferSortKey)
	v.Set("sortDir", transferSortDesc)
	v.Set("limit", strconv.Itoa(q.Limit))
	v.Set("offset", strconv.Itoa(q.Offset))
	v.Set("chains", q.Chain.String())
	return v
}

// TransferPage is one page of the transfer list.
type TransferPage struct {
	Transfers []model.TransferRecord `json:"transfers"`
	Count     int                    `json:"count,omitempty"`
}

// FetchTransfers fetches one page of transfers.
// Cancellation and the per-page deadline come from ctx.
func (c *Client) FetchTransfers(ctx context.Context, q TransferQuery) (*TransferPage, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	key := c.key(q.APIKey)
	if key == "" {
		return nil, ErrNoAPIKey
	}

	body, err := c.get(ctx, "/transfers", q.Values(), key)
	if err != nil {
		return nil, err
	}

	var page TransferPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to decode transfers response: %w", err)
	}
	return &page, nil
}
