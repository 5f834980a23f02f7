package arkham

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/cases"

	"github.com/nao1215/hotwalletscan/internal/model"
)

// searchResponse is the subset of the search payload we use.
type searchResponse struct {
	ArkhamEntities []model.Entity `json:"arkhamEntities"`
}

// SearchEntities looks up entities matching query.
// Results are cached per case-folded query; a failed lookup is not cached.
func (c *Client) SearchEntities(ctx context.Context, query string) ([]model.Entity, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	cacheKey := searchCacheKey(query)
	if c.searchCache != nil {
		if cached, ok := c.searchCache.Get(cacheKey); ok {
			c.logger.Debug("search cache hit", "query", query)
			return cloneEntities(cached), nil
		}
	}

	body, err := c.get(ctx, "/intelligence/search", url.Values{"query": {query}}, c.apiKey)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	entities := make([]model.Entity, 0, len(resp.ArkhamEntities))
	for _, e := range resp.ArkhamEntities {
		if e.ID == "" {
			continue
		}
		entities = append(entities, e)
	}

	if c.searchCache != nil {
		c.searchCache.Add(cacheKey, cloneEntities(entities))
	}
	return entities, nil
}

// ResolveEntity returns the entity whose ID equals idOrQuery, or the first
// search hit otherwise.
func (c *Client) ResolveEntity(ctx context.Context, idOrQuery string) (model.Entity, error) {
	entities, err := c.SearchEntities(ctx, idOrQuery)
	if err != nil {
		return model.Entity{}, err
	}
	if len(entities) == 0 {
		return model.Entity{}, fmt.Errorf("no entity matches %q", idOrQuery)
	}
	want := strings.TrimSpace(idOrQuery)
	for _, e := range entities {
		if e.ID == want {
			return e, nil
		}
	}
	return entities[0], nil
}

// searchCacheKey folds case so "Binance" and "BINANCE" share a cache slot.
func searchCacheKey(query string) string {
	return cases.Fold().String(query)
}

func cloneEntities(in []model.Entity) []model.Entity {
	out := make([]model.Entity, len(in))
	copy(out, in)
	return out
}
