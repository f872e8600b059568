// Package cache keeps recently fetched month grids in Redis so repeated
// plan requests for the same cycle do not refetch the whole tab.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/friskawellness/billing-service/internal/grid"
)

// GridCache stores serialized month grids keyed by tab title. A nil cache is
// a no-op, so callers never branch on whether caching is enabled.
type GridCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewGridCache(client *redis.Client, ttl time.Duration) *GridCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &GridCache{client: client, ttl: ttl}
}

func (c *GridCache) Get(ctx context.Context, tab string) (grid.Grid, bool) {
	if c == nil || c.client == nil || tab == "" {
		return nil, false
	}
	data, err := c.client.Get(ctx, c.prefixed(tab)).Bytes()
	if err != nil {
		return nil, false
	}
	var g grid.Grid
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, false
	}
	return g, true
}

func (c *GridCache) Set(ctx context.Context, tab string, g grid.Grid) {
	if c == nil || c.client == nil || tab == "" || len(g) == 0 {
		return
	}
	data, err := json.Marshal(g)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.prefixed(tab), data, c.ttl)
}

// Invalidate drops one tab's cached grid, used after ledger writes that may
// sit on a cached tab.
func (c *GridCache) Invalidate(ctx context.Context, tab string) {
	if c == nil || c.client == nil || tab == "" {
		return
	}
	c.client.Del(ctx, c.prefixed(tab))
}

func (c *GridCache) prefixed(tab string) string {
	return "grid:" + tab
}
