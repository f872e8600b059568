package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/friskawellness/billing-service/internal/grid"
)

func newCache(t *testing.T) (*GridCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewGridCache(client, time.Minute), mr
}

func TestGridCacheRoundTrip(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	g := grid.Grid{
		{"", "Jane Doe", "Evening Delivery", "80"},
		{"", "", "", ""},
	}
	c.Set(ctx, "clientlist November", g)

	got, ok := c.Get(ctx, "clientlist November")
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, "Jane Doe", got[0][1])
}

func TestGridCacheMiss(t *testing.T) {
	c, _ := newCache(t)
	_, ok := c.Get(context.Background(), "clientlist December")
	assert.False(t, ok)
}

func TestGridCacheExpiry(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	c.Set(ctx, "clientlist November", grid.Grid{{"x"}})
	mr.FastForward(2 * time.Minute)

	_, ok := c.Get(ctx, "clientlist November")
	assert.False(t, ok)
}

func TestGridCacheInvalidate(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	c.Set(ctx, "BillingCycle", grid.Grid{{"x"}})
	c.Invalidate(ctx, "BillingCycle")

	_, ok := c.Get(ctx, "BillingCycle")
	assert.False(t, ok)
}

func TestGridCacheNilSafe(t *testing.T) {
	var c *GridCache
	ctx := context.Background()

	c.Set(ctx, "tab", grid.Grid{{"x"}})
	_, ok := c.Get(ctx, "tab")
	assert.False(t, ok)
	c.Invalidate(ctx, "tab")
}
