package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewWithClient(client, ttl), srv
}

type menuEntry struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func TestSetThenGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	stored := []menuEntry{{Name: "Masala Dosa", Price: 120}, {Name: "Filter Coffee", Price: 40}}
	c.Set(ctx, "menu_items", stored)

	var loaded []menuEntry
	require.True(t, c.Get(ctx, "menu_items", &loaded))
	require.Equal(t, stored, loaded)
}

func TestGetMissReturnsFalse(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	var loaded []menuEntry
	require.False(t, c.Get(context.Background(), "menu_items", &loaded))
	require.Empty(t, loaded)
}

func TestInvalidateDropsKeys(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	c.Set(ctx, "menu_items", []menuEntry{{Name: "Idli", Price: 60}})
	c.Set(ctx, "categories", []string{"Breakfast"})
	c.Invalidate(ctx, "menu_items", "categories")

	var items []menuEntry
	require.False(t, c.Get(ctx, "menu_items", &items))
	var categories []string
	require.False(t, c.Get(ctx, "categories", &categories))
}

func TestEntriesExpireAfterTTL(t *testing.T) {
	c, srv := newTestCache(t, time.Second)
	ctx := context.Background()

	c.Set(ctx, "menu_items", []menuEntry{{Name: "Vada", Price: 50}})
	srv.FastForward(2 * time.Second)

	var items []menuEntry
	require.False(t, c.Get(ctx, "menu_items", &items))
}

func TestNilCacheIsAlwaysAMiss(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	c.Set(ctx, "menu_items", []menuEntry{{Name: "Poori", Price: 70}})
	var items []menuEntry
	require.False(t, c.Get(ctx, "menu_items", &items))
	c.Invalidate(ctx, "menu_items")
}

func TestCorruptEntryIsAMiss(t *testing.T) {
	c, srv := newTestCache(t, time.Minute)

	require.NoError(t, srv.Set("menu_items", "{not json"))
	var items []menuEntry
	require.False(t, c.Get(context.Background(), "menu_items", &items))
}
