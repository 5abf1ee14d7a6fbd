package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-screener/internal/contracts"
	"github.com/wonny/aegis-screener/pkg/logger"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache() (*MemoryCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 2, 16, 30, 0, 0, time.UTC)}
	c := NewMemoryCache(logger.Nop())
	c.now = clock.now
	return c, clock
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	bars := []contracts.Bar{{Time: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Close: 101.5, Volume: 1e6}}
	require.NoError(t, c.Set(ctx, "bars:AAPL:92d", bars, time.Hour))

	var got []contracts.Bar
	hit, err := c.Get(ctx, "bars:AAPL:92d", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, bars, got)

	hit, err = c.Get(ctx, "bars:MSFT:92d", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c, clock := newTestCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "sector:AAPL", "情報技術", time.Hour))
	require.NoError(t, c.Set(ctx, "sector:MSFT", "情報技術", 3*time.Hour))
	require.NoError(t, c.Set(ctx, "ignored", "x", 0))
	assert.Equal(t, 2, c.Len())

	clock.t = clock.t.Add(2 * time.Hour)

	var name string
	hit, err := c.Get(ctx, "sector:AAPL", &name)
	require.NoError(t, err)
	assert.False(t, hit, "expired entries read as a miss")

	stats := c.Stats()
	assert.Equal(t, 2, stats.TotalCount)
	assert.Equal(t, 1, stats.ExpiredCount)
	assert.Equal(t, 1, stats.LiveCount)

	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 1, c.Len())

	hit, err = c.Get(ctx, "sector:MSFT", &name)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "情報技術", name)
}

func TestMemoryCache_Delete(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 1, time.Hour))
	require.NoError(t, c.Delete(ctx, "k"))
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_UnmarshalError(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "text", time.Hour))
	var n int
	_, err := c.Get(ctx, "k", &n)
	assert.Error(t, err)
}
