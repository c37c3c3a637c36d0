package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vwa-api/pkg/config"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg := &config.Config{}
	cfg.Redis.Host = mr.Host()
	cfg.Redis.Port = mr.Port()

	c, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_SetGetDelete(t *testing.T) {
	c, _ := newTestCache(t)

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, c.Set("test:key", payload{Name: "gold", Count: 3}, time.Minute))

	var got payload
	require.NoError(t, c.Get("test:key", &got))
	assert.Equal(t, "gold", got.Name)
	assert.Equal(t, 3, got.Count)

	require.NoError(t, c.Delete("test:key"))
	assert.ErrorIs(t, c.Get("test:key", &got), ErrCacheMiss)
}

func TestCache_MissingKey(t *testing.T) {
	c, _ := newTestCache(t)

	var dest map[string]interface{}
	assert.ErrorIs(t, c.Get("never:written", &dest), ErrCacheMiss)
}

func TestCache_IncrementExpire(t *testing.T) {
	c, mr := newTestCache(t)

	n, err := c.Increment("counter")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = c.Increment("counter")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, c.Expire("counter", time.Second))
	mr.FastForward(2 * time.Second)
	assert.False(t, mr.Exists("counter"))
}

func TestCache_SummaryHelpers(t *testing.T) {
	c, mr := newTestCache(t)

	require.NoError(t, c.CacheMarketSummary(map[string]int{"total_assets": 2}, time.Minute))
	assert.True(t, mr.Exists(KeyMarketSummary))

	var summary map[string]int
	require.NoError(t, c.GetMarketSummary(&summary))
	assert.Equal(t, 2, summary["total_assets"])

	require.NoError(t, c.InvalidateMarketSummary())
	assert.ErrorIs(t, c.GetMarketSummary(&summary), ErrCacheMiss)
}

func TestCache_HealthCheck(t *testing.T) {
	c, _ := newTestCache(t)
	assert.NoError(t, c.HealthCheck())

	var nilCache *Cache
	assert.Error(t, nilCache.HealthCheck())
}
