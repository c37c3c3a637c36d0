package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"vwa-api/pkg/config"
)

// ErrCacheMiss is returned when a key is not present.
var ErrCacheMiss = errors.New("cache miss")

// Cache keys
const (
	KeyMarketQuotes  = "pricing:market"         // all mock quotes
	KeyAssetQuote    = "pricing:market:%s"      // pricing:market:gold
	KeyMarketSummary = "assets:market:summary"  // aggregate stats
	KeyRateLimit     = "ratelimit:%s"           // ratelimit:<client ip>
)

// Cache wraps a Redis client used for short-lived quote and summary caching.
// Callers receive the handle explicitly; a nil *Cache disables caching.
type Cache struct {
	client *redis.Client
	ctx    context.Context
}

// New connects to Redis and verifies the connection.
func New(cfg *config.Config) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisURL(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.Database,
		PoolSize:     cfg.Redis.PoolSize,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: client, ctx: ctx}, nil
}

// Set stores a JSON-encoded value with expiration.
func (c *Cache) Set(key string, value interface{}, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if err := c.client.Set(c.ctx, key, jsonValue, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}

	return nil
}

// Get retrieves a JSON-encoded value into dest.
func (c *Cache) Get(key string, dest interface{}) error {
	val, err := c.client.Get(c.ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get key %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return fmt.Errorf("failed to unmarshal value for key %s: %w", key, err)
	}

	return nil
}

// Delete removes a key.
func (c *Cache) Delete(key string) error {
	if err := c.client.Del(c.ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Increment atomically increments a counter key.
func (c *Cache) Increment(key string) (int64, error) {
	result, err := c.client.Incr(c.ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment key %s: %w", key, err)
	}
	return result, nil
}

// Expire sets expiration for a key.
func (c *Cache) Expire(key string, expiration time.Duration) error {
	if err := c.client.Expire(c.ctx, key, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set expiration for key %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c != nil && c.client != nil {
		return c.client.Close()
	}
	return nil
}

// HealthCheck checks Redis connectivity.
func (c *Cache) HealthCheck() error {
	if c == nil || c.client == nil {
		return fmt.Errorf("redis client not initialized")
	}

	if _, err := c.client.Ping(c.ctx).Result(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	return nil
}

// Helper functions for common cache operations

// CacheMarketQuotes caches the full mock market quote list.
func (c *Cache) CacheMarketQuotes(quotes interface{}, ttl time.Duration) error {
	return c.Set(KeyMarketQuotes, quotes, ttl)
}

// GetMarketQuotes retrieves cached market quotes.
func (c *Cache) GetMarketQuotes(dest interface{}) error {
	return c.Get(KeyMarketQuotes, dest)
}

// CacheAssetQuote caches the mock quote for one asset type.
func (c *Cache) CacheAssetQuote(assetType string, quote interface{}, ttl time.Duration) error {
	return c.Set(fmt.Sprintf(KeyAssetQuote, assetType), quote, ttl)
}

// GetAssetQuote retrieves the cached quote for one asset type.
func (c *Cache) GetAssetQuote(assetType string, dest interface{}) error {
	return c.Get(fmt.Sprintf(KeyAssetQuote, assetType), dest)
}

// CacheMarketSummary caches the asset market summary aggregate.
func (c *Cache) CacheMarketSummary(summary interface{}, ttl time.Duration) error {
	return c.Set(KeyMarketSummary, summary, ttl)
}

// GetMarketSummary retrieves the cached market summary.
func (c *Cache) GetMarketSummary(dest interface{}) error {
	return c.Get(KeyMarketSummary, dest)
}

// InvalidateMarketSummary removes the cached market summary, for callers that
// just mutated asset rows.
func (c *Cache) InvalidateMarketSummary() error {
	return c.Delete(KeyMarketSummary)
}
