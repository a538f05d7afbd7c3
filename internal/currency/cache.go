package currency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// Cache stores rate-to-target lookups keyed by currency code.
type Cache interface {
	Get(ctx context.Context, code string) (decimal.Decimal, bool, error)
	Set(ctx context.Context, code string, rate decimal.Decimal, ttl time.Duration) error
}

type memoryEntry struct {
	rate    decimal.Decimal
	expires time.Time
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, code string) (decimal.Decimal, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[code]
	c.mu.RUnlock()
	if !ok || !c.now().Before(e.expires) {
		return decimal.Zero, false, nil
	}
	return e.rate, true, nil
}

func (c *MemoryCache) Set(_ context.Context, code string, rate decimal.Decimal, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[code] = memoryEntry{rate: rate, expires: c.now().Add(ttl)}
	return nil
}

// RedisCache shares rates between API and cron processes.
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client, baseCurrency string) *RedisCache {
	return &RedisCache{client: client, prefix: "currency:rate:" + strings.ToUpper(baseCurrency) + ":"}
}

func (c *RedisCache) key(code string) string {
	return c.prefix + code
}

func (c *RedisCache) Get(ctx context.Context, code string) (decimal.Decimal, bool, error) {
	raw, err := c.client.Get(ctx, c.key(code)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("redis get: %w", err)
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("redis decode rate %q: %w", raw, err)
	}
	return rate, true, nil
}

func (c *RedisCache) Set(ctx context.Context, code string, rate decimal.Decimal, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(code), rate.String(), ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
