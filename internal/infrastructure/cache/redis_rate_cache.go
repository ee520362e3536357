package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RedisRateCache caches the latest exchange rate per tenant and currency.
// It is suitable for distributed deployments where multiple instances share
// rate lookups. A miss is reported as (zero, false, nil).
type RedisRateCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisRateCache creates a Redis-backed rate cache and verifies the
// connection before returning.
func NewRedisRateCache(cfg RedisConfig, ttl time.Duration) (*RedisRateCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisRateCacheWithClient(client, ttl), nil
}

// NewRedisRateCacheWithClient creates a cache over an existing Redis client.
// Useful for testing and for sharing a client across components.
func NewRedisRateCacheWithClient(client *redis.Client, ttl time.Duration) *RedisRateCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisRateCache{
		client:    client,
		keyPrefix: "fx:latest:",
		ttl:       ttl,
	}
}

func (c *RedisRateCache) key(tenantID uuid.UUID, code valueobject.Currency) string {
	return fmt.Sprintf("%s%s:%s", c.keyPrefix, tenantID, code)
}

// GetLatest returns the cached latest rate for the currency, if present
func (c *RedisRateCache) GetLatest(ctx context.Context, tenantID uuid.UUID, code valueobject.Currency) (decimal.Decimal, bool, error) {
	val, err := c.client.Get(ctx, c.key(tenantID, code)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to read cached rate: %w", err)
	}

	rate, err := decimal.NewFromString(val)
	if err != nil {
		// a corrupted entry behaves like a miss
		return decimal.Zero, false, nil
	}
	return rate, true, nil
}

// SetLatest stores the latest rate for the currency with the cache TTL
func (c *RedisRateCache) SetLatest(ctx context.Context, tenantID uuid.UUID, code valueobject.Currency, rate decimal.Decimal) error {
	if err := c.client.Set(ctx, c.key(tenantID, code), rate.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache rate: %w", err)
	}
	return nil
}

// Invalidate drops the cached rate for the currency
func (c *RedisRateCache) Invalidate(ctx context.Context, tenantID uuid.UUID, code valueobject.Currency) error {
	if err := c.client.Del(ctx, c.key(tenantID, code)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached rate: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client
func (c *RedisRateCache) Close() error {
	return c.client.Close()
}
