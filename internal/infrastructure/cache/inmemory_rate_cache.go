package cache

import (
	"context"
	"sync"
	"time"

	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type rateEntry struct {
	rate      decimal.Decimal
	expiresAt time.Time
}

// InMemoryRateCache is a process-local rate cache for single-instance
// deployments and tests. Expired entries are dropped lazily on read.
type InMemoryRateCache struct {
	mu      sync.RWMutex
	entries map[string]rateEntry
	ttl     time.Duration
}

// NewInMemoryRateCache creates an in-memory rate cache
func NewInMemoryRateCache(ttl time.Duration) *InMemoryRateCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &InMemoryRateCache{
		entries: make(map[string]rateEntry),
		ttl:     ttl,
	}
}

func rateKey(tenantID uuid.UUID, code valueobject.Currency) string {
	return tenantID.String() + ":" + string(code)
}

// GetLatest returns the cached latest rate for the currency, if present
func (c *InMemoryRateCache) GetLatest(_ context.Context, tenantID uuid.UUID, code valueobject.Currency) (decimal.Decimal, bool, error) {
	key := rateKey(tenantID, code)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return decimal.Zero, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return decimal.Zero, false, nil
	}
	return entry.rate, true, nil
}

// SetLatest stores the latest rate for the currency
func (c *InMemoryRateCache) SetLatest(_ context.Context, tenantID uuid.UUID, code valueobject.Currency, rate decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[rateKey(tenantID, code)] = rateEntry{
		rate:      rate,
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}

// Invalidate drops the cached rate for the currency
func (c *InMemoryRateCache) Invalidate(_ context.Context, tenantID uuid.UUID, code valueobject.Currency) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, rateKey(tenantID, code))
	return nil
}
