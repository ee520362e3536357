package currency

import (
	"context"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// CurrencyRepository defines the interface for currency persistence
type CurrencyRepository interface {
	// FindByCode finds a currency by its ISO code within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code valueobject.Currency) (*Currency, error)

	// FindAllForTenant finds all currencies for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Currency, error)

	// Save creates or updates a currency
	Save(ctx context.Context, c *Currency) error
}

// ExchangeRateRepository defines the interface for exchange rate persistence.
// Rates are append-only.
type ExchangeRateRepository interface {
	// FindLatest returns the most recent rate row for a currency by
	// EffectiveAt, or shared.ErrNotFound when no rate was ever recorded.
	FindLatest(ctx context.Context, tenantID uuid.UUID, code valueobject.Currency) (*ExchangeRate, error)

	// FindHistory returns rate rows for a currency, newest first
	FindHistory(ctx context.Context, tenantID uuid.UUID, code valueobject.Currency, filter shared.Filter) ([]ExchangeRate, error)

	// Create appends a new rate row
	Create(ctx context.Context, rate *ExchangeRate) error
}
