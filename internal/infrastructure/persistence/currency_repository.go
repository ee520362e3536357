package persistence

import (
	"context"
	"errors"

	"github.com/backoffice/backend/internal/domain/currency"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCurrencyRepository implements CurrencyRepository using GORM
type GormCurrencyRepository struct {
	db *gorm.DB
}

// NewGormCurrencyRepository creates a new GormCurrencyRepository
func NewGormCurrencyRepository(db *gorm.DB) *GormCurrencyRepository {
	return &GormCurrencyRepository{db: db}
}

// FindByCode finds a currency by its ISO code within a tenant
func (r *GormCurrencyRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code valueobject.Currency) (*currency.Currency, error) {
	var c currency.Currency
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindAllForTenant finds all currencies for a tenant
func (r *GormCurrencyRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]currency.Currency, error) {
	query := r.db.WithContext(ctx).
		Model(&currency.Currency{}).
		Where("tenant_id = ?", tenantID)

	if enabled, ok := filter.Filters["enabled"]; ok {
		query = query.Where("enabled = ?", enabled)
	}

	var currencies []currency.Currency
	if err := paginate(query, filter, "code ASC").Find(&currencies).Error; err != nil {
		return nil, err
	}
	return currencies, nil
}

// Save creates or updates a currency
func (r *GormCurrencyRepository) Save(ctx context.Context, c *currency.Currency) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// GormExchangeRateRepository implements ExchangeRateRepository using GORM
type GormExchangeRateRepository struct {
	db *gorm.DB
}

// NewGormExchangeRateRepository creates a new GormExchangeRateRepository
func NewGormExchangeRateRepository(db *gorm.DB) *GormExchangeRateRepository {
	return &GormExchangeRateRepository{db: db}
}

// FindLatest returns the most recent rate row for a currency by EffectiveAt
func (r *GormExchangeRateRepository) FindLatest(ctx context.Context, tenantID uuid.UUID, code valueobject.Currency) (*currency.ExchangeRate, error) {
	var rate currency.ExchangeRate
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		Order("effective_at DESC").
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rate, nil
}

// FindHistory returns rate rows for a currency, newest first
func (r *GormExchangeRateRepository) FindHistory(ctx context.Context, tenantID uuid.UUID, code valueobject.Currency, filter shared.Filter) ([]currency.ExchangeRate, error) {
	query := r.db.WithContext(ctx).
		Model(&currency.ExchangeRate{}).
		Where("tenant_id = ? AND code = ?", tenantID, code)

	var rates []currency.ExchangeRate
	if err := paginate(query, filter, "effective_at DESC").Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

// Create appends a new rate row
func (r *GormExchangeRateRepository) Create(ctx context.Context, rate *currency.ExchangeRate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

var (
	_ currency.CurrencyRepository     = (*GormCurrencyRepository)(nil)
	_ currency.ExchangeRateRepository = (*GormExchangeRateRepository)(nil)
)
