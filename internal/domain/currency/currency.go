package currency

import (
	"strings"
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency is a currency accepted for documents and payments.
type Currency struct {
	shared.TenantAggregateRoot
	Code    valueobject.Currency `gorm:"type:varchar(3);not null;uniqueIndex:idx_currency_tenant_code,priority:2"`
	Name    string               `gorm:"type:varchar(100);not null"`
	Symbol  string               `gorm:"type:varchar(8)"`
	IsBase  bool                 `gorm:"not null;default:false"`
	Enabled bool                 `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Currency) TableName() string {
	return "currencies"
}

// NewCurrency creates a new currency
func NewCurrency(tenantID uuid.UUID, code valueobject.Currency, name, symbol string) (*Currency, error) {
	normalized := valueobject.Currency(strings.ToUpper(strings.TrimSpace(string(code))))
	if len(normalized) != 3 {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency code must be 3 letters")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency name cannot be empty")
	}

	return &Currency{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                normalized,
		Name:                name,
		Symbol:              symbol,
		IsBase:              normalized == valueobject.BaseCurrency,
		Enabled:             true,
	}, nil
}

// ExchangeRate is one point-in-time rate of a currency against the base
// currency. Rows are append-only; "latest rate" is the most recent row by
// EffectiveAt.
type ExchangeRate struct {
	shared.BaseEntity
	TenantID    uuid.UUID            `gorm:"type:uuid;not null;index:idx_rate_tenant_currency,priority:1"`
	Code        valueobject.Currency `gorm:"type:varchar(3);not null;index:idx_rate_tenant_currency,priority:2"`
	Rate        decimal.Decimal      `gorm:"type:decimal(24,10);not null"`
	EffectiveAt time.Time            `gorm:"not null;index"`
	Source      string               `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (ExchangeRate) TableName() string {
	return "exchange_rates"
}

// NewExchangeRate records a rate of one unit of code in base currency.
func NewExchangeRate(tenantID uuid.UUID, code valueobject.Currency, rate decimal.Decimal, effectiveAt time.Time, source string) (*ExchangeRate, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency code cannot be empty")
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Exchange rate must be positive")
	}
	if effectiveAt.IsZero() {
		effectiveAt = time.Now()
	}

	return &ExchangeRate{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		Code:        code,
		Rate:        rate.Round(valueobject.RateScale),
		EffectiveAt: effectiveAt,
		Source:      source,
	}, nil
}

// IsBaseRate reports whether this row is the trivial base-currency rate.
func (r *ExchangeRate) IsBaseRate() bool {
	return r.Code == valueobject.BaseCurrency
}
