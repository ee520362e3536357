package currency

import (
	"time"

	"github.com/backoffice/backend/internal/domain/currency"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurrencyResponse represents a currency in API responses
type CurrencyResponse struct {
	ID      uuid.UUID `json:"id"`
	Code    string    `json:"code"`
	Name    string    `json:"name"`
	Symbol  string    `json:"symbol"`
	IsBase  bool      `json:"is_base"`
	Enabled bool      `json:"enabled"`
}

// RateResponse represents an exchange rate in API responses
type RateResponse struct {
	Code        string          `json:"code"`
	Rate        decimal.Decimal `json:"rate"`
	EffectiveAt time.Time       `json:"effective_at"`
	Source      string          `json:"source"`
}

// RecordRateRequest carries a manual rate ingestion
type RecordRateRequest struct {
	TenantID    uuid.UUID       `json:"-"`
	Code        string          `json:"code" binding:"required,currency"`
	Rate        decimal.Decimal `json:"rate" binding:"required"`
	Source      string          `json:"source"`
	EffectiveAt *time.Time      `json:"effective_at"`
}

// ToCurrencyResponse maps the aggregate to its response shape
func ToCurrencyResponse(c *currency.Currency) CurrencyResponse {
	return CurrencyResponse{
		ID:      c.ID,
		Code:    string(c.Code),
		Name:    c.Name,
		Symbol:  c.Symbol,
		IsBase:  c.IsBase,
		Enabled: c.Enabled,
	}
}

// ToRateResponse maps a rate row to its response shape
func ToRateResponse(r *currency.ExchangeRate) RateResponse {
	return RateResponse{
		Code:        string(r.Code),
		Rate:        r.Rate,
		EffectiveAt: r.EffectiveAt,
		Source:      r.Source,
	}
}
