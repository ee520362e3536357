package currency

import (
	"context"
	"errors"
	"time"

	"github.com/backoffice/backend/internal/domain/currency"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/backoffice/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RateCache is the read-through cache of "latest rate per currency".
// A miss returns (zero, false, nil); cache failures are soft and never fail
// the lookup.
type RateCache interface {
	GetLatest(ctx context.Context, tenantID uuid.UUID, code valueobject.Currency) (decimal.Decimal, bool, error)
	SetLatest(ctx context.Context, tenantID uuid.UUID, code valueobject.Currency, rate decimal.Decimal) error
	Invalidate(ctx context.Context, tenantID uuid.UUID, code valueobject.Currency) error
}

// RateService exposes currency and exchange-rate operations. It is the
// single source of "latest rate" snapshots for every document engine.
type RateService struct {
	currencyRepo currency.CurrencyRepository
	rateRepo     currency.ExchangeRateRepository
	cache        RateCache
	logger       *zap.Logger
}

// NewRateService creates a new RateService. cache may be nil, in which case
// every lookup goes to the repository.
func NewRateService(currencyRepo currency.CurrencyRepository, rateRepo currency.ExchangeRateRepository, cache RateCache, logger *zap.Logger) *RateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateService{
		currencyRepo: currencyRepo,
		rateRepo:     rateRepo,
		cache:        cache,
		logger:       logger,
	}
}

// LatestRate returns the most recent rate for the currency. The base
// currency is always 1; a currency with no recorded rate falls back to 1
// rather than failing the caller's transaction.
func (s *RateService) LatestRate(ctx context.Context, tenantID uuid.UUID, code valueobject.Currency) (decimal.Decimal, error) {
	if code == valueobject.BaseCurrency {
		return decimal.NewFromInt(1), nil
	}

	if s.cache != nil {
		if rate, ok, err := s.cache.GetLatest(ctx, tenantID, code); err == nil && ok {
			return rate, nil
		} else if err != nil {
			s.logger.Warn("rate cache read failed", zap.String("currency", string(code)), zap.Error(err))
		}
	}

	row, err := s.rateRepo.FindLatest(ctx, tenantID, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Zero, err
	}

	if s.cache != nil {
		if err := s.cache.SetLatest(ctx, tenantID, code, row.Rate); err != nil {
			s.logger.Warn("rate cache write failed", zap.String("currency", string(code)), zap.Error(err))
		}
	}

	return row.Rate, nil
}

// RecordRate appends a manually ingested rate row and invalidates the cache
func (s *RateService) RecordRate(ctx context.Context, req RecordRateRequest) (*RateResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "currency", "record_rate")
	defer span.End()

	code := valueobject.Currency(req.Code)
	if !code.IsValid() {
		return nil, shared.ErrInvalidInput
	}
	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidInput
	}

	effectiveAt := time.Now()
	if req.EffectiveAt != nil {
		effectiveAt = *req.EffectiveAt
	}

	row, err := currency.NewExchangeRate(req.TenantID, code, req.Rate, effectiveAt, req.Source)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.rateRepo.Create(ctx, row); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, req.TenantID, code); err != nil {
			s.logger.Warn("rate cache invalidation failed", zap.String("currency", string(code)), zap.Error(err))
		}
	}

	s.logger.Info("exchange rate recorded",
		zap.String("currency", string(code)),
		zap.String("rate", row.Rate.String()),
		zap.String("source", row.Source))

	resp := ToRateResponse(row)
	return &resp, nil
}

// RateHistory lists recorded rates for a currency, newest first
func (s *RateService) RateHistory(ctx context.Context, tenantID uuid.UUID, code valueobject.Currency, filter shared.Filter) ([]RateResponse, error) {
	rows, err := s.rateRepo.FindHistory(ctx, tenantID, code, filter)
	if err != nil {
		return nil, err
	}
	out := make([]RateResponse, 0, len(rows))
	for idx := range rows {
		out = append(out, ToRateResponse(&rows[idx]))
	}
	return out, nil
}

// ListCurrencies returns the tenant's currencies
func (s *RateService) ListCurrencies(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]CurrencyResponse, error) {
	rows, err := s.currencyRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]CurrencyResponse, 0, len(rows))
	for idx := range rows {
		out = append(out, ToCurrencyResponse(&rows[idx]))
	}
	return out, nil
}

// EnsureCurrency registers a currency if it is not known yet
func (s *RateService) EnsureCurrency(ctx context.Context, tenantID uuid.UUID, code valueobject.Currency, name, symbol string) (*CurrencyResponse, error) {
	existing, err := s.currencyRepo.FindByCode(ctx, tenantID, code)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		resp := ToCurrencyResponse(existing)
		return &resp, nil
	}

	c, err := currency.NewCurrency(tenantID, code, name, symbol)
	if err != nil {
		return nil, err
	}
	if err := s.currencyRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	resp := ToCurrencyResponse(c)
	return &resp, nil
}
