package handler

import (
	"time"

	currencyapp "github.com/backoffice/backend/internal/application/currency"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CurrencyHandler exposes the currency registry and exchange rate feed
type CurrencyHandler struct {
	BaseHandler
	rates *currencyapp.RateService
}

// NewCurrencyHandler creates a new CurrencyHandler
func NewCurrencyHandler(rates *currencyapp.RateService) *CurrencyHandler {
	return &CurrencyHandler{rates: rates}
}

// ListCurrencies handles GET /currencies
func (h *CurrencyHandler) ListCurrencies(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	list, ok := h.bindList(c)
	if !ok {
		return
	}

	items, err := h.rates.ListCurrencies(c.Request.Context(), a.TenantID, list.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// EnsureCurrency handles PUT /currencies/:code
func (h *CurrencyHandler) EnsureCurrency(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}

	var req struct {
		Name   string `json:"name" binding:"required"`
		Symbol string `json:"symbol"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid currency payload: "+err.Error())
		return
	}

	code := valueobject.Currency(c.Param("code"))
	resp, err := h.rates.EnsureCurrency(c.Request.Context(), a.TenantID, code, req.Name, req.Symbol)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// LatestRate handles GET /currencies/:code/rate
func (h *CurrencyHandler) LatestRate(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}

	code := valueobject.Currency(c.Param("code"))
	rate, err := h.rates.LatestRate(c.Request.Context(), a.TenantID, code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"code": code, "rate": rate})
}

// RecordRate handles POST /currencies/:code/rates
func (h *CurrencyHandler) RecordRate(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}

	var body struct {
		Rate        decimal.Decimal `json:"rate" binding:"required"`
		Source      string          `json:"source"`
		EffectiveAt *time.Time      `json:"effective_at"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BadRequest(c, "Invalid rate payload: "+err.Error())
		return
	}

	resp, err := h.rates.RecordRate(c.Request.Context(), currencyapp.RecordRateRequest{
		TenantID:    a.TenantID,
		Code:        c.Param("code"),
		Rate:        body.Rate,
		Source:      body.Source,
		EffectiveAt: body.EffectiveAt,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// RateHistory handles GET /currencies/:code/rates
func (h *CurrencyHandler) RateHistory(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	list, ok := h.bindList(c)
	if !ok {
		return
	}

	code := valueobject.Currency(c.Param("code"))
	items, err := h.rates.RateHistory(c.Request.Context(), a.TenantID, code, list.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}
