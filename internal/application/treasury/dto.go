package treasury

import (
	"time"

	"github.com/backoffice/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationRequest applies a portion of the payment to one invoice
type AllocationRequest struct {
	InvoiceID uuid.UUID       `json:"invoice_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

// RegisterPaymentRequest carries a payment registration. A payment against a
// single invoice is expressed as one allocation covering the applied amount.
type RegisterPaymentRequest struct {
	TenantID      uuid.UUID              `json:"-"`
	BranchID      uuid.UUID              `json:"-"`
	ActorID       *uuid.UUID             `json:"-"`
	PartnerID     uuid.UUID              `json:"partner_id" binding:"required"`
	Method        treasury.PaymentMethod `json:"method" binding:"required"`
	CurrencyCode  string                 `json:"currency" binding:"required,currency"`
	Amount        decimal.Decimal        `json:"amount" binding:"required"`
	BankAccountID *uuid.UUID             `json:"bank_account_id"`
	Reference     string                 `json:"reference"`
	Allocations   []AllocationRequest    `json:"allocations"`
}

// CreateBankAccountRequest carries bank account creation
type CreateBankAccountRequest struct {
	TenantID     uuid.UUID            `json:"-"`
	Code         string               `json:"code" binding:"required"`
	Name         string               `json:"name" binding:"required"`
	Kind         treasury.AccountKind `json:"kind" binding:"required"`
	CurrencyCode string               `json:"currency" binding:"required,currency"`
}

// AllocationResponse represents a payment allocation in API responses
type AllocationResponse struct {
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID            uuid.UUID            `json:"id"`
	PartnerID     uuid.UUID            `json:"partner_id"`
	BranchID      uuid.UUID            `json:"branch_id"`
	Type          string               `json:"type"`
	Method        string               `json:"method"`
	Currency      string               `json:"currency"`
	ExchangeRate  decimal.Decimal      `json:"exchange_rate"`
	Amount        decimal.Decimal      `json:"amount"`
	BankAccountID *uuid.UUID           `json:"bank_account_id,omitempty"`
	Reference     string               `json:"reference,omitempty"`
	PaidAt        time.Time            `json:"paid_at"`
	Allocations   []AllocationResponse `json:"allocations"`
}

// BankAccountResponse represents a bank account in API responses
type BankAccountResponse struct {
	ID       uuid.UUID       `json:"id"`
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Kind     string          `json:"kind"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
	Active   bool            `json:"active"`
}

// StatementEntryResponse is one row of an account statement
type StatementEntryResponse struct {
	Kind       string          `json:"kind"`
	DocumentID uuid.UUID       `json:"document_id"`
	Document   string          `json:"document,omitempty"`
	Date       time.Time       `json:"date"`
	Debit      decimal.Decimal `json:"debit"`
	Credit     decimal.Decimal `json:"credit"`
	Balance    decimal.Decimal `json:"balance"`
}

// StatementResponse represents a partner account statement
type StatementResponse struct {
	PartnerID     uuid.UUID                `json:"partner_id"`
	Balance       decimal.Decimal          `json:"balance"`
	UnusedBalance decimal.Decimal          `json:"unused_balance"`
	Transactions  []StatementEntryResponse `json:"transactions"`
}

// ToPaymentResponse maps a payment aggregate to its response shape
func ToPaymentResponse(p *treasury.Payment) PaymentResponse {
	allocations := make([]AllocationResponse, 0, len(p.Allocations))
	for _, alloc := range p.Allocations {
		allocations = append(allocations, AllocationResponse{
			InvoiceID: alloc.InvoiceID,
			Amount:    alloc.Amount,
		})
	}
	return PaymentResponse{
		ID:            p.ID,
		PartnerID:     p.PartnerID,
		BranchID:      p.BranchID,
		Type:          p.Type.String(),
		Method:        p.Method.String(),
		Currency:      string(p.CurrencyCode),
		ExchangeRate:  p.ExchangeRate,
		Amount:        p.Amount,
		BankAccountID: p.BankAccountID,
		Reference:     p.Reference,
		PaidAt:        p.PaidAt,
		Allocations:   allocations,
	}
}

// ToBankAccountResponse maps a bank account to its response shape
func ToBankAccountResponse(a *treasury.BankAccount) BankAccountResponse {
	return BankAccountResponse{
		ID:       a.ID,
		Code:     a.Code,
		Name:     a.Name,
		Kind:     string(a.Kind),
		Currency: string(a.CurrencyCode),
		Balance:  a.Balance,
		Active:   a.Active,
	}
}

// ToStatementResponse maps an account statement to its response shape
func ToStatementResponse(st *treasury.AccountStatement) StatementResponse {
	entries := make([]StatementEntryResponse, 0, len(st.Entries))
	for _, e := range st.Entries {
		entries = append(entries, StatementEntryResponse{
			Kind:       string(e.Kind),
			DocumentID: e.DocumentID,
			Document:   e.Document,
			Date:       e.Date,
			Debit:      e.Debit,
			Credit:     e.Credit,
			Balance:    e.Balance,
		})
	}
	return StatementResponse{
		PartnerID:     st.PartnerID,
		Balance:       st.Balance,
		UnusedBalance: st.UnusedBalance,
		Transactions:  entries,
	}
}
