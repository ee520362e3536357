package billing

import (
	"time"

	"github.com/backoffice/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceLineRequest is one product position in an invoice request. A nil
// price falls back to the product's catalog price.
type InvoiceLineRequest struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// CreateInvoiceRequest carries invoice creation
type CreateInvoiceRequest struct {
	TenantID           uuid.UUID            `json:"-"`
	BranchID           uuid.UUID            `json:"-"`
	ActorID            *uuid.UUID           `json:"-"`
	PartnerID          uuid.UUID            `json:"partner_id" binding:"required"`
	Type               billing.InvoiceType  `json:"type"`
	CurrencyCode       string               `json:"currency" binding:"required,currency"`
	IssuedAt           *time.Time           `json:"issued_at"`
	ControlNumber      string               `json:"control_number"`
	OrderID            *uuid.UUID           `json:"order_id"`
	ReceiptWarehouseID *uuid.UUID           `json:"receipt_warehouse_id"`
	Lines              []InvoiceLineRequest `json:"lines" binding:"required,min=1"`
}

// VoidInvoiceRequest carries an invoice void
type VoidInvoiceRequest struct {
	TenantID          uuid.UUID  `json:"-"`
	BranchID          *uuid.UUID `json:"-"`
	ActorID           *uuid.UUID `json:"-"`
	InvoiceID         uuid.UUID  `json:"-"`
	Reason            string     `json:"reason"`
	ReturnStock       bool       `json:"return_stock"`
	ReturnWarehouseID *uuid.UUID `json:"return_warehouse_id"`
}

// OrderLineRequest is one product position in an order request
type OrderLineRequest struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// CreateOrderRequest carries order creation
type CreateOrderRequest struct {
	TenantID     uuid.UUID          `json:"-"`
	BranchID     uuid.UUID          `json:"-"`
	ActorID      *uuid.UUID         `json:"-"`
	PartnerID    uuid.UUID          `json:"partner_id" binding:"required"`
	WarehouseID  uuid.UUID          `json:"warehouse_id" binding:"required"`
	CurrencyCode string             `json:"currency" binding:"required,currency"`
	Lines        []OrderLineRequest `json:"lines" binding:"required,min=1"`
}

// ReturnLineRequest is one product quantity to reverse on a credit note
type ReturnLineRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

// CreateCreditNoteRequest carries credit note creation
type CreateCreditNoteRequest struct {
	TenantID          uuid.UUID           `json:"-"`
	BranchID          *uuid.UUID          `json:"-"`
	ActorID           *uuid.UUID          `json:"-"`
	InvoiceID         uuid.UUID           `json:"invoice_id" binding:"required"`
	ReturnWarehouseID *uuid.UUID          `json:"return_warehouse_id"`
	Lines             []ReturnLineRequest `json:"lines" binding:"required,min=1"`
}

// InvoiceLineResponse represents an invoice line in API responses
type InvoiceLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID            uuid.UUID             `json:"id"`
	Type          string                `json:"type"`
	Status        string                `json:"status"`
	DocumentCode  string                `json:"document_code"`
	ControlNumber string                `json:"control_number,omitempty"`
	PartnerID     uuid.UUID             `json:"partner_id"`
	BranchID      uuid.UUID             `json:"branch_id"`
	OrderID       *uuid.UUID            `json:"order_id,omitempty"`
	Currency      string                `json:"currency"`
	ExchangeRate  decimal.Decimal       `json:"exchange_rate"`
	IssuedAt      time.Time             `json:"issued_at"`
	TotalBase     decimal.Decimal       `json:"total_base"`
	TotalTax      decimal.Decimal       `json:"total_tax"`
	TotalIgtf     decimal.Decimal       `json:"total_igtf"`
	Total         decimal.Decimal       `json:"total"`
	Lines         []InvoiceLineResponse `json:"lines"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID           uuid.UUID       `json:"id"`
	Number       string          `json:"number"`
	Status       string          `json:"status"`
	PartnerID    uuid.UUID       `json:"partner_id"`
	BranchID     uuid.UUID       `json:"branch_id"`
	WarehouseID  uuid.UUID       `json:"warehouse_id"`
	Currency     string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	Total        decimal.Decimal `json:"total"`
	CreatedAt    time.Time       `json:"created_at"`
}

// CreditNoteLineResponse represents a credit note line in API responses
type CreditNoteLineResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
}

// CreditNoteResponse represents a credit note in API responses
type CreditNoteResponse struct {
	ID           uuid.UUID                `json:"id"`
	DocumentCode string                   `json:"document_code"`
	InvoiceID    uuid.UUID                `json:"invoice_id"`
	PartnerID    uuid.UUID                `json:"partner_id"`
	Currency     string                   `json:"currency"`
	IssuedAt     time.Time                `json:"issued_at"`
	TotalBase    decimal.Decimal          `json:"total_base"`
	TotalTax     decimal.Decimal          `json:"total_tax"`
	TotalIgtf    decimal.Decimal          `json:"total_igtf"`
	Total        decimal.Decimal          `json:"total"`
	Lines        []CreditNoteLineResponse `json:"lines"`
}

// ToInvoiceResponse maps an invoice aggregate to its response shape
func ToInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, 0, len(inv.Lines))
	for _, line := range inv.Lines {
		lines = append(lines, InvoiceLineResponse{
			ID:          line.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TaxRate:     line.TaxRate,
			Subtotal:    line.Subtotal,
			TaxAmount:   line.TaxAmount,
		})
	}
	return InvoiceResponse{
		ID:            inv.ID,
		Type:          inv.Type.String(),
		Status:        inv.Status.String(),
		DocumentCode:  inv.DocumentCode,
		ControlNumber: inv.ControlNumber,
		PartnerID:     inv.PartnerID,
		BranchID:      inv.BranchID,
		OrderID:       inv.OrderID,
		Currency:      string(inv.CurrencyCode),
		ExchangeRate:  inv.ExchangeRate,
		IssuedAt:      inv.IssuedAt,
		TotalBase:     inv.TotalBase,
		TotalTax:      inv.TotalTax,
		TotalIgtf:     inv.TotalIgtf,
		Total:         inv.Total,
		Lines:         lines,
	}
}

// ToOrderResponse maps an order aggregate to its response shape
func ToOrderResponse(o *billing.Order) OrderResponse {
	return OrderResponse{
		ID:           o.ID,
		Number:       o.Number,
		Status:       o.Status.String(),
		PartnerID:    o.PartnerID,
		BranchID:     o.BranchID,
		WarehouseID:  o.WarehouseID,
		Currency:     string(o.CurrencyCode),
		ExchangeRate: o.ExchangeRate,
		Total:        o.Total,
		CreatedAt:    o.CreatedAt,
	}
}

// ToCreditNoteResponse maps a credit note to its response shape
func ToCreditNoteResponse(note *billing.CreditNote) CreditNoteResponse {
	lines := make([]CreditNoteLineResponse, 0, len(note.Lines))
	for _, line := range note.Lines {
		lines = append(lines, CreditNoteLineResponse{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Amount:    line.Amount,
		})
	}
	return CreditNoteResponse{
		ID:           note.ID,
		DocumentCode: note.DocumentCode,
		InvoiceID:    note.InvoiceID,
		PartnerID:    note.PartnerID,
		Currency:     string(note.CurrencyCode),
		IssuedAt:     note.IssuedAt,
		TotalBase:    note.TotalBase,
		TotalTax:     note.TotalTax,
		TotalIgtf:    note.TotalIgtf,
		Total:        note.Total,
		Lines:        lines,
	}
}
