package billing

import (
	"fmt"
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementTolerance is the cent tolerance used when comparing paid amounts
// against invoice totals.
var SettlementTolerance = decimal.NewFromFloat(0.01)

// InvoiceType represents the commercial direction of an invoice
type InvoiceType string

const (
	InvoiceTypeSale     InvoiceType = "SALE"
	InvoiceTypePurchase InvoiceType = "PURCHASE"
)

// IsValid checks if the type is a valid InvoiceType
func (t InvoiceType) IsValid() bool {
	switch t {
	case InvoiceTypeSale, InvoiceTypePurchase:
		return true
	}
	return false
}

// String returns the string representation of InvoiceType
func (t InvoiceType) String() string {
	return string(t)
}

// DocumentPrefix returns the fiscal document-code prefix for the type
func (t InvoiceType) DocumentPrefix() string {
	if t == InvoiceTypePurchase {
		return "C-"
	}
	return "A-"
}

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusPosted        InvoiceStatus = "POSTED"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusVoid          InvoiceStatus = "VOID"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusPosted, InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusVoid:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// PARTIALLY_PAID and PAID are reached only through payment settlement, never
// by a direct billing call.
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return target == InvoiceStatusPosted
	case InvoiceStatusPosted:
		return target == InvoiceStatusPartiallyPaid || target == InvoiceStatusPaid || target == InvoiceStatusVoid
	case InvoiceStatusPartiallyPaid:
		return target == InvoiceStatusPaid || target == InvoiceStatusVoid
	case InvoiceStatusPaid:
		return target == InvoiceStatusVoid
	case InvoiceStatusVoid:
		return false
	}
	return false
}

// IsPayable reports whether payments may be allocated against the status
func (s InvoiceStatus) IsPayable() bool {
	switch s {
	case InvoiceStatusPosted, InvoiceStatusPartiallyPaid, InvoiceStatusPaid:
		return true
	}
	return false
}

// FormatDocumentCode renders a sequential fiscal code for the invoice type,
// e.g. A-00000042 for sales and C-00000042 for purchases.
func FormatDocumentCode(invoiceType InvoiceType, sequence int64) string {
	return fmt.Sprintf("%s%08d", invoiceType.DocumentPrefix(), sequence)
}

// InvoiceLine is one product position on an invoice. Amounts are computed at
// construction and never recomputed afterwards.
type InvoiceLine struct {
	shared.BaseEntity
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (InvoiceLine) TableName() string {
	return "invoice_lines"
}

func newInvoiceLine(invoiceID, productID uuid.UUID, productName string, quantity, unitPrice, taxRate decimal.Decimal) (*InvoiceLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if taxRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}

	subtotal := quantity.Mul(unitPrice).Round(valueobject.MoneyScale)
	tax := subtotal.Mul(taxRate).Round(valueobject.MoneyScale)

	return &InvoiceLine{
		BaseEntity:  shared.NewBaseEntity(),
		InvoiceID:   invoiceID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TaxRate:     taxRate,
		Subtotal:    subtotal,
		TaxAmount:   tax,
	}, nil
}

// Invoice is the billing aggregate root. Monetary fields are expressed in the
// invoice currency; ExchangeRate is the base-currency rate snapshotted at
// creation and never refreshed.
type Invoice struct {
	shared.TenantAggregateRoot
	Type          InvoiceType           `gorm:"type:varchar(20);not null;index"`
	Status        InvoiceStatus         `gorm:"type:varchar(20);not null;index"`
	DocumentCode  string                `gorm:"type:varchar(20);not null;uniqueIndex:idx_invoice_doc_code"`
	ControlNumber string                `gorm:"type:varchar(50)"`
	PartnerID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	BranchID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	OrderID       *uuid.UUID            `gorm:"type:uuid;index"`
	CurrencyCode  valueobject.Currency  `gorm:"type:varchar(3);not null"`
	ExchangeRate  decimal.Decimal       `gorm:"type:decimal(24,10);not null"`
	IssuedAt      time.Time             `gorm:"not null;index"`
	IgtfRate      decimal.Decimal       `gorm:"type:decimal(8,4);not null;default:0"`
	TotalBase     decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	TotalTax      decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	TotalIgtf     decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	Total         decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	VoidedAt      *time.Time
	VoidReason    string                `gorm:"type:varchar(255)"`

	Lines []InvoiceLine `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates an invoice in DRAFT. Purchase invoices must carry the
// externally issued control number.
func NewInvoice(tenantID uuid.UUID, invoiceType InvoiceType, documentCode string, partnerID, branchID uuid.UUID, currency valueobject.Currency, exchangeRate decimal.Decimal, issuedAt time.Time, controlNumber string) (*Invoice, error) {
	if !invoiceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INVOICE_TYPE", "Invalid invoice type")
	}
	if documentCode == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_CODE", "Document code cannot be empty")
	}
	if partnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTNER", "Partner ID cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Unknown currency code")
	}
	if exchangeRate.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_RATE", "Exchange rate must be positive")
	}
	if invoiceType == InvoiceTypePurchase && controlNumber == "" {
		return nil, shared.ErrMissingControlNumber
	}
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}

	return &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Type:                invoiceType,
		Status:              InvoiceStatusDraft,
		DocumentCode:        documentCode,
		ControlNumber:       controlNumber,
		PartnerID:           partnerID,
		BranchID:            branchID,
		CurrencyCode:        currency,
		ExchangeRate:        exchangeRate.Round(valueobject.RateScale),
		IssuedAt:            issuedAt,
		IgtfRate:            decimal.Zero,
		TotalBase:           decimal.Zero,
		TotalTax:            decimal.Zero,
		TotalIgtf:           decimal.Zero,
		Total:               decimal.Zero,
		Lines:               make([]InvoiceLine, 0),
	}, nil
}

// LinkOrder records the order the invoice settles
func (i *Invoice) LinkOrder(orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	i.OrderID = &orderID
	i.UpdatedAt = time.Now()
	return nil
}

// AddLine appends a product line and folds it into the header totals.
// Only allowed while DRAFT.
func (i *Invoice) AddLine(productID uuid.UUID, productName string, quantity, unitPrice, taxRate decimal.Decimal) (*InvoiceLine, error) {
	if i.Status != InvoiceStatusDraft {
		return nil, shared.ErrInvalidStateTransition
	}

	line, err := newInvoiceLine(i.ID, productID, productName, quantity, unitPrice, taxRate)
	if err != nil {
		return nil, err
	}

	i.Lines = append(i.Lines, *line)
	i.recalculateTotals()
	i.UpdatedAt = time.Now()

	return line, nil
}

// ApplyIgtf sets the foreign-currency surcharge rate as a fraction of the
// base total. The caller decides applicability (foreign currency, branch
// gate); the invoice only owns the arithmetic. The rate is kept on the
// aggregate so lines added afterwards recompute the surcharge from the new
// base. Only allowed while DRAFT.
func (i *Invoice) ApplyIgtf(rate decimal.Decimal) error {
	if i.Status != InvoiceStatusDraft {
		return shared.ErrInvalidStateTransition
	}
	if rate.IsNegative() {
		return shared.NewDomainError("INVALID_RATE", "IGTF rate cannot be negative")
	}

	i.IgtfRate = rate
	i.recalculateTotals()
	i.UpdatedAt = time.Now()

	return nil
}

// Post flips the invoice from DRAFT to POSTED. No monetary recomputation.
func (i *Invoice) Post() error {
	if !i.Status.CanTransitionTo(InvoiceStatusPosted) {
		return shared.ErrInvalidStateTransition
	}
	if len(i.Lines) == 0 {
		return shared.NewDomainError("NO_LINES", "Cannot post an invoice without lines")
	}

	i.Status = InvoiceStatusPosted
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

// Void marks the invoice VOID. Illegal only when already VOID. Payments and
// allocations against the invoice are untouched; any stock return is the
// caller's move to issue.
func (i *Invoice) Void(reason string) error {
	if i.Status == InvoiceStatusVoid {
		return shared.ErrInvalidStateTransition
	}

	now := time.Now()
	i.Status = InvoiceStatusVoid
	i.VoidedAt = &now
	i.VoidReason = reason
	i.UpdatedAt = now
	i.IncrementVersion()

	return nil
}

// Settle recomputes the payment-driven status from the total paid so far.
// Returns true when the status changed. Once PAID, further settlements never
// move the invoice away from PAID.
func (i *Invoice) Settle(totalPaid decimal.Decimal) (bool, error) {
	if !i.Status.IsPayable() {
		return false, shared.ErrInvalidStateTransition
	}
	if i.Status == InvoiceStatusPaid {
		return false, nil
	}

	next := i.Status
	switch {
	case totalPaid.GreaterThanOrEqual(i.Total.Sub(SettlementTolerance)):
		next = InvoiceStatusPaid
	case totalPaid.IsPositive():
		next = InvoiceStatusPartiallyPaid
	}

	if next == i.Status {
		return false, nil
	}

	i.Status = next
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return true, nil
}

// LineForProduct returns the line carrying the product, or nil
func (i *Invoice) LineForProduct(productID uuid.UUID) *InvoiceLine {
	for idx := range i.Lines {
		if i.Lines[idx].ProductID == productID {
			return &i.Lines[idx]
		}
	}
	return nil
}

// TotalMoney returns the grand total in the invoice currency
func (i *Invoice) TotalMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(i.Total, i.CurrencyCode)
	return m
}

// BaseUnitPrice converts a line price into the base currency using the
// snapshot rate. Used when a purchase receipt values incoming stock.
func (i *Invoice) BaseUnitPrice(line InvoiceLine) (decimal.Decimal, error) {
	price, err := valueobject.NewMoney(line.UnitPrice, i.CurrencyCode)
	if err != nil {
		return decimal.Zero, err
	}
	converted, err := price.Convert(valueobject.BaseCurrency, i.ExchangeRate)
	if err != nil {
		return decimal.Zero, err
	}
	return converted.Amount(), nil
}

// IsVoid returns true when the invoice has been voided
func (i *Invoice) IsVoid() bool {
	return i.Status == InvoiceStatusVoid
}

func (i *Invoice) recalculateTotals() {
	base := decimal.Zero
	tax := decimal.Zero
	for _, line := range i.Lines {
		base = base.Add(line.Subtotal)
		tax = tax.Add(line.TaxAmount)
	}
	i.TotalBase = base
	i.TotalTax = tax
	i.TotalIgtf = i.TotalBase.Mul(i.IgtfRate).Round(valueobject.MoneyScale)
	i.Total = i.TotalBase.Add(i.TotalTax).Add(i.TotalIgtf)
}
