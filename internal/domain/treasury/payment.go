package treasury

import (
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType represents the cash direction of a payment
type PaymentType string

const (
	// PaymentTypeIncome is money received from a partner
	PaymentTypeIncome PaymentType = "INCOME"
	// PaymentTypeExpense is money paid out to a partner
	PaymentTypeExpense PaymentType = "EXPENSE"
)

// IsValid checks if the type is a valid PaymentType
func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentTypeIncome, PaymentTypeExpense:
		return true
	}
	return false
}

// String returns the string representation of PaymentType
func (t PaymentType) String() string {
	return string(t)
}

// PaymentMethod represents how a payment was settled. BALANCE is the
// pseudo-method that consumes accumulated partner credit; it moves no cash
// and nets to zero on account statements.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodMobile   PaymentMethod = "MOBILE"
	PaymentMethodBalance  PaymentMethod = "BALANCE"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCard, PaymentMethodMobile, PaymentMethodBalance:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// MovesCash reports whether the method represents actual money movement
func (m PaymentMethod) MovesCash() bool {
	return m != PaymentMethodBalance
}

// PaymentAllocation applies a portion of one payment to one invoice.
// Allocations are immutable once created.
type PaymentAllocation struct {
	shared.BaseEntity
	PaymentID uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (PaymentAllocation) TableName() string {
	return "payment_allocations"
}

// Payment is a cash or bank movement tied to a partner, applied to invoices
// exclusively through allocations. Payments are immutable once created;
// reversal is a new compensating payment.
type Payment struct {
	shared.TenantAggregateRoot
	PartnerID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	BranchID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	Type          PaymentType          `gorm:"type:varchar(20);not null;index"`
	Method        PaymentMethod        `gorm:"type:varchar(20);not null"`
	CurrencyCode  valueobject.Currency `gorm:"type:varchar(3);not null"`
	ExchangeRate  decimal.Decimal      `gorm:"type:decimal(24,10);not null"`
	Amount        decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	BankAccountID *uuid.UUID           `gorm:"type:uuid;index"`
	Reference     string               `gorm:"type:varchar(100);index"`
	PaidAt        time.Time            `gorm:"not null;index"`

	Allocations []PaymentAllocation `gorm:"foreignKey:PaymentID;references:ID"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a payment with a snapshotted exchange rate
func NewPayment(tenantID, partnerID, branchID uuid.UUID, paymentType PaymentType, method PaymentMethod, currency valueobject.Currency, amount, exchangeRate decimal.Decimal, bankAccountID *uuid.UUID, reference string) (*Payment, error) {
	if partnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTNER", "Partner ID cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if !paymentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TYPE", "Invalid payment type")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Unknown currency code")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if exchangeRate.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_RATE", "Exchange rate must be positive")
	}

	return &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PartnerID:           partnerID,
		BranchID:            branchID,
		Type:                paymentType,
		Method:              method,
		CurrencyCode:        currency,
		ExchangeRate:        exchangeRate.Round(valueobject.RateScale),
		Amount:              amount.Round(valueobject.MoneyScale),
		BankAccountID:       bankAccountID,
		Reference:           reference,
		PaidAt:              time.Now(),
		Allocations:         make([]PaymentAllocation, 0),
	}, nil
}

// Allocate applies part of the payment to an invoice. The allocated sum may
// never exceed the payment amount, and one payment carries at most one
// allocation per invoice.
func (p *Payment) Allocate(invoiceID uuid.UUID, amount decimal.Decimal) error {
	if invoiceID == uuid.Nil {
		return shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}
	for _, alloc := range p.Allocations {
		if alloc.InvoiceID == invoiceID {
			return shared.ErrInvalidInput
		}
	}
	if p.AllocatedTotal().Add(amount).GreaterThan(p.Amount) {
		return shared.ErrInvalidInput
	}

	p.Allocations = append(p.Allocations, PaymentAllocation{
		BaseEntity: shared.NewBaseEntity(),
		PaymentID:  p.ID,
		InvoiceID:  invoiceID,
		Amount:     amount.Round(valueobject.MoneyScale),
	})

	return nil
}

// AllocatedTotal is the sum of all allocation amounts
func (p *Payment) AllocatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, alloc := range p.Allocations {
		total = total.Add(alloc.Amount)
	}
	return total
}

// UnallocatedAmount is the payment remainder not applied to any invoice.
// It feeds the partner's unused balance on the account statement.
func (p *Payment) UnallocatedAmount() decimal.Decimal {
	return p.Amount.Sub(p.AllocatedTotal())
}
