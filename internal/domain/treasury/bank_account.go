package treasury

import (
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountKind classifies a balance holder
type AccountKind string

const (
	AccountKindCash   AccountKind = "CASH"
	AccountKindBank   AccountKind = "BANK"
	AccountKindWallet AccountKind = "WALLET"
)

// IsValid checks if the kind is a valid AccountKind
func (k AccountKind) IsValid() bool {
	switch k {
	case AccountKindCash, AccountKindBank, AccountKindWallet:
		return true
	}
	return false
}

// BankAccount holds a cash, bank or wallet balance in one currency. The
// balance mutates only inside the transaction of the payment that backs the
// mutation; INCOME adds, EXPENSE subtracts.
type BankAccount struct {
	shared.TenantAggregateRoot
	Code         string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_bank_account_code"`
	Name         string               `gorm:"type:varchar(200);not null"`
	Kind         AccountKind          `gorm:"type:varchar(20);not null"`
	CurrencyCode valueobject.Currency `gorm:"type:varchar(3);not null"`
	Balance      decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	Active       bool                 `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (BankAccount) TableName() string {
	return "bank_accounts"
}

// NewBankAccount creates a balance holder starting at zero
func NewBankAccount(tenantID uuid.UUID, code, name string, kind AccountKind, currency valueobject.Currency) (*BankAccount, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Account code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Invalid account kind")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Unknown currency code")
	}

	return &BankAccount{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Kind:                kind,
		CurrencyCode:        currency,
		Balance:             decimal.Zero,
		Active:              true,
	}, nil
}

// ApplyPayment folds a payment into the balance. BALANCE payments move no
// cash and leave the balance untouched.
func (a *BankAccount) ApplyPayment(p *Payment) error {
	if p == nil {
		return shared.ErrInvalidInput
	}
	if !a.Active {
		return shared.NewDomainError("ACCOUNT_INACTIVE", "Bank account is inactive")
	}
	if p.CurrencyCode != a.CurrencyCode {
		return shared.NewDomainError("CURRENCY_MISMATCH", "Payment currency does not match account currency")
	}
	if !p.Method.MovesCash() {
		return nil
	}

	if p.Type == PaymentTypeExpense {
		a.Balance = a.Balance.Sub(p.Amount)
	} else {
		a.Balance = a.Balance.Add(p.Amount)
	}
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// Deactivate disables the account for new payments
func (a *BankAccount) Deactivate() {
	a.Active = false
	a.UpdatedAt = time.Now()
}

// Rename updates the display name
func (a *BankAccount) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	a.Name = name
	a.UpdatedAt = time.Now()
	return nil
}
