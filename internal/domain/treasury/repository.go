package treasury

import (
	"context"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReferenceScope narrows the duplicate-reference guard. The reference must
// be unique within the same bank account when one is given, otherwise within
// the same method.
type ReferenceScope struct {
	BankAccountID *uuid.UUID
	Method        PaymentMethod
}

// PaymentRepository persists payments and their allocations
type PaymentRepository interface {
	// Create inserts the payment with its allocation rows
	Create(ctx context.Context, payment *Payment) error

	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByPartner(ctx context.Context, tenantID, partnerID uuid.UUID) ([]Payment, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[Payment], error)

	// ReferenceExists implements the duplicate-reference guard
	ReferenceExists(ctx context.Context, tenantID uuid.UUID, reference string, scope ReferenceScope) (bool, error)

	// AllocatedToInvoice sums allocation amounts against an invoice across
	// all payments
	AllocatedToInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (decimal.Decimal, error)
}

// BankAccountRepository persists bank account aggregates
type BankAccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BankAccount, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*BankAccount, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[BankAccount], error)
	Create(ctx context.Context, account *BankAccount) error
	Save(ctx context.Context, account *BankAccount) error
}
