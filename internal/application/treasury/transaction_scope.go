package treasury

import (
	"context"

	"github.com/backoffice/backend/internal/domain/billing"
	"github.com/backoffice/backend/internal/domain/partner"
	"github.com/backoffice/backend/internal/domain/treasury"
)

// TransactionScope provides transactional access to the repositories a
// payment registration touches. The payment row, its allocations, the bank
// balance mutation and the invoice status recomputation commit or roll back
// as one unit.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories scoped to the current
// transaction
type TransactionalRepositories interface {
	Payments() treasury.PaymentRepository
	BankAccounts() treasury.BankAccountRepository
	Invoices() billing.InvoiceRepository
	Partners() partner.PartnerRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Used in tests over in-memory repositories.
type NoOpTransactionScope struct {
	payments     treasury.PaymentRepository
	bankAccounts treasury.BankAccountRepository
	invoices     billing.InvoiceRepository
	partners     partner.PartnerRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	payments treasury.PaymentRepository,
	bankAccounts treasury.BankAccountRepository,
	invoices billing.InvoiceRepository,
	partners partner.PartnerRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		payments:     payments,
		bankAccounts: bankAccounts,
		invoices:     invoices,
		partners:     partners,
	}
}

// Execute runs the function without transaction boundaries
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Payments returns the payment repository
func (s *NoOpTransactionScope) Payments() treasury.PaymentRepository { return s.payments }

// BankAccounts returns the bank account repository
func (s *NoOpTransactionScope) BankAccounts() treasury.BankAccountRepository { return s.bankAccounts }

// Invoices returns the invoice repository
func (s *NoOpTransactionScope) Invoices() billing.InvoiceRepository { return s.invoices }

// Partners returns the partner repository
func (s *NoOpTransactionScope) Partners() partner.PartnerRepository { return s.partners }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
