package billing

import (
	"context"

	appinv "github.com/backoffice/backend/internal/application/inventory"
	"github.com/backoffice/backend/internal/domain/billing"
	"github.com/backoffice/backend/internal/domain/partner"
)

// TransactionScope provides transactional access to the repositories a
// billing operation touches. Invoice creation with a purchase receipt, a
// void with stock return and a credit note with stock return all write
// documents and stock in the same transaction, so the scope carries the
// inventory repositories too and a MoveApplier is built from it.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories scoped to the current
// transaction
type TransactionalRepositories interface {
	appinv.TransactionalRepositories

	Invoices() billing.InvoiceRepository
	Orders() billing.OrderRepository
	CreditNotes() billing.CreditNoteRepository
	Partners() partner.PartnerRepository
	Branches() partner.BranchRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Used in tests over in-memory repositories.
type NoOpTransactionScope struct {
	appinv.TransactionalRepositories
	invoices    billing.InvoiceRepository
	orders      billing.OrderRepository
	creditNotes billing.CreditNoteRepository
	partners    partner.PartnerRepository
	branches    partner.BranchRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	inventoryRepos appinv.TransactionalRepositories,
	invoices billing.InvoiceRepository,
	orders billing.OrderRepository,
	creditNotes billing.CreditNoteRepository,
	partners partner.PartnerRepository,
	branches partner.BranchRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		TransactionalRepositories: inventoryRepos,
		invoices:                  invoices,
		orders:                    orders,
		creditNotes:               creditNotes,
		partners:                  partners,
		branches:                  branches,
	}
}

// Execute runs the function without transaction boundaries
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Invoices returns the invoice repository
func (s *NoOpTransactionScope) Invoices() billing.InvoiceRepository { return s.invoices }

// Orders returns the order repository
func (s *NoOpTransactionScope) Orders() billing.OrderRepository { return s.orders }

// CreditNotes returns the credit note repository
func (s *NoOpTransactionScope) CreditNotes() billing.CreditNoteRepository { return s.creditNotes }

// Partners returns the partner repository
func (s *NoOpTransactionScope) Partners() partner.PartnerRepository { return s.partners }

// Branches returns the branch repository
func (s *NoOpTransactionScope) Branches() partner.BranchRepository { return s.branches }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
