package persistence

import (
	"context"

	appbilling "github.com/backoffice/backend/internal/application/billing"
	"github.com/backoffice/backend/internal/domain/billing"
	"github.com/backoffice/backend/internal/domain/partner"
	"gorm.io/gorm"
)

// GormBillingTransactionScope implements the billing TransactionScope
// over a GORM database transaction
type GormBillingTransactionScope struct {
	db *gorm.DB
}

// NewGormBillingTransactionScope creates a new GormBillingTransactionScope
func NewGormBillingTransactionScope(db *gorm.DB) *GormBillingTransactionScope {
	return &GormBillingTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormBillingTransactionScope) Execute(ctx context.Context, fn func(repos appbilling.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(billingTransactionalRepositories{
			inventoryTransactionalRepositories: inventoryTransactionalRepositories{tx: tx},
		})
	})
}

// billingTransactionalRepositories builds repositories bound to the
// transaction handle. Stock-touching billing operations reuse the inventory
// repositories on the same handle.
type billingTransactionalRepositories struct {
	inventoryTransactionalRepositories
}

func (r billingTransactionalRepositories) Invoices() billing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

func (r billingTransactionalRepositories) Orders() billing.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

func (r billingTransactionalRepositories) CreditNotes() billing.CreditNoteRepository {
	return NewGormCreditNoteRepository(r.tx)
}

func (r billingTransactionalRepositories) Partners() partner.PartnerRepository {
	return NewGormPartnerRepository(r.tx)
}

func (r billingTransactionalRepositories) Branches() partner.BranchRepository {
	return NewGormBranchRepository(r.tx)
}

var (
	_ appbilling.TransactionScope          = (*GormBillingTransactionScope)(nil)
	_ appbilling.TransactionalRepositories = billingTransactionalRepositories{}
)
