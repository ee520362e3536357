package persistence

import (
	"context"

	apptreasury "github.com/backoffice/backend/internal/application/treasury"
	"github.com/backoffice/backend/internal/domain/billing"
	"github.com/backoffice/backend/internal/domain/partner"
	"github.com/backoffice/backend/internal/domain/treasury"
	"gorm.io/gorm"
)

// GormTreasuryTransactionScope implements the treasury TransactionScope
// over a GORM database transaction
type GormTreasuryTransactionScope struct {
	db *gorm.DB
}

// NewGormTreasuryTransactionScope creates a new GormTreasuryTransactionScope
func NewGormTreasuryTransactionScope(db *gorm.DB) *GormTreasuryTransactionScope {
	return &GormTreasuryTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormTreasuryTransactionScope) Execute(ctx context.Context, fn func(repos apptreasury.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(treasuryTransactionalRepositories{tx: tx})
	})
}

// treasuryTransactionalRepositories builds repositories bound to the
// transaction handle
type treasuryTransactionalRepositories struct {
	tx *gorm.DB
}

func (r treasuryTransactionalRepositories) Payments() treasury.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

func (r treasuryTransactionalRepositories) BankAccounts() treasury.BankAccountRepository {
	return NewGormBankAccountRepository(r.tx)
}

func (r treasuryTransactionalRepositories) Invoices() billing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

func (r treasuryTransactionalRepositories) Partners() partner.PartnerRepository {
	return NewGormPartnerRepository(r.tx)
}

var (
	_ apptreasury.TransactionScope          = (*GormTreasuryTransactionScope)(nil)
	_ apptreasury.TransactionalRepositories = treasuryTransactionalRepositories{}
)
