package billing

import (
	"context"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceRepository persists invoice aggregates
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindByDocumentCode(ctx context.Context, tenantID uuid.UUID, code string) (*Invoice, error)
	FindByPartner(ctx context.Context, tenantID, partnerID uuid.UUID) ([]Invoice, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[Invoice], error)

	// NextSequence returns the next document sequence for the invoice type,
	// derived from the highest committed code of that type plus one
	NextSequence(ctx context.Context, tenantID uuid.UUID, invoiceType InvoiceType) (int64, error)

	Create(ctx context.Context, invoice *Invoice) error
	Save(ctx context.Context, invoice *Invoice) error
}

// OrderRepository persists order aggregates
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Order, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[Order], error)
	NextSequence(ctx context.Context, tenantID uuid.UUID) (int64, error)
	Create(ctx context.Context, order *Order) error
	Save(ctx context.Context, order *Order) error
}

// CreditNoteRepository persists credit notes
type CreditNoteRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CreditNote, error)
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]CreditNote, error)
	FindByPartner(ctx context.Context, tenantID, partnerID uuid.UUID) ([]CreditNote, error)

	// ReturnedQuantities sums, per product, the quantities already credited
	// against the invoice across all of its credit notes
	ReturnedQuantities(ctx context.Context, tenantID, invoiceID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)

	NextSequence(ctx context.Context, tenantID uuid.UUID) (int64, error)
	Create(ctx context.Context, note *CreditNote) error
}
