package persistence

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/backoffice/backend/internal/domain/billing"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID with lines preloaded
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&invoice, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByIDForTenant finds an invoice by ID within a tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByDocumentCode finds an invoice by its fiscal code within a tenant
func (r *GormInvoiceRepository) FindByDocumentCode(ctx context.Context, tenantID uuid.UUID, code string) (*billing.Invoice, error) {
	var invoice billing.Invoice
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND document_code = ?", tenantID, code).
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByPartner lists the partner's invoices, oldest first
func (r *GormInvoiceRepository) FindByPartner(ctx context.Context, tenantID, partnerID uuid.UUID) ([]billing.Invoice, error) {
	var invoices []billing.Invoice
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND partner_id = ?", tenantID, partnerID).
		Order("issued_at ASC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindAllForTenant lists invoices with pagination
func (r *GormInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[billing.Invoice], error) {
	base := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Where("tenant_id = ?", tenantID)

	if status, ok := filter.Filters["status"]; ok {
		base = base.Where("status = ?", status)
	}
	if invoiceType, ok := filter.Filters["type"]; ok {
		base = base.Where("type = ?", invoiceType)
	}
	if partnerID, ok := filter.Filters["partner_id"]; ok {
		base = base.Where("partner_id = ?", partnerID)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var invoices []billing.Invoice
	if err := paginate(base.Preload("Lines"), filter, "issued_at DESC").Find(&invoices).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(invoices, total, filter.Page, filter.PageSize)
	return &page, nil
}

// NextSequence derives the next document sequence for the invoice type from
// the highest committed code. Codes are fixed-width and share a prefix per
// type, so the lexicographic maximum is also the numeric maximum.
func (r *GormInvoiceRepository) NextSequence(ctx context.Context, tenantID uuid.UUID, invoiceType billing.InvoiceType) (int64, error) {
	var maxCode sql.NullString
	err := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Where("tenant_id = ? AND type = ?", tenantID, invoiceType).
		Select("MAX(document_code)").
		Scan(&maxCode).Error
	if err != nil {
		return 0, err
	}
	return nextSequenceFromCode(maxCode, invoiceType.DocumentPrefix())
}

// Create inserts the invoice with its lines
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

// Save updates the invoice header. Lines are immutable after posting and
// are not rewritten here.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Omit("Lines").Save(invoice).Error
}

// nextSequenceFromCode parses the numeric suffix of the highest committed
// document code and returns it plus one. An absent code starts at 1.
func nextSequenceFromCode(maxCode sql.NullString, prefix string) (int64, error) {
	if !maxCode.Valid || maxCode.String == "" {
		return 1, nil
	}
	code := maxCode.String
	if len(code) <= len(prefix) {
		return 0, shared.NewDomainError("INVALID_INPUT", "Malformed document code "+code)
	}
	seq, err := strconv.ParseInt(code[len(prefix):], 10, 64)
	if err != nil {
		return 0, shared.NewDomainError("INVALID_INPUT", "Malformed document code "+code)
	}
	return seq + 1, nil
}

var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
