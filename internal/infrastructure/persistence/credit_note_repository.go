package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/backoffice/backend/internal/domain/billing"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCreditNoteRepository implements CreditNoteRepository using GORM.
// Credit notes are immutable once issued, so there is no Save.
type GormCreditNoteRepository struct {
	db *gorm.DB
}

// NewGormCreditNoteRepository creates a new GormCreditNoteRepository
func NewGormCreditNoteRepository(db *gorm.DB) *GormCreditNoteRepository {
	return &GormCreditNoteRepository{db: db}
}

// FindByID finds a credit note by its ID with lines preloaded
func (r *GormCreditNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.CreditNote, error) {
	var note billing.CreditNote
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&note, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &note, nil
}

// FindByInvoice lists the credit notes issued against an invoice
func (r *GormCreditNoteRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]billing.CreditNote, error) {
	var notes []billing.CreditNote
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Order("issued_at ASC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

// FindByPartner lists the partner's credit notes, oldest first
func (r *GormCreditNoteRepository) FindByPartner(ctx context.Context, tenantID, partnerID uuid.UUID) ([]billing.CreditNote, error) {
	var notes []billing.CreditNote
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND partner_id = ?", tenantID, partnerID).
		Order("issued_at ASC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

// ReturnedQuantities sums, per product, the quantities already credited
// against the invoice across all of its credit notes
func (r *GormCreditNoteRepository) ReturnedQuantities(ctx context.Context, tenantID, invoiceID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	type row struct {
		ProductID uuid.UUID
		Total     decimal.Decimal
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&billing.CreditNoteLine{}).
		Select("credit_note_lines.product_id AS product_id, SUM(credit_note_lines.quantity) AS total").
		Joins("JOIN credit_notes ON credit_notes.id = credit_note_lines.credit_note_id").
		Where("credit_notes.tenant_id = ? AND credit_notes.invoice_id = ?", tenantID, invoiceID).
		Group("credit_note_lines.product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, r := range rows {
		out[r.ProductID] = r.Total
	}
	return out, nil
}

// NextSequence derives the next credit note sequence from the highest
// committed credit note code
func (r *GormCreditNoteRepository) NextSequence(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var maxCode sql.NullString
	err := r.db.WithContext(ctx).
		Model(&billing.CreditNote{}).
		Where("tenant_id = ?", tenantID).
		Select("MAX(document_code)").
		Scan(&maxCode).Error
	if err != nil {
		return 0, err
	}
	return nextSequenceFromCode(maxCode, billing.CreditNoteDocumentPrefix)
}

// Create inserts the credit note with its lines
func (r *GormCreditNoteRepository) Create(ctx context.Context, note *billing.CreditNote) error {
	return r.db.WithContext(ctx).Create(note).Error
}

var _ billing.CreditNoteRepository = (*GormCreditNoteRepository)(nil)
