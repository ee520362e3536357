package persistence

import (
	"context"
	"errors"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM. Payments
// and their allocations are immutable once created.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create inserts the payment with its allocation rows
func (r *GormPaymentRepository) Create(ctx context.Context, payment *treasury.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// FindByID finds a payment by its ID with allocations preloaded
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.Payment, error) {
	var payment treasury.Payment
	err := r.db.WithContext(ctx).
		Preload("Allocations").
		First(&payment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// FindByPartner lists the partner's payments, oldest first
func (r *GormPaymentRepository) FindByPartner(ctx context.Context, tenantID, partnerID uuid.UUID) ([]treasury.Payment, error) {
	var payments []treasury.Payment
	err := r.db.WithContext(ctx).
		Preload("Allocations").
		Where("tenant_id = ? AND partner_id = ?", tenantID, partnerID).
		Order("paid_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// FindAllForTenant lists payments with pagination, newest first
func (r *GormPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[treasury.Payment], error) {
	base := r.db.WithContext(ctx).
		Model(&treasury.Payment{}).
		Where("tenant_id = ?", tenantID)

	if paymentType, ok := filter.Filters["type"]; ok {
		base = base.Where("type = ?", paymentType)
	}
	if method, ok := filter.Filters["method"]; ok {
		base = base.Where("method = ?", method)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var payments []treasury.Payment
	if err := paginate(base.Preload("Allocations"), filter, "paid_at DESC").Find(&payments).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(payments, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ReferenceExists implements the duplicate-reference guard: the reference
// must be unique within the bank account when one is given, otherwise
// within the payment method.
func (r *GormPaymentRepository) ReferenceExists(ctx context.Context, tenantID uuid.UUID, reference string, scope treasury.ReferenceScope) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&treasury.Payment{}).
		Where("tenant_id = ? AND reference = ?", tenantID, reference)

	if scope.BankAccountID != nil {
		query = query.Where("bank_account_id = ?", *scope.BankAccountID)
	} else {
		query = query.Where("method = ?", scope.Method)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// AllocatedToInvoice sums allocation amounts against an invoice across all
// payments
func (r *GormPaymentRepository) AllocatedToInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&treasury.PaymentAllocation{}).
		Select("COALESCE(SUM(payment_allocations.amount), 0)").
		Joins("JOIN payments ON payments.id = payment_allocations.payment_id").
		Where("payments.tenant_id = ? AND payment_allocations.invoice_id = ?", tenantID, invoiceID).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

var _ treasury.PaymentRepository = (*GormPaymentRepository)(nil)
