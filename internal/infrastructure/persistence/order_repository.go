package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/backoffice/backend/internal/domain/billing"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const orderNumberPrefix = "ORD-"

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID with lines preloaded
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Order, error) {
	var order billing.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByIDForTenant finds an order by ID within a tenant
func (r *GormOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Order, error) {
	var order billing.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAllForTenant lists orders with pagination
func (r *GormOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[billing.Order], error) {
	base := r.db.WithContext(ctx).
		Model(&billing.Order{}).
		Where("tenant_id = ?", tenantID)

	if status, ok := filter.Filters["status"]; ok {
		base = base.Where("status = ?", status)
	}
	if partnerID, ok := filter.Filters["partner_id"]; ok {
		base = base.Where("partner_id = ?", partnerID)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var orders []billing.Order
	if err := paginate(base.Preload("Lines"), filter, "created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(orders, total, filter.Page, filter.PageSize)
	return &page, nil
}

// NextSequence derives the next order sequence from the highest committed
// order number
func (r *GormOrderRepository) NextSequence(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var maxNumber sql.NullString
	err := r.db.WithContext(ctx).
		Model(&billing.Order{}).
		Where("tenant_id = ?", tenantID).
		Select("MAX(number)").
		Scan(&maxNumber).Error
	if err != nil {
		return 0, err
	}
	return nextSequenceFromCode(maxNumber, orderNumberPrefix)
}

// Create inserts the order with its lines
func (r *GormOrderRepository) Create(ctx context.Context, order *billing.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// Save updates the order header
func (r *GormOrderRepository) Save(ctx context.Context, order *billing.Order) error {
	return r.db.WithContext(ctx).Omit("Lines").Save(order).Error
}

var _ billing.OrderRepository = (*GormOrderRepository)(nil)
