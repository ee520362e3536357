package persistence

import (
	"context"
	"errors"

	"github.com/backoffice/backend/internal/domain/catalog"
	"github.com/backoffice/backend/internal/domain/inventory"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStockLineRepository implements StockLineRepository using GORM
type GormStockLineRepository struct {
	db *gorm.DB
}

// NewGormStockLineRepository creates a new GormStockLineRepository
func NewGormStockLineRepository(db *gorm.DB) *GormStockLineRepository {
	return &GormStockLineRepository{db: db}
}

// keyScope narrows a query to one (warehouse, product, batch) stock row
func (r *GormStockLineRepository) keyScope(query *gorm.DB, tenantID, warehouseID, productID uuid.UUID, batchID *uuid.UUID) *gorm.DB {
	query = query.Where("tenant_id = ? AND warehouse_id = ? AND product_id = ?", tenantID, warehouseID, productID)
	if batchID == nil {
		return query.Where("batch_id IS NULL")
	}
	return query.Where("batch_id = ?", *batchID)
}

// FindByKey returns the stock row for the key, or nil when none exists
func (r *GormStockLineRepository) FindByKey(ctx context.Context, tenantID, warehouseID, productID uuid.UUID, batchID *uuid.UUID) (*inventory.StockLine, error) {
	var line inventory.StockLine
	query := r.keyScope(r.db.WithContext(ctx), tenantID, warehouseID, productID, batchID)
	if err := query.First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &line, nil
}

// ApplyDelta atomically adds delta to the stock row identified by the key.
// The guard in the UPDATE keeps the quantity from going negative under
// concurrent writers; when the row does not exist yet it is created,
// which only succeeds for a non-negative delta.
func (r *GormStockLineRepository) ApplyDelta(ctx context.Context, tenantID, warehouseID, productID uuid.UUID, batchID *uuid.UUID, delta decimal.Decimal) error {
	result := r.keyScope(
		r.db.WithContext(ctx).Model(&inventory.StockLine{}),
		tenantID, warehouseID, productID, batchID,
	).
		Where("quantity + ? >= 0", delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// no row matched: either the key is new, or the delta would have taken
	// the quantity negative
	existing, err := r.FindByKey(ctx, tenantID, warehouseID, productID, batchID)
	if err != nil {
		return err
	}
	if existing != nil {
		return shared.ErrInsufficientStock
	}
	if delta.IsNegative() {
		return shared.ErrInsufficientStock
	}

	line, err := inventory.NewStockLine(tenantID, warehouseID, productID, batchID)
	if err != nil {
		return err
	}
	if err := line.Apply(delta); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost the insert race: retry the conditional update once
			return r.ApplyDelta(ctx, tenantID, warehouseID, productID, batchID, delta)
		}
		return err
	}
	return nil
}

// TotalQuantity sums the product's quantity across warehouses and batches
func (r *GormStockLineRepository) TotalQuantity(ctx context.Context, tenantID, productID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&inventory.StockLine{}).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// FindByWarehouse lists stock rows in a warehouse with pagination. A search
// term narrows the rows to products whose code or name matches.
func (r *GormStockLineRepository) FindByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) (*shared.Paginated[inventory.StockLine], error) {
	base := r.db.WithContext(ctx).
		Model(&inventory.StockLine{}).
		Where("tenant_id = ? AND warehouse_id = ?", tenantID, warehouseID)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		base = base.Where("product_id IN (?)", r.db.
			Model(&catalog.Product{}).
			Select("id").
			Where("tenant_id = ? AND (code LIKE ? OR name LIKE ?)", tenantID, pattern, pattern))
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var lines []inventory.StockLine
	if err := paginate(base, filter, "created_at DESC").Find(&lines).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(lines, total, filter.Page, filter.PageSize)
	return &page, nil
}

// FindByProduct lists the product's stock rows across warehouses
func (r *GormStockLineRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]inventory.StockLine, error) {
	var lines []inventory.StockLine
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

var _ inventory.StockLineRepository = (*GormStockLineRepository)(nil)
