package inventory

import (
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLine is the quantity of a product held in a warehouse, optionally
// partitioned by batch. There is at most one row per
// (warehouse, product, batch) and its quantity is never negative; the
// conditional update in the repository enforces that under concurrency.
type StockLine struct {
	shared.TenantAggregateRoot
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_line_key,priority:2"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_line_key,priority:3"`
	BatchID     *uuid.UUID      `gorm:"type:uuid;uniqueIndex:idx_stock_line_key,priority:4"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (StockLine) TableName() string {
	return "stock_lines"
}

// NewStockLine creates a stock row for a (warehouse, product, batch) triple
func NewStockLine(tenantID, warehouseID, productID uuid.UUID, batchID *uuid.UUID) (*StockLine, error) {
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}

	return &StockLine{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		WarehouseID:         warehouseID,
		ProductID:           productID,
		BatchID:             batchID,
		Quantity:            decimal.Zero,
	}, nil
}

// Apply adds a signed delta to the quantity. A delta that would drive the
// quantity below zero is rejected with INSUFFICIENT_STOCK.
func (l *StockLine) Apply(delta decimal.Decimal) error {
	next := l.Quantity.Add(delta)
	if next.IsNegative() {
		return shared.ErrInsufficientStock
	}

	l.Quantity = next
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	return nil
}

// CanFulfill reports whether the row holds at least qty units
func (l *StockLine) CanFulfill(qty decimal.Decimal) bool {
	return l.Quantity.GreaterThanOrEqual(qty)
}

// StockBatch is the lot identity for batch-tracked products. A batch is
// created on first receipt of an unknown (product, lot) pair and referenced
// by stock lines and move lines from then on.
type StockBatch struct {
	shared.BaseEntity
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_stock_batch_lot,priority:1"`
	ProductID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_stock_batch_lot,priority:2"`
	LotCode    string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_stock_batch_lot,priority:3"`
	ExpiryDate *time.Time `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (StockBatch) TableName() string {
	return "stock_batches"
}

// NewStockBatch creates a batch for a product lot
func NewStockBatch(tenantID, productID uuid.UUID, lotCode string, expiry *time.Time) (*StockBatch, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if lotCode == "" {
		return nil, shared.NewDomainError("INVALID_LOT", "Lot code cannot be empty")
	}

	return &StockBatch{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		ProductID:  productID,
		LotCode:    lotCode,
		ExpiryDate: expiry,
	}, nil
}

// IsExpired reports whether the batch expiry has passed
func (b *StockBatch) IsExpired(now time.Time) bool {
	return b.ExpiryDate != nil && b.ExpiryDate.Before(now)
}
