package inventory

import (
	"context"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLineRepository persists per-warehouse stock levels
type StockLineRepository interface {
	// FindByKey returns the stock line for a warehouse/product/batch key,
	// or nil when no stock has ever been recorded for it
	FindByKey(ctx context.Context, tenantID, warehouseID, productID uuid.UUID, batchID *uuid.UUID) (*StockLine, error)

	// ApplyDelta atomically adds delta to the stock line identified by the
	// key, creating the line at zero if absent. Returns
	// shared.ErrInsufficientStock when the resulting quantity would be
	// negative; the row is left untouched in that case.
	ApplyDelta(ctx context.Context, tenantID, warehouseID, productID uuid.UUID, batchID *uuid.UUID, delta decimal.Decimal) error

	// TotalQuantity sums the product's quantity across all warehouses and
	// batches of the tenant
	TotalQuantity(ctx context.Context, tenantID, productID uuid.UUID) (decimal.Decimal, error)

	// FindByWarehouse lists stock lines in a warehouse
	FindByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) (*shared.Paginated[StockLine], error)

	// FindByProduct lists the product's stock lines across warehouses
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]StockLine, error)
}

// StockBatchRepository persists batch lot identities
type StockBatchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockBatch, error)
	FindByLotCode(ctx context.Context, tenantID, productID uuid.UUID, lotCode string) (*StockBatch, error)
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]StockBatch, error)
	Save(ctx context.Context, batch *StockBatch) error
}

// StockMoveRepository persists the append-only move journal
type StockMoveRepository interface {
	// Create inserts a move header with its lines
	Create(ctx context.Context, move *StockMove) error

	// FindByID returns a move with lines preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*StockMove, error)

	// FindBySource returns the moves recorded for an originating document
	FindBySource(ctx context.Context, tenantID uuid.UUID, sourceType SourceDocType, sourceID string) ([]StockMove, error)

	// FindAllForTenant lists moves with pagination
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[StockMove], error)
}
