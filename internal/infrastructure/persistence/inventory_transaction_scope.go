package persistence

import (
	"context"

	appinv "github.com/backoffice/backend/internal/application/inventory"
	"github.com/backoffice/backend/internal/domain/catalog"
	"github.com/backoffice/backend/internal/domain/inventory"
	"github.com/backoffice/backend/internal/domain/partner"
	"gorm.io/gorm"
)

// GormInventoryTransactionScope implements the inventory TransactionScope
// over a GORM database transaction
type GormInventoryTransactionScope struct {
	db *gorm.DB
}

// NewGormInventoryTransactionScope creates a new GormInventoryTransactionScope
func NewGormInventoryTransactionScope(db *gorm.DB) *GormInventoryTransactionScope {
	return &GormInventoryTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormInventoryTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(inventoryTransactionalRepositories{tx: tx})
	})
}

// inventoryTransactionalRepositories builds repositories bound to the
// transaction handle
type inventoryTransactionalRepositories struct {
	tx *gorm.DB
}

func (r inventoryTransactionalRepositories) StockLines() inventory.StockLineRepository {
	return NewGormStockLineRepository(r.tx)
}

func (r inventoryTransactionalRepositories) Batches() inventory.StockBatchRepository {
	return NewGormStockBatchRepository(r.tx)
}

func (r inventoryTransactionalRepositories) Moves() inventory.StockMoveRepository {
	return NewGormStockMoveRepository(r.tx)
}

func (r inventoryTransactionalRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r inventoryTransactionalRepositories) Warehouses() partner.WarehouseRepository {
	return NewGormWarehouseRepository(r.tx)
}

var (
	_ appinv.TransactionScope          = (*GormInventoryTransactionScope)(nil)
	_ appinv.TransactionalRepositories = inventoryTransactionalRepositories{}
)
