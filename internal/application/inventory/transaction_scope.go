package inventory

import (
	"context"

	"github.com/backoffice/backend/internal/domain/catalog"
	"github.com/backoffice/backend/internal/domain/inventory"
	"github.com/backoffice/backend/internal/domain/partner"
)

// TransactionScope provides transactional access to the repositories a stock
// move touches. All repository operations inside Execute share one database
// transaction and commit or roll back atomically.
type TransactionScope interface {
	// Execute runs fn inside a database transaction. An error rolls the
	// transaction back; nil commits it.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories scoped to the current
// transaction. A stock move spans stock rows, the batch registry, the move
// journal, the product (for the cost update) and the warehouse registry (for
// the branch check), so all five ride in the same scope.
type TransactionalRepositories interface {
	StockLines() inventory.StockLineRepository
	Batches() inventory.StockBatchRepository
	Moves() inventory.StockMoveRepository
	Products() catalog.ProductRepository
	Warehouses() partner.WarehouseRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Used in tests over in-memory repositories.
type NoOpTransactionScope struct {
	stockLines inventory.StockLineRepository
	batches    inventory.StockBatchRepository
	moves      inventory.StockMoveRepository
	products   catalog.ProductRepository
	warehouses partner.WarehouseRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	stockLines inventory.StockLineRepository,
	batches inventory.StockBatchRepository,
	moves inventory.StockMoveRepository,
	products catalog.ProductRepository,
	warehouses partner.WarehouseRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		stockLines: stockLines,
		batches:    batches,
		moves:      moves,
		products:   products,
		warehouses: warehouses,
	}
}

// Execute runs the function without transaction boundaries
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// StockLines returns the stock line repository
func (s *NoOpTransactionScope) StockLines() inventory.StockLineRepository { return s.stockLines }

// Batches returns the stock batch repository
func (s *NoOpTransactionScope) Batches() inventory.StockBatchRepository { return s.batches }

// Moves returns the stock move repository
func (s *NoOpTransactionScope) Moves() inventory.StockMoveRepository { return s.moves }

// Products returns the product repository
func (s *NoOpTransactionScope) Products() catalog.ProductRepository { return s.products }

// Warehouses returns the warehouse repository
func (s *NoOpTransactionScope) Warehouses() partner.WarehouseRepository { return s.warehouses }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
