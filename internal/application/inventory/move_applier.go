package inventory

import (
	"context"
	"errors"

	"github.com/backoffice/backend/internal/domain/inventory"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// MoveApplier applies one stock move against transaction-scoped
// repositories: warehouse and branch checks, batch resolution, the
// weighted-average cost update, the conditional stock deltas, and the
// journal entry. It is the single write path into stock for every engine;
// billing and credit notes build an applier from their own transaction
// scope so the move commits or rolls back with the owning document.
type MoveApplier struct {
	repos TransactionalRepositories
}

// NewMoveApplier creates a MoveApplier over transaction-scoped repositories
func NewMoveApplier(repos TransactionalRepositories) *MoveApplier {
	return &MoveApplier{repos: repos}
}

// Apply executes the move. Every precondition runs before the first write;
// any failure leaves the enclosing transaction to roll back untouched.
func (a *MoveApplier) Apply(ctx context.Context, req CreateMoveRequest) (*inventory.StockMove, error) {
	if len(req.Lines) == 0 {
		return nil, shared.NewDomainError("NO_LINES", "Move requires at least one line")
	}

	sourceType := req.SourceType
	if sourceType == "" {
		sourceType = inventory.SourceDocManual
	}

	move, err := inventory.NewStockMove(req.TenantID, req.Type, req.SourceWarehouseID, req.DestWarehouseID, sourceType, req.SourceID)
	if err != nil {
		return nil, err
	}
	move.Notes = req.Notes
	if req.ActorID != nil {
		move.SetCreatedBy(*req.ActorID)
	}

	if err := a.checkWarehouses(ctx, req); err != nil {
		return nil, err
	}

	for _, lineReq := range req.Lines {
		product, err := a.repos.Products().FindByIDForTenant(ctx, req.TenantID, lineReq.ProductID)
		if err != nil {
			return nil, err
		}

		batchID, err := a.resolveBatch(ctx, req, product.BatchTracked, lineReq)
		if err != nil {
			return nil, err
		}

		if err := move.AddLine(product.ID, lineReq.Quantity, lineReq.UnitCost, batchID); err != nil {
			return nil, err
		}
		line := move.Lines[len(move.Lines)-1]

		// cost absorbs only positive deltas carrying a unit cost
		if move.ReceivingWarehouse(line) != nil && line.UnitCost != nil {
			totalQty, err := a.repos.StockLines().TotalQuantity(ctx, req.TenantID, product.ID)
			if err != nil {
				return nil, err
			}
			incoming := line.Quantity.Abs()
			if err := product.AbsorbReceipt(totalQty, incoming, valueobject.NewMoneyBase(*line.UnitCost)); err != nil {
				return nil, err
			}
			if err := a.repos.Products().Save(ctx, product); err != nil {
				return nil, err
			}
		}

		for _, delta := range move.Deltas(line) {
			if err := a.repos.StockLines().ApplyDelta(ctx, req.TenantID, delta.WarehouseID, product.ID, line.BatchID, delta.Delta); err != nil {
				return nil, err
			}
		}
	}

	if err := a.repos.Moves().Create(ctx, move); err != nil {
		return nil, err
	}

	return move, nil
}

// checkWarehouses verifies both referenced warehouses exist and, when the
// branch context is known, belong to the actor's branch.
func (a *MoveApplier) checkWarehouses(ctx context.Context, req CreateMoveRequest) error {
	for _, warehouseID := range []*uuid.UUID{req.SourceWarehouseID, req.DestWarehouseID} {
		if warehouseID == nil {
			continue
		}
		warehouse, err := a.repos.Warehouses().FindByIDForTenant(ctx, req.TenantID, *warehouseID)
		if err != nil {
			return err
		}
		if req.BranchID != nil && !warehouse.BelongsToBranch(*req.BranchID) {
			return shared.ErrCrossBranchViolation
		}
	}
	return nil
}

// resolveBatch returns the batch id for a line. Batch-tracked products must
// carry a batch reference; an unknown lot code is registered on first
// receipt and rejected on issue.
func (a *MoveApplier) resolveBatch(ctx context.Context, req CreateMoveRequest, batchTracked bool, lineReq MoveLineRequest) (*uuid.UUID, error) {
	if lineReq.BatchID != nil {
		if _, err := a.repos.Batches().FindByID(ctx, *lineReq.BatchID); err != nil {
			return nil, err
		}
		return lineReq.BatchID, nil
	}

	if lineReq.LotCode != "" {
		batch, err := a.repos.Batches().FindByLotCode(ctx, req.TenantID, lineReq.ProductID, lineReq.LotCode)
		if err == nil {
			id := batch.ID
			return &id, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if !req.Type.RequiresDestination() && req.Type != inventory.MoveTypeAdjust {
			return nil, err
		}
		created, err := inventory.NewStockBatch(req.TenantID, lineReq.ProductID, lineReq.LotCode, lineReq.ExpiresAt)
		if err != nil {
			return nil, err
		}
		if err := a.repos.Batches().Save(ctx, created); err != nil {
			return nil, err
		}
		id := created.ID
		return &id, nil
	}

	if batchTracked {
		return nil, shared.ErrBatchRequired
	}
	return nil, nil
}
