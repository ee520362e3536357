package inventory

import (
	"context"

	"github.com/backoffice/backend/internal/domain/inventory"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MoveService handles stock move operations and stock queries
type MoveService struct {
	txScope    TransactionScope
	stockLines inventory.StockLineRepository
	moves      inventory.StockMoveRepository
	logger     *zap.Logger
}

// NewMoveService creates a new MoveService. The read repositories serve
// queries outside any transaction.
func NewMoveService(txScope TransactionScope, stockLines inventory.StockLineRepository, moves inventory.StockMoveRepository, logger *zap.Logger) *MoveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MoveService{
		txScope:    txScope,
		stockLines: stockLines,
		moves:      moves,
		logger:     logger,
	}
}

// CreateMove applies a stock move atomically: header, lines, stock deltas
// and the cost update commit together or not at all.
func (s *MoveService) CreateMove(ctx context.Context, req CreateMoveRequest) (*MoveResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "create_move")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrMoveType, string(req.Type),
		telemetry.SpanAttrSourceType, string(req.SourceType),
	)

	var move *inventory.StockMove
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		move, err = NewMoveApplier(repos).Apply(ctx, req)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("stock move applied",
		zap.String("move_id", move.ID.String()),
		zap.String("type", move.Type.String()),
		zap.Int("lines", len(move.Lines)))

	resp := ToMoveResponse(move)
	return &resp, nil
}

// GetStock returns stock lines in a warehouse, optionally text-filtered
func (s *MoveService) GetStock(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) (*shared.Paginated[StockLineResponse], error) {
	page, err := s.stockLines.FindByWarehouse(ctx, tenantID, warehouseID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]StockLineResponse, 0, len(page.Items))
	for idx := range page.Items {
		items = append(items, ToStockLineResponse(&page.Items[idx]))
	}
	out := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &out, nil
}

// GetProductStock returns a product's stock rows across warehouses
func (s *MoveService) GetProductStock(ctx context.Context, tenantID, productID uuid.UUID) ([]StockLineResponse, error) {
	lines, err := s.stockLines.FindByProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	out := make([]StockLineResponse, 0, len(lines))
	for idx := range lines {
		out = append(out, ToStockLineResponse(&lines[idx]))
	}
	return out, nil
}

// GetMove returns one move with its lines
func (s *MoveService) GetMove(ctx context.Context, id uuid.UUID) (*MoveResponse, error) {
	move, err := s.moves.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToMoveResponse(move)
	return &resp, nil
}

// ListMoves returns the move journal, newest first
func (s *MoveService) ListMoves(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[MoveResponse], error) {
	page, err := s.moves.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]MoveResponse, 0, len(page.Items))
	for idx := range page.Items {
		items = append(items, ToMoveResponse(&page.Items[idx]))
	}
	out := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &out, nil
}
