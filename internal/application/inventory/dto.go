package inventory

import (
	"time"

	"github.com/backoffice/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoveLineRequest is one product quantity in a move request. A batch may be
// referenced by ID or declared by lot code; an unknown (product, lot) pair
// is registered on first receipt.
type MoveLineRequest struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal  `json:"quantity" binding:"required"`
	UnitCost  *decimal.Decimal `json:"unit_cost"`
	BatchID   *uuid.UUID       `json:"batch_id"`
	LotCode   string           `json:"lot_code"`
	ExpiresAt *time.Time       `json:"expires_at"`
}

// CreateMoveRequest carries a stock move operation. BranchID is the actor's
// branch context when known; warehouses outside it are rejected.
type CreateMoveRequest struct {
	TenantID          uuid.UUID               `json:"-"`
	BranchID          *uuid.UUID              `json:"-"`
	ActorID           *uuid.UUID              `json:"-"`
	Type              inventory.MoveType      `json:"type" binding:"required"`
	SourceWarehouseID *uuid.UUID              `json:"source_warehouse_id"`
	DestWarehouseID   *uuid.UUID              `json:"dest_warehouse_id"`
	SourceType        inventory.SourceDocType `json:"source_type"`
	SourceID          string                  `json:"source_id"`
	Notes             string                  `json:"notes"`
	Lines             []MoveLineRequest       `json:"lines" binding:"required,min=1"`
}

// MoveLineResponse represents a move line in API responses
type MoveLineResponse struct {
	ID        uuid.UUID        `json:"id"`
	ProductID uuid.UUID        `json:"product_id"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	BatchID   *uuid.UUID       `json:"batch_id,omitempty"`
}

// MoveResponse represents a stock move in API responses
type MoveResponse struct {
	ID                uuid.UUID          `json:"id"`
	Type              string             `json:"type"`
	SourceWarehouseID *uuid.UUID         `json:"source_warehouse_id,omitempty"`
	DestWarehouseID   *uuid.UUID         `json:"dest_warehouse_id,omitempty"`
	SourceType        string             `json:"source_type"`
	SourceID          string             `json:"source_id,omitempty"`
	Notes             string             `json:"notes,omitempty"`
	MovedAt           time.Time          `json:"moved_at"`
	Lines             []MoveLineResponse `json:"lines"`
}

// StockLineResponse represents one stock row in API responses
type StockLineResponse struct {
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	BatchID     *uuid.UUID      `json:"batch_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToMoveResponse maps a stock move to its response shape
func ToMoveResponse(m *inventory.StockMove) MoveResponse {
	lines := make([]MoveLineResponse, 0, len(m.Lines))
	for _, line := range m.Lines {
		lines = append(lines, MoveLineResponse{
			ID:        line.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitCost:  line.UnitCost,
			BatchID:   line.BatchID,
		})
	}
	return MoveResponse{
		ID:                m.ID,
		Type:              m.Type.String(),
		SourceWarehouseID: m.SourceWarehouseID,
		DestWarehouseID:   m.DestWarehouseID,
		SourceType:        string(m.SourceType),
		SourceID:          m.SourceID,
		Notes:             m.Notes,
		MovedAt:           m.MovedAt,
		Lines:             lines,
	}
}

// ToStockLineResponse maps a stock line to its response shape
func ToStockLineResponse(l *inventory.StockLine) StockLineResponse {
	return StockLineResponse{
		WarehouseID: l.WarehouseID,
		ProductID:   l.ProductID,
		BatchID:     l.BatchID,
		Quantity:    l.Quantity,
		UpdatedAt:   l.UpdatedAt,
	}
}
