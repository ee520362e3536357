package inventory

import (
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoveType represents the kind of stock move
type MoveType string

const (
	// MoveTypeIn receives stock into the destination warehouse
	MoveTypeIn MoveType = "IN"
	// MoveTypeOut issues stock out of the source warehouse
	MoveTypeOut MoveType = "OUT"
	// MoveTypeTransfer moves stock from source to destination warehouse
	MoveTypeTransfer MoveType = "TRANSFER"
	// MoveTypeAdjust applies a signed correction to the source warehouse
	MoveTypeAdjust MoveType = "ADJUST"
)

// String returns the string representation of MoveType
func (t MoveType) String() string {
	return string(t)
}

// IsValid returns true if the move type is valid
func (t MoveType) IsValid() bool {
	switch t {
	case MoveTypeIn, MoveTypeOut, MoveTypeTransfer, MoveTypeAdjust:
		return true
	}
	return false
}

// RequiresSource reports whether the type mandates a source warehouse
func (t MoveType) RequiresSource() bool {
	switch t {
	case MoveTypeOut, MoveTypeTransfer, MoveTypeAdjust:
		return true
	}
	return false
}

// RequiresDestination reports whether the type mandates a destination warehouse
func (t MoveType) RequiresDestination() bool {
	switch t {
	case MoveTypeIn, MoveTypeTransfer:
		return true
	}
	return false
}

// SourceDocType identifies the document that caused a move
type SourceDocType string

const (
	SourceDocOrder      SourceDocType = "ORDER"
	SourceDocInvoice    SourceDocType = "INVOICE"
	SourceDocCreditNote SourceDocType = "CREDIT_NOTE"
	SourceDocVoid       SourceDocType = "VOID"
	SourceDocManual     SourceDocType = "MANUAL"
)

// IsValid returns true if the source document type is valid
func (s SourceDocType) IsValid() bool {
	switch s {
	case SourceDocOrder, SourceDocInvoice, SourceDocCreditNote, SourceDocVoid, SourceDocManual:
		return true
	}
	return false
}

// StockMove is the append-only header of an atomic stock transaction.
// Moves are never edited after creation; a void or correction is expressed
// as a new compensating move.
type StockMove struct {
	shared.TenantAggregateRoot
	Type              MoveType      `gorm:"type:varchar(20);not null;index"`
	SourceWarehouseID *uuid.UUID    `gorm:"type:uuid;index"`
	DestWarehouseID   *uuid.UUID    `gorm:"type:uuid;index"`
	SourceType        SourceDocType `gorm:"type:varchar(20);not null;index:idx_stock_move_source"`
	SourceID          string        `gorm:"type:varchar(50);index:idx_stock_move_source"`
	Notes             string        `gorm:"type:varchar(255)"`
	MovedAt           time.Time     `gorm:"not null;index"`

	Lines []StockMoveLine `gorm:"foreignKey:MoveID;references:ID"`
}

// TableName returns the table name for GORM
func (StockMove) TableName() string {
	return "stock_moves"
}

// StockMoveLine is one product quantity within a move
type StockMoveLine struct {
	shared.BaseEntity
	MoveID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Quantity  decimal.Decimal  `gorm:"type:decimal(18,4);not null"` // signed only for ADJUST
	UnitCost  *decimal.Decimal `gorm:"type:decimal(18,2)"`
	BatchID   *uuid.UUID       `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (StockMoveLine) TableName() string {
	return "stock_move_lines"
}

// NewStockMove creates a move header, validating the warehouse requirements
// of the move type.
func NewStockMove(tenantID uuid.UUID, moveType MoveType, sourceWarehouseID, destWarehouseID *uuid.UUID, sourceType SourceDocType, sourceID string) (*StockMove, error) {
	if !moveType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVE_TYPE", "Invalid stock move type")
	}
	if !sourceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE_TYPE", "Invalid source document type")
	}
	if moveType.RequiresSource() && (sourceWarehouseID == nil || *sourceWarehouseID == uuid.Nil) {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Move type "+moveType.String()+" requires a source warehouse")
	}
	if moveType.RequiresDestination() && (destWarehouseID == nil || *destWarehouseID == uuid.Nil) {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Move type "+moveType.String()+" requires a destination warehouse")
	}

	return &StockMove{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Type:                moveType,
		SourceWarehouseID:   sourceWarehouseID,
		DestWarehouseID:     destWarehouseID,
		SourceType:          sourceType,
		SourceID:            sourceID,
		MovedAt:             time.Now(),
		Lines:               make([]StockMoveLine, 0),
	}, nil
}

// AddLine appends a product quantity to the move. Quantities must be
// positive except on ADJUST moves, where the sign carries the direction;
// zero is never allowed.
func (m *StockMove) AddLine(productID uuid.UUID, quantity decimal.Decimal, unitCost *decimal.Decimal, batchID *uuid.UUID) error {
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity.IsZero() {
		return shared.NewDomainError("INVALID_QUANTITY", "Line quantity cannot be zero")
	}
	if m.Type != MoveTypeAdjust && quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
	}
	if unitCost != nil && unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	m.Lines = append(m.Lines, StockMoveLine{
		BaseEntity: shared.NewBaseEntity(),
		MoveID:     m.ID,
		ProductID:  productID,
		Quantity:   quantity,
		UnitCost:   unitCost,
		BatchID:    batchID,
	})

	return nil
}

// WarehouseDelta is the signed effect of one move line on one warehouse
type WarehouseDelta struct {
	WarehouseID uuid.UUID
	Delta       decimal.Decimal
}

// Deltas returns the warehouse deltas a line produces, in application order.
// TRANSFER issues from the source before receiving into the destination so
// that insufficient stock aborts before anything is received.
func (m *StockMove) Deltas(line StockMoveLine) []WarehouseDelta {
	switch m.Type {
	case MoveTypeIn:
		return []WarehouseDelta{{WarehouseID: *m.DestWarehouseID, Delta: line.Quantity}}
	case MoveTypeOut:
		return []WarehouseDelta{{WarehouseID: *m.SourceWarehouseID, Delta: line.Quantity.Neg()}}
	case MoveTypeTransfer:
		return []WarehouseDelta{
			{WarehouseID: *m.SourceWarehouseID, Delta: line.Quantity.Neg()},
			{WarehouseID: *m.DestWarehouseID, Delta: line.Quantity},
		}
	case MoveTypeAdjust:
		return []WarehouseDelta{{WarehouseID: *m.SourceWarehouseID, Delta: line.Quantity}}
	}
	return nil
}

// ReceivingWarehouse returns the warehouse a line's positive delta lands in,
// or nil when the move only issues stock. Used for the weighted-average cost
// update, which applies only to positive deltas with a supplied unit cost.
func (m *StockMove) ReceivingWarehouse(line StockMoveLine) *uuid.UUID {
	switch m.Type {
	case MoveTypeIn, MoveTypeTransfer:
		return m.DestWarehouseID
	case MoveTypeAdjust:
		if line.Quantity.IsPositive() {
			return m.SourceWarehouseID
		}
	}
	return nil
}
