package partner

import (
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Warehouse is a physical stock location owned by a branch
type Warehouse struct {
	shared.TenantAggregateRoot
	BranchID uuid.UUID `gorm:"type:uuid;not null;index"`
	Code     string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_warehouse_tenant_code,priority:2"`
	Name     string    `gorm:"type:varchar(200);not null"`
	Address  string    `gorm:"type:text"`
	IsActive bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Warehouse) TableName() string {
	return "warehouses"
}

// NewWarehouse creates a new warehouse under a branch
func NewWarehouse(tenantID, branchID uuid.UUID, code, name string) (*Warehouse, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Warehouse code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Warehouse name cannot be empty")
	}

	return &Warehouse{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BranchID:            branchID,
		Code:                code,
		Name:                name,
		IsActive:            true,
	}, nil
}

// BelongsToBranch reports warehouse ownership
func (w *Warehouse) BelongsToBranch(branchID uuid.UUID) bool {
	return w.BranchID == branchID
}

// Deactivate marks the warehouse inactive
func (w *Warehouse) Deactivate() {
	w.IsActive = false
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
}
