package partner

import (
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Branch is a physical/fiscal branch of the company. Warehouses belong to a
// branch; document operations that name a warehouse outside the actor's
// branch are rejected with CROSS_BRANCH_VIOLATION.
type Branch struct {
	shared.TenantAggregateRoot
	Code        string `gorm:"type:varchar(50);not null;uniqueIndex:idx_branch_tenant_code,priority:2"`
	Name        string `gorm:"type:varchar(200);not null"`
	Address     string `gorm:"type:text"`
	IgtfEnabled bool   `gorm:"not null;default:true"` // branch collects IGTF on foreign-currency documents
	IsActive    bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Branch) TableName() string {
	return "branches"
}

// NewBranch creates a new branch
func NewBranch(tenantID uuid.UUID, code, name string) (*Branch, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Branch code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Branch name cannot be empty")
	}

	return &Branch{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		IgtfEnabled:         true,
		IsActive:            true,
	}, nil
}

// SetIgtf toggles IGTF collection for the branch
func (b *Branch) SetIgtf(enabled bool) {
	b.IgtfEnabled = enabled
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
}
