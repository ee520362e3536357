package partner

import (
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PartnerKind distinguishes who the partner is to us
type PartnerKind string

const (
	PartnerKindCustomer PartnerKind = "CUSTOMER"
	PartnerKindSupplier PartnerKind = "SUPPLIER"
	PartnerKindBoth     PartnerKind = "BOTH"
)

// IsValid checks if the kind is a valid PartnerKind
func (k PartnerKind) IsValid() bool {
	switch k {
	case PartnerKindCustomer, PartnerKindSupplier, PartnerKindBoth:
		return true
	}
	return false
}

// Partner is a commercial counterparty: the customer of a sale invoice or
// the supplier of a purchase invoice. Payments and credit notes reference it.
type Partner struct {
	shared.TenantAggregateRoot
	Code     string      `gorm:"type:varchar(50);not null;uniqueIndex:idx_partner_tenant_code,priority:2"`
	Name     string      `gorm:"type:varchar(200);not null"`
	TaxID    string      `gorm:"type:varchar(30);index"` // fiscal registry number (RIF)
	Kind     PartnerKind `gorm:"type:varchar(20);not null;default:'CUSTOMER'"`
	Email    string      `gorm:"type:varchar(200)"`
	Phone    string      `gorm:"type:varchar(50)"`
	Address  string      `gorm:"type:text"`
	IsActive bool        `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Partner) TableName() string {
	return "partners"
}

// NewPartner creates a new partner
func NewPartner(tenantID uuid.UUID, code, name string, kind PartnerKind) (*Partner, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Partner code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Partner name cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Partner kind is not valid")
	}

	return &Partner{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Kind:                kind,
		IsActive:            true,
	}, nil
}

// Update updates contact information
func (p *Partner) Update(name, taxID, email, phone, address string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Partner name cannot be empty")
	}

	p.Name = name
	p.TaxID = taxID
	p.Email = email
	p.Phone = phone
	p.Address = address
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// Deactivate marks the partner inactive for new documents
func (p *Partner) Deactivate() {
	p.IsActive = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}
