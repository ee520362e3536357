package catalog

import (
	"strings"
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// Product represents a sellable/purchasable item in the catalog.
// UnitCost is a single weighted-average cost across all warehouses; it is
// recomputed only on positive stock receipts that carry a unit cost.
type Product struct {
	shared.TenantAggregateRoot
	Code         string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_tenant_code,priority:2"`
	Name         string          `gorm:"type:varchar(200);not null"`
	Description  string          `gorm:"type:text"`
	Unit         string          `gorm:"type:varchar(20);not null"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxRate      decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0"` // e.g. 0.16 for 16%
	TaxExempt    bool            `gorm:"not null;default:false"`
	BatchTracked bool            `gorm:"not null;default:false"`
	Status       ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(tenantID uuid.UUID, code, name, unit string) (*Product, error) {
	if err := validateProductCode(code); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if unit == "" {
		unit = "pcs"
	}

	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Unit:                unit,
		UnitCost:            decimal.Zero,
		SellingPrice:        decimal.Zero,
		TaxRate:             decimal.Zero,
		Status:              ProductStatusActive,
	}, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, description string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = name
	p.Description = description
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetSellingPrice sets the catalog selling price
func (p *Product) SetSellingPrice(price valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Selling price cannot be negative")
	}

	p.SellingPrice = price.Amount().Round(valueobject.MoneyScale)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetTax configures the tax treatment of this product
func (p *Product) SetTax(rate decimal.Decimal, exempt bool) error {
	if rate.IsNegative() {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}

	p.TaxRate = rate
	p.TaxExempt = exempt
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetBatchTracked marks the product as requiring batch identity on every move
func (p *Product) SetBatchTracked(tracked bool) {
	p.BatchTracked = tracked
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// EffectiveTaxRate returns the tax rate that applies to invoice lines,
// zero when the product is exempt.
func (p *Product) EffectiveTaxRate() decimal.Decimal {
	if p.TaxExempt {
		return decimal.Zero
	}
	return p.TaxRate
}

// AbsorbReceipt recomputes the weighted-average unit cost after receiving
// incomingQty at incomingCost. currentTotalQty is the product's total stock
// across all warehouses before the receipt; the cost is global, not
// per-warehouse.
//
//	newCost = (currentTotalQty*cost + incomingQty*incomingCost) / (currentTotalQty + incomingQty)
func (p *Product) AbsorbReceipt(currentTotalQty, incomingQty decimal.Decimal, incomingCost valueobject.Money) error {
	if incomingQty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Receipt quantity must be positive")
	}
	if incomingCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	if currentTotalQty.IsNegative() {
		currentTotalQty = decimal.Zero
	}

	if currentTotalQty.IsZero() {
		p.UnitCost = incomingCost.Amount().Round(valueobject.MoneyScale)
	} else {
		totalValue := currentTotalQty.Mul(p.UnitCost).Add(incomingQty.Mul(incomingCost.Amount()))
		p.UnitCost = totalValue.Div(currentTotalQty.Add(incomingQty)).Round(valueobject.MoneyScale)
	}

	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// IsActive returns true if the product can be used on new documents
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// Deactivate marks the product inactive
func (p *Product) Deactivate() {
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

func validateProductCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	return nil
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
