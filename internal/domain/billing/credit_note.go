package billing

import (
	"fmt"
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditNoteDocumentPrefix prefixes credit note document codes
const CreditNoteDocumentPrefix = "NC-"

// FormatCreditNoteCode renders a sequential credit note code, e.g. NC-00000007
func FormatCreditNoteCode(sequence int64) string {
	return fmt.Sprintf("%s%08d", CreditNoteDocumentPrefix, sequence)
}

// ReturnRequest is one product quantity to reverse from the source invoice
type ReturnRequest struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// CreditNoteLine is one reversed product position, valued at the original
// invoice price
type CreditNoteLine struct {
	shared.BaseEntity
	CreditNoteID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName  string          `gorm:"type:varchar(200);not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (CreditNoteLine) TableName() string {
	return "credit_note_lines"
}

// CreditNote is a partial or total reversal of one invoice. It is born
// POSTED; there is no draft stage. Tax and IGTF are prorated linearly
// against the source invoice totals, not recomputed per line.
type CreditNote struct {
	shared.TenantAggregateRoot
	DocumentCode string               `gorm:"type:varchar(20);not null;uniqueIndex:idx_credit_note_doc_code"`
	InvoiceID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	PartnerID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	BranchID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	CurrencyCode valueobject.Currency `gorm:"type:varchar(3);not null"`
	ExchangeRate decimal.Decimal      `gorm:"type:decimal(24,10);not null"`
	Status       InvoiceStatus        `gorm:"type:varchar(20);not null"`
	IssuedAt     time.Time            `gorm:"not null;index"`
	TotalBase    decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	TotalTax     decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	TotalIgtf    decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Total        decimal.Decimal      `gorm:"type:decimal(18,2);not null"`

	Lines []CreditNoteLine `gorm:"foreignKey:CreditNoteID;references:ID"`
}

// TableName returns the table name for GORM
func (CreditNote) TableName() string {
	return "credit_notes"
}

// NewCreditNote builds a credit note against a source invoice.
//
// The source must be POSTED, PARTIALLY_PAID or PAID. Each returned quantity
// is bounded by the original line quantity minus what earlier credit notes
// on the same invoice already returned for that product; priorReturned
// carries those cumulative quantities keyed by product.
func NewCreditNote(documentCode string, source *Invoice, returns []ReturnRequest, priorReturned map[uuid.UUID]decimal.Decimal) (*CreditNote, error) {
	if documentCode == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_CODE", "Document code cannot be empty")
	}
	if source == nil {
		return nil, shared.ErrNotFound
	}
	if !source.Status.IsPayable() {
		return nil, shared.ErrInvalidSourceState
	}
	if len(returns) == 0 {
		return nil, shared.NewDomainError("NO_LINES", "Credit note requires at least one returned line")
	}

	note := &CreditNote{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(source.TenantID),
		DocumentCode:        documentCode,
		InvoiceID:           source.ID,
		PartnerID:           source.PartnerID,
		BranchID:            source.BranchID,
		CurrencyCode:        source.CurrencyCode,
		ExchangeRate:        source.ExchangeRate,
		Status:              InvoiceStatusPosted,
		IssuedAt:            time.Now(),
		Lines:               make([]CreditNoteLine, 0, len(returns)),
	}

	totalBase := decimal.Zero
	for _, ret := range returns {
		if ret.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Returned quantity must be positive")
		}

		line := source.LineForProduct(ret.ProductID)
		if line == nil {
			return nil, shared.NewDomainError("NOT_FOUND", "Product is not on the source invoice")
		}

		already := priorReturned[ret.ProductID]
		if already.Add(ret.Quantity).GreaterThan(line.Quantity) {
			return nil, shared.ErrOverReturn
		}

		amount := line.UnitPrice.Mul(ret.Quantity).Round(valueobject.MoneyScale)
		totalBase = totalBase.Add(amount)

		note.Lines = append(note.Lines, CreditNoteLine{
			BaseEntity:   shared.NewBaseEntity(),
			CreditNoteID: note.ID,
			ProductID:    ret.ProductID,
			ProductName:  line.ProductName,
			Quantity:     ret.Quantity,
			UnitPrice:    line.UnitPrice,
			Amount:       amount,
		})
	}

	note.TotalBase = totalBase
	if source.TotalBase.IsPositive() {
		ratio := totalBase.Div(source.TotalBase)
		note.TotalTax = source.TotalTax.Mul(ratio).Round(valueobject.MoneyScale)
		note.TotalIgtf = source.TotalIgtf.Mul(ratio).Round(valueobject.MoneyScale)
	}
	note.Total = note.TotalBase.Add(note.TotalTax).Add(note.TotalIgtf)

	return note, nil
}
