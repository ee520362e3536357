package billing

import (
	"context"
	"time"

	appinv "github.com/backoffice/backend/internal/application/inventory"
	"github.com/backoffice/backend/internal/domain/billing"
	"github.com/backoffice/backend/internal/domain/inventory"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/backoffice/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RateProvider supplies the latest exchange rate toward the base currency.
// The base currency itself always resolves to 1.
type RateProvider interface {
	LatestRate(ctx context.Context, tenantID uuid.UUID, code valueobject.Currency) (decimal.Decimal, error)
}

// DefaultIgtfRate is applied to foreign-currency documents on branches that
// collect the levy, unless configured otherwise.
var DefaultIgtfRate = decimal.NewFromFloat(0.03)

// InvoiceService orchestrates invoice lifecycle operations. Document and
// stock writes for a single operation share one transaction.
type InvoiceService struct {
	txScope  TransactionScope
	invoices billing.InvoiceRepository
	rates    RateProvider
	igtfRate decimal.Decimal
	logger   *zap.Logger
}

// NewInvoiceService creates a new InvoiceService. A zero igtfRate falls back
// to DefaultIgtfRate.
func NewInvoiceService(
	txScope TransactionScope,
	invoices billing.InvoiceRepository,
	rates RateProvider,
	igtfRate decimal.Decimal,
	logger *zap.Logger,
) *InvoiceService {
	if igtfRate.IsZero() {
		igtfRate = DefaultIgtfRate
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		txScope:  txScope,
		invoices: invoices,
		rates:    rates,
		igtfRate: igtfRate,
		logger:   logger,
	}
}

// CreateInvoice creates a draft invoice with a tenant-scoped document code.
// Purchase invoices with a receipt warehouse book the incoming stock in the
// same transaction, carrying the invoice prices into the average cost.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	if req.Type == "" {
		req.Type = billing.InvoiceTypeSale
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceService", "CreateInvoice")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, req.TenantID.String(),
		telemetry.SpanAttrPartnerID, req.PartnerID.String(),
		telemetry.SpanAttrInvoiceType, req.Type.String(),
	)

	currency := valueobject.Currency(req.CurrencyCode)
	rate, err := s.rates.LatestRate(ctx, req.TenantID, currency)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var invoice *billing.Invoice
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.Partners().FindByIDForTenant(ctx, req.TenantID, req.PartnerID); err != nil {
			return err
		}
		branch, err := repos.Branches().FindByIDForTenant(ctx, req.TenantID, req.BranchID)
		if err != nil {
			return err
		}

		seq, err := repos.Invoices().NextSequence(ctx, req.TenantID, req.Type)
		if err != nil {
			return err
		}
		code := billing.FormatDocumentCode(req.Type, seq)

		issuedAt := time.Now().UTC()
		if req.IssuedAt != nil {
			issuedAt = *req.IssuedAt
		}

		invoice, err = billing.NewInvoice(req.TenantID, req.Type, code, req.PartnerID, req.BranchID, currency, rate, issuedAt, req.ControlNumber)
		if err != nil {
			return err
		}
		if req.ActorID != nil {
			invoice.SetCreatedBy(*req.ActorID)
		}

		for _, line := range req.Lines {
			product, err := repos.Products().FindByIDForTenant(ctx, req.TenantID, line.ProductID)
			if err != nil {
				return err
			}
			price := line.UnitPrice
			if price == nil {
				p := product.SellingPrice
				if req.Type == billing.InvoiceTypePurchase {
					p = product.UnitCost
				}
				price = &p
			}
			if _, err := invoice.AddLine(product.ID, product.Name, line.Quantity, *price, product.EffectiveTaxRate()); err != nil {
				return err
			}
		}

		if currency != valueobject.BaseCurrency && branch.IgtfEnabled {
			if err := invoice.ApplyIgtf(s.igtfRate); err != nil {
				return err
			}
		}

		if req.OrderID != nil {
			order, err := repos.Orders().FindByIDForTenant(ctx, req.TenantID, *req.OrderID)
			if err != nil {
				return err
			}
			if order.PartnerID != req.PartnerID {
				return shared.NewDomainError("ORDER_PARTNER_MISMATCH", "order belongs to a different partner")
			}
			if err := order.Complete(); err != nil {
				return err
			}
			if err := invoice.LinkOrder(order.ID); err != nil {
				return err
			}
			if err := repos.Orders().Save(ctx, order); err != nil {
				return err
			}
		}

		if req.Type == billing.InvoiceTypePurchase && req.ReceiptWarehouseID != nil {
			if err := s.receiveStock(ctx, repos, invoice, req.BranchID, req.ActorID, *req.ReceiptWarehouseID); err != nil {
				return err
			}
		}

		return repos.Invoices().Create(ctx, invoice)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrDocumentCode, invoice.DocumentCode)
	s.logger.Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("document_code", invoice.DocumentCode),
		zap.String("type", invoice.Type.String()),
		zap.String("total", invoice.Total.String()))

	resp := ToInvoiceResponse(invoice)
	return &resp, nil
}

// receiveStock books an IN move for every invoice line at the invoice's
// base-currency unit prices, so averages absorb the real purchase cost.
func (s *InvoiceService) receiveStock(ctx context.Context, repos TransactionalRepositories, invoice *billing.Invoice, branchID uuid.UUID, actorID *uuid.UUID, warehouseID uuid.UUID) error {
	lines := make([]appinv.MoveLineRequest, 0, len(invoice.Lines))
	for _, line := range invoice.Lines {
		cost, err := invoice.BaseUnitPrice(line)
		if err != nil {
			return err
		}
		lines = append(lines, appinv.MoveLineRequest{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitCost:  &cost,
		})
	}
	applier := appinv.NewMoveApplier(repos)
	_, err := applier.Apply(ctx, appinv.CreateMoveRequest{
		TenantID:        invoice.TenantID,
		BranchID:        &branchID,
		ActorID:         actorID,
		Type:            inventory.MoveTypeIn,
		DestWarehouseID: &warehouseID,
		SourceType:      inventory.SourceDocInvoice,
		SourceID:        invoice.ID.String(),
		Lines:           lines,
	})
	return err
}

// PostInvoice moves a draft invoice to POSTED, freezing its lines and totals.
func (s *InvoiceService) PostInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceService", "PostInvoice")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrInvoiceID, invoiceID.String(),
	)

	invoice, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := invoice.Post(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.invoices.Save(ctx, invoice); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("invoice posted",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("document_code", invoice.DocumentCode))

	resp := ToInvoiceResponse(invoice)
	return &resp, nil
}

// VoidInvoice voids an invoice. When stock return is requested the voided
// goods re-enter (sale) or leave (purchase) the given warehouse in the same
// transaction; payments already allocated are left untouched.
func (s *InvoiceService) VoidInvoice(ctx context.Context, req VoidInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceService", "VoidInvoice")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, req.TenantID.String(),
		telemetry.SpanAttrInvoiceID, req.InvoiceID.String(),
	)

	var invoice *billing.Invoice
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		invoice, err = repos.Invoices().FindByIDForTenant(ctx, req.TenantID, req.InvoiceID)
		if err != nil {
			return err
		}
		if err := invoice.Void(req.Reason); err != nil {
			return err
		}

		if req.ReturnStock {
			if req.ReturnWarehouseID == nil {
				return shared.ErrInvalidInput
			}
			if err := s.reverseStock(ctx, repos, invoice, req.BranchID, req.ActorID, *req.ReturnWarehouseID); err != nil {
				return err
			}
		}

		return repos.Invoices().Save(ctx, invoice)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("invoice voided",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("document_code", invoice.DocumentCode),
		zap.String("reason", req.Reason))

	resp := ToInvoiceResponse(invoice)
	return &resp, nil
}

// reverseStock books the void-side move for every invoice line. Sales come
// back IN at the invoice's base prices; purchases go back OUT and do not
// touch the average cost.
func (s *InvoiceService) reverseStock(ctx context.Context, repos TransactionalRepositories, invoice *billing.Invoice, branchID, actorID *uuid.UUID, warehouseID uuid.UUID) error {
	moveReq := appinv.CreateMoveRequest{
		TenantID:   invoice.TenantID,
		BranchID:   branchID,
		ActorID:    actorID,
		SourceType: inventory.SourceDocVoid,
		SourceID:   invoice.ID.String(),
	}
	for _, line := range invoice.Lines {
		moveLine := appinv.MoveLineRequest{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		}
		if invoice.Type == billing.InvoiceTypeSale {
			cost, err := invoice.BaseUnitPrice(line)
			if err != nil {
				return err
			}
			moveLine.UnitCost = &cost
		}
		moveReq.Lines = append(moveReq.Lines, moveLine)
	}
	if invoice.Type == billing.InvoiceTypeSale {
		moveReq.Type = inventory.MoveTypeIn
		moveReq.DestWarehouseID = &warehouseID
	} else {
		moveReq.Type = inventory.MoveTypeOut
		moveReq.SourceWarehouseID = &warehouseID
	}
	applier := appinv.NewMoveApplier(repos)
	_, err := applier.Apply(ctx, moveReq)
	return err
}

// GetInvoice returns an invoice by ID
func (s *InvoiceService) GetInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(invoice)
	return &resp, nil
}

// GetInvoiceByCode returns an invoice by document code
func (s *InvoiceService) GetInvoiceByCode(ctx context.Context, tenantID uuid.UUID, code string) (*InvoiceResponse, error) {
	invoice, err := s.invoices.FindByDocumentCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(invoice)
	return &resp, nil
}

// ListInvoices returns a page of the tenant's invoices
func (s *InvoiceService) ListInvoices(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[InvoiceResponse], error) {
	page, err := s.invoices.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]InvoiceResponse, 0, len(page.Items))
	for _, inv := range page.Items {
		items = append(items, ToInvoiceResponse(&inv))
	}
	out := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &out, nil
}

// ListPartnerInvoices returns the partner's invoices
func (s *InvoiceService) ListPartnerInvoices(ctx context.Context, tenantID, partnerID uuid.UUID) ([]InvoiceResponse, error) {
	invoices, err := s.invoices.FindByPartner(ctx, tenantID, partnerID)
	if err != nil {
		return nil, err
	}
	items := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		items = append(items, ToInvoiceResponse(&inv))
	}
	return items, nil
}
