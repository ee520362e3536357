package billing

import (
	"context"

	appinv "github.com/backoffice/backend/internal/application/inventory"
	"github.com/backoffice/backend/internal/domain/billing"
	"github.com/backoffice/backend/internal/domain/inventory"
	"github.com/backoffice/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreditNoteService reverses posted invoices. The credited amounts are
// prorated from the source invoice and capped, per product, by what earlier
// notes have not already returned.
type CreditNoteService struct {
	txScope TransactionScope
	notes   billing.CreditNoteRepository
	logger  *zap.Logger
}

// NewCreditNoteService creates a new CreditNoteService
func NewCreditNoteService(txScope TransactionScope, notes billing.CreditNoteRepository, logger *zap.Logger) *CreditNoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreditNoteService{txScope: txScope, notes: notes, logger: logger}
}

// CreateCreditNote issues a credit note against a posted invoice. When a
// return warehouse is given the returned goods come back into stock at the
// invoice's base prices, in the same transaction as the note.
func (s *CreditNoteService) CreateCreditNote(ctx context.Context, req CreateCreditNoteRequest) (*CreditNoteResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "CreditNoteService", "CreateCreditNote")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, req.TenantID.String(),
		telemetry.SpanAttrInvoiceID, req.InvoiceID.String(),
	)

	var note *billing.CreditNote
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err := repos.Invoices().FindByIDForTenant(ctx, req.TenantID, req.InvoiceID)
		if err != nil {
			return err
		}

		prior, err := repos.CreditNotes().ReturnedQuantities(ctx, req.TenantID, invoice.ID)
		if err != nil {
			return err
		}

		seq, err := repos.CreditNotes().NextSequence(ctx, req.TenantID)
		if err != nil {
			return err
		}
		code := billing.FormatCreditNoteCode(seq)

		returns := make([]billing.ReturnRequest, 0, len(req.Lines))
		for _, line := range req.Lines {
			returns = append(returns, billing.ReturnRequest{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
			})
		}

		note, err = billing.NewCreditNote(code, invoice, returns, prior)
		if err != nil {
			return err
		}
		if req.ActorID != nil {
			note.SetCreatedBy(*req.ActorID)
		}

		if req.ReturnWarehouseID != nil {
			if err := s.returnStock(ctx, repos, invoice, note, req.BranchID, req.ActorID, *req.ReturnWarehouseID); err != nil {
				return err
			}
		}

		return repos.CreditNotes().Create(ctx, note)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrDocumentCode, note.DocumentCode)
	s.logger.Info("credit note issued",
		zap.String("credit_note_id", note.ID.String()),
		zap.String("document_code", note.DocumentCode),
		zap.String("invoice_id", note.InvoiceID.String()),
		zap.String("total", note.Total.String()))

	resp := ToCreditNoteResponse(note)
	return &resp, nil
}

// returnStock receives the credited quantities back in. Sale returns carry
// the invoice's base prices so the average cost absorbs them; purchase
// reversals go out instead.
func (s *CreditNoteService) returnStock(ctx context.Context, repos TransactionalRepositories, invoice *billing.Invoice, note *billing.CreditNote, branchID, actorID *uuid.UUID, warehouseID uuid.UUID) error {
	moveReq := appinv.CreateMoveRequest{
		TenantID:   invoice.TenantID,
		BranchID:   branchID,
		ActorID:    actorID,
		SourceType: inventory.SourceDocCreditNote,
		SourceID:   note.ID.String(),
	}
	for _, line := range note.Lines {
		moveLine := appinv.MoveLineRequest{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		}
		if invoice.Type == billing.InvoiceTypeSale {
			invLine := invoice.LineForProduct(line.ProductID)
			cost, err := invoice.BaseUnitPrice(*invLine)
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

// GetCreditNote returns a credit note by ID
func (s *CreditNoteService) GetCreditNote(ctx context.Context, id uuid.UUID) (*CreditNoteResponse, error) {
	note, err := s.notes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCreditNoteResponse(note)
	return &resp, nil
}

// ListInvoiceCreditNotes returns the notes issued against an invoice
func (s *CreditNoteService) ListInvoiceCreditNotes(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]CreditNoteResponse, error) {
	notes, err := s.notes.FindByInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	items := make([]CreditNoteResponse, 0, len(notes))
	for _, n := range notes {
		items = append(items, ToCreditNoteResponse(&n))
	}
	return items, nil
}

// ListPartnerCreditNotes returns the notes issued to a partner
func (s *CreditNoteService) ListPartnerCreditNotes(ctx context.Context, tenantID, partnerID uuid.UUID) ([]CreditNoteResponse, error) {
	notes, err := s.notes.FindByPartner(ctx, tenantID, partnerID)
	if err != nil {
		return nil, err
	}
	items := make([]CreditNoteResponse, 0, len(notes))
	for _, n := range notes {
		items = append(items, ToCreditNoteResponse(&n))
	}
	return items, nil
}
