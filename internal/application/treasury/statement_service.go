package treasury

import (
	"context"

	"github.com/backoffice/backend/internal/domain/billing"
	"github.com/backoffice/backend/internal/domain/partner"
	"github.com/backoffice/backend/internal/domain/treasury"
	"github.com/backoffice/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatementService builds partner account statements. Read-only: it merges
// committed invoices, payments and credit notes, so it needs no transaction
// scope.
type StatementService struct {
	invoices billing.InvoiceRepository
	payments treasury.PaymentRepository
	notes    billing.CreditNoteRepository
	partners partner.PartnerRepository
	logger   *zap.Logger
}

// NewStatementService creates a new StatementService
func NewStatementService(
	invoices billing.InvoiceRepository,
	payments treasury.PaymentRepository,
	notes billing.CreditNoteRepository,
	partners partner.PartnerRepository,
	logger *zap.Logger,
) *StatementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatementService{
		invoices: invoices,
		payments: payments,
		notes:    notes,
		partners: partners,
		logger:   logger,
	}
}

// GetAccountStatement merges the partner's invoices (debits), payments and
// credit notes (credits) into one chronological ledger with a running
// balance and the credit still available to the partner.
func (s *StatementService) GetAccountStatement(ctx context.Context, tenantID, partnerID uuid.UUID) (*StatementResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "StatementService", "GetAccountStatement")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPartnerID, partnerID.String(),
	)

	if _, err := s.partners.FindByIDForTenant(ctx, tenantID, partnerID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	invoices, err := s.invoices.FindByPartner(ctx, tenantID, partnerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	payments, err := s.payments.FindByPartner(ctx, tenantID, partnerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	notes, err := s.notes.FindByPartner(ctx, tenantID, partnerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	statement := treasury.BuildStatement(partnerID, invoices, payments, notes)
	resp := ToStatementResponse(statement)
	return &resp, nil
}
