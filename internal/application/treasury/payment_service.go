package treasury

import (
	"context"

	"github.com/backoffice/backend/internal/domain/billing"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/backoffice/backend/internal/domain/treasury"
	"github.com/backoffice/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RateProvider supplies the latest exchange rate toward the base currency
type RateProvider interface {
	LatestRate(ctx context.Context, tenantID uuid.UUID, code valueobject.Currency) (decimal.Decimal, error)
}

// PaymentService registers payments and settles invoices through
// allocations. It is the only writer of PAID/PARTIALLY_PAID invoice status
// and of bank account balances.
type PaymentService struct {
	txScope  TransactionScope
	payments treasury.PaymentRepository
	rates    RateProvider
	logger   *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(txScope TransactionScope, payments treasury.PaymentRepository, rates RateProvider, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		txScope:  txScope,
		payments: payments,
		rates:    rates,
		logger:   logger,
	}
}

// RegisterPayment registers a payment and applies its allocations, all in
// one transaction: duplicate-reference guard, INCOME/EXPENSE classification
// from the first allocated invoice, exchange-rate snapshot, bank balance
// mutation, allocation rows, and the per-invoice status recomputation.
func (s *PaymentService) RegisterPayment(ctx context.Context, req RegisterPaymentRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "PaymentService", "RegisterPayment")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, req.TenantID.String(),
		telemetry.SpanAttrPartnerID, req.PartnerID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
		telemetry.SpanAttrCurrency, req.CurrencyCode,
	)

	currency := valueobject.Currency(req.CurrencyCode)
	rate, err := s.rates.LatestRate(ctx, req.TenantID, currency)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var payment *treasury.Payment
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.Partners().FindByIDForTenant(ctx, req.TenantID, req.PartnerID); err != nil {
			return err
		}

		if req.Reference != "" {
			scope := treasury.ReferenceScope{BankAccountID: req.BankAccountID, Method: req.Method}
			exists, err := repos.Payments().ReferenceExists(ctx, req.TenantID, req.Reference, scope)
			if err != nil {
				return err
			}
			if exists {
				return shared.ErrDuplicateReference
			}
		}

		invoices, err := s.loadAllocatedInvoices(ctx, repos, req)
		if err != nil {
			return err
		}

		paymentType := treasury.PaymentTypeIncome
		if len(req.Allocations) > 0 {
			if first := invoices[req.Allocations[0].InvoiceID]; first.Type == billing.InvoiceTypePurchase {
				paymentType = treasury.PaymentTypeExpense
			}
		}

		payment, err = treasury.NewPayment(req.TenantID, req.PartnerID, req.BranchID, paymentType, req.Method, currency, req.Amount, rate, req.BankAccountID, req.Reference)
		if err != nil {
			return err
		}
		if req.ActorID != nil {
			payment.SetCreatedBy(*req.ActorID)
		}

		for _, alloc := range req.Allocations {
			invoice := invoices[alloc.InvoiceID]
			already, err := repos.Payments().AllocatedToInvoice(ctx, req.TenantID, invoice.ID)
			if err != nil {
				return err
			}
			if already.Add(alloc.Amount).GreaterThan(invoice.Total.Add(billing.SettlementTolerance)) {
				return shared.NewDomainError("INVALID_INPUT", "Allocation exceeds the invoice total")
			}
			if err := payment.Allocate(invoice.ID, alloc.Amount); err != nil {
				return err
			}
		}

		if req.BankAccountID != nil {
			account, err := repos.BankAccounts().FindByIDForTenant(ctx, req.TenantID, *req.BankAccountID)
			if err != nil {
				return err
			}
			if err := account.ApplyPayment(payment); err != nil {
				return err
			}
			if err := repos.BankAccounts().Save(ctx, account); err != nil {
				return err
			}
		}

		if err := repos.Payments().Create(ctx, payment); err != nil {
			return err
		}

		return s.settleInvoices(ctx, repos, req.TenantID, invoices)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, payment.ID.String())
	s.logger.Info("payment registered",
		zap.String("payment_id", payment.ID.String()),
		zap.String("type", payment.Type.String()),
		zap.String("method", payment.Method.String()),
		zap.String("amount", payment.Amount.String()),
		zap.Int("allocations", len(payment.Allocations)))

	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// loadAllocatedInvoices resolves every allocated invoice and checks it can
// receive payments. Allocations against DRAFT or VOID invoices are rejected
// before anything is written.
func (s *PaymentService) loadAllocatedInvoices(ctx context.Context, repos TransactionalRepositories, req RegisterPaymentRequest) (map[uuid.UUID]*billing.Invoice, error) {
	invoices := make(map[uuid.UUID]*billing.Invoice, len(req.Allocations))
	for _, alloc := range req.Allocations {
		if alloc.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
		}
		if _, seen := invoices[alloc.InvoiceID]; seen {
			return nil, shared.NewDomainError("INVALID_INPUT", "Duplicate allocation for the same invoice")
		}
		invoice, err := repos.Invoices().FindByIDForTenant(ctx, req.TenantID, alloc.InvoiceID)
		if err != nil {
			return nil, err
		}
		if !invoice.Status.IsPayable() {
			return nil, shared.ErrInvalidStateTransition
		}
		if invoice.PartnerID != req.PartnerID {
			return nil, shared.NewDomainError("INVALID_INPUT", "Allocated invoice belongs to a different partner")
		}
		invoices[alloc.InvoiceID] = invoice
	}
	return invoices, nil
}

// settleInvoices recomputes the payment-driven status of every touched
// invoice from the allocation totals now on record. Statuses persist only
// when they actually change; a PAID invoice never moves back.
func (s *PaymentService) settleInvoices(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, invoices map[uuid.UUID]*billing.Invoice) error {
	for _, invoice := range invoices {
		totalPaid, err := repos.Payments().AllocatedToInvoice(ctx, tenantID, invoice.ID)
		if err != nil {
			return err
		}
		changed, err := invoice.Settle(totalPaid)
		if err != nil {
			return err
		}
		if !changed {
			continue
		}
		if err := repos.Invoices().Save(ctx, invoice); err != nil {
			return err
		}
		s.logger.Info("invoice settled",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("status", invoice.Status.String()),
			zap.String("total_paid", totalPaid.String()))
	}
	return nil
}

// GetPayment returns a payment with its allocations
func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// ListPayments returns a page of the tenant's payments
func (s *PaymentService) ListPayments(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[PaymentResponse], error) {
	page, err := s.payments.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]PaymentResponse, 0, len(page.Items))
	for idx := range page.Items {
		items = append(items, ToPaymentResponse(&page.Items[idx]))
	}
	out := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &out, nil
}

// ListPartnerPayments returns the partner's payments
func (s *PaymentService) ListPartnerPayments(ctx context.Context, tenantID, partnerID uuid.UUID) ([]PaymentResponse, error) {
	payments, err := s.payments.FindByPartner(ctx, tenantID, partnerID)
	if err != nil {
		return nil, err
	}
	items := make([]PaymentResponse, 0, len(payments))
	for idx := range payments {
		items = append(items, ToPaymentResponse(&payments[idx]))
	}
	return items, nil
}
