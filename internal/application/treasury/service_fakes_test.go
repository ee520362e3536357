package treasury

import (
	"context"
	"testing"
	"time"

	"github.com/backoffice/backend/internal/domain/billing"
	"github.com/backoffice/backend/internal/domain/partner"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/backoffice/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubRates struct {
	rates map[valueobject.Currency]decimal.Decimal
}

func (s stubRates) LatestRate(_ context.Context, _ uuid.UUID, code valueobject.Currency) (decimal.Decimal, error) {
	if rate, ok := s.rates[code]; ok {
		return rate, nil
	}
	return decimal.NewFromInt(1), nil
}

type memPaymentRepo struct {
	payments map[uuid.UUID]*treasury.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{payments: make(map[uuid.UUID]*treasury.Payment)}
}

func (r *memPaymentRepo) Create(_ context.Context, payment *treasury.Payment) error {
	r.payments[payment.ID] = payment
	return nil
}

func (r *memPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*treasury.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *memPaymentRepo) FindByPartner(_ context.Context, _, partnerID uuid.UUID) ([]treasury.Payment, error) {
	out := make([]treasury.Payment, 0)
	for _, p := range r.payments {
		if p.PartnerID == partnerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) FindAllForTenant(_ context.Context, _ uuid.UUID, filter shared.Filter) (*shared.Paginated[treasury.Payment], error) {
	items := make([]treasury.Payment, 0, len(r.payments))
	for _, p := range r.payments {
		items = append(items, *p)
	}
	page := shared.NewPaginated(items, int64(len(items)), 1, filter.PageSize)
	return &page, nil
}

func (r *memPaymentRepo) ReferenceExists(_ context.Context, _ uuid.UUID, reference string, scope treasury.ReferenceScope) (bool, error) {
	for _, p := range r.payments {
		if p.Reference != reference {
			continue
		}
		if scope.BankAccountID != nil {
			if p.BankAccountID != nil && *p.BankAccountID == *scope.BankAccountID {
				return true, nil
			}
			continue
		}
		if p.Method == scope.Method {
			return true, nil
		}
	}
	return false, nil
}

func (r *memPaymentRepo) AllocatedToInvoice(_ context.Context, _, invoiceID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range r.payments {
		for _, alloc := range p.Allocations {
			if alloc.InvoiceID == invoiceID {
				total = total.Add(alloc.Amount)
			}
		}
	}
	return total, nil
}

type memBankAccountRepo struct {
	accounts map[uuid.UUID]*treasury.BankAccount
}

func newMemBankAccountRepo() *memBankAccountRepo {
	return &memBankAccountRepo{accounts: make(map[uuid.UUID]*treasury.BankAccount)}
}

func (r *memBankAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*treasury.BankAccount, error) {
	a, ok := r.accounts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return a, nil
}

func (r *memBankAccountRepo) FindByIDForTenant(_ context.Context, _, id uuid.UUID) (*treasury.BankAccount, error) {
	return r.FindByID(context.Background(), id)
}

func (r *memBankAccountRepo) FindAllForTenant(_ context.Context, _ uuid.UUID, filter shared.Filter) (*shared.Paginated[treasury.BankAccount], error) {
	items := make([]treasury.BankAccount, 0, len(r.accounts))
	for _, a := range r.accounts {
		items = append(items, *a)
	}
	page := shared.NewPaginated(items, int64(len(items)), 1, filter.PageSize)
	return &page, nil
}

func (r *memBankAccountRepo) Create(_ context.Context, account *treasury.BankAccount) error {
	r.accounts[account.ID] = account
	return nil
}

func (r *memBankAccountRepo) Save(_ context.Context, account *treasury.BankAccount) error {
	r.accounts[account.ID] = account
	return nil
}

type memInvoiceRepo struct {
	invoices map[uuid.UUID]*billing.Invoice
	seq      map[billing.InvoiceType]int64
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{
		invoices: make(map[uuid.UUID]*billing.Invoice),
		seq:      make(map[billing.InvoiceType]int64),
	}
}

func (r *memInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return inv, nil
}

func (r *memInvoiceRepo) FindByIDForTenant(_ context.Context, _, id uuid.UUID) (*billing.Invoice, error) {
	return r.FindByID(context.Background(), id)
}

func (r *memInvoiceRepo) FindByDocumentCode(_ context.Context, _ uuid.UUID, code string) (*billing.Invoice, error) {
	for _, inv := range r.invoices {
		if inv.DocumentCode == code {
			return inv, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memInvoiceRepo) FindByPartner(_ context.Context, _, partnerID uuid.UUID) ([]billing.Invoice, error) {
	out := make([]billing.Invoice, 0)
	for _, inv := range r.invoices {
		if inv.PartnerID == partnerID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *memInvoiceRepo) FindAllForTenant(_ context.Context, _ uuid.UUID, filter shared.Filter) (*shared.Paginated[billing.Invoice], error) {
	items := make([]billing.Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		items = append(items, *inv)
	}
	page := shared.NewPaginated(items, int64(len(items)), 1, filter.PageSize)
	return &page, nil
}

func (r *memInvoiceRepo) NextSequence(_ context.Context, _ uuid.UUID, invoiceType billing.InvoiceType) (int64, error) {
	r.seq[invoiceType]++
	return r.seq[invoiceType], nil
}

func (r *memInvoiceRepo) Create(_ context.Context, invoice *billing.Invoice) error {
	r.invoices[invoice.ID] = invoice
	return nil
}

func (r *memInvoiceRepo) Save(_ context.Context, invoice *billing.Invoice) error {
	r.invoices[invoice.ID] = invoice
	return nil
}

type memCreditNoteRepo struct {
	notes []*billing.CreditNote
	seq   int64
}

func (r *memCreditNoteRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.CreditNote, error) {
	for _, n := range r.notes {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memCreditNoteRepo) FindByInvoice(_ context.Context, _, invoiceID uuid.UUID) ([]billing.CreditNote, error) {
	out := make([]billing.CreditNote, 0)
	for _, n := range r.notes {
		if n.InvoiceID == invoiceID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *memCreditNoteRepo) FindByPartner(_ context.Context, _, partnerID uuid.UUID) ([]billing.CreditNote, error) {
	out := make([]billing.CreditNote, 0)
	for _, n := range r.notes {
		if n.PartnerID == partnerID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *memCreditNoteRepo) ReturnedQuantities(_ context.Context, _, invoiceID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	out := make(map[uuid.UUID]decimal.Decimal)
	for _, n := range r.notes {
		if n.InvoiceID != invoiceID {
			continue
		}
		for _, line := range n.Lines {
			out[line.ProductID] = out[line.ProductID].Add(line.Quantity)
		}
	}
	return out, nil
}

func (r *memCreditNoteRepo) NextSequence(_ context.Context, _ uuid.UUID) (int64, error) {
	r.seq++
	return r.seq, nil
}

func (r *memCreditNoteRepo) Create(_ context.Context, note *billing.CreditNote) error {
	r.notes = append(r.notes, note)
	return nil
}

type memPartnerRepo struct {
	partners map[uuid.UUID]*partner.Partner
}

func newMemPartnerRepo() *memPartnerRepo {
	return &memPartnerRepo{partners: make(map[uuid.UUID]*partner.Partner)}
}

func (r *memPartnerRepo) FindByIDForTenant(_ context.Context, _, id uuid.UUID) (*partner.Partner, error) {
	p, ok := r.partners[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *memPartnerRepo) FindByCode(_ context.Context, _ uuid.UUID, code string) (*partner.Partner, error) {
	for _, p := range r.partners {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memPartnerRepo) FindAllForTenant(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]partner.Partner, error) {
	out := make([]partner.Partner, 0, len(r.partners))
	for _, p := range r.partners {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memPartnerRepo) Save(_ context.Context, p *partner.Partner) error {
	r.partners[p.ID] = p
	return nil
}

func (r *memPartnerRepo) CountForTenant(_ context.Context, _ uuid.UUID, _ shared.Filter) (int64, error) {
	return int64(len(r.partners)), nil
}

// fixture wires a payment service over in-memory repositories with one
// partner and one posted sale invoice for 58.00 VES (50.00 base + 16% tax).
type fixture struct {
	tenantID  uuid.UUID
	branchID  uuid.UUID
	partnerID uuid.UUID

	payments *memPaymentRepo
	accounts *memBankAccountRepo
	invoices *memInvoiceRepo
	notes    *memCreditNoteRepo
	partners *memPartnerRepo

	service *PaymentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		tenantID: uuid.New(),
		branchID: uuid.New(),
		payments: newMemPaymentRepo(),
		accounts: newMemBankAccountRepo(),
		invoices: newMemInvoiceRepo(),
		notes:    &memCreditNoteRepo{},
		partners: newMemPartnerRepo(),
	}

	p, err := partner.NewPartner(f.tenantID, "CLI-001", "Comercial Horizonte", partner.PartnerKindCustomer)
	require.NoError(t, err)
	require.NoError(t, f.partners.Save(context.Background(), p))
	f.partnerID = p.ID

	scope := NewNoOpTransactionScope(f.payments, f.accounts, f.invoices, f.partners)
	f.service = NewPaymentService(scope, f.payments, stubRates{}, nil)

	return f
}

// postedSaleInvoice creates a posted sale invoice for qty units at price
// with 16% tax, owned by the fixture partner.
func (f *fixture) postedSaleInvoice(t *testing.T, qty, price int64) *billing.Invoice {
	t.Helper()

	seq, err := f.invoices.NextSequence(context.Background(), f.tenantID, billing.InvoiceTypeSale)
	require.NoError(t, err)
	code := billing.FormatDocumentCode(billing.InvoiceTypeSale, seq)

	inv, err := billing.NewInvoice(f.tenantID, billing.InvoiceTypeSale, code, f.partnerID, f.branchID, valueobject.VES, decimal.NewFromInt(1), time.Now(), "")
	require.NoError(t, err)
	_, err = inv.AddLine(uuid.New(), "Harina de maiz", decimal.NewFromInt(qty), decimal.NewFromInt(price), decimal.NewFromFloat(0.16))
	require.NoError(t, err)
	require.NoError(t, inv.Post())
	require.NoError(t, f.invoices.Create(context.Background(), inv))

	return inv
}

func (f *fixture) bankAccount(t *testing.T, currency valueobject.Currency) *treasury.BankAccount {
	t.Helper()

	account, err := treasury.NewBankAccount(f.tenantID, "BNC-01", "Cuenta corriente", treasury.AccountKindBank, currency)
	require.NoError(t, err)
	require.NoError(t, f.accounts.Create(context.Background(), account))

	return account
}
