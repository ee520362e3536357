package billing

import (
	"context"
	"testing"

	appinv "github.com/backoffice/backend/internal/application/inventory"
	"github.com/backoffice/backend/internal/domain/billing"
	"github.com/backoffice/backend/internal/domain/catalog"
	"github.com/backoffice/backend/internal/domain/inventory"
	"github.com/backoffice/backend/internal/domain/partner"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubRates struct {
	rates map[valueobject.Currency]decimal.Decimal
}

func (s stubRates) LatestRate(_ context.Context, _ uuid.UUID, code valueobject.Currency) (decimal.Decimal, error) {
	if code == valueobject.BaseCurrency {
		return decimal.NewFromInt(1), nil
	}
	if rate, ok := s.rates[code]; ok {
		return rate, nil
	}
	return decimal.NewFromInt(1), nil
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
	inv, ok := r.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return inv, nil
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

type memOrderRepo struct {
	orders map[uuid.UUID]*billing.Order
	seq    int64
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uuid.UUID]*billing.Order)}
}

func (r *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

func (r *memOrderRepo) FindByIDForTenant(_ context.Context, _, id uuid.UUID) (*billing.Order, error) {
	return r.FindByID(context.Background(), id)
}

func (r *memOrderRepo) FindAllForTenant(_ context.Context, _ uuid.UUID, filter shared.Filter) (*shared.Paginated[billing.Order], error) {
	items := make([]billing.Order, 0, len(r.orders))
	for _, o := range r.orders {
		items = append(items, *o)
	}
	page := shared.NewPaginated(items, int64(len(items)), 1, filter.PageSize)
	return &page, nil
}

func (r *memOrderRepo) NextSequence(_ context.Context, _ uuid.UUID) (int64, error) {
	r.seq++
	return r.seq, nil
}

func (r *memOrderRepo) Create(_ context.Context, order *billing.Order) error {
	r.orders[order.ID] = order
	return nil
}

func (r *memOrderRepo) Save(_ context.Context, order *billing.Order) error {
	r.orders[order.ID] = order
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

type memBranchRepo struct {
	branches map[uuid.UUID]*partner.Branch
}

func newMemBranchRepo() *memBranchRepo {
	return &memBranchRepo{branches: make(map[uuid.UUID]*partner.Branch)}
}

func (r *memBranchRepo) FindByIDForTenant(_ context.Context, _, id uuid.UUID) (*partner.Branch, error) {
	b, ok := r.branches[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return b, nil
}

func (r *memBranchRepo) FindAllForTenant(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]partner.Branch, error) {
	out := make([]partner.Branch, 0, len(r.branches))
	for _, b := range r.branches {
		out = append(out, *b)
	}
	return out, nil
}

func (r *memBranchRepo) Save(_ context.Context, b *partner.Branch) error {
	r.branches[b.ID] = b
	return nil
}

type memWarehouseRepo struct {
	warehouses map[uuid.UUID]*partner.Warehouse
}

func newMemWarehouseRepo() *memWarehouseRepo {
	return &memWarehouseRepo{warehouses: make(map[uuid.UUID]*partner.Warehouse)}
}

func (r *memWarehouseRepo) FindByIDForTenant(_ context.Context, _, id uuid.UUID) (*partner.Warehouse, error) {
	w, ok := r.warehouses[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return w, nil
}

func (r *memWarehouseRepo) FindByBranch(_ context.Context, _, branchID uuid.UUID, _ shared.Filter) ([]partner.Warehouse, error) {
	out := make([]partner.Warehouse, 0)
	for _, w := range r.warehouses {
		if w.BranchID == branchID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (r *memWarehouseRepo) FindAllForTenant(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]partner.Warehouse, error) {
	out := make([]partner.Warehouse, 0, len(r.warehouses))
	for _, w := range r.warehouses {
		out = append(out, *w)
	}
	return out, nil
}

func (r *memWarehouseRepo) Save(_ context.Context, w *partner.Warehouse) error {
	r.warehouses[w.ID] = w
	return nil
}

type memProductRepo struct {
	products map[uuid.UUID]*catalog.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[uuid.UUID]*catalog.Product)}
}

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *memProductRepo) FindByIDForTenant(_ context.Context, _, id uuid.UUID) (*catalog.Product, error) {
	return r.FindByID(context.Background(), id)
}

func (r *memProductRepo) FindByIDs(_ context.Context, _ uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProductRepo) FindByCode(_ context.Context, _ uuid.UUID, code string) (*catalog.Product, error) {
	for _, p := range r.products {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) FindAllForTenant(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memProductRepo) Save(_ context.Context, product *catalog.Product) error {
	r.products[product.ID] = product
	return nil
}

func (r *memProductRepo) CountForTenant(_ context.Context, _ uuid.UUID, _ shared.Filter) (int64, error) {
	return int64(len(r.products)), nil
}

type memStockLineRepo struct {
	lines map[string]*inventory.StockLine
}

func newMemStockLineRepo() *memStockLineRepo {
	return &memStockLineRepo{lines: make(map[string]*inventory.StockLine)}
}

func stockKey(warehouseID, productID uuid.UUID, batchID *uuid.UUID) string {
	k := warehouseID.String() + "/" + productID.String()
	if batchID != nil {
		k += "/" + batchID.String()
	}
	return k
}

func (r *memStockLineRepo) FindByKey(_ context.Context, _, warehouseID, productID uuid.UUID, batchID *uuid.UUID) (*inventory.StockLine, error) {
	line, ok := r.lines[stockKey(warehouseID, productID, batchID)]
	if !ok {
		return nil, nil
	}
	return line, nil
}

func (r *memStockLineRepo) ApplyDelta(_ context.Context, tenantID, warehouseID, productID uuid.UUID, batchID *uuid.UUID, delta decimal.Decimal) error {
	k := stockKey(warehouseID, productID, batchID)
	line, ok := r.lines[k]
	if !ok {
		var err error
		line, err = inventory.NewStockLine(tenantID, warehouseID, productID, batchID)
		if err != nil {
			return err
		}
	}
	if err := line.Apply(delta); err != nil {
		return err
	}
	r.lines[k] = line
	return nil
}

func (r *memStockLineRepo) TotalQuantity(_ context.Context, _, productID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, line := range r.lines {
		if line.ProductID == productID {
			total = total.Add(line.Quantity)
		}
	}
	return total, nil
}

func (r *memStockLineRepo) FindByWarehouse(_ context.Context, _, warehouseID uuid.UUID, filter shared.Filter) (*shared.Paginated[inventory.StockLine], error) {
	items := make([]inventory.StockLine, 0)
	for _, line := range r.lines {
		if line.WarehouseID == warehouseID {
			items = append(items, *line)
		}
	}
	page := shared.NewPaginated(items, int64(len(items)), 1, filter.PageSize)
	return &page, nil
}

func (r *memStockLineRepo) FindByProduct(_ context.Context, _, productID uuid.UUID) ([]inventory.StockLine, error) {
	items := make([]inventory.StockLine, 0)
	for _, line := range r.lines {
		if line.ProductID == productID {
			items = append(items, *line)
		}
	}
	return items, nil
}

func (r *memStockLineRepo) quantity(warehouseID, productID uuid.UUID) decimal.Decimal {
	line, ok := r.lines[stockKey(warehouseID, productID, nil)]
	if !ok {
		return decimal.Zero
	}
	return line.Quantity
}

type memBatchRepo struct {
	batches map[uuid.UUID]*inventory.StockBatch
}

func newMemBatchRepo() *memBatchRepo {
	return &memBatchRepo{batches: make(map[uuid.UUID]*inventory.StockBatch)}
}

func (r *memBatchRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.StockBatch, error) {
	b, ok := r.batches[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return b, nil
}

func (r *memBatchRepo) FindByLotCode(_ context.Context, _, productID uuid.UUID, lotCode string) (*inventory.StockBatch, error) {
	for _, b := range r.batches {
		if b.ProductID == productID && b.LotCode == lotCode {
			return b, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memBatchRepo) FindByProduct(_ context.Context, _, productID uuid.UUID) ([]inventory.StockBatch, error) {
	out := make([]inventory.StockBatch, 0)
	for _, b := range r.batches {
		if b.ProductID == productID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memBatchRepo) Save(_ context.Context, batch *inventory.StockBatch) error {
	r.batches[batch.ID] = batch
	return nil
}

type memMoveRepo struct {
	moves []*inventory.StockMove
}

func (r *memMoveRepo) Create(_ context.Context, move *inventory.StockMove) error {
	r.moves = append(r.moves, move)
	return nil
}

func (r *memMoveRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.StockMove, error) {
	for _, move := range r.moves {
		if move.ID == id {
			return move, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memMoveRepo) FindBySource(_ context.Context, _ uuid.UUID, sourceType inventory.SourceDocType, sourceID string) ([]inventory.StockMove, error) {
	out := make([]inventory.StockMove, 0)
	for _, move := range r.moves {
		if move.SourceType == sourceType && move.SourceID == sourceID {
			out = append(out, *move)
		}
	}
	return out, nil
}

func (r *memMoveRepo) FindAllForTenant(_ context.Context, _ uuid.UUID, filter shared.Filter) (*shared.Paginated[inventory.StockMove], error) {
	items := make([]inventory.StockMove, 0, len(r.moves))
	for _, move := range r.moves {
		items = append(items, *move)
	}
	page := shared.NewPaginated(items, int64(len(items)), 1, filter.PageSize)
	return &page, nil
}

// billingFixture wires the three billing services over in-memory
// repositories sharing one no-op transaction scope.
type billingFixture struct {
	tenantID    uuid.UUID
	branch      *partner.Branch
	warehouse   *partner.Warehouse
	customer    *partner.Partner
	invoices    *memInvoiceRepo
	orders      *memOrderRepo
	creditNotes *memCreditNoteRepo
	partners    *memPartnerRepo
	branches    *memBranchRepo
	products    *memProductRepo
	warehouses  *memWarehouseRepo
	stockLines  *memStockLineRepo
	batches     *memBatchRepo
	moves       *memMoveRepo

	invoiceSvc *InvoiceService
	orderSvc   *OrderService
	creditSvc  *CreditNoteService
}

func newBillingFixture(t *testing.T) *billingFixture {
	t.Helper()

	f := &billingFixture{
		tenantID:    uuid.New(),
		invoices:    newMemInvoiceRepo(),
		orders:      newMemOrderRepo(),
		creditNotes: &memCreditNoteRepo{},
		partners:    newMemPartnerRepo(),
		branches:    newMemBranchRepo(),
		products:    newMemProductRepo(),
		warehouses:  newMemWarehouseRepo(),
		stockLines:  newMemStockLineRepo(),
		batches:     newMemBatchRepo(),
		moves:       &memMoveRepo{},
	}

	branch, err := partner.NewBranch(f.tenantID, "MAIN", "Main branch")
	require.NoError(t, err)
	require.NoError(t, f.branches.Save(context.Background(), branch))
	f.branch = branch

	warehouse, err := partner.NewWarehouse(f.tenantID, branch.ID, "WH-01", "Central warehouse")
	require.NoError(t, err)
	require.NoError(t, f.warehouses.Save(context.Background(), warehouse))
	f.warehouse = warehouse

	customer, err := partner.NewPartner(f.tenantID, "C-001", "Acme C.A.", partner.PartnerKindCustomer)
	require.NoError(t, err)
	require.NoError(t, f.partners.Save(context.Background(), customer))
	f.customer = customer

	invScope := appinv.NewNoOpTransactionScope(f.stockLines, f.batches, f.moves, f.products, f.warehouses)
	scope := NewNoOpTransactionScope(invScope, f.invoices, f.orders, f.creditNotes, f.partners, f.branches)

	rates := stubRates{rates: map[valueobject.Currency]decimal.Decimal{
		valueobject.USD: decimal.NewFromInt(40),
	}}

	f.invoiceSvc = NewInvoiceService(scope, f.invoices, rates, decimal.Zero, nil)
	f.orderSvc = NewOrderService(scope, f.orders, rates, nil)
	f.creditSvc = NewCreditNoteService(scope, f.creditNotes, nil)

	return f
}

// addProduct registers a product priced at 25.00 base with 16% tax.
func (f *billingFixture) addProduct(t *testing.T) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(f.tenantID, "P-"+uuid.NewString()[:8], "Test product", "pcs")
	require.NoError(t, err)
	require.NoError(t, product.SetSellingPrice(valueobject.NewMoneyBase(decimal.NewFromFloat(25.00))))
	require.NoError(t, product.SetTax(decimal.NewFromFloat(0.16), false))
	require.NoError(t, f.products.Save(context.Background(), product))
	return product
}

// stock seeds quantity into the central warehouse directly.
func (f *billingFixture) stock(t *testing.T, productID uuid.UUID, qty int64) {
	t.Helper()
	err := f.stockLines.ApplyDelta(context.Background(), f.tenantID, f.warehouse.ID, productID, nil, decimal.NewFromInt(qty))
	require.NoError(t, err)
}
