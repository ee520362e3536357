package inventory

import (
	"context"
	"strings"
	"testing"

	"github.com/backoffice/backend/internal/domain/catalog"
	"github.com/backoffice/backend/internal/domain/inventory"
	"github.com/backoffice/backend/internal/domain/partner"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stockKey struct {
	warehouseID uuid.UUID
	productID   uuid.UUID
	batchID     uuid.UUID
}

type memStockLineRepo struct {
	lines    map[stockKey]*inventory.StockLine
	products *memProductRepo
}

func newMemStockLineRepo() *memStockLineRepo {
	return &memStockLineRepo{lines: make(map[stockKey]*inventory.StockLine)}
}

func (r *memStockLineRepo) matchesSearch(productID uuid.UUID, term string) bool {
	if r.products == nil {
		return false
	}
	p, ok := r.products.products[productID]
	if !ok {
		return false
	}
	return strings.Contains(p.Name, term) || strings.Contains(p.Code, term)
}

func keyOf(warehouseID, productID uuid.UUID, batchID *uuid.UUID) stockKey {
	k := stockKey{warehouseID: warehouseID, productID: productID}
	if batchID != nil {
		k.batchID = *batchID
	}
	return k
}

func (r *memStockLineRepo) FindByKey(_ context.Context, _, warehouseID, productID uuid.UUID, batchID *uuid.UUID) (*inventory.StockLine, error) {
	line, ok := r.lines[keyOf(warehouseID, productID, batchID)]
	if !ok {
		return nil, nil
	}
	return line, nil
}

func (r *memStockLineRepo) ApplyDelta(_ context.Context, tenantID, warehouseID, productID uuid.UUID, batchID *uuid.UUID, delta decimal.Decimal) error {
	k := keyOf(warehouseID, productID, batchID)
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
		if line.WarehouseID != warehouseID {
			continue
		}
		if filter.Search != "" && !r.matchesSearch(line.ProductID, filter.Search) {
			continue
		}
		items = append(items, *line)
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

func (r *memStockLineRepo) quantity(warehouseID, productID uuid.UUID, batchID *uuid.UUID) decimal.Decimal {
	line, ok := r.lines[keyOf(warehouseID, productID, batchID)]
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
	batch, ok := r.batches[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return batch, nil
}

func (r *memBatchRepo) FindByLotCode(_ context.Context, _, productID uuid.UUID, lotCode string) (*inventory.StockBatch, error) {
	for _, batch := range r.batches {
		if batch.ProductID == productID && batch.LotCode == lotCode {
			return batch, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memBatchRepo) FindByProduct(_ context.Context, _, productID uuid.UUID) ([]inventory.StockBatch, error) {
	out := make([]inventory.StockBatch, 0)
	for _, batch := range r.batches {
		if batch.ProductID == productID {
			out = append(out, *batch)
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
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
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

type moveFixture struct {
	tenantID   uuid.UUID
	branchID   uuid.UUID
	warehouse  *partner.Warehouse
	stockLines *memStockLineRepo
	batches    *memBatchRepo
	moves      *memMoveRepo
	products   *memProductRepo
	warehouses *memWarehouseRepo
	service    *MoveService
}

func newMoveFixture(t *testing.T) *moveFixture {
	t.Helper()

	f := &moveFixture{
		tenantID:   uuid.New(),
		branchID:   uuid.New(),
		stockLines: newMemStockLineRepo(),
		batches:    newMemBatchRepo(),
		moves:      &memMoveRepo{},
		products:   newMemProductRepo(),
		warehouses: newMemWarehouseRepo(),
	}

	branch, err := partner.NewBranch(f.tenantID, "MAIN", "Main branch")
	require.NoError(t, err)
	f.branchID = branch.ID

	warehouse, err := partner.NewWarehouse(f.tenantID, branch.ID, "WH-01", "Central warehouse")
	require.NoError(t, err)
	require.NoError(t, f.warehouses.Save(context.Background(), warehouse))
	f.warehouse = warehouse

	f.stockLines.products = f.products

	scope := NewNoOpTransactionScope(f.stockLines, f.batches, f.moves, f.products, f.warehouses)
	f.service = NewMoveService(scope, f.stockLines, f.moves, nil)

	return f
}

func (f *moveFixture) addProduct(t *testing.T, batchTracked bool) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(f.tenantID, "P-"+uuid.NewString()[:8], "Test product", "pcs")
	require.NoError(t, err)
	product.SetBatchTracked(batchTracked)
	require.NoError(t, f.products.Save(context.Background(), product))
	return product
}

func (f *moveFixture) receive(t *testing.T, product *catalog.Product, qty int64, cost float64) {
	t.Helper()
	unitCost := decimal.NewFromFloat(cost)
	_, err := f.service.CreateMove(context.Background(), CreateMoveRequest{
		TenantID:        f.tenantID,
		Type:            inventory.MoveTypeIn,
		DestWarehouseID: &f.warehouse.ID,
		SourceType:      inventory.SourceDocManual,
		Lines: []MoveLineRequest{
			{ProductID: product.ID, Quantity: decimal.NewFromInt(qty), UnitCost: &unitCost},
		},
	})
	require.NoError(t, err)
}

func TestCreateMoveReceipt(t *testing.T) {
	t.Run("IN move raises stock and records the journal entry", func(t *testing.T) {
		f := newMoveFixture(t)
		product := f.addProduct(t, false)

		f.receive(t, product, 10, 4.00)

		assert.Equal(t, "10", f.stockLines.quantity(f.warehouse.ID, product.ID, nil).String())
		require.Len(t, f.moves.moves, 1)
		assert.Equal(t, inventory.MoveTypeIn, f.moves.moves[0].Type)
	})

	t.Run("weighted average cost absorbs new receipts", func(t *testing.T) {
		f := newMoveFixture(t)
		product := f.addProduct(t, false)

		f.receive(t, product, 100, 10.00)
		assert.Equal(t, "10.00", f.products.products[product.ID].UnitCost.StringFixed(2))

		f.receive(t, product, 100, 20.00)
		assert.Equal(t, "15.00", f.products.products[product.ID].UnitCost.StringFixed(2))
	})

	t.Run("issue without cost leaves the average untouched", func(t *testing.T) {
		f := newMoveFixture(t)
		product := f.addProduct(t, false)
		f.receive(t, product, 10, 8.00)

		_, err := f.service.CreateMove(context.Background(), CreateMoveRequest{
			TenantID:          f.tenantID,
			Type:              inventory.MoveTypeOut,
			SourceWarehouseID: &f.warehouse.ID,
			Lines: []MoveLineRequest{
				{ProductID: product.ID, Quantity: decimal.NewFromInt(4)},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, "8.00", f.products.products[product.ID].UnitCost.StringFixed(2))
		assert.Equal(t, "6", f.stockLines.quantity(f.warehouse.ID, product.ID, nil).String())
	})
}

func TestCreateMoveGuards(t *testing.T) {
	t.Run("OUT beyond stock fails with insufficient stock", func(t *testing.T) {
		f := newMoveFixture(t)
		product := f.addProduct(t, false)
		f.receive(t, product, 3, 1.00)

		_, err := f.service.CreateMove(context.Background(), CreateMoveRequest{
			TenantID:          f.tenantID,
			Type:              inventory.MoveTypeOut,
			SourceWarehouseID: &f.warehouse.ID,
			Lines: []MoveLineRequest{
				{ProductID: product.ID, Quantity: decimal.NewFromInt(5)},
			},
		})
		require.Error(t, err)
		assert.Equal(t, shared.ErrInsufficientStock, err)
		assert.Equal(t, "3", f.stockLines.quantity(f.warehouse.ID, product.ID, nil).String())
	})

	t.Run("batch tracked product requires a batch reference", func(t *testing.T) {
		f := newMoveFixture(t)
		product := f.addProduct(t, true)

		_, err := f.service.CreateMove(context.Background(), CreateMoveRequest{
			TenantID:        f.tenantID,
			Type:            inventory.MoveTypeIn,
			DestWarehouseID: &f.warehouse.ID,
			Lines: []MoveLineRequest{
				{ProductID: product.ID, Quantity: decimal.NewFromInt(5)},
			},
		})
		require.Error(t, err)
		assert.Equal(t, shared.ErrBatchRequired, err)
	})

	t.Run("unknown lot is registered on first receipt", func(t *testing.T) {
		f := newMoveFixture(t)
		product := f.addProduct(t, true)

		_, err := f.service.CreateMove(context.Background(), CreateMoveRequest{
			TenantID:        f.tenantID,
			Type:            inventory.MoveTypeIn,
			DestWarehouseID: &f.warehouse.ID,
			Lines: []MoveLineRequest{
				{ProductID: product.ID, Quantity: decimal.NewFromInt(5), LotCode: "LOT-2026-03"},
			},
		})
		require.NoError(t, err)

		batch, err := f.batches.FindByLotCode(context.Background(), f.tenantID, product.ID, "LOT-2026-03")
		require.NoError(t, err)
		assert.Equal(t, "5", f.stockLines.quantity(f.warehouse.ID, product.ID, &batch.ID).String())
	})

	t.Run("cross branch warehouse is rejected when context is known", func(t *testing.T) {
		f := newMoveFixture(t)
		product := f.addProduct(t, false)
		otherBranch := uuid.New()

		_, err := f.service.CreateMove(context.Background(), CreateMoveRequest{
			TenantID:        f.tenantID,
			BranchID:        &otherBranch,
			Type:            inventory.MoveTypeIn,
			DestWarehouseID: &f.warehouse.ID,
			Lines: []MoveLineRequest{
				{ProductID: product.ID, Quantity: decimal.NewFromInt(1)},
			},
		})
		require.Error(t, err)
		assert.Equal(t, shared.ErrCrossBranchViolation, err)
	})

	t.Run("matching branch context passes", func(t *testing.T) {
		f := newMoveFixture(t)
		product := f.addProduct(t, false)

		_, err := f.service.CreateMove(context.Background(), CreateMoveRequest{
			TenantID:        f.tenantID,
			BranchID:        &f.branchID,
			Type:            inventory.MoveTypeIn,
			DestWarehouseID: &f.warehouse.ID,
			Lines: []MoveLineRequest{
				{ProductID: product.ID, Quantity: decimal.NewFromInt(1)},
			},
		})
		assert.NoError(t, err)
	})

	t.Run("unknown product aborts the move", func(t *testing.T) {
		f := newMoveFixture(t)

		_, err := f.service.CreateMove(context.Background(), CreateMoveRequest{
			TenantID:        f.tenantID,
			Type:            inventory.MoveTypeIn,
			DestWarehouseID: &f.warehouse.ID,
			Lines: []MoveLineRequest{
				{ProductID: uuid.New(), Quantity: decimal.NewFromInt(1)},
			},
		})
		require.Error(t, err)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.Empty(t, f.moves.moves)
	})
}

func TestGetStock(t *testing.T) {
	f := newMoveFixture(t)

	addNamed := func(code, name string) *catalog.Product {
		product, err := catalog.NewProduct(f.tenantID, code, name, "kg")
		require.NoError(t, err)
		require.NoError(t, f.products.Save(context.Background(), product))
		return product
	}
	harina := addNamed("HAR-001", "Harina de maiz")
	azucar := addNamed("AZU-001", "Azucar refinada")
	f.receive(t, harina, 12, 1.50)
	f.receive(t, azucar, 5, 2.00)

	t.Run("lists every row without a search term", func(t *testing.T) {
		page, err := f.service.GetStock(context.Background(), f.tenantID, f.warehouse.ID, shared.Filter{})
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
	})

	t.Run("search term narrows rows to matching products", func(t *testing.T) {
		page, err := f.service.GetStock(context.Background(), f.tenantID, f.warehouse.ID, shared.Filter{Search: "Harina"})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, harina.ID, page.Items[0].ProductID)
		assert.Equal(t, "12", page.Items[0].Quantity.String())
	})

	t.Run("search matches product codes too", func(t *testing.T) {
		page, err := f.service.GetStock(context.Background(), f.tenantID, f.warehouse.ID, shared.Filter{Search: "AZU"})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, azucar.ID, page.Items[0].ProductID)
	})
}

func TestCreateMoveTransfer(t *testing.T) {
	f := newMoveFixture(t)
	product := f.addProduct(t, false)
	f.receive(t, product, 10, 2.00)

	second, err := partner.NewWarehouse(f.tenantID, f.branchID, "WH-02", "Annex")
	require.NoError(t, err)
	require.NoError(t, f.warehouses.Save(context.Background(), second))

	_, err = f.service.CreateMove(context.Background(), CreateMoveRequest{
		TenantID:          f.tenantID,
		Type:              inventory.MoveTypeTransfer,
		SourceWarehouseID: &f.warehouse.ID,
		DestWarehouseID:   &second.ID,
		Lines: []MoveLineRequest{
			{ProductID: product.ID, Quantity: decimal.NewFromInt(4)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "6", f.stockLines.quantity(f.warehouse.ID, product.ID, nil).String())
	assert.Equal(t, "4", f.stockLines.quantity(second.ID, product.ID, nil).String())
}
