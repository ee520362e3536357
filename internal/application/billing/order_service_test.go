package billing

import (
	"context"
	"testing"

	"github.com/backoffice/backend/internal/domain/inventory"
	"github.com/backoffice/backend/internal/domain/partner"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder(t *testing.T) {
	t.Run("pending order totals from catalog prices", func(t *testing.T) {
		f := newBillingFixture(t)
		product := f.addProduct(t)

		resp, err := f.orderSvc.CreateOrder(context.Background(), CreateOrderRequest{
			TenantID:     f.tenantID,
			BranchID:     f.branch.ID,
			PartnerID:    f.customer.ID,
			WarehouseID:  f.warehouse.ID,
			CurrencyCode: "VES",
			Lines:        []OrderLineRequest{{ProductID: product.ID, Quantity: decimal.NewFromInt(3)}},
		})
		require.NoError(t, err)

		assert.Equal(t, "ORD-00000001", resp.Number)
		assert.Equal(t, "PENDING", resp.Status)
		assert.Equal(t, "75.00", resp.Total.StringFixed(2))
		assert.Empty(t, f.moves.moves)
	})

	t.Run("warehouse of another branch is rejected", func(t *testing.T) {
		f := newBillingFixture(t)
		product := f.addProduct(t)

		otherBranch, err := partner.NewBranch(f.tenantID, "EAST", "East branch")
		require.NoError(t, err)
		require.NoError(t, f.branches.Save(context.Background(), otherBranch))
		foreign, err := partner.NewWarehouse(f.tenantID, otherBranch.ID, "WH-02", "East warehouse")
		require.NoError(t, err)
		require.NoError(t, f.warehouses.Save(context.Background(), foreign))

		_, err = f.orderSvc.CreateOrder(context.Background(), CreateOrderRequest{
			TenantID:     f.tenantID,
			BranchID:     f.branch.ID,
			PartnerID:    f.customer.ID,
			WarehouseID:  foreign.ID,
			CurrencyCode: "VES",
			Lines:        []OrderLineRequest{{ProductID: product.ID, Quantity: decimal.NewFromInt(1)}},
		})
		require.Error(t, err)
		assert.Equal(t, shared.ErrCrossBranchViolation, err)
	})
}

func TestConfirmOrder(t *testing.T) {
	t.Run("confirmation issues the ordered stock", func(t *testing.T) {
		f := newBillingFixture(t)
		product := f.addProduct(t)
		f.stock(t, product.ID, 10)

		order, err := f.orderSvc.CreateOrder(context.Background(), CreateOrderRequest{
			TenantID:     f.tenantID,
			BranchID:     f.branch.ID,
			PartnerID:    f.customer.ID,
			WarehouseID:  f.warehouse.ID,
			CurrencyCode: "VES",
			Lines:        []OrderLineRequest{{ProductID: product.ID, Quantity: decimal.NewFromInt(3)}},
		})
		require.NoError(t, err)

		confirmed, err := f.orderSvc.ConfirmOrder(context.Background(), f.tenantID, order.ID, nil)
		require.NoError(t, err)

		assert.Equal(t, "CONFIRMED", confirmed.Status)
		assert.Equal(t, "7", f.stockLines.quantity(f.warehouse.ID, product.ID).String())
		require.Len(t, f.moves.moves, 1)
		assert.Equal(t, inventory.MoveTypeOut, f.moves.moves[0].Type)
		assert.Equal(t, inventory.SourceDocOrder, f.moves.moves[0].SourceType)
	})

	t.Run("insufficient stock aborts the confirmation", func(t *testing.T) {
		f := newBillingFixture(t)
		product := f.addProduct(t)
		f.stock(t, product.ID, 3)

		order, err := f.orderSvc.CreateOrder(context.Background(), CreateOrderRequest{
			TenantID:     f.tenantID,
			BranchID:     f.branch.ID,
			PartnerID:    f.customer.ID,
			WarehouseID:  f.warehouse.ID,
			CurrencyCode: "VES",
			Lines:        []OrderLineRequest{{ProductID: product.ID, Quantity: decimal.NewFromInt(5)}},
		})
		require.NoError(t, err)

		_, err = f.orderSvc.ConfirmOrder(context.Background(), f.tenantID, order.ID, nil)
		require.Error(t, err)
		assert.Equal(t, shared.ErrInsufficientStock, err)
		assert.Equal(t, "3", f.stockLines.quantity(f.warehouse.ID, product.ID).String())
	})
}

func TestCancelOrder(t *testing.T) {
	t.Run("pending order cancels without stock movement", func(t *testing.T) {
		f := newBillingFixture(t)
		product := f.addProduct(t)

		order, err := f.orderSvc.CreateOrder(context.Background(), CreateOrderRequest{
			TenantID:     f.tenantID,
			BranchID:     f.branch.ID,
			PartnerID:    f.customer.ID,
			WarehouseID:  f.warehouse.ID,
			CurrencyCode: "VES",
			Lines:        []OrderLineRequest{{ProductID: product.ID, Quantity: decimal.NewFromInt(2)}},
		})
		require.NoError(t, err)

		cancelled, err := f.orderSvc.CancelOrder(context.Background(), f.tenantID, order.ID, nil, "customer withdrew")
		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", cancelled.Status)
		assert.Empty(t, f.moves.moves)
	})

	t.Run("confirmed order returns the issued stock", func(t *testing.T) {
		f := newBillingFixture(t)
		product := f.addProduct(t)
		f.stock(t, product.ID, 10)

		order, err := f.orderSvc.CreateOrder(context.Background(), CreateOrderRequest{
			TenantID:     f.tenantID,
			BranchID:     f.branch.ID,
			PartnerID:    f.customer.ID,
			WarehouseID:  f.warehouse.ID,
			CurrencyCode: "VES",
			Lines:        []OrderLineRequest{{ProductID: product.ID, Quantity: decimal.NewFromInt(4)}},
		})
		require.NoError(t, err)
		_, err = f.orderSvc.ConfirmOrder(context.Background(), f.tenantID, order.ID, nil)
		require.NoError(t, err)
		require.Equal(t, "6", f.stockLines.quantity(f.warehouse.ID, product.ID).String())

		cancelled, err := f.orderSvc.CancelOrder(context.Background(), f.tenantID, order.ID, nil, "delivery failed")
		require.NoError(t, err)

		assert.Equal(t, "CANCELLED", cancelled.Status)
		assert.Equal(t, "10", f.stockLines.quantity(f.warehouse.ID, product.ID).String())
		require.Len(t, f.moves.moves, 2)
		assert.Equal(t, inventory.MoveTypeIn, f.moves.moves[1].Type)
	})

	t.Run("completed order cannot be cancelled", func(t *testing.T) {
		f := newBillingFixture(t)
		product := f.addProduct(t)
		f.stock(t, product.ID, 10)

		order, err := f.orderSvc.CreateOrder(context.Background(), CreateOrderRequest{
			TenantID:     f.tenantID,
			BranchID:     f.branch.ID,
			PartnerID:    f.customer.ID,
			WarehouseID:  f.warehouse.ID,
			CurrencyCode: "VES",
			Lines:        []OrderLineRequest{{ProductID: product.ID, Quantity: decimal.NewFromInt(1)}},
		})
		require.NoError(t, err)
		_, err = f.orderSvc.ConfirmOrder(context.Background(), f.tenantID, order.ID, nil)
		require.NoError(t, err)

		_, err = f.invoiceSvc.CreateInvoice(context.Background(), CreateInvoiceRequest{
			TenantID:     f.tenantID,
			BranchID:     f.branch.ID,
			PartnerID:    f.customer.ID,
			CurrencyCode: "VES",
			OrderID:      &order.ID,
			Lines:        []InvoiceLineRequest{{ProductID: product.ID, Quantity: decimal.NewFromInt(1)}},
		})
		require.NoError(t, err)

		_, err = f.orderSvc.CancelOrder(context.Background(), f.tenantID, order.ID, nil, "too late")
		require.Error(t, err)
		assert.Equal(t, shared.ErrInvalidStateTransition, err)
	})
}
