package inventory

import (
	"testing"
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockLineApply(t *testing.T) {
	tenantID := uuid.New()

	t.Run("accumulates positive and negative deltas", func(t *testing.T) {
		line, err := NewStockLine(tenantID, uuid.New(), uuid.New(), nil)
		require.NoError(t, err)

		require.NoError(t, line.Apply(decimal.NewFromInt(10)))
		require.NoError(t, line.Apply(decimal.NewFromInt(-4)))

		assert.True(t, line.Quantity.Equal(decimal.NewFromInt(6)))
	})

	t.Run("rejects delta driving quantity negative", func(t *testing.T) {
		line, err := NewStockLine(tenantID, uuid.New(), uuid.New(), nil)
		require.NoError(t, err)
		require.NoError(t, line.Apply(decimal.NewFromInt(3)))

		err = line.Apply(decimal.NewFromInt(-5))
		require.Error(t, err)
		assert.Equal(t, shared.ErrInsufficientStock, err)
		assert.True(t, line.Quantity.Equal(decimal.NewFromInt(3)))
	})

	t.Run("allows draining to exactly zero", func(t *testing.T) {
		line, err := NewStockLine(tenantID, uuid.New(), uuid.New(), nil)
		require.NoError(t, err)
		require.NoError(t, line.Apply(decimal.NewFromInt(7)))

		require.NoError(t, line.Apply(decimal.NewFromInt(-7)))
		assert.True(t, line.Quantity.IsZero())
	})

	t.Run("requires warehouse and product", func(t *testing.T) {
		_, err := NewStockLine(tenantID, uuid.Nil, uuid.New(), nil)
		assert.Error(t, err)

		_, err = NewStockLine(tenantID, uuid.New(), uuid.Nil, nil)
		assert.Error(t, err)
	})
}

func TestNewStockMove(t *testing.T) {
	tenantID := uuid.New()
	src := uuid.New()
	dst := uuid.New()

	t.Run("IN requires destination", func(t *testing.T) {
		_, err := NewStockMove(tenantID, MoveTypeIn, nil, nil, SourceDocManual, "")
		assert.Error(t, err)

		move, err := NewStockMove(tenantID, MoveTypeIn, nil, &dst, SourceDocManual, "")
		require.NoError(t, err)
		assert.Equal(t, MoveTypeIn, move.Type)
	})

	t.Run("OUT requires source", func(t *testing.T) {
		_, err := NewStockMove(tenantID, MoveTypeOut, nil, nil, SourceDocOrder, "ORD-1")
		assert.Error(t, err)

		_, err = NewStockMove(tenantID, MoveTypeOut, &src, nil, SourceDocOrder, "ORD-1")
		assert.NoError(t, err)
	})

	t.Run("TRANSFER requires both warehouses", func(t *testing.T) {
		_, err := NewStockMove(tenantID, MoveTypeTransfer, &src, nil, SourceDocManual, "")
		assert.Error(t, err)

		_, err = NewStockMove(tenantID, MoveTypeTransfer, nil, &dst, SourceDocManual, "")
		assert.Error(t, err)

		_, err = NewStockMove(tenantID, MoveTypeTransfer, &src, &dst, SourceDocManual, "")
		assert.NoError(t, err)
	})

	t.Run("rejects unknown move type", func(t *testing.T) {
		_, err := NewStockMove(tenantID, MoveType("BOGUS"), &src, &dst, SourceDocManual, "")
		assert.Error(t, err)
	})

	t.Run("rejects unknown source document type", func(t *testing.T) {
		_, err := NewStockMove(tenantID, MoveTypeIn, nil, &dst, SourceDocType("X"), "")
		assert.Error(t, err)
	})
}

func TestStockMoveAddLine(t *testing.T) {
	tenantID := uuid.New()
	src := uuid.New()
	dst := uuid.New()

	t.Run("rejects zero quantity", func(t *testing.T) {
		move, err := NewStockMove(tenantID, MoveTypeIn, nil, &dst, SourceDocManual, "")
		require.NoError(t, err)

		err = move.AddLine(uuid.New(), decimal.Zero, nil, nil)
		assert.Error(t, err)
	})

	t.Run("rejects negative quantity outside ADJUST", func(t *testing.T) {
		move, err := NewStockMove(tenantID, MoveTypeOut, &src, nil, SourceDocManual, "")
		require.NoError(t, err)

		err = move.AddLine(uuid.New(), decimal.NewFromInt(-2), nil, nil)
		assert.Error(t, err)
	})

	t.Run("ADJUST accepts signed quantity", func(t *testing.T) {
		move, err := NewStockMove(tenantID, MoveTypeAdjust, &src, nil, SourceDocManual, "")
		require.NoError(t, err)

		require.NoError(t, move.AddLine(uuid.New(), decimal.NewFromInt(-2), nil, nil))
		require.NoError(t, move.AddLine(uuid.New(), decimal.NewFromInt(5), nil, nil))
		assert.Len(t, move.Lines, 2)
	})

	t.Run("rejects negative unit cost", func(t *testing.T) {
		move, err := NewStockMove(tenantID, MoveTypeIn, nil, &dst, SourceDocInvoice, "A-00000001")
		require.NoError(t, err)

		cost := decimal.NewFromInt(-1)
		err = move.AddLine(uuid.New(), decimal.NewFromInt(3), &cost, nil)
		assert.Error(t, err)
	})
}

func TestStockMoveDeltas(t *testing.T) {
	tenantID := uuid.New()
	src := uuid.New()
	dst := uuid.New()
	qty := decimal.NewFromInt(8)

	t.Run("TRANSFER issues source before destination", func(t *testing.T) {
		move, err := NewStockMove(tenantID, MoveTypeTransfer, &src, &dst, SourceDocManual, "")
		require.NoError(t, err)
		require.NoError(t, move.AddLine(uuid.New(), qty, nil, nil))

		deltas := move.Deltas(move.Lines[0])
		require.Len(t, deltas, 2)
		assert.Equal(t, src, deltas[0].WarehouseID)
		assert.True(t, deltas[0].Delta.Equal(qty.Neg()))
		assert.Equal(t, dst, deltas[1].WarehouseID)
		assert.True(t, deltas[1].Delta.Equal(qty))
	})

	t.Run("OUT negates quantity at source", func(t *testing.T) {
		move, err := NewStockMove(tenantID, MoveTypeOut, &src, nil, SourceDocOrder, "ORD-9")
		require.NoError(t, err)
		require.NoError(t, move.AddLine(uuid.New(), qty, nil, nil))

		deltas := move.Deltas(move.Lines[0])
		require.Len(t, deltas, 1)
		assert.True(t, deltas[0].Delta.Equal(qty.Neg()))
	})

	t.Run("ADJUST passes signed quantity through", func(t *testing.T) {
		move, err := NewStockMove(tenantID, MoveTypeAdjust, &src, nil, SourceDocManual, "")
		require.NoError(t, err)
		require.NoError(t, move.AddLine(uuid.New(), decimal.NewFromInt(-3), nil, nil))

		deltas := move.Deltas(move.Lines[0])
		require.Len(t, deltas, 1)
		assert.Equal(t, src, deltas[0].WarehouseID)
		assert.True(t, deltas[0].Delta.Equal(decimal.NewFromInt(-3)))
	})
}

func TestStockMoveReceivingWarehouse(t *testing.T) {
	tenantID := uuid.New()
	src := uuid.New()
	dst := uuid.New()

	t.Run("IN receives into destination", func(t *testing.T) {
		move, err := NewStockMove(tenantID, MoveTypeIn, nil, &dst, SourceDocInvoice, "C-00000003")
		require.NoError(t, err)
		require.NoError(t, move.AddLine(uuid.New(), decimal.NewFromInt(1), nil, nil))

		wh := move.ReceivingWarehouse(move.Lines[0])
		require.NotNil(t, wh)
		assert.Equal(t, dst, *wh)
	})

	t.Run("OUT receives nowhere", func(t *testing.T) {
		move, err := NewStockMove(tenantID, MoveTypeOut, &src, nil, SourceDocOrder, "ORD-2")
		require.NoError(t, err)
		require.NoError(t, move.AddLine(uuid.New(), decimal.NewFromInt(1), nil, nil))

		assert.Nil(t, move.ReceivingWarehouse(move.Lines[0]))
	})

	t.Run("negative ADJUST receives nowhere", func(t *testing.T) {
		move, err := NewStockMove(tenantID, MoveTypeAdjust, &src, nil, SourceDocManual, "")
		require.NoError(t, err)
		require.NoError(t, move.AddLine(uuid.New(), decimal.NewFromInt(-1), nil, nil))
		require.NoError(t, move.AddLine(uuid.New(), decimal.NewFromInt(2), nil, nil))

		assert.Nil(t, move.ReceivingWarehouse(move.Lines[0]))
		wh := move.ReceivingWarehouse(move.Lines[1])
		require.NotNil(t, wh)
		assert.Equal(t, src, *wh)
	})
}

func TestStockBatch(t *testing.T) {
	tenantID := uuid.New()

	t.Run("requires lot code", func(t *testing.T) {
		_, err := NewStockBatch(tenantID, uuid.New(), "", nil)
		assert.Error(t, err)
	})

	t.Run("expiry comparison", func(t *testing.T) {
		past := time.Now().Add(-24 * time.Hour)
		future := time.Now().Add(24 * time.Hour)

		expired, err := NewStockBatch(tenantID, uuid.New(), "LOT-A", &past)
		require.NoError(t, err)
		assert.True(t, expired.IsExpired(time.Now()))

		fresh, err := NewStockBatch(tenantID, uuid.New(), "LOT-B", &future)
		require.NoError(t, err)
		assert.False(t, fresh.IsExpired(time.Now()))

		open, err := NewStockBatch(tenantID, uuid.New(), "LOT-C", nil)
		require.NoError(t, err)
		assert.False(t, open.IsExpired(time.Now()))
	})
}
