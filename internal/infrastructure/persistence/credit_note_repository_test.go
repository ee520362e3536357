package persistence

import (
	"context"
	"testing"

	"github.com/backoffice/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreditNoteReturnedQuantities(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	db := newTestDB(t)
	invoices := NewGormInvoiceRepository(db)
	notes := NewGormCreditNoteRepository(db)

	source := postedInvoice(t, tenantID, billing.InvoiceTypeSale, "A-00000001")
	require.NoError(t, invoices.Create(ctx, source))
	productID := source.Lines[0].ProductID

	t.Run("empty without credit notes", func(t *testing.T) {
		returned, err := notes.ReturnedQuantities(ctx, tenantID, source.ID)
		require.NoError(t, err)
		assert.Empty(t, returned)
	})

	t.Run("accumulates per product across notes", func(t *testing.T) {
		first, err := billing.NewCreditNote("NC-00000001", source,
			[]billing.ReturnRequest{{ProductID: productID, Quantity: decimal.NewFromInt(4)}}, nil)
		require.NoError(t, err)
		require.NoError(t, notes.Create(ctx, first))

		prior, err := notes.ReturnedQuantities(ctx, tenantID, source.ID)
		require.NoError(t, err)

		second, err := billing.NewCreditNote("NC-00000002", source,
			[]billing.ReturnRequest{{ProductID: productID, Quantity: decimal.NewFromInt(2)}}, prior)
		require.NoError(t, err)
		require.NoError(t, notes.Create(ctx, second))

		returned, err := notes.ReturnedQuantities(ctx, tenantID, source.ID)
		require.NoError(t, err)
		require.Contains(t, returned, productID)
		assert.True(t, returned[productID].Equal(decimal.NewFromInt(6)))
	})

	t.Run("notes against other invoices stay out", func(t *testing.T) {
		other := postedInvoice(t, tenantID, billing.InvoiceTypeSale, "A-00000002")
		require.NoError(t, invoices.Create(ctx, other))

		note, err := billing.NewCreditNote("NC-00000003", other,
			[]billing.ReturnRequest{{ProductID: other.Lines[0].ProductID, Quantity: decimal.NewFromInt(1)}}, nil)
		require.NoError(t, err)
		require.NoError(t, notes.Create(ctx, note))

		returned, err := notes.ReturnedQuantities(ctx, tenantID, source.ID)
		require.NoError(t, err)
		assert.True(t, returned[productID].Equal(decimal.NewFromInt(6)))
		assert.NotContains(t, returned, other.Lines[0].ProductID)
	})
}

func TestCreditNoteNextSequence(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	db := newTestDB(t)
	invoices := NewGormInvoiceRepository(db)
	notes := NewGormCreditNoteRepository(db)

	seq, err := notes.NextSequence(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	source := postedInvoice(t, tenantID, billing.InvoiceTypeSale, "A-00000001")
	require.NoError(t, invoices.Create(ctx, source))

	note, err := billing.NewCreditNote(billing.FormatCreditNoteCode(7), source,
		[]billing.ReturnRequest{{ProductID: source.Lines[0].ProductID, Quantity: decimal.NewFromInt(1)}}, nil)
	require.NoError(t, err)
	require.NoError(t, notes.Create(ctx, note))

	seq, err = notes.NextSequence(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), seq)
}
