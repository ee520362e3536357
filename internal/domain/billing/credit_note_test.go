package billing

import (
	"testing"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postedSaleInvoice(t *testing.T) (*Invoice, uuid.UUID) {
	t.Helper()

	inv := newDraftInvoice(t, InvoiceTypeSale)
	productID := uuid.New()
	_, err := inv.AddLine(productID, "Widget", decimal.NewFromInt(10), decimal.NewFromInt(5), decimal.NewFromFloat(0.16))
	require.NoError(t, err)
	require.NoError(t, inv.Post())
	return inv, productID
}

func TestNewCreditNote(t *testing.T) {
	t.Run("returning 4 of 10 units prorates tax linearly", func(t *testing.T) {
		inv, productID := postedSaleInvoice(t) // base 50.00, tax 8.00

		note, err := NewCreditNote(FormatCreditNoteCode(1), inv, []ReturnRequest{
			{ProductID: productID, Quantity: decimal.NewFromInt(4)},
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, "20.00", note.TotalBase.StringFixed(2))
		assert.Equal(t, "3.20", note.TotalTax.StringFixed(2))
		assert.Equal(t, "23.20", note.Total.StringFixed(2))
		assert.Equal(t, InvoiceStatusPosted, note.Status)
		assert.Equal(t, inv.ID, note.InvoiceID)
		assert.Equal(t, inv.CurrencyCode, note.CurrencyCode)
	})

	t.Run("igtf prorates with the same ratio", func(t *testing.T) {
		inv := newDraftInvoice(t, InvoiceTypeSale)
		productID := uuid.New()
		_, err := inv.AddLine(productID, "Widget", decimal.NewFromInt(10), decimal.NewFromInt(10), decimal.Zero)
		require.NoError(t, err)
		require.NoError(t, inv.ApplyIgtf(decimal.NewFromFloat(0.03))) // 3.00 on base 100.00
		require.NoError(t, inv.Post())

		note, err := NewCreditNote(FormatCreditNoteCode(2), inv, []ReturnRequest{
			{ProductID: productID, Quantity: decimal.NewFromInt(5)},
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, "50.00", note.TotalBase.StringFixed(2))
		assert.Equal(t, "1.50", note.TotalIgtf.StringFixed(2))
		assert.Equal(t, "51.50", note.Total.StringFixed(2))
	})

	t.Run("source must be posted or paid", func(t *testing.T) {
		inv := newDraftInvoice(t, InvoiceTypeSale)
		productID := uuid.New()
		_, err := inv.AddLine(productID, "Widget", decimal.NewFromInt(10), decimal.NewFromInt(5), decimal.Zero)
		require.NoError(t, err)

		_, err = NewCreditNote(FormatCreditNoteCode(3), inv, []ReturnRequest{
			{ProductID: productID, Quantity: decimal.NewFromInt(1)},
		}, nil)
		require.Error(t, err)
		assert.Equal(t, shared.ErrInvalidSourceState, err)
	})

	t.Run("void invoice cannot be credited", func(t *testing.T) {
		inv, productID := postedSaleInvoice(t)
		require.NoError(t, inv.Void("mistake"))

		_, err := NewCreditNote(FormatCreditNoteCode(4), inv, []ReturnRequest{
			{ProductID: productID, Quantity: decimal.NewFromInt(1)},
		}, nil)
		require.Error(t, err)
		assert.Equal(t, shared.ErrInvalidSourceState, err)
	})

	t.Run("partially paid invoice can be credited", func(t *testing.T) {
		inv, productID := postedSaleInvoice(t)
		_, err := inv.Settle(decimal.NewFromInt(30))
		require.NoError(t, err)

		_, err = NewCreditNote(FormatCreditNoteCode(5), inv, []ReturnRequest{
			{ProductID: productID, Quantity: decimal.NewFromInt(2)},
		}, nil)
		assert.NoError(t, err)
	})

	t.Run("over return is rejected", func(t *testing.T) {
		inv, productID := postedSaleInvoice(t)

		_, err := NewCreditNote(FormatCreditNoteCode(6), inv, []ReturnRequest{
			{ProductID: productID, Quantity: decimal.NewFromInt(11)},
		}, nil)
		require.Error(t, err)
		assert.Equal(t, shared.ErrOverReturn, err)
	})

	t.Run("over return counts prior credit notes cumulatively", func(t *testing.T) {
		inv, productID := postedSaleInvoice(t)
		prior := map[uuid.UUID]decimal.Decimal{productID: decimal.NewFromInt(7)}

		_, err := NewCreditNote(FormatCreditNoteCode(7), inv, []ReturnRequest{
			{ProductID: productID, Quantity: decimal.NewFromInt(4)},
		}, prior)
		require.Error(t, err)
		assert.Equal(t, shared.ErrOverReturn, err)

		note, err := NewCreditNote(FormatCreditNoteCode(7), inv, []ReturnRequest{
			{ProductID: productID, Quantity: decimal.NewFromInt(3)},
		}, prior)
		require.NoError(t, err)
		assert.Equal(t, "15.00", note.TotalBase.StringFixed(2))
	})

	t.Run("product absent from invoice is rejected", func(t *testing.T) {
		inv, _ := postedSaleInvoice(t)

		_, err := NewCreditNote(FormatCreditNoteCode(8), inv, []ReturnRequest{
			{ProductID: uuid.New(), Quantity: decimal.NewFromInt(1)},
		}, nil)
		assert.Error(t, err)
	})

	t.Run("requires at least one line", func(t *testing.T) {
		inv, _ := postedSaleInvoice(t)
		_, err := NewCreditNote(FormatCreditNoteCode(9), inv, nil, nil)
		assert.Error(t, err)
	})
}
