package persistence

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/backoffice/backend/internal/domain/billing"
	"github.com/backoffice/backend/internal/domain/catalog"
	"github.com/backoffice/backend/internal/domain/currency"
	"github.com/backoffice/backend/internal/domain/inventory"
	"github.com/backoffice/backend/internal/domain/partner"
	"github.com/backoffice/backend/internal/domain/treasury"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory SQLite database and migrates the
// full model set. Error translation is enabled so unique violations surface
// as gorm.ErrDuplicatedKey, matching the behavior the repositories rely on.
var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps the shared-cache memory database alive
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&catalog.Product{},
		&partner.Partner{},
		&partner.Branch{},
		&partner.Warehouse{},
		&currency.Currency{},
		&currency.ExchangeRate{},
		&inventory.StockLine{},
		&inventory.StockBatch{},
		&inventory.StockMove{},
		&inventory.StockMoveLine{},
		&billing.Invoice{},
		&billing.InvoiceLine{},
		&billing.Order{},
		&billing.OrderLine{},
		&billing.CreditNote{},
		&billing.CreditNoteLine{},
		&treasury.BankAccount{},
		&treasury.Payment{},
		&treasury.PaymentAllocation{},
	))

	return db
}
