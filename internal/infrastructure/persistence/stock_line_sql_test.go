package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newMockStockLineRepo creates a repository over a mocked postgres connection
// to assert the exact SQL shape of the stock delta path.
func newMockStockLineRepo(t *testing.T) (*GormStockLineRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormStockLineRepository(gormDB), mock, mockDB
}

func TestApplyDeltaSQL(t *testing.T) {
	tenantID := uuid.New()
	warehouseID := uuid.New()
	productID := uuid.New()

	t.Run("applies delta through a single guarded update", func(t *testing.T) {
		repo, mock, mockDB := newMockStockLineRepo(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "stock_lines" SET .*quantity \+ .*quantity \+ .* >= 0`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.ApplyDelta(context.Background(), tenantID, warehouseID, productID, nil, decimal.NewFromInt(-4))
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reads back the row when the guard rejects the delta", func(t *testing.T) {
		repo, mock, mockDB := newMockStockLineRepo(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "stock_lines" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "warehouse_id", "product_id", "quantity"}).
			AddRow(uuid.New(), tenantID, warehouseID, productID, "3")
		mock.ExpectQuery(`SELECT .* FROM "stock_lines"`).
			WillReturnRows(rows)

		err := repo.ApplyDelta(context.Background(), tenantID, warehouseID, productID, nil, decimal.NewFromInt(-5))
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects a negative delta when no row exists", func(t *testing.T) {
		repo, mock, mockDB := newMockStockLineRepo(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "stock_lines" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT .* FROM "stock_lines"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		err := repo.ApplyDelta(context.Background(), tenantID, warehouseID, productID, nil, decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
