package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksync/backend/internal/domain/inventory"
)

func TestGormHistoryRepository_RecentEquivalentExists(t *testing.T) {
	t.Run("reports true when an equivalent entry exists", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormHistoryRepository(gormDB)

		tenantID := uuid.New()
		itemID := uuid.New()
		since := time.Now().Add(-60 * time.Second)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "history_entries" WHERE tenant_id = \$1 AND item_id = \$2 AND new_quantity = \$3 AND source = \$4 AND created_at >= \$5`).
			WithArgs(tenantID, itemID, int64(42), "shopify", since).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.RecentEquivalentExists(context.Background(), tenantID, itemID, 42, "shopify", since)

		require.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports false when no equivalent entry exists", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormHistoryRepository(gormDB)

		tenantID := uuid.New()
		itemID := uuid.New()
		since := time.Now().Add(-60 * time.Second)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "history_entries"`).
			WithArgs(tenantID, itemID, int64(7), "square", since).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.RecentEquivalentExists(context.Background(), tenantID, itemID, 7, "square", since)

		require.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormHistoryRepository_Append(t *testing.T) {
	gormDB, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormHistoryRepository(gormDB)

	mock.ExpectExec(`INSERT INTO "history_entries"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	record, err := inventory.NewInventoryRecord(uuid.New(), "Blue Mug")
	require.NoError(t, err)
	record.SKU = "MUG-BLU"
	record.Quantity = 12
	entry := inventory.NewHistoryEntry(record, 5, inventory.ChangeTypeSync, "shopify")

	require.NoError(t, repo.Append(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}
