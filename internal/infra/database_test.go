package infra

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite_MigratesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos.db")
	db, err := OpenSQLite(SQLiteDSN(path))
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDatabase(db) })

	require.NoError(t, Migrate(context.Background(), db, DialectSQLite))

	for _, table := range []string{
		"products", "product_variants", "categories", "suppliers", "cart_items",
		"sales", "sale_items", "stock_movements", "daily_cash_summaries",
		"expenses", "customers", "users", "sync_queue", "settings", "notifications",
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	var taxRate string
	require.NoError(t, db.Raw("SELECT value FROM settings WHERE name = ?", "tax_rate").Scan(&taxRate).Error)
	assert.Equal(t, "0", taxRate)

	// Running again is a no-op.
	require.NoError(t, Migrate(context.Background(), db, DialectSQLite))
}

func TestCheckpoint_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos.db")
	db, err := OpenSQLite(SQLiteDSN(path))
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDatabase(db) })
	require.NoError(t, Migrate(context.Background(), db, DialectSQLite))

	assert.NoError(t, Checkpoint(context.Background(), db))
	assert.FileExists(t, path)
}
