// Package testutil opens throwaway SQLite stores for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xZoluGames/InventarioApp-sub001/internal/infra"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"
	"github.com/xZoluGames/InventarioApp-sub001/internal/session"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// NewDB returns a migrated SQLite database in a temporary directory.
// Tests using it must not call t.Parallel: goose keeps global state.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pos.db")
	db, err := infra.OpenSQLite(infra.SQLiteDSN(path))
	require.NoError(t, err)
	t.Cleanup(func() { _ = infra.CloseDatabase(db) })
	require.NoError(t, infra.Migrate(context.Background(), db, infra.DialectSQLite))
	return db
}

// SeedUser inserts an active user whose password is "secret123".
func SeedUser(t testing.TB, db *gorm.DB, username, role string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{Username: username, Name: username, PasswordHash: string(hash), Role: role, Active: true}
	require.NoError(t, db.Create(u).Error)
	return u
}

// SeedProduct inserts an active product with the given price and stock.
func SeedProduct(t testing.TB, db *gorm.DB, name string, price int64, stock int) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:       name,
		Price:      decimal.NewFromInt(price),
		Cost:       decimal.NewFromInt(price / 2),
		Stock:      stock,
		MinStock:   2,
		Unit:       "unit",
		Active:     true,
		SyncStatus: model.SyncStatusPending,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// SessionFor builds the session a logged-in user would carry.
func SessionFor(u *model.User) session.Session {
	return session.Session{UserID: u.ID, Username: u.Username, Role: u.Role}
}
