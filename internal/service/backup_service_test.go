package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/xZoluGames/InventarioApp-sub001/internal/infra"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"
	"github.com/xZoluGames/InventarioApp-sub001/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type backupEnv struct {
	dbPath    string
	db        *gorm.DB
	prefs     *infra.PrefStore
	svc       BackupService
	closed    bool
	restarted bool
}

func newBackupEnv(t *testing.T) *backupEnv {
	t.Helper()
	dir := t.TempDir()
	env := &backupEnv{dbPath: filepath.Join(dir, "pos.db")}

	db, err := infra.OpenSQLite(infra.SQLiteDSN(env.dbPath))
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(context.Background(), db, infra.DialectSQLite))
	env.db = db
	t.Cleanup(func() {
		if !env.closed {
			_ = infra.CloseDatabase(db)
		}
	})

	env.prefs, err = infra.NewPrefStore(filepath.Join(dir, "prefs"))
	require.NoError(t, err)

	env.svc = NewBackupService(db, env.prefs, nil, BackupOptions{
		Dir: filepath.Join(dir, "backups"), Keep: 3, AppVersion: "1.2.0",
		DBPath: env.dbPath, SQLite: true,
		CloseStore: func() error { env.closed = true; return infra.CloseDatabase(db) },
		Restart:    func() { env.restarted = true },
	})
	return env
}

func countProducts(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.Product{}).Count(&n).Error)
	return n
}

func TestBackup_CreateAndRestore(t *testing.T) {
	env := newBackupEnv(t)
	ctx := context.Background()

	testutil.SeedProduct(t, env.db, "Before backup", 100, 1)
	require.NoError(t, env.prefs.Set(infra.PrefsSettings, "theme", "dark"))

	created, err := env.svc.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", created.AppVersion)
	assert.Positive(t, created.Size)

	list, err := env.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.Name, list[0].Name)

	testutil.SeedProduct(t, env.db, "After backup", 100, 1)
	require.NoError(t, env.prefs.Set(infra.PrefsSettings, "theme", "light"))

	require.NoError(t, env.svc.Restore(ctx, created.Name))
	assert.True(t, env.closed)
	assert.True(t, env.restarted)

	reopened, err := infra.OpenSQLite(infra.SQLiteDSN(env.dbPath))
	require.NoError(t, err)
	defer infra.CloseDatabase(reopened)
	assert.EqualValues(t, 1, countProducts(t, reopened))

	theme, ok := env.prefs.Get(infra.PrefsSettings, "theme")
	require.True(t, ok)
	assert.Equal(t, "dark", theme)
}

func TestBackup_RestoreFailureAfterCloseStillRestarts(t *testing.T) {
	env := newBackupEnv(t)
	ctx := context.Background()
	require.NoError(t, env.prefs.Set(infra.PrefsSettings, "theme", "dark"))

	created, err := env.svc.Create(ctx)
	require.NoError(t, err)

	// Once the store is closed, turn the settings file into a non-empty
	// directory so the prefs swap cannot rename over it.
	settings := filepath.Join(env.prefs.Dir(), infra.PrefsSettings+".json")
	env.svc.(*backupService).opts.CloseStore = func() error {
		env.closed = true
		if err := infra.CloseDatabase(env.db); err != nil {
			return err
		}
		if err := os.Remove(settings); err != nil {
			return err
		}
		return os.MkdirAll(filepath.Join(settings, "locked"), 0o755)
	}

	err = env.svc.Restore(ctx, created.Name)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "restore: prefs")
	assert.True(t, env.closed)
	assert.True(t, env.restarted)
}

func TestBackup_InvalidArchiveLeavesStoreUntouched(t *testing.T) {
	env := newBackupEnv(t)
	ctx := context.Background()
	testutil.SeedProduct(t, env.db, "Kept", 100, 1)

	created, err := env.svc.Create(ctx)
	require.NoError(t, err)
	path, err := env.svc.Path(created.Name)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	err = env.svc.Restore(ctx, created.Name)
	assert.ErrorIs(t, err, ErrInvalidBackup)
	assert.False(t, env.closed)
	assert.False(t, env.restarted)
	assert.EqualValues(t, 1, countProducts(t, env.db))
}

func TestBackup_PathRejectsTraversal(t *testing.T) {
	env := newBackupEnv(t)
	_, err := env.svc.Path("../pos.db")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, env.svc.Restore(context.Background(), "missing.zip"), ErrNotFound)
}

func TestBackup_UploadOffline(t *testing.T) {
	env := newBackupEnv(t)
	assert.ErrorIs(t, env.svc.Upload(context.Background(), "any.zip"), ErrOffline)
}

func TestBackup_Receive(t *testing.T) {
	device := newBackupEnv(t)
	server := newBackupEnv(t)
	ctx := context.Background()

	created, err := device.svc.Create(ctx)
	require.NoError(t, err)
	path, err := device.svc.Path(created.Name)
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	got, err := server.svc.Receive(ctx, created.Name, bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", got.AppVersion)

	received, err := server.svc.ListReceived(ctx)
	require.NoError(t, err)
	require.Len(t, received, 1)

	_, err = server.svc.Receive(ctx, "backup_bad.zip", bytes.NewReader([]byte("junk")))
	assert.ErrorIs(t, err, ErrInvalidBackup)
	_, err = server.svc.Receive(ctx, "notes.txt", bytes.NewReader(raw))
	assert.ErrorIs(t, err, ErrInvalidBackup)
}
