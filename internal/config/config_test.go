package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATA_DIR", "/var/lib/inventario")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.True(t, cfg.IsSQLite())
	assert.Equal(t, 1500*time.Millisecond, cfg.ScanDebounce)
	assert.Equal(t, 3, cfg.SyncMaxRetries)
	assert.Equal(t, filepath.Join("/var/lib/inventario", "pos.db"), cfg.SQLitePath())
	assert.Equal(t, filepath.Join("/var/lib/inventario", "backups"), cfg.BackupDir)
	assert.Equal(t, filepath.Join("/var/lib/inventario", "prefs"), cfg.PrefsDir())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("SYNC_INTERVAL", "5m")
	t.Setenv("BACKUP_DIR", "/mnt/backups")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.False(t, cfg.IsSQLite())
	assert.Equal(t, 5*time.Minute, cfg.SyncInterval)
	assert.Equal(t, "/mnt/backups", cfg.BackupDir)
}

func TestLoad_SecretsFromEnv(t *testing.T) {
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("NOTIFY_EMAIL", "owner@example.com")
	t.Setenv("REMOTE_USERNAME", "device-1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com", cfg.SMTPHost)
	assert.Equal(t, "owner@example.com", cfg.NotifyEmail)
	assert.Equal(t, "device-1", cfg.RemoteUsername)
}
