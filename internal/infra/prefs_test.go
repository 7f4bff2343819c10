package infra

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefStore_SetGetDelete(t *testing.T) {
	store, err := NewPrefStore(t.TempDir())
	require.NoError(t, err)

	_, ok := store.Get(PrefsSession, PrefRemoteToken)
	assert.False(t, ok)

	require.NoError(t, store.Set(PrefsSession, PrefRemoteToken, "abc"))
	require.NoError(t, store.Set(PrefsSettings, PrefLastSyncAt, "2026-01-02T03:04:05Z"))

	v, ok := store.Get(PrefsSession, PrefRemoteToken)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	files, err := store.Files()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(store.Dir(), "session.json"),
		filepath.Join(store.Dir(), "settings.json"),
	}, files)

	require.NoError(t, store.Delete(PrefsSession, PrefRemoteToken))
	_, ok = store.Get(PrefsSession, PrefRemoteToken)
	assert.False(t, ok)
}

func TestPrefStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	a, err := NewPrefStore(dir)
	require.NoError(t, err)
	require.NoError(t, a.Set(PrefsSettings, PrefRemoteBaseURL, "https://pos.example.com"))

	b, err := NewPrefStore(dir)
	require.NoError(t, err)
	v, ok := b.Get(PrefsSettings, PrefRemoteBaseURL)
	assert.True(t, ok)
	assert.Equal(t, "https://pos.example.com", v)
}

func TestPrefStore_DeviceIDIsStable(t *testing.T) {
	dir := t.TempDir()
	a, err := NewPrefStore(dir)
	require.NoError(t, err)
	id, err := a.DeviceID()
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	b, err := NewPrefStore(dir)
	require.NoError(t, err)
	again, err := b.DeviceID()
	require.NoError(t, err)
	assert.Equal(t, id, again)
}
