package infra

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Preference files. Both live under DATA_DIR/prefs and are copied into
// every backup archive.
const (
	PrefsSession  = "session"
	PrefsSettings = "settings"

	PrefRemoteToken   = "remote_token"
	PrefRemoteBaseURL = "remote_base_url"
	PrefLastSyncAt    = "last_sync_at"
	PrefDeviceID      = "device_id"
)

// PrefStore is a small JSON key/value store, one file per namespace.
// Writes go to a temp file first and are renamed into place.
type PrefStore struct {
	dir string
	mu  sync.Mutex
}

func NewPrefStore(dir string) (*PrefStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("prefs: create dir: %w", err)
	}
	return &PrefStore{dir: dir}, nil
}

// Dir returns the directory holding the preference files.
func (s *PrefStore) Dir() string { return s.dir }

// Get returns the value stored under key in namespace ns.
func (s *PrefStore) Get(ns, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read(ns)
	if err != nil {
		return "", false
	}
	v, ok := values[key]
	return v, ok
}

func (s *PrefStore) Set(ns, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read(ns)
	if err != nil {
		return err
	}
	values[key] = value
	return s.write(ns, values)
}

func (s *PrefStore) Delete(ns, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read(ns)
	if err != nil {
		return err
	}
	delete(values, key)
	return s.write(ns, values)
}

// Files lists the preference files currently on disk.
func (s *PrefStore) Files() ([]string, error) {
	return filepath.Glob(filepath.Join(s.dir, "*.json"))
}

func (s *PrefStore) path(ns string) string {
	return filepath.Join(s.dir, ns+".json")
}

func (s *PrefStore) read(ns string) (map[string]string, error) {
	values := map[string]string{}
	data, err := os.ReadFile(s.path(ns))
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("prefs: read %s: %w", ns, err)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("prefs: decode %s: %w", ns, err)
	}
	return values, nil
}

func (s *PrefStore) write(ns string, values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, ns+".*.tmp")
	if err != nil {
		return fmt.Errorf("prefs: temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path(ns))
}

// DeviceID returns the identifier this installation pushes under, creating
// and storing one on first use.
func (s *PrefStore) DeviceID() (string, error) {
	if id, ok := s.Get(PrefsSettings, PrefDeviceID); ok && id != "" {
		return id, nil
	}
	id := uuid.NewString()
	if err := s.Set(PrefsSettings, PrefDeviceID, id); err != nil {
		return "", err
	}
	return id, nil
}
