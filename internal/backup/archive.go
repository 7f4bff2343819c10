// Package backup writes, validates and unpacks the zip archives that hold a
// copy of the local store and the preference files.
package backup

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	FormatVersion = 1

	EntryDatabase = "pos.db"
	EntryWAL      = "pos.db-wal"
	EntrySHM      = "pos.db-shm"
	EntryInfo     = "backup_info.json"
	prefsPrefix   = "prefs/"

	namePrefix = "backup_"
	nameLayout = "20060102_150405"
)

var ErrInvalidBackup = errors.New("invalid backup archive")

// Info is stored as backup_info.json inside every archive.
type Info struct {
	Version    int    `json:"version"`
	Timestamp  int64  `json:"timestamp"`
	Date       string `json:"date"`
	AppVersion string `json:"app_version"`
}

// Sources names the files that go into an archive.
type Sources struct {
	DBPath    string   // main database file; -wal and -shm are picked up when present
	PrefFiles []string // JSON preference files
}

// File describes an archive on disk.
type File struct {
	Name      string
	Path      string
	Size      int64
	CreatedAt time.Time
}

func FileName(at time.Time) string {
	return namePrefix + at.UTC().Format(nameLayout) + ".zip"
}

// Create writes a new archive into dir and returns its path. The caller must
// checkpoint the WAL first so the main file is consistent on its own.
func Create(dir string, src Sources, appVersion string, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("backup: create dir: %w", err)
	}
	path := filepath.Join(dir, FileName(at))
	tmp := path + ".tmp"

	if err := writeArchive(tmp, src, Info{
		Version:    FormatVersion,
		Timestamp:  at.UnixMilli(),
		Date:       at.UTC().Format(time.RFC3339),
		AppVersion: appVersion,
	}); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("backup: finalize: %w", err)
	}
	return path, nil
}

func writeArchive(path string, src Sources, info Info) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("backup: create archive: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	zw := zip.NewWriter(f)
	if err := addFile(zw, EntryDatabase, src.DBPath, true); err != nil {
		return err
	}
	if err := addFile(zw, EntryWAL, src.DBPath+"-wal", false); err != nil {
		return err
	}
	if err := addFile(zw, EntrySHM, src.DBPath+"-shm", false); err != nil {
		return err
	}
	for _, p := range src.PrefFiles {
		if err := addFile(zw, prefsPrefix+filepath.Base(p), p, false); err != nil {
			return err
		}
	}

	w, err := zw.Create(EntryInfo)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(w).Encode(info); err != nil {
		return err
	}
	return zw.Close()
}

func addFile(zw *zip.Writer, name, path string, required bool) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("backup: open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("backup: copy %s: %w", name, err)
	}
	return nil
}

// Validate checks that path is a readable archive with a database entry and
// parseable metadata.
func Validate(path string) (*Info, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	defer zr.Close()

	var hasDB bool
	var info *Info
	for _, f := range zr.File {
		switch f.Name {
		case EntryDatabase:
			hasDB = f.UncompressedSize64 > 0
		case EntryInfo:
			info, err = readInfo(f)
			if err != nil {
				return nil, fmt.Errorf("%w: metadata: %v", ErrInvalidBackup, err)
			}
		}
	}
	if !hasDB {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidBackup, EntryDatabase)
	}
	if info == nil {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidBackup, EntryInfo)
	}
	if info.Version < 1 || info.Version > FormatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidBackup, info.Version)
	}
	return info, nil
}

func readInfo(f *zip.File) (*Info, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var info Info
	if err := json.NewDecoder(rc).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Extract unpacks the archive into dest. Entries that would land outside
// dest are rejected.
func Extract(path, dest string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	defer zr.Close()

	root := filepath.Clean(dest) + string(os.PathSeparator)
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		target := filepath.Join(dest, f.Name)
		if !strings.HasPrefix(target, root) {
			return fmt.Errorf("%w: illegal entry %q", ErrInvalidBackup, f.Name)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// List returns the archives in dir, newest first.
func List(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []File
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, namePrefix) || !strings.HasSuffix(name, ".zip") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		created, err := time.Parse(nameLayout, strings.TrimSuffix(strings.TrimPrefix(name, namePrefix), ".zip"))
		if err != nil {
			created = info.ModTime()
		}
		out = append(out, File{Name: name, Path: filepath.Join(dir, name), Size: info.Size(), CreatedAt: created})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

// Prune keeps the newest keep archives and removes the rest.
func Prune(dir string, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	files, err := List(dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, f := range files[min(keep, len(files)):] {
		if err := os.Remove(f.Path); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
