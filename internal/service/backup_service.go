package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/backup"
	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/infra"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// BackupUploader sends an archive to the remote service. *remote.Client satisfies it.
type BackupUploader interface {
	Configured() bool
	UploadBackup(ctx context.Context, path string) error
}

type BackupService interface {
	Create(ctx context.Context) (*dto.BackupResponse, error)
	List(ctx context.Context) ([]dto.BackupResponse, error)
	Path(name string) (string, error)
	Delete(ctx context.Context, name string) error
	Restore(ctx context.Context, name string) error
	Upload(ctx context.Context, name string) error

	// Server side of /v1/backups.
	Receive(ctx context.Context, name string, r io.Reader) (*dto.BackupResponse, error)
	ListReceived(ctx context.Context) ([]dto.BackupResponse, error)
	ReceivedPath(name string) (string, error)
}

type BackupOptions struct {
	Dir        string
	Keep       int
	AppVersion string
	DBPath     string
	SQLite     bool
	// CloseStore releases the database before its files are replaced.
	CloseStore func() error
	// Restart asks the process to shut down so the supervisor starts it
	// again on the restored store.
	Restart func()
}

type backupService struct {
	db       *gorm.DB
	prefs    *infra.PrefStore
	uploader BackupUploader
	opts     BackupOptions
	now      func() time.Time

	mu sync.Mutex // one archive operation at a time
}

func NewBackupService(db *gorm.DB, prefs *infra.PrefStore, uploader BackupUploader, opts BackupOptions) BackupService {
	return &backupService{db: db, prefs: prefs, uploader: uploader, opts: opts, now: time.Now}
}

func fileToResponse(f backup.File) dto.BackupResponse {
	return dto.BackupResponse{Name: f.Name, Size: f.Size, CreatedAt: formatTime(f.CreatedAt)}
}

func (s *backupService) receivedDir() string { return filepath.Join(s.opts.Dir, "received") }

func (s *backupService) Create(ctx context.Context) (*dto.BackupResponse, error) {
	if !s.opts.SQLite {
		return nil, fmt.Errorf("%w: backups need the sqlite store", ErrUnsupported)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := infra.Checkpoint(ctx, s.db); err != nil {
		return nil, fmt.Errorf("backup: checkpoint: %w", err)
	}
	prefFiles, err := s.prefs.Files()
	if err != nil {
		return nil, err
	}
	at := s.now()
	path, err := backup.Create(s.opts.Dir, backup.Sources{DBPath: s.opts.DBPath, PrefFiles: prefFiles}, s.opts.AppVersion, at)
	if err != nil {
		return nil, err
	}
	if removed, err := backup.Prune(s.opts.Dir, s.opts.Keep); err != nil {
		log.Warn().Err(err).Msg("backup prune failed")
	} else if removed > 0 {
		log.Info().Int("removed", removed).Msg("old backups pruned")
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	log.Info().Str("file", filepath.Base(path)).Int64("bytes", info.Size()).Msg("backup created")
	return &dto.BackupResponse{
		Name:       filepath.Base(path),
		Size:       info.Size(),
		CreatedAt:  formatTime(at),
		AppVersion: s.opts.AppVersion,
	}, nil
}

func (s *backupService) List(_ context.Context) ([]dto.BackupResponse, error) {
	return listArchives(s.opts.Dir)
}

func listArchives(dir string) ([]dto.BackupResponse, error) {
	files, err := backup.List(dir)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BackupResponse, len(files))
	for i, f := range files {
		out[i] = fileToResponse(f)
	}
	return out, nil
}

func (s *backupService) Path(name string) (string, error) {
	return safeFile(s.opts.Dir, name)
}

func (s *backupService) Delete(_ context.Context, name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return os.Remove(path)
}

// Restore replaces the store and preference files with the archive content.
// An invalid archive leaves everything untouched.
func (s *backupService) Restore(_ context.Context, name string) error {
	if !s.opts.SQLite {
		return fmt.Errorf("%w: restore needs the sqlite store", ErrUnsupported)
	}
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := backup.Validate(path)
	if err != nil {
		return err
	}

	tmp, err := os.MkdirTemp(filepath.Dir(s.opts.DBPath), "restore-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)
	if err := backup.Extract(path, tmp); err != nil {
		return err
	}

	if s.opts.CloseStore != nil {
		if err := s.opts.CloseStore(); err != nil {
			return fmt.Errorf("restore: close store: %w", err)
		}
	}

	// The store is closed from here on, so the process restarts whether or
	// not every file made it.
	err = s.swapIn(tmp)
	if err != nil {
		log.Error().Err(err).Str("file", name).Msg("restore incomplete, restarting")
	} else {
		log.Warn().Str("file", name).Str("backup_date", info.Date).Msg("store restored from backup, restarting")
	}
	if s.opts.Restart != nil {
		s.opts.Restart()
	}
	return err
}

// swapIn moves the extracted database, its sidecars and the preference
// files over the live ones.
func (s *backupService) swapIn(tmp string) error {
	if err := replaceFile(filepath.Join(tmp, backup.EntryDatabase), s.opts.DBPath); err != nil {
		return fmt.Errorf("restore: database: %w", err)
	}
	for _, side := range []string{backup.EntryWAL, backup.EntrySHM} {
		dst := s.opts.DBPath + strings.TrimPrefix(side, backup.EntryDatabase)
		src := filepath.Join(tmp, side)
		if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
			_ = os.Remove(dst)
			continue
		}
		if err := replaceFile(src, dst); err != nil {
			return fmt.Errorf("restore: %s: %w", side, err)
		}
	}

	prefs, _ := filepath.Glob(filepath.Join(tmp, "prefs", "*.json"))
	for _, p := range prefs {
		if err := replaceFile(p, filepath.Join(s.prefs.Dir(), filepath.Base(p))); err != nil {
			return fmt.Errorf("restore: prefs: %w", err)
		}
	}
	return nil
}

// replaceFile copies src over dst through a temp file in dst's directory.
func replaceFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".restore-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

func (s *backupService) Upload(ctx context.Context, name string) error {
	if s.uploader == nil || !s.uploader.Configured() {
		return ErrOffline
	}
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := s.uploader.UploadBackup(ctx, path); err != nil {
		return fmt.Errorf("%w: %v", ErrOffline, err)
	}
	log.Info().Str("file", name).Msg("backup uploaded")
	return nil
}

// ── Server side ────────────────────────────────────────────────────────────

// Receive stores an uploaded archive after validating it.
func (s *backupService) Receive(_ context.Context, name string, r io.Reader) (*dto.BackupResponse, error) {
	name = filepath.Base(name)
	if !strings.HasPrefix(name, "backup_") || !strings.HasSuffix(name, ".zip") {
		return nil, fmt.Errorf("%w: unexpected file name %q", ErrInvalidBackup, name)
	}
	dir := s.receivedDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())

	size, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	info, err := backup.Validate(tmp.Name())
	if err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		return nil, err
	}
	log.Info().Str("file", name).Int64("bytes", size).Msg("backup received")
	return &dto.BackupResponse{Name: name, Size: size, CreatedAt: info.Date, AppVersion: info.AppVersion}, nil
}

func (s *backupService) ListReceived(_ context.Context) ([]dto.BackupResponse, error) {
	return listArchives(s.receivedDir())
}

func (s *backupService) ReceivedPath(name string) (string, error) {
	return safeFile(s.receivedDir(), name)
}
