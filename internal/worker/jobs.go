package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/repository"
	"github.com/xZoluGames/InventarioApp-sub001/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Attempt ceilings per job type.
const (
	SyncAttempts     = 3
	BackupAttempts   = 2
	LowStockAttempts = 2
	ReceiptAttempts  = 2

	syncedRetention = 30 * 24 * time.Hour
)

// JobServices are the services the background jobs call into.
type JobServices struct {
	Sync      service.SyncService
	SyncQueue repository.SyncQueueRepository
	Backup    service.BackupService
	Inventory service.InventoryService
	Sales     service.SaleService
}

// RegisterJobs binds every job type to its handler on p.
func RegisterJobs(p *Pool, s JobServices) {
	p.Register(service.JobSync, SyncAttempts, syncJob(s))
	p.Register(service.JobBackup, BackupAttempts, backupJob(s))
	p.Register(service.JobLowStock, LowStockAttempts, lowStockJob(s))
	p.Register(service.JobReceipt, ReceiptAttempts, receiptJob(s))
}

// syncJob needs the network: with the remote unreachable the run is skipped
// rather than failed, and the entries stay pending for the next cycle.
func syncJob(s JobServices) Handler {
	return func(ctx context.Context, _ json.RawMessage) error {
		if !s.Sync.Reachable(ctx) {
			log.Info().Msg("sync job skipped: remote unreachable")
			return nil
		}
		res, err := s.Sync.Sync(ctx)
		if err != nil {
			return err
		}
		if s.SyncQueue != nil && res.Pushed > 0 {
			if n, err := s.SyncQueue.PurgeSynced(ctx, time.Now().Add(-syncedRetention)); err != nil {
				log.Warn().Err(err).Msg("sync: purge of old synced entries failed")
			} else if n > 0 {
				log.Debug().Int64("entries", n).Msg("sync: old synced entries purged")
			}
		}
		return nil
	}
}

// backupJob creates a local archive and then offers it to the remote. An
// upload failure does not fail the job; the archive is already on disk.
func backupJob(s JobServices) Handler {
	return func(ctx context.Context, _ json.RawMessage) error {
		created, err := s.Backup.Create(ctx)
		if err != nil {
			return err
		}
		if err := s.Backup.Upload(ctx, created.Name); err != nil {
			if errors.Is(err, service.ErrOffline) {
				log.Info().Str("file", created.Name).Msg("backup kept locally: remote unavailable")
			} else {
				log.Warn().Err(err).Str("file", created.Name).Msg("backup upload failed")
			}
		}
		return nil
	}
}

func lowStockJob(s JobServices) Handler {
	return func(ctx context.Context, _ json.RawMessage) error {
		n, err := s.Inventory.ScanLowStock(ctx)
		if err != nil {
			return err
		}
		log.Info().Int("items", n).Msg("low stock scan finished")
		return nil
	}
}

func receiptJob(s JobServices) Handler {
	return func(ctx context.Context, payload json.RawMessage) error {
		var job service.ReceiptJob
		if err := json.Unmarshal(payload, &job); err != nil {
			return fmt.Errorf("receipt job: %w", err)
		}
		id, err := uuid.Parse(job.SaleID)
		if err != nil {
			return fmt.Errorf("receipt job: sale id: %w", err)
		}
		path, err := s.Sales.GenerateReceipt(ctx, id)
		if err != nil {
			return err
		}
		log.Info().Str("sale_id", job.SaleID).Str("file", path).Msg("receipt generated")
		return nil
	}
}
