package repository

import (
	"context"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncQueueRepository stores local mutations until the remote service
// acknowledges them. Entries move pending -> synced, or pending -> failed
// once their retry count reaches the ceiling.
type SyncQueueRepository interface {
	EnqueueTx(tx *gorm.DB, e *model.SyncQueueEntry) error
	ListPending(ctx context.Context, limit int) ([]model.SyncQueueEntry, error)
	MarkSynced(ctx context.Context, ids []uuid.UUID, at time.Time) error
	MarkFailedAttempt(ctx context.Context, id uuid.UUID, msg string, maxRetries int) error
	Counts(ctx context.Context) (pending, failed int64, err error)
	ResetFailed(ctx context.Context) (int64, error)
	PurgeSynced(ctx context.Context, before time.Time) (int64, error)
}

type syncQueueRepo struct{ db *gorm.DB }

func NewSyncQueueRepository(db *gorm.DB) SyncQueueRepository { return &syncQueueRepo{db: db} }

func (r *syncQueueRepo) EnqueueTx(tx *gorm.DB, e *model.SyncQueueEntry) error {
	if e.Status == "" {
		e.Status = model.SyncStatusPending
	}
	return tx.Create(e).Error
}

func (r *syncQueueRepo) ListPending(ctx context.Context, limit int) ([]model.SyncQueueEntry, error) {
	var entries []model.SyncQueueEntry
	err := r.db.WithContext(ctx).
		Where("status = ?", model.SyncStatusPending).
		Order("created_at ASC").Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *syncQueueRepo) MarkSynced(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.SyncQueueEntry{}).Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"status":     model.SyncStatusSynced,
			"synced_at":  at,
			"last_error": nil,
		}).Error
}

// MarkFailedAttempt counts one failed push. The entry stays pending until
// retry_count reaches maxRetries, then it is parked as failed.
func (r *syncQueueRepo) MarkFailedAttempt(ctx context.Context, id uuid.UUID, msg string, maxRetries int) error {
	return r.db.WithContext(ctx).Model(&model.SyncQueueEntry{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"retry_count": gorm.Expr("retry_count + 1"),
			"last_error":  msg,
			"status": gorm.Expr("CASE WHEN retry_count + 1 >= ? THEN ? ELSE ? END",
				maxRetries, model.SyncStatusFailed, model.SyncStatusPending),
		}).Error
}

func (r *syncQueueRepo) Counts(ctx context.Context) (int64, int64, error) {
	type row struct {
		Status string
		N      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&model.SyncQueueEntry{}).
		Select("status, COUNT(*) AS n").
		Where("status IN ?", []string{model.SyncStatusPending, model.SyncStatusFailed}).
		Group("status").Scan(&rows).Error
	if err != nil {
		return 0, 0, err
	}
	var pending, failed int64
	for _, r := range rows {
		switch r.Status {
		case model.SyncStatusPending:
			pending = r.N
		case model.SyncStatusFailed:
			failed = r.N
		}
	}
	return pending, failed, nil
}

// ResetFailed puts every failed entry back in the queue with a fresh retry budget.
func (r *syncQueueRepo) ResetFailed(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.SyncQueueEntry{}).
		Where("status = ?", model.SyncStatusFailed).
		Updates(map[string]interface{}{"status": model.SyncStatusPending, "retry_count": 0})
	return res.RowsAffected, res.Error
}

func (r *syncQueueRepo) PurgeSynced(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND synced_at < ?", model.SyncStatusSynced, before).
		Delete(&model.SyncQueueEntry{})
	return res.RowsAffected, res.Error
}
