package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/model"
	"github.com/xZoluGames/InventarioApp-sub001/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Job types understood by the worker pool.
const (
	JobSync     = "sync"
	JobBackup   = "backup"
	JobLowStock = "low_stock"
	JobReceipt  = "receipt"
)

// JobEnqueuer hands work to the background pool. Services only depend on
// this interface so they never import the worker package.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, jobType string, payload any) error
}

// ReceiptJob is the payload of a JobReceipt.
type ReceiptJob struct {
	SaleID string `json:"sale_id"`
}

const timeLayout = time.RFC3339

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// enqueueSync records a mutation for the next push, in the caller's transaction.
func enqueueSync(tx *gorm.DB, repo repository.SyncQueueRepository, entity string, id uuid.UUID, op string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return repo.EnqueueTx(tx, &model.SyncQueueEntry{
		EntityType: entity,
		EntityID:   id,
		Operation:  op,
		Payload:    string(raw),
		Status:     model.SyncStatusPending,
	})
}

func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// businessDate is the calendar day a sale or expense is booked on.
func businessDate(t time.Time) string { return t.UTC().Format("2006-01-02") }

func parseDay(field, v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %q", ErrInvalidDate, field, v)
	}
	return t, nil
}

// checkDays accepts empty bounds.
func checkDays(from, to string) error {
	if from != "" {
		if _, err := parseDay("from", from); err != nil {
			return err
		}
	}
	if to != "" {
		if _, err := parseDay("to", to); err != nil {
			return err
		}
	}
	return nil
}
