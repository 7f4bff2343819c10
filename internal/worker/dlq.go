package worker

// Jobs that fail their last attempt are kept here for inspection.
// With Redis it is a list per source queue (dlq:{queue}); without it a
// bounded in-memory ring.

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DLQPrefix      = "dlq:"
	memoryDLQLimit = 100
)

// DLQEntry wraps a failed job with metadata for debugging.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobID         string          `json:"job_id"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"` // ISO 8601
	Attempts      int             `json:"attempts"`
}

type DeadLetters interface {
	Add(ctx context.Context, e DLQEntry) error
	// List returns the newest entries first.
	List(ctx context.Context, limit int) ([]DLQEntry, error)
	Len(ctx context.Context) (int64, error)
}

type RedisDLQ struct {
	rdb *redis.Client
	key string
}

func NewRedisDLQ(rdb *redis.Client, queue string) *RedisDLQ {
	return &RedisDLQ{rdb: rdb, key: DLQPrefix + queue}
}

func (d *RedisDLQ) Add(ctx context.Context, e DLQEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, d.key, data).Err()
}

func (d *RedisDLQ) List(ctx context.Context, limit int) ([]DLQEntry, error) {
	raw, err := d.rdb.LRange(ctx, d.key, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DLQEntry, 0, len(raw))
	for _, r := range raw {
		var e DLQEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			log.Warn().Err(err).Str("dlq_key", d.key).Msg("dlq: skipping unreadable entry")
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (d *RedisDLQ) Len(ctx context.Context) (int64, error) {
	return d.rdb.LLen(ctx, d.key).Result()
}

type MemoryDLQ struct {
	mu      sync.Mutex
	entries []DLQEntry
}

func NewMemoryDLQ() *MemoryDLQ { return &MemoryDLQ{} }

func (d *MemoryDLQ) Add(_ context.Context, e DLQEntry) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = append(d.entries, e)
	if len(d.entries) > memoryDLQLimit {
		d.entries = d.entries[len(d.entries)-memoryDLQLimit:]
	}
	return nil
}

func (d *MemoryDLQ) List(_ context.Context, limit int) ([]DLQEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]DLQEntry, 0, limit)
	for i := len(d.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, d.entries[i])
	}
	return out, nil
}

func (d *MemoryDLQ) Len(context.Context) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.entries)), nil
}
