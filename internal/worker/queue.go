package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// QueueJobs is the Redis list the pool consumes.
const QueueJobs = "jobs:pos"

var ErrQueueFull = errors.New("worker: job queue is full")

// Job is the generic envelope for all async tasks.
type Job struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt string          `json:"enqueued_at"`
}

// Queue moves jobs from producers to the pool. Pop returns a nil job when
// timeout elapses with nothing to do.
type Queue interface {
	Name() string
	Push(ctx context.Context, job Job) error
	Pop(ctx context.Context, timeout time.Duration) (*Job, error)
	Len(ctx context.Context) (int64, error)
}

// ── Redis ──────────────────────────────────────────────────────────────────

// RedisQueue is a Redis list: producers LPUSH, workers BRPOP.
type RedisQueue struct {
	rdb *redis.Client
	key string
}

func NewRedisQueue(rdb *redis.Client, key string) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: key}
}

func (q *RedisQueue) Name() string { return q.key }

func (q *RedisQueue) Push(ctx context.Context, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, q.key, encoded).Err()
}

func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) (*Job, error) {
	result, err := q.rdb.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(result) < 2 {
		return nil, nil
	}
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}

// ── In-process ─────────────────────────────────────────────────────────────

// MemoryQueue is used when no Redis is configured. Jobs do not survive a
// restart; the scheduler re-creates the periodic ones.
type MemoryQueue struct {
	ch chan Job
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 256
	}
	return &MemoryQueue{ch: make(chan Job, capacity)}
}

func (q *MemoryQueue) Name() string { return QueueJobs }

func (q *MemoryQueue) Push(_ context.Context, job Job) error {
	select {
	case q.ch <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Pop(ctx context.Context, timeout time.Duration) (*Job, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, nil
	case job := <-q.ch:
		return &job, nil
	}
}

func (q *MemoryQueue) Len(context.Context) (int64, error) { return int64(len(q.ch)), nil }

// ── Producer ───────────────────────────────────────────────────────────────

// Dispatcher wraps payloads into jobs. It satisfies service.JobEnqueuer.
type Dispatcher struct {
	queue Queue
}

func NewDispatcher(queue Queue) *Dispatcher { return &Dispatcher{queue: queue} }

func (d *Dispatcher) Enqueue(ctx context.Context, jobType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return d.queue.Push(ctx, Job{
		ID:         uuid.NewString(),
		Type:       jobType,
		Payload:    data,
		EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
	})
}
