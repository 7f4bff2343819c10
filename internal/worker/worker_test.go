package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/metrics"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"
	"github.com/xZoluGames/InventarioApp-sub001/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedNote struct{ channel, title, message string }

type fakeNotifier struct {
	mu    sync.Mutex
	notes []recordedNote
}

func (n *fakeNotifier) Notify(_ context.Context, channel, title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, recordedNote{channel, title, message})
}

func TestMemoryQueue_PushPop(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx := context.Background()

	require.NoError(t, NewDispatcher(q).Enqueue(ctx, service.JobReceipt, service.ReceiptJob{SaleID: "abc"}))
	assert.ErrorIs(t, q.Push(ctx, Job{Type: "x"}), ErrQueueFull)

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	job, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, service.JobReceipt, job.Type)
	assert.NotEmpty(t, job.ID)
	assert.JSONEq(t, `{"sale_id":"abc"}`, string(job.Payload))

	job, err = q.Pop(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestWithRetry_StopsOnSuccess(t *testing.T) {
	var calls []int
	err := withRetry(context.Background(), 3, time.Millisecond, func(attempt int) error {
		calls = append(calls, attempt)
		if attempt < 2 {
			return errors.New("boom")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, calls)
}

func TestWithRetry_ReturnsLastError(t *testing.T) {
	n := 0
	err := withRetry(context.Background(), 2, time.Millisecond, func(int) error {
		n++
		return errors.New("still down")
	})
	assert.EqualError(t, err, "still down")
	assert.Equal(t, 2, n)
}

func TestWithRetry_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	err := withRetry(ctx, 3, time.Hour, func(int) error {
		cancel()
		return errors.New("boom")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func newTestPool(notifier Notifier) (*Pool, *MemoryQueue, *metrics.JobMetrics) {
	q := NewMemoryQueue(8)
	m := metrics.NewJobMetrics(prometheus.NewRegistry())
	return NewPool(PoolConfig{Queue: q, Metrics: m, Notifier: notifier, Size: 1, BaseDelay: time.Millisecond}), q, m
}

func TestPool_FailedJobIsDeadLettered(t *testing.T) {
	notes := &fakeNotifier{}
	p, _, _ := newTestPool(notes)
	var attempts atomic.Int32
	p.Register(service.JobSync, 3, func(context.Context, json.RawMessage) error {
		attempts.Add(1)
		return errors.New("remote down")
	})

	err := p.process(context.Background(), Job{ID: "j1", Type: service.JobSync, Payload: json.RawMessage(`{}`)})
	assert.Error(t, err)
	assert.EqualValues(t, 3, attempts.Load())

	dead, err := p.DeadLetters().List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, "j1", dead[0].JobID)
	assert.Equal(t, 3, dead[0].Attempts)
	assert.Equal(t, "remote down", dead[0].Reason)

	require.Len(t, notes.notes, 1)
	assert.Equal(t, model.ChannelSyncStatus, notes.notes[0].channel)
}

func TestPool_UnknownJobType(t *testing.T) {
	p, _, _ := newTestPool(nil)
	err := p.process(context.Background(), Job{ID: "j2", Type: "nope"})
	assert.Error(t, err)
	n, _ := p.DeadLetters().Len(context.Background())
	assert.EqualValues(t, 1, n)
}

func TestPool_ConsumesQueue(t *testing.T) {
	p, q, _ := newTestPool(nil)
	done := make(chan string, 1)
	p.Register(service.JobLowStock, 2, func(_ context.Context, payload json.RawMessage) error {
		done <- string(payload)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	require.NoError(t, NewDispatcher(q).Enqueue(ctx, service.JobLowStock, map[string]int{"n": 1}))

	select {
	case got := <-done:
		assert.JSONEq(t, `{"n":1}`, got)
	case <-time.After(2 * time.Second):
		t.Fatal("job not processed")
	}
	cancel()
	p.Wait()
}

func TestMemoryDLQ_KeepsNewest(t *testing.T) {
	d := NewMemoryDLQ()
	ctx := context.Background()
	for i := 0; i < memoryDLQLimit+5; i++ {
		require.NoError(t, d.Add(ctx, DLQEntry{JobID: string(rune('a' + i%26)), Attempts: i}))
	}
	n, _ := d.Len(ctx)
	assert.EqualValues(t, memoryDLQLimit, n)

	latest, err := d.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, memoryDLQLimit+4, latest[0].Attempts)
	assert.Equal(t, memoryDLQLimit+3, latest[1].Attempts)
}

type fakeEnqueuer struct {
	mu   sync.Mutex
	jobs []string
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, jobType string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, jobType)
	return nil
}

func (f *fakeEnqueuer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs)
}

type denyLock struct{}

func (denyLock) Acquire(context.Context, string, time.Duration) (bool, error) { return false, nil }

func TestScheduler_EnqueuesOnTick(t *testing.T) {
	enq := &fakeEnqueuer{}
	s := NewScheduler(enq, nil,
		Schedule{Job: service.JobLowStock, Interval: 10 * time.Millisecond},
		Schedule{Job: service.JobBackup, Interval: 0},
	)
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	require.Eventually(t, func() bool { return enq.count() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	s.Wait()

	enq.mu.Lock()
	defer enq.mu.Unlock()
	assert.NotContains(t, enq.jobs, service.JobBackup)
}

func TestScheduler_LockHeldElsewhere(t *testing.T) {
	enq := &fakeEnqueuer{}
	s := NewScheduler(enq, denyLock{}, Schedule{Job: service.JobSync, Interval: time.Minute})
	s.tick(context.Background(), s.schedules[0])
	assert.Zero(t, enq.count())
}
