package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/metrics"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"
	"github.com/xZoluGames/InventarioApp-sub001/internal/service"

	"github.com/rs/zerolog/log"
)

const popTimeout = 5 * time.Second

// Handler runs one job. Returning an error counts a failed attempt.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Notifier receives a message when a job is dead-lettered.
// service.NotificationService satisfies it.
type Notifier interface {
	Notify(ctx context.Context, channel, title, message string)
}

type PoolConfig struct {
	Queue       Queue
	DeadLetters DeadLetters
	Metrics     *metrics.JobMetrics
	Notifier    Notifier
	Size        int
	// BaseDelay is the wait before the second attempt; it doubles after.
	BaseDelay time.Duration
}

type registration struct {
	attempts int
	handler  Handler
}

// Pool runs Size goroutines consuming the queue. Each job type is
// registered with its own attempt ceiling.
type Pool struct {
	cfg      PoolConfig
	handlers map[string]registration
	wg       sync.WaitGroup
}

func NewPool(cfg PoolConfig) *Pool {
	if cfg.Size <= 0 {
		cfg.Size = 1
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.DeadLetters == nil {
		cfg.DeadLetters = NewMemoryDLQ()
	}
	return &Pool{cfg: cfg, handlers: map[string]registration{}}
}

// Register must be called before Start.
func (p *Pool) Register(jobType string, attempts int, h Handler) {
	if attempts <= 0 {
		attempts = 1
	}
	p.handlers[jobType] = registration{attempts: attempts, handler: h}
}

func (p *Pool) DeadLetters() DeadLetters { return p.cfg.DeadLetters }

// Start launches the workers. Each one blocks on the queue with a timeout
// so it notices ctx cancellation.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.cfg.Size; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	log.Info().Int("workers", p.cfg.Size).Str("queue", p.cfg.Queue.Name()).Msg("worker pool started")
}

// Wait blocks until every worker has returned after ctx was cancelled.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		if ctx.Err() != nil {
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		}
		job, err := p.cfg.Queue.Pop(ctx, popTimeout)
		if err != nil {
			if ctx.Err() == nil {
				log.Error().Err(err).Int("worker", id).Msg("worker: dequeue failed")
				time.Sleep(time.Second)
			}
			continue
		}
		if job == nil {
			continue
		}
		_ = p.process(ctx, *job)
	}
}

// process runs a job through its retries. A job that fails its last attempt
// goes to the dead-letter list and raises a notification.
func (p *Pool) process(ctx context.Context, job Job) error {
	reg, ok := p.handlers[job.Type]
	if !ok {
		err := fmt.Errorf("no handler for job type %q", job.Type)
		p.deadLetter(ctx, job, err, 0)
		return err
	}

	start := time.Now()
	err := withRetry(ctx, reg.attempts, p.cfg.BaseDelay, func(attempt int) error {
		log.Info().Str("job", job.Type).Str("job_id", job.ID).Int("attempt", attempt).Msg("job start")
		err := reg.handler(ctx, job.Payload)
		if err != nil {
			p.cfg.Metrics.IncFailure(job.Type)
			log.Warn().Err(err).Str("job", job.Type).Str("job_id", job.ID).
				Int("attempt", attempt).Int("max_attempts", reg.attempts).Msg("job attempt failed")
		}
		return err
	})
	duration := time.Since(start)
	p.cfg.Metrics.ObserveDuration(job.Type, duration)

	if err != nil {
		p.deadLetter(ctx, job, err, reg.attempts)
		return err
	}
	p.cfg.Metrics.IncSuccess(job.Type)
	log.Info().Str("job", job.Type).Str("job_id", job.ID).Dur("duration", duration).Msg("job finished")
	return nil
}

func (p *Pool) deadLetter(ctx context.Context, job Job, cause error, attempts int) {
	entry := DLQEntry{
		OriginalQueue: p.cfg.Queue.Name(),
		JobID:         job.ID,
		JobType:       job.Type,
		Payload:       job.Payload,
		Reason:        cause.Error(),
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      attempts,
	}
	// The job context may already be cancelled on shutdown.
	bg := context.WithoutCancel(ctx)
	if err := p.cfg.DeadLetters.Add(bg, entry); err != nil {
		log.Error().Err(err).Str("job", job.Type).Msg("dlq: failed to store entry")
	}
	p.cfg.Metrics.IncDeadLetter(job.Type)
	log.Error().
		Str("queue", entry.OriginalQueue).
		Str("job", job.Type).
		Str("reason", entry.Reason).
		Int("attempts", attempts).
		Msg("dlq: job moved to dead letter queue")

	if p.cfg.Notifier != nil {
		channel := model.ChannelGeneral
		if job.Type == service.JobSync {
			channel = model.ChannelSyncStatus
		}
		p.cfg.Notifier.Notify(bg, channel, "Background job failed",
			fmt.Sprintf("%s job failed after %d attempt(s): %s", job.Type, attempts, entry.Reason))
	}
}
