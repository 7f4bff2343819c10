package worker

// Periodic jobs are not run here: each tick only enqueues the job, so the
// pool applies the same retries, metrics and dead-lettering as on-demand
// triggers from the API.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Enqueuer is satisfied by *Dispatcher.
type Enqueuer interface {
	Enqueue(ctx context.Context, jobType string, payload any) error
}

// Lock coordinates scheduler instances that share a Redis.
type Lock interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// RedisLock implements Lock using SETNX + TTL. The value names the
// instance that took the cycle.
type RedisLock struct {
	rdb    *redis.Client
	prefix string
	owner  string
}

func NewRedisLock(rdb *redis.Client, prefix string) (*RedisLock, error) {
	if rdb == nil {
		return nil, errors.New("redis client required for lock")
	}
	return &RedisLock{rdb: rdb, prefix: prefix, owner: uuid.NewString()}, nil
}

func (l *RedisLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, l.prefix+key, l.owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx: %w", err)
	}
	return ok, nil
}

// Schedule enqueues Job every Interval. A zero interval disables it.
type Schedule struct {
	Job      string
	Interval time.Duration
}

type Scheduler struct {
	enq       Enqueuer
	lock      Lock
	schedules []Schedule
	wg        sync.WaitGroup
}

// NewScheduler accepts a nil lock for single-instance deployments.
func NewScheduler(enq Enqueuer, lock Lock, schedules ...Schedule) *Scheduler {
	return &Scheduler{enq: enq, lock: lock, schedules: schedules}
}

// Start launches one ticker goroutine per schedule.
func (s *Scheduler) Start(ctx context.Context) {
	for _, sc := range s.schedules {
		if sc.Interval <= 0 {
			log.Info().Str("job", sc.Job).Msg("scheduler: job disabled")
			continue
		}
		s.wg.Add(1)
		go s.loop(ctx, sc)
	}
}

func (s *Scheduler) Wait() { s.wg.Wait() }

func (s *Scheduler) loop(ctx context.Context, sc Schedule) {
	defer s.wg.Done()
	ticker := time.NewTicker(sc.Interval)
	defer ticker.Stop()

	log.Info().Str("job", sc.Job).Dur("interval", sc.Interval).Msg("scheduler: started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("job", sc.Job).Msg("scheduler: shutting down")
			return
		case <-ticker.C:
			s.tick(ctx, sc)
		}
	}
}

// tick enqueues one run. The lock is held for most of the interval and not
// released, so other instances skip the same cycle.
func (s *Scheduler) tick(ctx context.Context, sc Schedule) {
	if s.lock != nil {
		ok, err := s.lock.Acquire(ctx, sc.Job, sc.Interval*9/10)
		if err != nil {
			log.Error().Err(err).Str("job", sc.Job).Msg("scheduler: lock acquire failed")
			return
		}
		if !ok {
			log.Debug().Str("job", sc.Job).Msg("scheduler: another instance owns this cycle")
			return
		}
	}
	if err := s.enq.Enqueue(ctx, sc.Job, struct{}{}); err != nil {
		log.Error().Err(err).Str("job", sc.Job).Msg("scheduler: enqueue failed")
	}
}
