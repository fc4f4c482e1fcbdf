// Package scheduler runs the recurring materializer on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/recurring"
	"github.com/go-petr/pet-finance/pkg/lockpkg"
)

//go:generate mockgen -source scheduler.go -destination scheduler_mock.go -package scheduler

// Runner performs one recurring run.
type Runner interface {
	Run(ctx context.Context, now time.Time) (recurring.Summary, error)
}

// Scheduler triggers Runner once per cron tick. Ticks are deduplicated
// across instances with a lock keyed by the UTC day.
type Scheduler struct {
	runner  Runner
	locker  lockpkg.Locker
	spec    string
	lockTTL time.Duration
	now     func() time.Time
}

// New returns Scheduler.
func New(runner Runner, locker lockpkg.Locker, spec string, lockTTL time.Duration) *Scheduler {
	return &Scheduler{
		runner:  runner,
		locker:  locker,
		spec:    spec,
		lockTTL: lockTTL,
		now:     time.Now,
	}
}

// LockKey returns the lock name for the UTC day of t.
func LockKey(t time.Time) string {
	return "recurring:" + t.UTC().Format(time.DateOnly)
}

// Tick runs the materializer unless another instance holds the lock for
// the current day. It reports whether the run happened.
func (s *Scheduler) Tick(ctx context.Context) (bool, error) {
	l := zerolog.Ctx(ctx)
	now := s.now().UTC()

	lock, err := s.locker.Acquire(ctx, LockKey(now), s.lockTTL)
	if errors.Is(err, lockpkg.ErrNotAcquired) {
		l.Info().Str("lock", LockKey(now)).Msg("recurring run already in progress, skipping")
		return false, nil
	}

	if err != nil {
		l.Error().Err(err).Msg("acquiring recurring lock")
		return false, err
	}

	defer func() {
		if err := lock.Release(context.Background()); err != nil {
			l.Warn().Err(err).Msg("releasing recurring lock")
		}
	}()

	if _, err := s.runner.Run(ctx, now); err != nil {
		return true, err
	}

	return true, nil
}

// Run starts the cron loop and blocks until ctx is done. Running jobs are
// waited for before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	l := zerolog.Ctx(ctx)

	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(s.spec, func() {
		if _, err := s.Tick(ctx); err != nil {
			l.Error().Err(err).Msg("recurring run failed")
		}
	})
	if err != nil {
		return err
	}

	l.Info().Str("schedule", s.spec).Msg("recurring scheduler started")
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()

	return nil
}
