// Package dispatcher delivers transaction change events from the outbox to
// the balance keeper, at least once.
package dispatcher

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/domain"
)

// Repo provides access to the outbox.
//
//go:generate mockgen -source dispatcher.go -destination dispatcher_mock.go -package dispatcher
type Repo interface {
	ListPending(ctx context.Context, maxAttempts, limit int) ([]domain.TransactionEvent, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) (int, error)
}

// Handler applies a change.
type Handler interface {
	Handle(ctx context.Context, change domain.TransactionChange) error
}

// Config controls polling.
type Config struct {
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
}

// Config errors.
var (
	ErrInvalidInterval    = errors.New("dispatch interval must be positive")
	ErrInvalidBatchSize   = errors.New("dispatch batch size must be positive")
	ErrInvalidMaxAttempts = errors.New("event max attempts must be positive")
)

func (c Config) validatePoll() error {
	switch {
	case c.BatchSize <= 0:
		return ErrInvalidBatchSize
	case c.MaxAttempts <= 0:
		return ErrInvalidMaxAttempts
	}

	return nil
}

// Validate reports the first setting that would stop Run from delivering.
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return ErrInvalidInterval
	}

	return c.validatePoll()
}

// Dispatcher polls the outbox and hands pending events to the handler.
type Dispatcher struct {
	repo    Repo
	handler Handler
	config  Config
}

// New returns a Dispatcher.
func New(repo Repo, handler Handler, config Config) *Dispatcher {
	return &Dispatcher{
		repo:    repo,
		handler: handler,
		config:  config,
	}
}

// Poll delivers one batch of pending events and returns how many were
// delivered. A failed event stays pending until it runs out of attempts.
func (d *Dispatcher) Poll(ctx context.Context) (int, error) {
	l := zerolog.Ctx(ctx)

	if err := d.config.validatePoll(); err != nil {
		return 0, err
	}

	events, err := d.repo.ListPending(ctx, d.config.MaxAttempts, d.config.BatchSize)
	if err != nil {
		return 0, err
	}

	delivered := 0

	for _, e := range events {
		el := l.With().
			Stringer("event_id", e.EventID).
			Stringer("transaction_id", e.TransactionID).
			Int64("version", e.Version).
			Logger()

		if err := d.handler.Handle(el.WithContext(ctx), e.TransactionChange); err != nil {
			attempts, markErr := d.repo.MarkFailed(ctx, e.EventID, err.Error())
			if markErr != nil {
				el.Error().Err(markErr).Msg("recording failed delivery")
				continue
			}

			if attempts >= d.config.MaxAttempts {
				el.Error().Err(err).Int("attempts", attempts).Msg("event parked after too many attempts")
			} else {
				el.Warn().Err(err).Int("attempts", attempts).Msg("event delivery failed, will retry")
			}

			continue
		}

		// The handler is idempotent, so a lost acknowledgement only causes a
		// harmless redelivery.
		if err := d.repo.MarkDelivered(ctx, e.EventID); err != nil {
			el.Error().Err(err).Msg("acknowledging event")
			continue
		}

		delivered++
	}

	return delivered, nil
}

// Run polls the outbox every Interval until ctx is cancelled. A full batch
// is followed immediately by another poll.
func (d *Dispatcher) Run(ctx context.Context) error {
	l := zerolog.Ctx(ctx)

	if err := d.config.Validate(); err != nil {
		return err
	}

	l.Info().Dur("interval", d.config.Interval).Int("batch_size", d.config.BatchSize).Msg("dispatcher started")

	ticker := time.NewTicker(d.config.Interval)
	defer ticker.Stop()

	for {
		n, err := d.Poll(ctx)
		if err != nil {
			l.Error().Err(err).Msg("polling outbox")
		}

		if err == nil && n > 0 && n == d.config.BatchSize && ctx.Err() == nil {
			continue
		}

		select {
		case <-ctx.Done():
			l.Info().Msg("dispatcher stopped")
			return nil
		case <-ticker.C:
		}
	}
}
