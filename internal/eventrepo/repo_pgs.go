// Package eventrepo manages the transaction change outbox and the record of
// changes already applied to balances.
package eventrepo

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/pkg/dbpkg"
	"github.com/go-petr/pet-finance/pkg/errorspkg"
)

// ErrEventNotFound indicates that the outbox event is not found.
var ErrEventNotFound = errors.New("event not found")

// RepoPGS facilitates event repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns event RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// encode returns the JSON image of t, or nil for an absent image so the
// column is stored as NULL.
func encode(t *domain.Transaction) (any, error) {
	if t == nil {
		return nil, nil
	}

	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}

	return string(b), nil
}

func decode(b []byte) (*domain.Transaction, error) {
	if b == nil {
		return nil, nil
	}

	var t domain.Transaction
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, err
	}

	return &t, nil
}

const appendQuery = `
INSERT INTO
    transaction_events (id, owner_id, transaction_id, version, before, after)
VALUES
    ($1, $2, $3, $4, $5, $6)
`

// Append stores the change in the outbox. It must run in the same database
// transaction as the write it describes.
func (r *RepoPGS) Append(ctx context.Context, change domain.TransactionChange) (uuid.UUID, error) {
	l := zerolog.Ctx(ctx)

	before, err := encode(change.Before)
	if err != nil {
		l.Error().Err(err).Send()
		return uuid.Nil, errorspkg.ErrInternal
	}

	after, err := encode(change.After)
	if err != nil {
		l.Error().Err(err).Send()
		return uuid.Nil, errorspkg.ErrInternal
	}

	id := uuid.New()

	_, err = r.db.ExecContext(ctx, appendQuery,
		id, change.OwnerID, change.TransactionID, change.Version, before, after)
	if err != nil {
		l.Error().Err(err).Send()
		return uuid.Nil, errorspkg.ErrInternal
	}

	return id, nil
}

const listPendingQuery = `
SELECT id, owner_id, transaction_id, version, before, after, created_at, attempts, last_error
FROM transaction_events
WHERE delivered_at IS NULL AND attempts < $1
ORDER BY created_at, id
LIMIT $2
`

// ListPending returns undelivered events that still have attempts left,
// oldest first.
func (r *RepoPGS) ListPending(ctx context.Context, maxAttempts, limit int) ([]domain.TransactionEvent, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listPendingQuery, maxAttempts, limit)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.TransactionEvent{}

	for rows.Next() {
		var (
			e             domain.TransactionEvent
			before, after []byte
		)

		err := rows.Scan(
			&e.EventID,
			&e.OwnerID,
			&e.TransactionID,
			&e.Version,
			&before,
			&after,
			&e.CreatedAt,
			&e.Attempts,
			&e.LastError,
		)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		if e.Before, err = decode(before); err != nil {
			l.Error().Err(err).Stringer("event_id", e.EventID).Msg("decoding before image")
			return nil, errorspkg.ErrInternal
		}

		if e.After, err = decode(after); err != nil {
			l.Error().Err(err).Stringer("event_id", e.EventID).Msg("decoding after image")
			return nil, errorspkg.ErrInternal
		}

		items = append(items, e)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const markDeliveredQuery = `
UPDATE transaction_events
SET delivered_at = now(), attempts = attempts + 1, last_error = ''
WHERE id = $1
`

// MarkDelivered records the successful delivery of the event.
func (r *RepoPGS) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, markDeliveredQuery, id)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrEventNotFound
	}

	return nil
}

const markFailedQuery = `
UPDATE transaction_events
SET attempts = attempts + 1, last_error = $2
WHERE id = $1
RETURNING attempts
`

// MarkFailed records a failed delivery attempt and returns the number of
// attempts made so far.
func (r *RepoPGS) MarkFailed(ctx context.Context, id uuid.UUID, reason string) (int, error) {
	l := zerolog.Ctx(ctx)

	var attempts int

	if err := r.db.QueryRowContext(ctx, markFailedQuery, id, reason).Scan(&attempts); err != nil {
		l.Error().Err(err).Send()
		return 0, errorspkg.ErrInternal
	}

	return attempts, nil
}

const recordProcessedQuery = `
INSERT INTO
    processed_events (transaction_id, version, event_id)
VALUES
    ($1, $2, $3)
ON CONFLICT (transaction_id, version) DO NOTHING
`

// RecordProcessed marks the change as applied and reports whether this is
// the first time it was seen.
func (r *RepoPGS) RecordProcessed(ctx context.Context, change domain.TransactionChange) (bool, error) {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, recordProcessedQuery, change.TransactionID, change.Version, change.EventID)
	if err != nil {
		l.Error().Err(err).Send()
		return false, errorspkg.ErrInternal
	}

	n, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return false, errorspkg.ErrInternal
	}

	return n == 1, nil
}
