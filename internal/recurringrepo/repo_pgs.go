// Package recurringrepo manages repository layer of recurring rules.
package recurringrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/internal/transactionrepo"
	"github.com/go-petr/pet-finance/pkg/dbpkg"
	"github.com/go-petr/pet-finance/pkg/errorspkg"
)

// RepoPGS facilitates recurring rule repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewRepoPGS returns recurring rule RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const columns = `id, owner_id, name, amount, type, day_of_month, account_id, category_id,
    is_active, timezone, last_run_date, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (domain.RecurringRule, error) {
	var (
		r       domain.RecurringRule
		lastRun sql.NullTime
	)

	err := row.Scan(
		&r.ID,
		&r.OwnerID,
		&r.Name,
		&r.Amount,
		&r.Type,
		&r.DayOfMonth,
		&r.AccountID,
		&r.CategoryID,
		&r.IsActive,
		&r.Timezone,
		&lastRun,
		&r.CreatedAt,
		&r.UpdatedAt,
	)

	if lastRun.Valid {
		t := lastRun.Time
		r.LastRunDate = &t
	}

	return r, err
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrRecurringRuleNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "recurring_rules_owner_id_fkey":
			return domain.ErrOwnerNotFound
		case "recurring_rules_amount_check":
			return domain.ErrInvalidAmount
		case "recurring_rules_type_check":
			return domain.ErrInvalidTransactionType
		case "recurring_rules_day_of_month_check":
			return domain.ErrInvalidDayOfMonth
		}
	}

	return errorspkg.ErrInternal
}

func (r *RepoPGS) list(ctx context.Context, query string, args ...any) ([]domain.RecurringRule, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.RecurringRule{}

	for rows.Next() {
		rule, err := scan(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, rule)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const createQuery = `
INSERT INTO
    recurring_rules (id, owner_id, name, amount, type, day_of_month, account_id, category_id, is_active, timezone)
VALUES
    ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + columns

// Create creates the recurring rule and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateRecurringRuleParams) (domain.RecurringRule, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		uuid.New(),
		arg.OwnerID,
		arg.Name,
		arg.Amount,
		arg.Type,
		arg.DayOfMonth,
		arg.AccountID,
		arg.CategoryID,
		arg.IsActive,
		arg.Timezone,
	)

	rule, err := scan(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)
		return rule, mapError(err)
	}

	return rule, nil
}

const getQuery = `
SELECT ` + columns + `
FROM recurring_rules
WHERE id = $1 AND owner_id = $2
`

// Get returns the recurring rule with the given id.
func (r *RepoPGS) Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.RecurringRule, error) {
	l := zerolog.Ctx(ctx)

	rule, err := scan(r.db.QueryRowContext(ctx, getQuery, id, ownerID))
	if err != nil {
		l.Error().Err(err).Send()
		return rule, mapError(err)
	}

	return rule, nil
}

const listQuery = `
SELECT ` + columns + `
FROM recurring_rules
WHERE owner_id = $1
ORDER BY day_of_month, name
`

// List returns all recurring rules of the owner.
func (r *RepoPGS) List(ctx context.Context, ownerID string) ([]domain.RecurringRule, error) {
	return r.list(ctx, listQuery, ownerID)
}

const listDueQuery = `
SELECT ` + columns + `
FROM recurring_rules
WHERE owner_id = $1 AND day_of_month = $2
ORDER BY id
`

// ListDue returns the owner's rules scheduled on the given day of month,
// active or not.
func (r *RepoPGS) ListDue(ctx context.Context, ownerID string, day int) ([]domain.RecurringRule, error) {
	return r.list(ctx, listDueQuery, ownerID, day)
}

const updateQuery = `
UPDATE recurring_rules
SET
    name = COALESCE($3, name),
    amount = COALESCE($4, amount),
    type = COALESCE($5, type),
    day_of_month = COALESCE($6, day_of_month),
    account_id = COALESCE($7, account_id),
    category_id = COALESCE($8, category_id),
    is_active = COALESCE($9, is_active),
    timezone = COALESCE($10, timezone),
    updated_at = now()
WHERE id = $1 AND owner_id = $2
RETURNING ` + columns

// Update applies the non-nil fields of arg to the recurring rule.
func (r *RepoPGS) Update(ctx context.Context, ownerID string, id uuid.UUID, arg domain.UpdateRecurringRuleParams) (domain.RecurringRule, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, updateQuery,
		id,
		ownerID,
		arg.Name,
		arg.Amount,
		arg.Type,
		arg.DayOfMonth,
		arg.AccountID,
		arg.CategoryID,
		arg.IsActive,
		arg.Timezone,
	)

	rule, err := scan(row)
	if err != nil {
		l.Error().Err(err).Send()
		return rule, mapError(err)
	}

	return rule, nil
}

const deleteQuery = `
DELETE FROM recurring_rules
WHERE id = $1 AND owner_id = $2
`

// Delete removes the recurring rule.
func (r *RepoPGS) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, deleteQuery, id, ownerID)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrRecurringRuleNotFound
	}

	return nil
}

// The claim only succeeds when the rule has not run inside [$4, $5), so two
// concurrent runs cannot both materialize the same rule on the same day.
const claimQuery = `
UPDATE recurring_rules
SET last_run_date = $3, updated_at = now()
WHERE id = $1 AND owner_id = $2
    AND (last_run_date IS NULL OR last_run_date < $4 OR last_run_date >= $5)
RETURNING ` + columns

// Materialize claims the rule for the [dayStart, dayEnd) window and inserts
// the transaction it describes, both in one database transaction.
//
// It returns domain.ErrRuleAlreadyRun when the rule was already claimed
// inside the window.
func (r *RepoPGS) Materialize(ctx context.Context, rule domain.RecurringRule, now, dayStart, dayEnd time.Time) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	var t domain.Transaction

	err := dbpkg.WithTx(ctx, r.conn, func(tx *sql.Tx) error {
		claimed, err := scan(tx.QueryRowContext(ctx, claimQuery, rule.ID, rule.OwnerID, now, dayStart, dayEnd))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrRuleAlreadyRun
			}

			l.Error().Err(err).Send()

			return errorspkg.ErrInternal
		}

		t, err = transactionrepo.NewTxRepoPGS(tx).Insert(ctx, claimed.Transaction(now))

		return err
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	return t, nil
}
