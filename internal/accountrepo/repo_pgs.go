// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/pkg/dbpkg"
	"github.com/go-petr/pet-finance/pkg/errorspkg"
	"github.com/go-petr/pet-finance/pkg/moneypkg"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const columns = `id, owner_id, name, type, current_balance, opening_balance, is_archived, currency, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (domain.Account, error) {
	var (
		a        domain.Account
		currency sql.NullString
	)

	err := row.Scan(
		&a.ID,
		&a.OwnerID,
		&a.Name,
		&a.Type,
		&a.CurrentBalance,
		&a.OpeningBalance,
		&a.IsArchived,
		&currency,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	a.Currency = currency.String

	return a, err
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrAccountNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "accounts_owner_id_fkey":
			return domain.ErrOwnerNotFound
		case "accounts_type_check":
			return domain.ErrInvalidAccountType
		}
	}

	return errorspkg.ErrInternal
}

const addBalanceQuery = `
UPDATE accounts
SET current_balance = current_balance + $1, updated_at = now()
WHERE id = $2 AND owner_id = $3
RETURNING ` + columns

// AddBalance atomically adds delta to the account's current balance and
// returns the changed account.
func (r *RepoPGS) AddBalance(ctx context.Context, ownerID string, id uuid.UUID, delta moneypkg.Amount) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scan(r.db.QueryRowContext(ctx, addBalanceQuery, delta, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return a, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return a, mapError(err)
	}

	return a, nil
}

const createQuery = `
INSERT INTO
    accounts (id, owner_id, name, type, current_balance, opening_balance, currency)
VALUES
    ($1, $2, $3, $4, $5, $5, NULLIF($6, ''))
RETURNING ` + columns

// Create creates the account with both balances set to the initial balance
// and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		uuid.New(), arg.OwnerID, arg.Name, arg.Type, arg.InitialBalance, arg.Currency)

	a, err := scan(row)
	if err != nil {
		l.Error().Err(err).Send()
		return a, mapError(err)
	}

	return a, nil
}

const getQuery = `
SELECT ` + columns + `
FROM accounts
WHERE id = $1 AND owner_id = $2
`

// Get returns the account with the given id.
func (r *RepoPGS) Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scan(r.db.QueryRowContext(ctx, getQuery, id, ownerID))
	if err != nil {
		l.Error().Err(err).Send()
		return a, mapError(err)
	}

	return a, nil
}

const listQuery = `
SELECT ` + columns + `
FROM accounts
WHERE owner_id = $1 AND ($2 OR NOT is_archived)
ORDER BY created_at, id
LIMIT $3 OFFSET $4
`

// List returns the specified number of accounts for the given owner.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListAccountsParams) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, arg.OwnerID, arg.IncludeArchived, arg.Limit, arg.Offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, a)
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

// The right hand side of every assignment sees the old row, so the opening
// balance absorbs the difference between the old and the new current balance.
const updateQuery = `
UPDATE accounts
SET
    name = COALESCE($3, name),
    type = COALESCE($4, type),
    currency = COALESCE($5, currency),
    is_archived = COALESCE($6, is_archived),
    opening_balance = CASE
        WHEN $7::bigint IS NULL THEN opening_balance
        ELSE opening_balance + $7::bigint - current_balance
    END,
    current_balance = COALESCE($7::bigint, current_balance),
    updated_at = now()
WHERE id = $1 AND owner_id = $2
RETURNING ` + columns

// Update applies the non-nil fields of arg to the account.
func (r *RepoPGS) Update(ctx context.Context, ownerID string, id uuid.UUID, arg domain.UpdateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, updateQuery,
		id, ownerID, arg.Name, arg.Type, arg.Currency, arg.IsArchived, arg.CurrentBalance)

	a, err := scan(row)
	if err != nil {
		l.Error().Err(err).Send()
		return a, mapError(err)
	}

	return a, nil
}

const deleteQuery = `
DELETE FROM accounts
WHERE id = $1 AND owner_id = $2
`

// Delete removes the account with the given id.
//
// Transactions referencing the account are kept.
func (r *RepoPGS) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, deleteQuery, id, ownerID)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	n, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if n == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

const reconcileQuery = `
SELECT
    a.id,
    a.opening_balance,
    a.current_balance,
    COALESCE((
        SELECT SUM(CASE
            WHEN t.type = 'INCOME' AND t.account_id = a.id THEN t.amount
            WHEN t.type IN ('EXPENSE', 'TRANSFER') AND t.account_id = a.id THEN -t.amount
            WHEN t.type = 'TRANSFER' AND t.to_account_id = a.id THEN t.amount
            ELSE 0
        END)
        FROM transactions t
        WHERE t.owner_id = a.owner_id AND (t.account_id = a.id OR t.to_account_id = a.id)
    ), 0),
    COALESCE((
        SELECT SUM(g.amount)
        FROM goal_contributions g
        WHERE g.owner_id = a.owner_id AND g.account_id = a.id
    ), 0),
    (
        SELECT COUNT(*)
        FROM transaction_events e
        WHERE e.owner_id = a.owner_id AND e.delivered_at IS NULL AND a.id::text IN (
            e.after->>'account_id', e.after->>'to_account_id',
            e.before->>'account_id', e.before->>'to_account_id'
        )
    )
FROM accounts a
WHERE a.id = $1 AND a.owner_id = $2
`

// Reconcile replays the ledger of the account and compares the result with
// the stored balance.
func (r *RepoPGS) Reconcile(ctx context.Context, ownerID string, id uuid.UUID) (domain.Reconciliation, error) {
	l := zerolog.Ctx(ctx)

	var (
		rec           domain.Reconciliation
		contributions moneypkg.Amount
		goals         moneypkg.Amount
	)

	err := r.db.QueryRowContext(ctx, reconcileQuery, id, ownerID).Scan(
		&rec.AccountID,
		&rec.OpeningBalance,
		&rec.StoredBalance,
		&contributions,
		&goals,
		&rec.PendingEvents,
	)
	if err != nil {
		l.Error().Err(err).Send()
		return rec, mapError(err)
	}

	rec.LedgerBalance = rec.OpeningBalance + contributions - goals
	rec.Drift = rec.StoredBalance - rec.LedgerBalance

	return rec, nil
}

const netWorthQuery = `
SELECT COALESCE(SUM(current_balance), 0), COUNT(*)
FROM accounts
WHERE owner_id = $1 AND NOT is_archived
`

// NetWorth returns the total balance of the owner's active accounts.
func (r *RepoPGS) NetWorth(ctx context.Context, ownerID string) (domain.NetWorth, error) {
	l := zerolog.Ctx(ctx)

	var nw domain.NetWorth

	if err := r.db.QueryRowContext(ctx, netWorthQuery, ownerID).Scan(&nw.Total, &nw.Accounts); err != nil {
		l.Error().Err(err).Send()
		return nw, errorspkg.ErrInternal
	}

	return nw, nil
}
