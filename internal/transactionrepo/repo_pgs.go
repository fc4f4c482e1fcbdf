// Package transactionrepo manages repository layer of transactions.
//
// Every write appends a change event to the outbox in the same database
// transaction, so balances are kept in step by the balance keeper.
package transactionrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/internal/eventrepo"
	"github.com/go-petr/pet-finance/pkg/dbpkg"
	"github.com/go-petr/pet-finance/pkg/errorspkg"
	"github.com/go-petr/pet-finance/pkg/moneypkg"
)

// RepoPGS facilitates transaction repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns transaction RepoPGS bound to an open database transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns transaction RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const columns = `id, owner_id, type, amount, account_id, to_account_id, category_id,
    date, description, notes, is_recurring, version, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (domain.Transaction, error) {
	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Type,
		&t.Amount,
		&t.AccountID,
		&t.ToAccountID,
		&t.CategoryID,
		&t.Date,
		&t.Description,
		&t.Notes,
		&t.IsRecurring,
		&t.Version,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	return t, err
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrTransactionNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "transactions_owner_id_fkey":
			return domain.ErrOwnerNotFound
		case "transactions_amount_check":
			return domain.ErrInvalidAmount
		case "transactions_type_check":
			return domain.ErrInvalidTransactionType
		case "transactions_transfer_check":
			return domain.ErrTransferDestinationRequired
		}
	}

	return errorspkg.ErrInternal
}

// inTx runs fn on a repository bound to a new database transaction, or on r
// itself when r is already bound to one.
func (r *RepoPGS) inTx(ctx context.Context, fn func(txRepo *RepoPGS) error) error {
	if r.conn == nil {
		return fn(r)
	}

	l := zerolog.Ctx(ctx)

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}()

	if err := fn(NewTxRepoPGS(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

func (r *RepoPGS) appendEvent(ctx context.Context, ownerID string, id uuid.UUID, version int64, before, after *domain.Transaction) error {
	_, err := eventrepo.NewRepoPGS(r.db).Append(ctx, domain.TransactionChange{
		OwnerID:       ownerID,
		TransactionID: id,
		Version:       version,
		Before:        before,
		After:         after,
	})

	return err
}

const insertQuery = `
INSERT INTO
    transactions (id, owner_id, type, amount, account_id, to_account_id, category_id,
        date, description, notes, is_recurring)
VALUES
    ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + columns

// Insert stores the transaction and its change event using the repository's
// current database handle. Callers holding an open transaction use it to add
// a transaction to a larger unit of work.
func (r *RepoPGS) Insert(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, insertQuery,
		uuid.New(),
		arg.OwnerID,
		arg.Type,
		arg.Amount,
		arg.AccountID,
		arg.ToAccountID,
		arg.CategoryID,
		arg.Date,
		arg.Description,
		arg.Notes,
		arg.IsRecurring,
	)

	t, err := scan(row)
	if err != nil {
		l.Error().Err(err).Msgf("Insert(ctx, %+v)", arg)
		return t, mapError(err)
	}

	if err := r.appendEvent(ctx, t.OwnerID, t.ID, t.Version, nil, &t); err != nil {
		return domain.Transaction{}, err
	}

	return t, nil
}

// Create creates the transaction and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	var t domain.Transaction

	err := r.inTx(ctx, func(txRepo *RepoPGS) error {
		var err error
		t, err = txRepo.Insert(ctx, arg)

		return err
	})

	return t, err
}

const getQuery = `
SELECT ` + columns + `
FROM transactions
WHERE id = $1 AND owner_id = $2
`

// Get returns the transaction with the given id.
func (r *RepoPGS) Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	t, err := scan(r.db.QueryRowContext(ctx, getQuery, id, ownerID))
	if err != nil {
		l.Error().Err(err).Send()
		return t, mapError(err)
	}

	return t, nil
}

const listQuery = `
SELECT ` + columns + `
FROM transactions
WHERE owner_id = $1
    AND ($2::uuid IS NULL OR account_id = $2 OR to_account_id = $2)
    AND ($3::timestamptz IS NULL OR date >= $3)
    AND ($4::timestamptz IS NULL OR date < $4)
ORDER BY date DESC, id
LIMIT $5 OFFSET $6
`

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// List returns the owner's transactions, newest first.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery,
		arg.OwnerID,
		arg.AccountID,
		nullTime(arg.From),
		nullTime(arg.To),
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		t, err := scan(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
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

const getForUpdateQuery = getQuery + `FOR UPDATE`

const updateQuery = `
UPDATE transactions
SET
    type = $3,
    amount = $4,
    account_id = $5,
    to_account_id = $6,
    category_id = $7,
    date = $8,
    description = $9,
    notes = $10,
    version = version + 1,
    updated_at = now()
WHERE id = $1 AND owner_id = $2
RETURNING ` + columns

// Update applies arg to the transaction and records the before and after
// images in the outbox.
func (r *RepoPGS) Update(ctx context.Context, ownerID string, id uuid.UUID, arg domain.UpdateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	var after domain.Transaction

	err := r.inTx(ctx, func(txRepo *RepoPGS) error {
		before, err := scan(txRepo.db.QueryRowContext(ctx, getForUpdateQuery, id, ownerID))
		if err != nil {
			l.Error().Err(err).Send()
			return mapError(err)
		}

		want := arg.Apply(before)
		if err := want.Validate(); err != nil {
			return err
		}

		row := txRepo.db.QueryRowContext(ctx, updateQuery,
			id,
			ownerID,
			want.Type,
			want.Amount,
			want.AccountID,
			want.ToAccountID,
			want.CategoryID,
			want.Date,
			want.Description,
			want.Notes,
		)

		after, err = scan(row)
		if err != nil {
			l.Error().Err(err).Send()
			return mapError(err)
		}

		return txRepo.appendEvent(ctx, ownerID, id, after.Version, &before, &after)
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	return after, nil
}

const deleteQuery = `
DELETE FROM transactions
WHERE id = $1 AND owner_id = $2
RETURNING ` + columns

// Delete removes the transaction and records its last image in the outbox.
func (r *RepoPGS) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	l := zerolog.Ctx(ctx)

	return r.inTx(ctx, func(txRepo *RepoPGS) error {
		before, err := scan(txRepo.db.QueryRowContext(ctx, deleteQuery, id, ownerID))
		if err != nil {
			l.Error().Err(err).Send()
			return mapError(err)
		}

		return txRepo.appendEvent(ctx, ownerID, id, before.Version+1, &before, nil)
	})
}

const totalsQuery = `
SELECT
    COALESCE(SUM(amount) FILTER (WHERE type = 'INCOME'), 0),
    COALESCE(SUM(amount) FILTER (WHERE type = 'EXPENSE'), 0)
FROM transactions
WHERE owner_id = $1 AND date >= $2 AND date < $3
`

const categorySpendQuery = `
SELECT c.id, c.name, c.type, c.monthly_budget_cap, SUM(t.amount)
FROM transactions t
JOIN categories c ON c.id = t.category_id AND c.owner_id = t.owner_id
WHERE t.owner_id = $1 AND t.type = 'EXPENSE' AND t.date >= $2 AND t.date < $3
GROUP BY c.id, c.name, c.type, c.monthly_budget_cap
ORDER BY SUM(t.amount) DESC, c.name
`

// MonthlySummary aggregates the owner's income and expenses for the given
// calendar month in UTC.
func (r *RepoPGS) MonthlySummary(ctx context.Context, ownerID string, year int, month time.Month) (domain.MonthlySummary, error) {
	l := zerolog.Ctx(ctx)

	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	s := domain.MonthlySummary{Year: year, Month: month, Categories: []domain.CategorySpend{}}

	err := r.db.QueryRowContext(ctx, totalsQuery, ownerID, from, to).Scan(&s.Income, &s.Expense)
	if err != nil {
		l.Error().Err(err).Send()
		return s, errorspkg.ErrInternal
	}

	s.Net = s.Income - s.Expense

	rows, err := r.db.QueryContext(ctx, categorySpendQuery, ownerID, from, to)
	if err != nil {
		l.Error().Err(err).Send()
		return s, errorspkg.ErrInternal
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c         domain.CategorySpend
			budgetCap sql.NullInt64
		)

		if err := rows.Scan(&c.CategoryID, &c.Name, &c.Type, &budgetCap, &c.Spent); err != nil {
			l.Error().Err(err).Send()
			return s, errorspkg.ErrInternal
		}

		if budgetCap.Valid {
			v := moneypkg.Amount(budgetCap.Int64)
			c.MonthlyBudgetCap = &v
		}

		s.Categories = append(s.Categories, c)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return s, errorspkg.ErrInternal
	}

	return s, nil
}
