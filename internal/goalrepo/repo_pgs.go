// Package goalrepo manages repository layer of savings goals.
package goalrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/accountrepo"
	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/pkg/dbpkg"
	"github.com/go-petr/pet-finance/pkg/errorspkg"
)

// RepoPGS facilitates savings goal repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewRepoPGS returns savings goal RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const columns = `id, owner_id, name, target_amount, current_amount, target_date, account_id, status, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (domain.SavingsGoal, error) {
	var g domain.SavingsGoal

	err := row.Scan(
		&g.ID,
		&g.OwnerID,
		&g.Name,
		&g.TargetAmount,
		&g.CurrentAmount,
		&g.TargetDate,
		&g.AccountID,
		&g.Status,
		&g.CreatedAt,
		&g.UpdatedAt,
	)

	return g, err
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrGoalNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "savings_goals_owner_id_fkey":
			return domain.ErrOwnerNotFound
		case "savings_goals_target_amount_check", "savings_goals_current_amount_check",
			"goal_contributions_amount_check":
			return domain.ErrInvalidAmount
		}
	}

	return errorspkg.ErrInternal
}

const createQuery = `
INSERT INTO
    savings_goals (id, owner_id, name, target_amount, target_date, account_id)
VALUES
    ($1, $2, $3, $4, $5, $6)
RETURNING ` + columns

// Create creates the savings goal and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateGoalParams) (domain.SavingsGoal, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		uuid.New(), arg.OwnerID, arg.Name, arg.TargetAmount, arg.TargetDate, arg.AccountID)

	g, err := scan(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)
		return g, mapError(err)
	}

	return g, nil
}

const getQuery = `
SELECT ` + columns + `
FROM savings_goals
WHERE id = $1 AND owner_id = $2
`

// Get returns the savings goal with the given id.
func (r *RepoPGS) Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.SavingsGoal, error) {
	l := zerolog.Ctx(ctx)

	g, err := scan(r.db.QueryRowContext(ctx, getQuery, id, ownerID))
	if err != nil {
		l.Error().Err(err).Send()
		return g, mapError(err)
	}

	return g, nil
}

const listQuery = `
SELECT ` + columns + `
FROM savings_goals
WHERE owner_id = $1
ORDER BY target_date, name
`

// List returns all savings goals of the owner.
func (r *RepoPGS) List(ctx context.Context, ownerID string) ([]domain.SavingsGoal, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, ownerID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.SavingsGoal{}

	for rows.Next() {
		g, err := scan(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, g)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const updateQuery = `
UPDATE savings_goals
SET
    name = COALESCE($3, name),
    target_amount = COALESCE($4, target_amount),
    target_date = COALESCE($5, target_date),
    account_id = COALESCE($6, account_id),
    status = COALESCE($7, status),
    updated_at = now()
WHERE id = $1 AND owner_id = $2
RETURNING ` + columns

// Update applies the non-nil fields of arg to the savings goal.
func (r *RepoPGS) Update(ctx context.Context, ownerID string, id uuid.UUID, arg domain.UpdateGoalParams) (domain.SavingsGoal, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, updateQuery,
		id, ownerID, arg.Name, arg.TargetAmount, arg.TargetDate, arg.AccountID, arg.Status)

	g, err := scan(row)
	if err != nil {
		l.Error().Err(err).Send()
		return g, mapError(err)
	}

	return g, nil
}

const deleteQuery = `
DELETE FROM savings_goals
WHERE id = $1 AND owner_id = $2
`

// Delete removes the savings goal and its contribution history.
func (r *RepoPGS) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, deleteQuery, id, ownerID)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrGoalNotFound
	}

	return nil
}

const getForUpdateQuery = getQuery + `FOR UPDATE`

const addAmountQuery = `
UPDATE savings_goals
SET current_amount = current_amount + $3, updated_at = now()
WHERE id = $1 AND owner_id = $2
RETURNING ` + columns

const insertContributionQuery = `
INSERT INTO
    goal_contributions (id, goal_id, owner_id, account_id, amount)
VALUES
    ($1, $2, $3, $4, $5)
RETURNING id, goal_id, owner_id, account_id, amount, created_at
`

// Contribute moves money from an account into the goal. The account debit,
// the goal credit and the contribution record commit together or not at all.
func (r *RepoPGS) Contribute(ctx context.Context, arg domain.ContributeParams) (domain.ContributeResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.ContributeResult

	err := dbpkg.WithTx(ctx, r.conn, func(tx *sql.Tx) error {
		goal, err := scan(tx.QueryRowContext(ctx, getForUpdateQuery, arg.GoalID, arg.OwnerID))
		if err != nil {
			l.Error().Err(err).Send()
			return mapError(err)
		}

		if goal.Status != domain.GoalStatusActive {
			return domain.ErrGoalNotActive
		}

		result.Account, err = accountrepo.NewRepoPGS(tx).AddBalance(ctx, arg.OwnerID, arg.AccountID, -arg.Amount)
		if err != nil {
			return err
		}

		result.Goal, err = scan(tx.QueryRowContext(ctx, addAmountQuery, arg.GoalID, arg.OwnerID, arg.Amount))
		if err != nil {
			l.Error().Err(err).Send()
			return mapError(err)
		}

		c := &result.Contribution

		err = tx.QueryRowContext(ctx, insertContributionQuery,
			uuid.New(), arg.GoalID, arg.OwnerID, arg.AccountID, arg.Amount,
		).Scan(&c.ID, &c.GoalID, &c.OwnerID, &c.AccountID, &c.Amount, &c.CreatedAt)
		if err != nil {
			l.Error().Err(err).Send()
			return mapError(err)
		}

		return nil
	})
	if err != nil {
		return domain.ContributeResult{}, err
	}

	return result, nil
}
