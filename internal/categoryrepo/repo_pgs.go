// Package categoryrepo manages repository layer of categories.
package categoryrepo

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

// RepoPGS facilitates category repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns category RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const columns = `id, owner_id, name, type, color, icon, monthly_budget_cap, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (domain.Category, error) {
	var (
		c         domain.Category
		budgetCap sql.NullInt64
	)

	err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.Name,
		&c.Type,
		&c.Color,
		&c.Icon,
		&budgetCap,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if budgetCap.Valid {
		v := moneypkg.Amount(budgetCap.Int64)
		c.MonthlyBudgetCap = &v
	}

	return c, err
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrCategoryNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "categories_owner_id_fkey":
			return domain.ErrOwnerNotFound
		case "categories_monthly_budget_cap_check":
			return domain.ErrInvalidAmount
		}
	}

	return errorspkg.ErrInternal
}

const createQuery = `
INSERT INTO
    categories (id, owner_id, name, type, color, icon, monthly_budget_cap)
VALUES
    ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + columns

// Create creates the category and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateCategoryParams) (domain.Category, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		uuid.New(), arg.OwnerID, arg.Name, arg.Type, arg.Color, arg.Icon, arg.MonthlyBudgetCap)

	c, err := scan(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)
		return c, mapError(err)
	}

	return c, nil
}

const getQuery = `
SELECT ` + columns + `
FROM categories
WHERE id = $1 AND owner_id = $2
`

// Get returns the category with the given id.
func (r *RepoPGS) Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.Category, error) {
	l := zerolog.Ctx(ctx)

	c, err := scan(r.db.QueryRowContext(ctx, getQuery, id, ownerID))
	if err != nil {
		l.Error().Err(err).Send()
		return c, mapError(err)
	}

	return c, nil
}

const listQuery = `
SELECT ` + columns + `
FROM categories
WHERE owner_id = $1
ORDER BY type, name
`

// List returns all categories of the owner.
func (r *RepoPGS) List(ctx context.Context, ownerID string) ([]domain.Category, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, ownerID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Category{}

	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, c)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const updateQuery = `
UPDATE categories
SET
    name = COALESCE($3, name),
    type = COALESCE($4, type),
    color = COALESCE($5, color),
    icon = COALESCE($6, icon),
    monthly_budget_cap = COALESCE($7, monthly_budget_cap),
    updated_at = now()
WHERE id = $1 AND owner_id = $2
RETURNING ` + columns

// Update applies the non-nil fields of arg to the category.
func (r *RepoPGS) Update(ctx context.Context, ownerID string, id uuid.UUID, arg domain.UpdateCategoryParams) (domain.Category, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, updateQuery,
		id, ownerID, arg.Name, arg.Type, arg.Color, arg.Icon, arg.MonthlyBudgetCap)

	c, err := scan(row)
	if err != nil {
		l.Error().Err(err).Send()
		return c, mapError(err)
	}

	return c, nil
}

const deleteQuery = `
DELETE FROM categories
WHERE id = $1 AND owner_id = $2
`

// Delete removes the category. Transactions keep their dangling reference.
func (r *RepoPGS) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, deleteQuery, id, ownerID)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrCategoryNotFound
	}

	return nil
}
