// Package profilerepo manages repository layer of user profiles.
package profilerepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/categoryrepo"
	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/pkg/dbpkg"
	"github.com/go-petr/pet-finance/pkg/errorspkg"
)

// RepoPGS facilitates profile repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewRepoPGS returns profile RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const columns = `id, email, display_name, currency, fiscal_type, onboarding_completed, created_at, updated_at`

func scan(row *sql.Row) (domain.UserProfile, error) {
	var p domain.UserProfile

	err := row.Scan(
		&p.ID,
		&p.Email,
		&p.DisplayName,
		&p.Currency,
		&p.FiscalType,
		&p.OnboardingCompleted,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	return p, err
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrProfileNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Constraint == "users_pkey" {
		return domain.ErrProfileAlreadyExists
	}

	return errorspkg.ErrInternal
}

const createQuery = `
INSERT INTO
    users (id, email, display_name, currency, fiscal_type)
VALUES
    ($1, $2, $3, $4, $5)
RETURNING ` + columns

// Create stores the profile together with the given categories within a
// single database transaction.
func (r *RepoPGS) Create(ctx context.Context, arg domain.UserProfile, categories []domain.CreateCategoryParams) (domain.UserProfile, error) {
	l := zerolog.Ctx(ctx)

	var p domain.UserProfile

	err := dbpkg.WithTx(ctx, r.conn, func(tx *sql.Tx) error {
		var err error

		p, err = scan(tx.QueryRowContext(ctx, createQuery,
			arg.ID, arg.Email, arg.DisplayName, arg.Currency, arg.FiscalType))
		if err != nil {
			l.Error().Err(err).Send()
			return mapError(err)
		}

		categoryRepo := categoryrepo.NewRepoPGS(tx)

		for _, c := range categories {
			if _, err := categoryRepo.Create(ctx, c); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return domain.UserProfile{}, err
	}

	return p, nil
}

const getQuery = `
SELECT ` + columns + `
FROM users
WHERE id = $1
`

// Get returns the profile with the given id.
func (r *RepoPGS) Get(ctx context.Context, id string) (domain.UserProfile, error) {
	l := zerolog.Ctx(ctx)

	p, err := scan(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		l.Error().Err(err).Send()
		return p, mapError(err)
	}

	return p, nil
}

const updateQuery = `
UPDATE users
SET
    display_name = COALESCE($2, display_name),
    currency = COALESCE($3, currency),
    fiscal_type = COALESCE($4, fiscal_type),
    onboarding_completed = COALESCE($5, onboarding_completed),
    updated_at = now()
WHERE id = $1
RETURNING ` + columns

// Update applies the non-nil fields of arg to the profile.
func (r *RepoPGS) Update(ctx context.Context, id string, arg domain.UpdateProfileParams) (domain.UserProfile, error) {
	l := zerolog.Ctx(ctx)

	p, err := scan(r.db.QueryRowContext(ctx, updateQuery,
		id, arg.DisplayName, arg.Currency, arg.FiscalType, arg.OnboardingCompleted))
	if err != nil {
		l.Error().Err(err).Send()
		return p, mapError(err)
	}

	return p, nil
}

const listIDsQuery = `
SELECT id
FROM users
ORDER BY id
`

// ListIDs returns the ids of all users.
func (r *RepoPGS) ListIDs(ctx context.Context) ([]string, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listIDsQuery)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	ids := []string{}

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return ids, nil
}
