package recurringrepo

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-finance/internal/domain"
)

func newMock(t *testing.T) (*RepoPGS, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	return NewRepoPGS(db), mock
}

var ruleColumns = []string{
	"id", "owner_id", "name", "amount", "type", "day_of_month", "account_id", "category_id",
	"is_active", "timezone", "last_run_date", "created_at", "updated_at",
}

func ruleRows(r domain.RecurringRule) *sqlmock.Rows {
	var lastRun any
	if r.LastRunDate != nil {
		lastRun = *r.LastRunDate
	}

	return sqlmock.NewRows(ruleColumns).AddRow(
		r.ID.String(), r.OwnerID, r.Name, int64(r.Amount), string(r.Type), r.DayOfMonth, r.AccountID.String(), nil,
		r.IsActive, r.Timezone, lastRun, r.CreatedAt, r.UpdatedAt,
	)
}

func rent() domain.RecurringRule {
	return domain.RecurringRule{
		ID:         uuid.New(),
		OwnerID:    "owner",
		Name:       "Rent",
		Amount:     1500_00,
		Type:       domain.TransactionTypeExpense,
		DayOfMonth: 15,
		AccountID:  uuid.New(),
		IsActive:   true,
		Timezone:   "Africa/Lusaka",
	}
}

func TestMaterialize(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 5, 0, time.UTC)
	dayStart := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	t.Run("Claimed", func(t *testing.T) {
		repo, mock := newMock(t)
		rule := rent()
		claimed := rule
		claimed.LastRunDate = &now

		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE recurring_rules\s+SET last_run_date`).
			WithArgs(rule.ID, "owner", now, dayStart, dayEnd).
			WillReturnRows(ruleRows(claimed))
		mock.ExpectQuery(`INSERT INTO\s+transactions`).
			WithArgs(sqlmock.AnyArg(), "owner", "EXPENSE", int64(1500_00), rule.AccountID, nil, nil,
				now, "Rent", "", true).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "owner_id", "type", "amount", "account_id", "to_account_id", "category_id",
				"date", "description", "notes", "is_recurring", "version", "created_at", "updated_at",
			}).AddRow(uuid.NewString(), "owner", "EXPENSE", int64(1500_00), rule.AccountID.String(), nil, nil,
				now, "Rent", "", true, int64(1), now, now))
		mock.ExpectExec(`INSERT INTO transaction_events`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		got, err := repo.Materialize(context.Background(), rule, now, dayStart, dayEnd)
		require.NoError(t, err)
		require.True(t, got.IsRecurring)
		require.Equal(t, "Rent", got.Description)
		require.Equal(t, rule.Amount, got.Amount)
	})

	t.Run("AlreadyClaimed", func(t *testing.T) {
		repo, mock := newMock(t)
		rule := rent()

		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE recurring_rules\s+SET last_run_date`).WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.Materialize(context.Background(), rule, now, dayStart, dayEnd)
		require.ErrorIs(t, err, domain.ErrRuleAlreadyRun)
	})
}

func TestListDue(t *testing.T) {
	repo, mock := newMock(t)
	rule := rent()
	lastRun := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	rule.LastRunDate = &lastRun

	mock.ExpectQuery(`day_of_month = \$2`).WithArgs("owner", 15).WillReturnRows(ruleRows(rule))

	got, err := repo.ListDue(context.Background(), "owner", 15)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, rule.ID, got[0].ID)
	require.NotNil(t, got[0].LastRunDate)
	require.True(t, got[0].LastRunDate.Equal(lastRun))
}
