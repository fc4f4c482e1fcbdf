package goalrepo

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

func goalRows(g domain.SavingsGoal) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "owner_id", "name", "target_amount", "current_amount", "target_date", "account_id", "status",
		"created_at", "updated_at",
	}).AddRow(g.ID.String(), g.OwnerID, g.Name, int64(g.TargetAmount), int64(g.CurrentAmount), g.TargetDate,
		nil, string(g.Status), g.CreatedAt, g.UpdatedAt)
}

func accountRows(ownerID string, id uuid.UUID, balance int64) *sqlmock.Rows {
	now := time.Now()

	return sqlmock.NewRows([]string{
		"id", "owner_id", "name", "type", "current_balance", "opening_balance",
		"is_archived", "currency", "created_at", "updated_at",
	}).AddRow(id.String(), ownerID, "Bank", "BANK", balance, int64(1000_00), false, nil, now, now)
}

func emergencyFund(status domain.GoalStatus) domain.SavingsGoal {
	return domain.SavingsGoal{
		ID:            uuid.New(),
		OwnerID:       "owner",
		Name:          "Emergency fund",
		TargetAmount:  5000_00,
		CurrentAmount: 1000_00,
		TargetDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:        status,
	}
}

func TestContribute(t *testing.T) {
	repo, mock := newMock(t)
	goal := emergencyFund(domain.GoalStatusActive)
	accountID := uuid.New()
	credited := goal
	credited.CurrentAmount += 200_00

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(goal.ID, "owner").WillReturnRows(goalRows(goal))
	mock.ExpectQuery(`UPDATE accounts`).
		WithArgs(int64(-200_00), accountID, "owner").
		WillReturnRows(accountRows("owner", accountID, 800_00))
	mock.ExpectQuery(`SET current_amount = current_amount \+ \$3`).
		WithArgs(goal.ID, "owner", int64(200_00)).
		WillReturnRows(goalRows(credited))
	mock.ExpectQuery(`INSERT INTO\s+goal_contributions`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "goal_id", "owner_id", "account_id", "amount", "created_at"}).
			AddRow(uuid.NewString(), goal.ID.String(), "owner", accountID.String(), int64(200_00), time.Now()))
	mock.ExpectCommit()

	got, err := repo.Contribute(context.Background(), domain.ContributeParams{
		OwnerID:   "owner",
		GoalID:    goal.ID,
		AccountID: accountID,
		Amount:    200_00,
	})
	require.NoError(t, err)
	require.EqualValues(t, 800_00, got.Account.CurrentBalance)
	require.EqualValues(t, 1200_00, got.Goal.CurrentAmount)
	require.EqualValues(t, 200_00, got.Contribution.Amount)
}

func TestContributeRollsBack(t *testing.T) {
	testCases := []struct {
		name       string
		status     domain.GoalStatus
		buildStubs func(mock sqlmock.Sqlmock)
		wantErr    error
	}{
		{
			name:       "GoalNotActive",
			status:     domain.GoalStatusCancelled,
			buildStubs: func(mock sqlmock.Sqlmock) {},
			wantErr:    domain.ErrGoalNotActive,
		},
		{
			name:   "AccountNotFound",
			status: domain.GoalStatusActive,
			buildStubs: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`UPDATE accounts`).WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrAccountNotFound,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newMock(t)
			goal := emergencyFund(tc.status)

			mock.ExpectBegin()
			mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(goalRows(goal))
			tc.buildStubs(mock)
			mock.ExpectRollback()

			_, err := repo.Contribute(context.Background(), domain.ContributeParams{
				OwnerID:   "owner",
				GoalID:    goal.ID,
				AccountID: uuid.New(),
				Amount:    100,
			})
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}
