package eventrepo

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-finance/internal/domain"
)

func newMock(t *testing.T) (*RepoPGS, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	return NewRepoPGS(db), mock
}

func testTransaction() *domain.Transaction {
	return &domain.Transaction{
		ID:        uuid.New(),
		OwnerID:   "owner",
		Type:      domain.TransactionTypeExpense,
		Amount:    30_00,
		AccountID: uuid.New(),
		Date:      time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Version:   1,
	}
}

func TestAppendCreate(t *testing.T) {
	repo, mock := newMock(t)
	after := testTransaction()

	afterJSON, err := json.Marshal(after)
	require.NoError(t, err)

	mock.ExpectExec(appendQuery).
		WithArgs(sqlmock.AnyArg(), "owner", after.ID, int64(1), nil, string(afterJSON)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := repo.Append(context.Background(), domain.TransactionChange{
		OwnerID:       "owner",
		TransactionID: after.ID,
		Version:       1,
		After:         after,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)
}

func TestListPendingDecodesImages(t *testing.T) {
	repo, mock := newMock(t)
	before := testTransaction()

	beforeJSON, err := json.Marshal(before)
	require.NoError(t, err)

	eventID := uuid.New()
	createdAt := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "owner_id", "transaction_id", "version", "before", "after", "created_at", "attempts", "last_error",
	}).AddRow(eventID.String(), "owner", before.ID.String(), int64(2), beforeJSON, nil, createdAt, 1, "boom")

	mock.ExpectQuery(listPendingQuery).WithArgs(10, 100).WillReturnRows(rows)

	got, err := repo.ListPending(context.Background(), 10, 100)
	require.NoError(t, err)
	require.Len(t, got, 1)

	e := got[0]
	require.Equal(t, eventID, e.EventID)
	require.Equal(t, domain.ChangeDelete, e.Kind())
	require.Equal(t, 1, e.Attempts)
	require.Equal(t, "boom", e.LastError)

	if diff := cmp.Diff(before, e.Before); diff != "" {
		t.Errorf("before image mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordProcessed(t *testing.T) {
	testCases := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "FirstDelivery", affected: 1, want: true},
		{name: "Redelivery", affected: 0, want: false},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newMock(t)
			change := domain.TransactionChange{EventID: uuid.New(), TransactionID: uuid.New(), Version: 3}

			mock.ExpectExec(recordProcessedQuery).
				WithArgs(change.TransactionID, int64(3), change.EventID).
				WillReturnResult(sqlmock.NewResult(0, tc.affected))

			got, err := repo.RecordProcessed(context.Background(), change)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestMarkFailed(t *testing.T) {
	repo, mock := newMock(t)
	id := uuid.New()

	mock.ExpectQuery(markFailedQuery).
		WithArgs(id, "boom").
		WillReturnRows(sqlmock.NewRows([]string{"attempts"}).AddRow(4))

	got, err := repo.MarkFailed(context.Background(), id, "boom")
	require.NoError(t, err)
	require.Equal(t, 4, got)
}

func TestMarkDeliveredNotFound(t *testing.T) {
	repo, mock := newMock(t)
	id := uuid.New()

	mock.ExpectExec(markDeliveredQuery).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, repo.MarkDelivered(context.Background(), id), ErrEventNotFound)
}
