package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-finance/pkg/moneypkg"
)

func TestTransactionValidate(t *testing.T) {
	accountID := uuid.New()
	otherID := uuid.New()

	testCases := []struct {
		name    string
		tx      Transaction
		wantErr error
	}{
		{
			name: "Expense",
			tx:   Transaction{Type: TransactionTypeExpense, Amount: 100, AccountID: accountID},
		},
		{
			name: "Transfer",
			tx: Transaction{
				Type:        TransactionTypeTransfer,
				Amount:      100,
				AccountID:   accountID,
				ToAccountID: uuid.NullUUID{UUID: otherID, Valid: true},
			},
		},
		{
			name:    "ZeroAmount",
			tx:      Transaction{Type: TransactionTypeIncome, AccountID: accountID},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "UnknownType",
			tx:      Transaction{Type: "REFUND", Amount: 1, AccountID: accountID},
			wantErr: ErrInvalidTransactionType,
		},
		{
			name:    "TransferWithoutDestination",
			tx:      Transaction{Type: TransactionTypeTransfer, Amount: 1, AccountID: accountID},
			wantErr: ErrTransferDestinationRequired,
		},
		{
			name: "TransferToSelf",
			tx: Transaction{
				Type:        TransactionTypeTransfer,
				Amount:      1,
				AccountID:   accountID,
				ToAccountID: uuid.NullUUID{UUID: accountID, Valid: true},
			},
			wantErr: ErrTransferSameAccount,
		},
		{
			name: "IncomeWithDestination",
			tx: Transaction{
				Type:        TransactionTypeIncome,
				Amount:      1,
				AccountID:   accountID,
				ToAccountID: uuid.NullUUID{UUID: otherID, Valid: true},
			},
			wantErr: ErrUnexpectedDestination,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.tx.Validate(), tc.wantErr)
		})
	}
}

func TestUpdateApply(t *testing.T) {
	accountID := uuid.New()
	otherID := uuid.New()

	transfer := Transaction{
		Type:        TransactionTypeTransfer,
		Amount:      moneypkg.MustParse("10.00"),
		AccountID:   accountID,
		ToAccountID: uuid.NullUUID{UUID: otherID, Valid: true},
		Description: "move",
	}

	expense := TransactionTypeExpense
	amount := moneypkg.MustParse("12.00")

	got := UpdateTransactionParams{Type: &expense, Amount: &amount, ClearToAccount: true}.Apply(transfer)

	require.Equal(t, TransactionTypeExpense, got.Type)
	require.Equal(t, amount, got.Amount)
	require.False(t, got.ToAccountID.Valid)
	require.Equal(t, "move", got.Description)
	require.NoError(t, got.Validate())
	require.True(t, transfer.AffectsBalance(got))

	notes := "lunch"
	require.False(t, transfer.AffectsBalance(UpdateTransactionParams{Notes: &notes}.Apply(transfer)))
}

func TestTransactionChangeKind(t *testing.T) {
	tx := &Transaction{}

	require.Equal(t, ChangeCreate, TransactionChange{After: tx}.Kind())
	require.Equal(t, ChangeUpdate, TransactionChange{Before: tx, After: tx}.Kind())
	require.Equal(t, ChangeDelete, TransactionChange{Before: tx}.Kind())
	require.Equal(t, ChangeNoop, TransactionChange{}.Kind())
}
