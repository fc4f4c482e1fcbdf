package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/go-petr/pet-finance/pkg/moneypkg"
)

var (
	// ErrTransactionNotFound indicates that the transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrInvalidAmount indicates invalid amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidTransactionType indicates an unknown transaction type.
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	// ErrTransferDestinationRequired indicates a transfer without destination account.
	ErrTransferDestinationRequired = errors.New("transfers must include a destination account")
	// ErrTransferSameAccount indicates a transfer whose source and destination are equal.
	ErrTransferSameAccount = errors.New("destination account must be different from source account")
	// ErrUnexpectedDestination indicates a destination account on a non transfer transaction.
	ErrUnexpectedDestination = errors.New("only transfers can have a destination account")
)

// TransactionType is the direction of money movement.
type TransactionType string

// Supported transaction types.
const (
	TransactionTypeIncome   TransactionType = "INCOME"
	TransactionTypeExpense  TransactionType = "EXPENSE"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return true
	}

	return false
}

// Transaction is a single movement of money affecting one account,
// or two for transfers.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	OwnerID     string          `json:"owner_id"`
	Type        TransactionType `json:"type"`
	Amount      moneypkg.Amount `json:"amount"`
	AccountID   uuid.UUID       `json:"account_id"`
	ToAccountID uuid.NullUUID   `json:"to_account_id"`
	CategoryID  uuid.NullUUID   `json:"category_id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Notes       string          `json:"notes"`
	IsRecurring bool            `json:"is_recurring"`
	Version     int64           `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Validate checks the amount, type and transfer destination rules.
func (t Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	if !t.Type.Valid() {
		return ErrInvalidTransactionType
	}

	if t.Type == TransactionTypeTransfer {
		if !t.ToAccountID.Valid {
			return ErrTransferDestinationRequired
		}

		if t.ToAccountID.UUID == t.AccountID {
			return ErrTransferSameAccount
		}

		return nil
	}

	if t.ToAccountID.Valid {
		return ErrUnexpectedDestination
	}

	return nil
}

// AffectsBalance reports whether switching from t to other changes any
// field of the balance equation.
func (t Transaction) AffectsBalance(other Transaction) bool {
	return t.AccountID != other.AccountID ||
		t.Amount != other.Amount ||
		t.Type != other.Type ||
		t.ToAccountID != other.ToAccountID
}

// CreateTransactionParams is the input data to create a transaction.
type CreateTransactionParams struct {
	OwnerID     string
	Type        TransactionType
	Amount      moneypkg.Amount
	AccountID   uuid.UUID
	ToAccountID uuid.NullUUID
	CategoryID  uuid.NullUUID
	Date        time.Time
	Description string
	Notes       string
	IsRecurring bool
}

// Transaction returns the transaction described by the params.
func (p CreateTransactionParams) Transaction() Transaction {
	return Transaction{
		OwnerID:     p.OwnerID,
		Type:        p.Type,
		Amount:      p.Amount,
		AccountID:   p.AccountID,
		ToAccountID: p.ToAccountID,
		CategoryID:  p.CategoryID,
		Date:        p.Date,
		Description: p.Description,
		Notes:       p.Notes,
		IsRecurring: p.IsRecurring,
	}
}

// UpdateTransactionParams holds the optional fields of a transaction update.
//
// ClearToAccount removes the destination account, used when a transfer
// becomes an income or expense.
type UpdateTransactionParams struct {
	Type           *TransactionType
	Amount         *moneypkg.Amount
	AccountID      *uuid.UUID
	ToAccountID    *uuid.UUID
	ClearToAccount bool
	CategoryID     *uuid.UUID
	Date           *time.Time
	Description    *string
	Notes          *string
}

// Apply returns t with the update applied.
func (p UpdateTransactionParams) Apply(t Transaction) Transaction {
	if p.Type != nil {
		t.Type = *p.Type
	}

	if p.Amount != nil {
		t.Amount = *p.Amount
	}

	if p.AccountID != nil {
		t.AccountID = *p.AccountID
	}

	if p.ClearToAccount {
		t.ToAccountID = uuid.NullUUID{}
	}

	if p.ToAccountID != nil {
		t.ToAccountID = uuid.NullUUID{UUID: *p.ToAccountID, Valid: true}
	}

	if p.CategoryID != nil {
		t.CategoryID = uuid.NullUUID{UUID: *p.CategoryID, Valid: true}
	}

	if p.Date != nil {
		t.Date = *p.Date
	}

	if p.Description != nil {
		t.Description = *p.Description
	}

	if p.Notes != nil {
		t.Notes = *p.Notes
	}

	return t
}

// ListTransactionsParams is the input data to list transactions of an owner.
type ListTransactionsParams struct {
	OwnerID   string
	AccountID uuid.NullUUID
	From      time.Time
	To        time.Time
	Limit     int32
	Offset    int32
}
