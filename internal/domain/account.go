// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/go-petr/pet-finance/pkg/moneypkg"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrOwnerNotFound indicates that the owner profile for the entity is not found.
	ErrOwnerNotFound = errors.New("owner not found")
	// ErrInvalidAccountType indicates an unknown account type.
	ErrInvalidAccountType = errors.New("invalid account type")
)

// AccountType classifies where the money of an account is held.
type AccountType string

// Supported account types.
const (
	AccountTypeCash        AccountType = "CASH"
	AccountTypeBank        AccountType = "BANK"
	AccountTypeMobileMoney AccountType = "MOBILE_MONEY"
	AccountTypeSavings     AccountType = "SAVINGS"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeCash, AccountTypeBank, AccountTypeMobileMoney, AccountTypeSavings:
		return true
	}

	return false
}

// Account holds the balance of a user's wallet, bank or savings account.
//
// CurrentBalance is derived state: it equals OpeningBalance plus the signed
// contributions of every live transaction referencing the account, minus
// goal contributions debited from it.
type Account struct {
	ID             uuid.UUID       `json:"id"`
	OwnerID        string          `json:"owner_id"`
	Name           string          `json:"name"`
	Type           AccountType     `json:"type"`
	CurrentBalance moneypkg.Amount `json:"current_balance"`
	OpeningBalance moneypkg.Amount `json:"opening_balance"`
	IsArchived     bool            `json:"is_archived"`
	Currency       string          `json:"currency,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CreateAccountParams is the input data to create an account.
type CreateAccountParams struct {
	OwnerID        string
	Name           string
	Type           AccountType
	InitialBalance moneypkg.Amount
	Currency       string
}

// UpdateAccountParams holds the optional fields of an account update.
//
// A non-nil CurrentBalance is a manual balance edit.
type UpdateAccountParams struct {
	Name           *string
	Type           *AccountType
	Currency       *string
	IsArchived     *bool
	CurrentBalance *moneypkg.Amount
}

// ListAccountsParams is the input data to list accounts of an owner.
type ListAccountsParams struct {
	OwnerID         string
	IncludeArchived bool
	Limit           int32
	Offset          int32
}

// Reconciliation compares the stored balance of an account with the balance
// replayed from its ledger.
type Reconciliation struct {
	AccountID      uuid.UUID       `json:"account_id"`
	OpeningBalance moneypkg.Amount `json:"opening_balance"`
	StoredBalance  moneypkg.Amount `json:"stored_balance"`
	LedgerBalance  moneypkg.Amount `json:"ledger_balance"`
	Drift          moneypkg.Amount `json:"drift"`
	PendingEvents  int64           `json:"pending_events"`
}

// Consistent reports whether the stored balance matches the ledger.
//
// Pending change events explain a temporary drift, so the result is only
// meaningful when PendingEvents is zero.
func (r Reconciliation) Consistent() bool {
	return r.Drift == 0
}

// NetWorth is the total balance of the owner's active accounts.
type NetWorth struct {
	Total    moneypkg.Amount `json:"total"`
	Accounts int             `json:"accounts"`
}
