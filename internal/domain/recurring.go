package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/go-petr/pet-finance/pkg/moneypkg"
)

var (
	// ErrRecurringRuleNotFound indicates that the recurring rule is not found.
	ErrRecurringRuleNotFound = errors.New("recurring rule not found")
	// ErrInvalidDayOfMonth indicates a day of month outside of 1..31.
	ErrInvalidDayOfMonth = errors.New("day of month must be between 1 and 31")
	// ErrRuleAlreadyRun indicates that the rule was already materialized in the window.
	ErrRuleAlreadyRun = errors.New("recurring rule already run today")
)

// RecurringRule describes a transaction that repeats on a day of every month.
type RecurringRule struct {
	ID          uuid.UUID       `json:"id"`
	OwnerID     string          `json:"owner_id"`
	Name        string          `json:"name"`
	Amount      moneypkg.Amount `json:"amount"`
	Type        TransactionType `json:"type"`
	DayOfMonth  int             `json:"day_of_month"`
	AccountID   uuid.UUID       `json:"account_id"`
	CategoryID  uuid.NullUUID   `json:"category_id"`
	IsActive    bool            `json:"is_active"`
	Timezone    string          `json:"timezone"`
	LastRunDate *time.Time      `json:"last_run_date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// RanWithin reports whether the rule last ran in the [start, end) window.
func (r RecurringRule) RanWithin(start, end time.Time) bool {
	if r.LastRunDate == nil {
		return false
	}

	return !r.LastRunDate.Before(start) && r.LastRunDate.Before(end)
}

// Transaction returns the transaction the rule produces at the given time.
func (r RecurringRule) Transaction(at time.Time) CreateTransactionParams {
	return CreateTransactionParams{
		OwnerID:     r.OwnerID,
		Type:        r.Type,
		Amount:      r.Amount,
		AccountID:   r.AccountID,
		CategoryID:  r.CategoryID,
		Date:        at,
		Description: r.Name,
		IsRecurring: true,
	}
}

// CreateRecurringRuleParams is the input data to create a recurring rule.
type CreateRecurringRuleParams struct {
	OwnerID    string
	Name       string
	Amount     moneypkg.Amount
	Type       TransactionType
	DayOfMonth int
	AccountID  uuid.UUID
	CategoryID uuid.NullUUID
	IsActive   bool
	Timezone   string
}

// UpdateRecurringRuleParams holds the optional fields of a recurring rule update.
type UpdateRecurringRuleParams struct {
	Name       *string
	Amount     *moneypkg.Amount
	Type       *TransactionType
	DayOfMonth *int
	AccountID  *uuid.UUID
	CategoryID *uuid.UUID
	IsActive   *bool
	Timezone   *string
}
