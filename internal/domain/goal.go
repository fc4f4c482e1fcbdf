package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/go-petr/pet-finance/pkg/moneypkg"
)

var (
	// ErrGoalNotFound indicates that the savings goal is not found.
	ErrGoalNotFound = errors.New("savings goal not found")
	// ErrGoalNotActive indicates a contribution to a completed or cancelled goal.
	ErrGoalNotActive = errors.New("savings goal is not active")
)

// GoalStatus is the lifecycle state of a savings goal.
type GoalStatus string

// Supported goal statuses.
const (
	GoalStatusActive    GoalStatus = "ACTIVE"
	GoalStatusCompleted GoalStatus = "COMPLETED"
	GoalStatusCancelled GoalStatus = "CANCELLED"
)

// SavingsGoal tracks progress towards a target amount.
type SavingsGoal struct {
	ID            uuid.UUID       `json:"id"`
	OwnerID       string          `json:"owner_id"`
	Name          string          `json:"name"`
	TargetAmount  moneypkg.Amount `json:"target_amount"`
	CurrentAmount moneypkg.Amount `json:"current_amount"`
	TargetDate    time.Time       `json:"target_date"`
	AccountID     uuid.NullUUID   `json:"account_id"`
	Status        GoalStatus      `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Progress returns the completion percentage capped at 100.
func (g SavingsGoal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}

	p := float64(g.CurrentAmount) / float64(g.TargetAmount) * 100
	if p > 100 {
		return 100
	}

	return p
}

// Achieved reports whether the target amount has been reached.
func (g SavingsGoal) Achieved() bool {
	return g.CurrentAmount >= g.TargetAmount
}

// Remaining returns the amount left to reach the target.
func (g SavingsGoal) Remaining() moneypkg.Amount {
	if g.Achieved() {
		return 0
	}

	return g.TargetAmount - g.CurrentAmount
}

// MonthlyRequirement returns the amount to save every month to reach the
// target by the target date. When the target month has arrived the whole
// remainder is due.
func (g SavingsGoal) MonthlyRequirement(now time.Time) moneypkg.Amount {
	remaining := g.Remaining()
	if remaining == 0 {
		return 0
	}

	months := (g.TargetDate.Year()-now.Year())*12 + int(g.TargetDate.Month()-now.Month())
	if months <= 0 {
		return remaining
	}

	// Round up so the target is never missed by a cent.
	per := remaining / moneypkg.Amount(months)
	if remaining%moneypkg.Amount(months) != 0 {
		per++
	}

	return per
}

// CreateGoalParams is the input data to create a savings goal.
type CreateGoalParams struct {
	OwnerID      string
	Name         string
	TargetAmount moneypkg.Amount
	TargetDate   time.Time
	AccountID    uuid.NullUUID
}

// UpdateGoalParams holds the optional fields of a savings goal update.
type UpdateGoalParams struct {
	Name         *string
	TargetAmount *moneypkg.Amount
	TargetDate   *time.Time
	AccountID    *uuid.UUID
	Status       *GoalStatus
}

// ContributeParams is the input data of a goal contribution.
type ContributeParams struct {
	OwnerID   string
	GoalID    uuid.UUID
	AccountID uuid.UUID
	Amount    moneypkg.Amount
}

// GoalContribution is a record of money moved from an account into a goal.
type GoalContribution struct {
	ID        uuid.UUID       `json:"id"`
	GoalID    uuid.UUID       `json:"goal_id"`
	OwnerID   string          `json:"owner_id"`
	AccountID uuid.UUID       `json:"account_id"`
	Amount    moneypkg.Amount `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// ContributeResult is the outcome of a goal contribution.
type ContributeResult struct {
	Goal         SavingsGoal      `json:"goal"`
	Account      Account          `json:"account"`
	Contribution GoalContribution `json:"contribution"`
}
