// Package goalservice manages business logic layer of savings goals.
package goalservice

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/accountdelivery"
	"github.com/go-petr/pet-finance/internal/domain"
)

var (
	// ErrInvalidGoalStatus indicates an unknown goal status.
	ErrInvalidGoalStatus = errors.New("invalid savings goal status")
	// ErrTargetDateRequired indicates a goal without target date.
	ErrTargetDateRequired = errors.New("target date is required")
)

// Repo provides data access layer interface needed by savings goal service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package goalservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateGoalParams) (domain.SavingsGoal, error)
	Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.SavingsGoal, error)
	List(ctx context.Context, ownerID string) ([]domain.SavingsGoal, error)
	Update(ctx context.Context, ownerID string, id uuid.UUID, arg domain.UpdateGoalParams) (domain.SavingsGoal, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
	Contribute(ctx context.Context, arg domain.ContributeParams) (domain.ContributeResult, error)
}

// Service facilitates savings goal service layer logic.
type Service struct {
	repo           Repo
	accountService accountdelivery.Service
}

// New returns savings goal service.
func New(gr Repo, as accountdelivery.Service) *Service {
	return &Service{
		repo:           gr,
		accountService: as,
	}
}

func validStatus(s domain.GoalStatus) bool {
	switch s {
	case domain.GoalStatusActive, domain.GoalStatusCompleted, domain.GoalStatusCancelled:
		return true
	}

	return false
}

func (s *Service) ownAccount(ctx context.Context, ownerID string, id uuid.UUID) error {
	if _, err := s.accountService.Get(ctx, ownerID, id); err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Stringer("account_id", id).Send()
		return err
	}

	return nil
}

// Create validates and stores a new active goal.
func (s *Service) Create(ctx context.Context, arg domain.CreateGoalParams) (domain.SavingsGoal, error) {
	if !arg.TargetAmount.IsPositive() {
		return domain.SavingsGoal{}, domain.ErrInvalidAmount
	}

	if arg.TargetDate.IsZero() {
		return domain.SavingsGoal{}, ErrTargetDateRequired
	}

	if arg.AccountID.Valid {
		if err := s.ownAccount(ctx, arg.OwnerID, arg.AccountID.UUID); err != nil {
			return domain.SavingsGoal{}, err
		}
	}

	return s.repo.Create(ctx, arg)
}

// Get returns the owner's goal.
func (s *Service) Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.SavingsGoal, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// List returns all goals of the owner.
func (s *Service) List(ctx context.Context, ownerID string) ([]domain.SavingsGoal, error) {
	return s.repo.List(ctx, ownerID)
}

// Update changes the goal. Status transitions are free; only active goals
// accept contributions.
func (s *Service) Update(ctx context.Context, ownerID string, id uuid.UUID, arg domain.UpdateGoalParams) (domain.SavingsGoal, error) {
	if arg.TargetAmount != nil && !arg.TargetAmount.IsPositive() {
		return domain.SavingsGoal{}, domain.ErrInvalidAmount
	}

	if arg.Status != nil && !validStatus(*arg.Status) {
		return domain.SavingsGoal{}, ErrInvalidGoalStatus
	}

	if arg.AccountID != nil {
		if err := s.ownAccount(ctx, ownerID, *arg.AccountID); err != nil {
			return domain.SavingsGoal{}, err
		}
	}

	return s.repo.Update(ctx, ownerID, id, arg)
}

// Delete removes the goal. Money already contributed is not returned to any account.
func (s *Service) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// Contribute moves a positive amount from the owner's account into the goal.
func (s *Service) Contribute(ctx context.Context, arg domain.ContributeParams) (domain.ContributeResult, error) {
	if !arg.Amount.IsPositive() {
		return domain.ContributeResult{}, domain.ErrInvalidAmount
	}

	result, err := s.repo.Contribute(ctx, arg)
	if err != nil {
		return result, err
	}

	zerolog.Ctx(ctx).Info().
		Stringer("goal_id", arg.GoalID).
		Stringer("account_id", arg.AccountID).
		Stringer("amount", arg.Amount).
		Bool("achieved", result.Goal.Achieved()).
		Msg("goal contribution recorded")

	return result, nil
}
