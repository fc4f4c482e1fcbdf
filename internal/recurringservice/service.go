// Package recurringservice manages business logic layer of recurring rules.
package recurringservice

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/accountdelivery"
	"github.com/go-petr/pet-finance/internal/categorydelivery"
	"github.com/go-petr/pet-finance/internal/domain"
)

// ErrInvalidRuleType indicates a rule type other than income or expense.
var ErrInvalidRuleType = errors.New("recurring rules must be INCOME or EXPENSE")

const defaultTimezone = "UTC"

// Repo provides data access layer interface needed by recurring rule service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package recurringservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateRecurringRuleParams) (domain.RecurringRule, error)
	Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.RecurringRule, error)
	List(ctx context.Context, ownerID string) ([]domain.RecurringRule, error)
	Update(ctx context.Context, ownerID string, id uuid.UUID, arg domain.UpdateRecurringRuleParams) (domain.RecurringRule, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
}

// Service facilitates recurring rule service layer logic.
type Service struct {
	repo            Repo
	accountService  accountdelivery.Service
	categoryService categorydelivery.Service
}

// New returns recurring rule service.
func New(rr Repo, as accountdelivery.Service, cs categorydelivery.Service) *Service {
	return &Service{
		repo:            rr,
		accountService:  as,
		categoryService: cs,
	}
}

func validType(t domain.TransactionType) bool {
	return t == domain.TransactionTypeIncome || t == domain.TransactionTypeExpense
}

func validDay(day int) bool {
	return day >= 1 && day <= 31
}

func (s *Service) ownAccount(ctx context.Context, ownerID string, id uuid.UUID) error {
	if _, err := s.accountService.Get(ctx, ownerID, id); err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Stringer("account_id", id).Send()
		return err
	}

	return nil
}

func (s *Service) ownCategory(ctx context.Context, ownerID string, id uuid.UUID) error {
	if _, err := s.categoryService.Get(ctx, ownerID, id); err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Stringer("category_id", id).Send()
		return err
	}

	return nil
}

// Create validates and stores a new active rule.
func (s *Service) Create(ctx context.Context, arg domain.CreateRecurringRuleParams) (domain.RecurringRule, error) {
	switch {
	case !arg.Amount.IsPositive():
		return domain.RecurringRule{}, domain.ErrInvalidAmount
	case !validType(arg.Type):
		return domain.RecurringRule{}, ErrInvalidRuleType
	case !validDay(arg.DayOfMonth):
		return domain.RecurringRule{}, domain.ErrInvalidDayOfMonth
	}

	if err := s.ownAccount(ctx, arg.OwnerID, arg.AccountID); err != nil {
		return domain.RecurringRule{}, err
	}

	if arg.CategoryID.Valid {
		if err := s.ownCategory(ctx, arg.OwnerID, arg.CategoryID.UUID); err != nil {
			return domain.RecurringRule{}, err
		}
	}

	arg.IsActive = true

	if arg.Timezone == "" {
		arg.Timezone = defaultTimezone
	}

	return s.repo.Create(ctx, arg)
}

// Get returns the owner's rule.
func (s *Service) Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.RecurringRule, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// List returns all rules of the owner.
func (s *Service) List(ctx context.Context, ownerID string) ([]domain.RecurringRule, error) {
	return s.repo.List(ctx, ownerID)
}

// Update changes the rule. Deactivated rules are kept but no longer materialized.
func (s *Service) Update(ctx context.Context, ownerID string, id uuid.UUID, arg domain.UpdateRecurringRuleParams) (domain.RecurringRule, error) {
	switch {
	case arg.Amount != nil && !arg.Amount.IsPositive():
		return domain.RecurringRule{}, domain.ErrInvalidAmount
	case arg.Type != nil && !validType(*arg.Type):
		return domain.RecurringRule{}, ErrInvalidRuleType
	case arg.DayOfMonth != nil && !validDay(*arg.DayOfMonth):
		return domain.RecurringRule{}, domain.ErrInvalidDayOfMonth
	}

	if arg.AccountID != nil {
		if err := s.ownAccount(ctx, ownerID, *arg.AccountID); err != nil {
			return domain.RecurringRule{}, err
		}
	}

	if arg.CategoryID != nil {
		if err := s.ownCategory(ctx, ownerID, *arg.CategoryID); err != nil {
			return domain.RecurringRule{}, err
		}
	}

	return s.repo.Update(ctx, ownerID, id, arg)
}

// Delete removes the rule. Transactions it already produced are kept.
func (s *Service) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	return s.repo.Delete(ctx, ownerID, id)
}
