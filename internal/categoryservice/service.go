// Package categoryservice manages business logic layer of categories.
package categoryservice

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/go-petr/pet-finance/internal/domain"
)

// ErrInvalidCategoryType indicates an unknown category type.
var ErrInvalidCategoryType = errors.New("invalid category type")

// ErrNegativeBudgetCap indicates a budget cap below zero.
var ErrNegativeBudgetCap = errors.New("monthly budget cap must not be negative")

// Repo provides data access layer interface needed by category service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package categoryservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateCategoryParams) (domain.Category, error)
	Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.Category, error)
	List(ctx context.Context, ownerID string) ([]domain.Category, error)
	Update(ctx context.Context, ownerID string, id uuid.UUID, arg domain.UpdateCategoryParams) (domain.Category, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
}

// Service facilitates category service layer logic.
type Service struct {
	repo Repo
}

// New returns category service.
func New(cr Repo) *Service {
	return &Service{repo: cr}
}

func validType(t domain.CategoryType) bool {
	switch t {
	case domain.CategoryTypeNeeds, domain.CategoryTypeWants, domain.CategoryTypeSavings, domain.CategoryTypeIncome:
		return true
	}

	return false
}

// Create creates a category.
func (s *Service) Create(ctx context.Context, arg domain.CreateCategoryParams) (domain.Category, error) {
	if !validType(arg.Type) {
		return domain.Category{}, ErrInvalidCategoryType
	}

	if arg.MonthlyBudgetCap != nil && *arg.MonthlyBudgetCap < 0 {
		return domain.Category{}, ErrNegativeBudgetCap
	}

	return s.repo.Create(ctx, arg)
}

// Get returns the owner's category.
func (s *Service) Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.Category, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// List returns all categories of the owner.
func (s *Service) List(ctx context.Context, ownerID string) ([]domain.Category, error) {
	return s.repo.List(ctx, ownerID)
}

// Update changes the category.
func (s *Service) Update(ctx context.Context, ownerID string, id uuid.UUID, arg domain.UpdateCategoryParams) (domain.Category, error) {
	if arg.Type != nil && !validType(*arg.Type) {
		return domain.Category{}, ErrInvalidCategoryType
	}

	if arg.MonthlyBudgetCap != nil && *arg.MonthlyBudgetCap < 0 {
		return domain.Category{}, ErrNegativeBudgetCap
	}

	return s.repo.Update(ctx, ownerID, id, arg)
}

// Delete removes the category. Transactions keep their category id.
func (s *Service) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	return s.repo.Delete(ctx, ownerID, id)
}
