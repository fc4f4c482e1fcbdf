// Package profileservice manages business logic layer of user profiles.
package profileservice

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/pkg/currencypkg"
)

// ErrInvalidFiscalType indicates an unknown fiscal type.
var ErrInvalidFiscalType = errors.New("invalid fiscal type")

// Repo provides data access layer interface needed by profile service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package profileservice
type Repo interface {
	Create(ctx context.Context, arg domain.UserProfile, categories []domain.CreateCategoryParams) (domain.UserProfile, error)
	Get(ctx context.Context, id string) (domain.UserProfile, error)
	Update(ctx context.Context, id string, arg domain.UpdateProfileParams) (domain.UserProfile, error)
}

// Service facilitates profile service layer logic.
type Service struct {
	repo Repo
}

// New returns profile service.
func New(pr Repo) *Service {
	return &Service{repo: pr}
}

func validFiscalType(t domain.FiscalType) bool {
	return t == domain.FiscalTypeSalaried || t == domain.FiscalTypeFreelance
}

// Create creates the caller's profile together with the default category set.
func (s *Service) Create(ctx context.Context, arg domain.UserProfile) (domain.UserProfile, error) {
	if arg.Currency == "" {
		arg.Currency = currencypkg.Default
	}

	if arg.FiscalType == "" {
		arg.FiscalType = domain.FiscalTypeSalaried
	}

	if !validFiscalType(arg.FiscalType) {
		return domain.UserProfile{}, ErrInvalidFiscalType
	}

	categories := domain.DefaultCategories(arg.ID)

	profile, err := s.repo.Create(ctx, arg, categories)
	if err != nil {
		return profile, err
	}

	zerolog.Ctx(ctx).Info().Int("categories", len(categories)).Msg("profile created")

	return profile, nil
}

// Get returns the profile with the given id.
func (s *Service) Get(ctx context.Context, id string) (domain.UserProfile, error) {
	return s.repo.Get(ctx, id)
}

// Update changes the profile preferences.
func (s *Service) Update(ctx context.Context, id string, arg domain.UpdateProfileParams) (domain.UserProfile, error) {
	if arg.FiscalType != nil && !validFiscalType(*arg.FiscalType) {
		return domain.UserProfile{}, ErrInvalidFiscalType
	}

	return s.repo.Update(ctx, id, arg)
}
