// Package transactionservice manages business logic layer of transactions.
package transactionservice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/accountdelivery"
	"github.com/go-petr/pet-finance/internal/categorydelivery"
	"github.com/go-petr/pet-finance/internal/domain"
)

// ErrInvalidMonth indicates a summary month outside of 1..12.
var ErrInvalidMonth = errors.New("month must be between 1 and 12")

// Repo provides data access layer interface needed by transaction service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transactionservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error)
	Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.Transaction, error)
	List(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error)
	Update(ctx context.Context, ownerID string, id uuid.UUID, arg domain.UpdateTransactionParams) (domain.Transaction, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
	MonthlySummary(ctx context.Context, ownerID string, year int, month time.Month) (domain.MonthlySummary, error)
}

// Service facilitates transaction service layer logic.
type Service struct {
	repo            Repo
	accountService  accountdelivery.Service
	categoryService categorydelivery.Service
	now             func() time.Time
}

// New returns transaction service.
func New(tr Repo, as accountdelivery.Service, cs categorydelivery.Service) *Service {
	return &Service{
		repo:            tr,
		accountService:  as,
		categoryService: cs,
		now:             time.Now,
	}
}

// ownAccounts checks that every referenced account belongs to the owner.
func (s *Service) ownAccounts(ctx context.Context, ownerID string, ids ...uuid.UUID) error {
	l := zerolog.Ctx(ctx)

	for _, id := range ids {
		if _, err := s.accountService.Get(ctx, ownerID, id); err != nil {
			l.Info().Err(err).Stringer("account_id", id).Send()
			return err
		}
	}

	return nil
}

// ownCategory checks that the referenced category belongs to the owner.
func (s *Service) ownCategory(ctx context.Context, ownerID string, id uuid.NullUUID) error {
	if !id.Valid {
		return nil
	}

	if _, err := s.categoryService.Get(ctx, ownerID, id.UUID); err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Stringer("category_id", id.UUID).Send()
		return err
	}

	return nil
}

// Create validates and stores the transaction. The account balances follow
// asynchronously once the change event is delivered.
func (s *Service) Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	if err := arg.Transaction().Validate(); err != nil {
		return domain.Transaction{}, err
	}

	if arg.Date.IsZero() {
		arg.Date = s.now().UTC()
	}

	ids := []uuid.UUID{arg.AccountID}
	if arg.ToAccountID.Valid {
		ids = append(ids, arg.ToAccountID.UUID)
	}

	if err := s.ownAccounts(ctx, arg.OwnerID, ids...); err != nil {
		return domain.Transaction{}, err
	}

	if err := s.ownCategory(ctx, arg.OwnerID, arg.CategoryID); err != nil {
		return domain.Transaction{}, err
	}

	return s.repo.Create(ctx, arg)
}

// Get returns the owner's transaction.
func (s *Service) Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.Transaction, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// List returns a page of the owner's transactions, newest first.
func (s *Service) List(ctx context.Context, arg domain.ListTransactionsParams, pageSize, pageID int32) ([]domain.Transaction, error) {
	arg.Limit = pageSize
	arg.Offset = (pageID - 1) * pageSize

	return s.repo.List(ctx, arg)
}

// Update changes the transaction. The combined result is validated by the
// repository under a row lock.
func (s *Service) Update(ctx context.Context, ownerID string, id uuid.UUID, arg domain.UpdateTransactionParams) (domain.Transaction, error) {
	if arg.Amount != nil && !arg.Amount.IsPositive() {
		return domain.Transaction{}, domain.ErrInvalidAmount
	}

	if arg.Type != nil && !arg.Type.Valid() {
		return domain.Transaction{}, domain.ErrInvalidTransactionType
	}

	var ids []uuid.UUID
	if arg.AccountID != nil {
		ids = append(ids, *arg.AccountID)
	}

	if arg.ToAccountID != nil {
		ids = append(ids, *arg.ToAccountID)
	}

	if err := s.ownAccounts(ctx, ownerID, ids...); err != nil {
		return domain.Transaction{}, err
	}

	if arg.CategoryID != nil {
		if err := s.ownCategory(ctx, ownerID, uuid.NullUUID{UUID: *arg.CategoryID, Valid: true}); err != nil {
			return domain.Transaction{}, err
		}
	}

	return s.repo.Update(ctx, ownerID, id, arg)
}

// Delete removes the transaction.
func (s *Service) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// MonthlySummary returns income, expenses and per category spend of a month.
func (s *Service) MonthlySummary(ctx context.Context, ownerID string, year int, month time.Month) (domain.MonthlySummary, error) {
	if month < time.January || month > time.December {
		return domain.MonthlySummary{}, ErrInvalidMonth
	}

	return s.repo.MonthlySummary(ctx, ownerID, year, month)
}
