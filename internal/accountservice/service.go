// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/pkg/currencypkg"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.Account, error)
	List(ctx context.Context, arg domain.ListAccountsParams) ([]domain.Account, error)
	Update(ctx context.Context, ownerID string, id uuid.UUID, arg domain.UpdateAccountParams) (domain.Account, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
	Reconcile(ctx context.Context, ownerID string, id uuid.UUID) (domain.Reconciliation, error)
	NetWorth(ctx context.Context, ownerID string) (domain.NetWorth, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo Repo
}

// New returns account service struct to manage account bussines logic.
func New(ar Repo) *Service {
	return &Service{repo: ar}
}

// Create creates an account with the given opening balance.
func (s *Service) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	if !arg.Type.Valid() {
		return domain.Account{}, domain.ErrInvalidAccountType
	}

	if arg.Currency == "" {
		arg.Currency = currencypkg.Default
	}

	return s.repo.Create(ctx, arg)
}

// Get returns the account of the owner with the given id.
func (s *Service) Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.Account, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// List returns a page of the owner's accounts.
func (s *Service) List(ctx context.Context, ownerID string, includeArchived bool, pageSize, pageID int32) ([]domain.Account, error) {
	return s.repo.List(ctx, domain.ListAccountsParams{
		OwnerID:         ownerID,
		IncludeArchived: includeArchived,
		Limit:           pageSize,
		Offset:          (pageID - 1) * pageSize,
	})
}

// Update changes the account details. A manual balance edit is logged
// since it resets the account's opening balance.
func (s *Service) Update(ctx context.Context, ownerID string, id uuid.UUID, arg domain.UpdateAccountParams) (domain.Account, error) {
	if arg.Type != nil && !arg.Type.Valid() {
		return domain.Account{}, domain.ErrInvalidAccountType
	}

	if arg.CurrentBalance != nil {
		zerolog.Ctx(ctx).Info().
			Stringer("account_id", id).
			Stringer("balance", arg.CurrentBalance).
			Msg("manual balance edit")
	}

	return s.repo.Update(ctx, ownerID, id, arg)
}

// Archive hides the account from listings and net worth without deleting it.
func (s *Service) Archive(ctx context.Context, ownerID string, id uuid.UUID) (domain.Account, error) {
	archived := true

	return s.repo.Update(ctx, ownerID, id, domain.UpdateAccountParams{IsArchived: &archived})
}

// Delete removes the account. Transactions referencing it are kept.
func (s *Service) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// Reconcile compares the stored balance with the balance replayed from the ledger.
func (s *Service) Reconcile(ctx context.Context, ownerID string, id uuid.UUID) (domain.Reconciliation, error) {
	r, err := s.repo.Reconcile(ctx, ownerID, id)
	if err != nil {
		return r, err
	}

	if !r.Consistent() && r.PendingEvents == 0 {
		zerolog.Ctx(ctx).Warn().
			Stringer("account_id", id).
			Stringer("drift", r.Drift).
			Msg("account balance drifted from ledger")
	}

	return r, nil
}

// NetWorth returns the total balance of the owner's active accounts.
func (s *Service) NetWorth(ctx context.Context, ownerID string) (domain.NetWorth, error) {
	return s.repo.NetWorth(ctx, ownerID)
}
