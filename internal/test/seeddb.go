// Package test provides shared test helpers.
package test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-petr/pet-finance/internal/accountrepo"
	"github.com/go-petr/pet-finance/internal/categoryrepo"
	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/internal/profilerepo"
	"github.com/go-petr/pet-finance/pkg/currencypkg"
	"github.com/go-petr/pet-finance/pkg/dbpkg"
	"github.com/go-petr/pet-finance/pkg/moneypkg"
	"github.com/go-petr/pet-finance/pkg/randompkg"
)

// SeedProfile creates random profile without categories.
func SeedProfile(t *testing.T, db *sql.DB) domain.UserProfile {
	t.Helper()

	arg := RandomProfile(randompkg.UserID())

	profile, err := profilerepo.NewRepoPGS(db).Create(context.Background(), arg, nil)
	if err != nil {
		t.Fatalf("profileRepo.Create(context.Background(), %+v, nil) returned error: %v", arg, err)
	}

	return profile
}

// SeedAccount creates bank account with the given opening balance.
func SeedAccount(t *testing.T, db dbpkg.SQLInterface, ownerID string, balance moneypkg.Amount) domain.Account {
	t.Helper()

	arg := domain.CreateAccountParams{
		OwnerID:        ownerID,
		Name:           randompkg.Name(),
		Type:           domain.AccountTypeBank,
		InitialBalance: balance,
		Currency:       currencypkg.Default,
	}

	account, err := accountrepo.NewRepoPGS(db).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("accountRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return account
}

// SeedAccounts creates count accounts with random balances.
func SeedAccounts(t *testing.T, db dbpkg.SQLInterface, ownerID string, count int) []domain.Account {
	t.Helper()

	accounts := make([]domain.Account, count)

	for i := range accounts {
		accounts[i] = SeedAccount(t, db, ownerID, randompkg.MoneyAmountBetween(100, 1000))
	}

	return accounts
}

// SeedCategory creates expense category of the given owner.
func SeedCategory(t *testing.T, db dbpkg.SQLInterface, ownerID string) domain.Category {
	t.Helper()

	c := RandomCategory(ownerID)
	arg := domain.CreateCategoryParams{
		OwnerID:          ownerID,
		Name:             c.Name,
		Type:             c.Type,
		Color:            c.Color,
		Icon:             c.Icon,
		MonthlyBudgetCap: c.MonthlyBudgetCap,
	}

	category, err := categoryrepo.NewRepoPGS(db).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("categoryRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return category
}
