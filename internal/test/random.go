package test

import (
	"time"

	"github.com/google/uuid"

	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/pkg/currencypkg"
	"github.com/go-petr/pet-finance/pkg/randompkg"
)

// RandomProfile returns random profile with the given id.
func RandomProfile(id string) domain.UserProfile {
	return domain.UserProfile{
		ID:          id,
		Email:       randompkg.Email(),
		DisplayName: randompkg.Name(),
		Currency:    currencypkg.Default,
		FiscalType:  domain.FiscalTypeSalaried,
		CreatedAt:   time.Now().Truncate(time.Second).UTC(),
		UpdatedAt:   time.Now().Truncate(time.Second).UTC(),
	}
}

// RandomAccount returns random account owned by the given owner.
func RandomAccount(ownerID string) domain.Account {
	balance := randompkg.MoneyAmountBetween(1000, 10_000)

	return domain.Account{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Name:           randompkg.Name(),
		Type:           domain.AccountTypeBank,
		CurrentBalance: balance,
		OpeningBalance: balance,
		Currency:       randompkg.Currency(),
		CreatedAt:      time.Now().Truncate(time.Second).UTC(),
		UpdatedAt:      time.Now().Truncate(time.Second).UTC(),
	}
}

// RandomCategory returns random category owned by the given owner.
func RandomCategory(ownerID string) domain.Category {
	budgetCap := randompkg.MoneyAmountBetween(100, 1000)

	return domain.Category{
		ID:               uuid.New(),
		OwnerID:          ownerID,
		Name:             randompkg.Name(),
		Type:             domain.CategoryTypeNeeds,
		Color:            "#10B981",
		Icon:             "ShoppingCart",
		MonthlyBudgetCap: &budgetCap,
		CreatedAt:        time.Now().Truncate(time.Second).UTC(),
		UpdatedAt:        time.Now().Truncate(time.Second).UTC(),
	}
}

// RandomTransaction returns random expense of the given account.
func RandomTransaction(ownerID string, accountID uuid.UUID) domain.Transaction {
	return domain.Transaction{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Type:        domain.TransactionTypeExpense,
		Amount:      randompkg.MoneyAmountBetween(1, 100),
		AccountID:   accountID,
		Date:        randompkg.Date(),
		Description: randompkg.String(12),
		Version:     1,
		CreatedAt:   time.Now().Truncate(time.Second).UTC(),
		UpdatedAt:   time.Now().Truncate(time.Second).UTC(),
	}
}

// RandomRecurringRule returns random active monthly expense rule of the given account.
func RandomRecurringRule(ownerID string, accountID uuid.UUID) domain.RecurringRule {
	return domain.RecurringRule{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Name:       randompkg.Name(),
		Amount:     randompkg.MoneyAmountBetween(10, 500),
		Type:       domain.TransactionTypeExpense,
		DayOfMonth: randompkg.DayOfMonth(),
		AccountID:  accountID,
		IsActive:   true,
		Timezone:   "UTC",
		CreatedAt:  time.Now().Truncate(time.Second).UTC(),
		UpdatedAt:  time.Now().Truncate(time.Second).UTC(),
	}
}

// RandomGoal returns random active savings goal of the given owner.
func RandomGoal(ownerID string) domain.SavingsGoal {
	return domain.SavingsGoal{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Name:         randompkg.Name(),
		TargetAmount: randompkg.MoneyAmountBetween(1000, 5000),
		TargetDate:   time.Now().AddDate(1, 0, 0).Truncate(24 * time.Hour).UTC(),
		Status:       domain.GoalStatusActive,
		CreatedAt:    time.Now().Truncate(time.Second).UTC(),
		UpdatedAt:    time.Now().Truncate(time.Second).UTC(),
	}
}
