package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/go-petr/pet-finance/pkg/moneypkg"
)

// ErrCategoryNotFound indicates that the category is not found.
var ErrCategoryNotFound = errors.New("category not found")

// CategoryType groups categories by the 50/30/20 budgeting rule.
type CategoryType string

// Supported category types.
const (
	CategoryTypeNeeds   CategoryType = "NEEDS"
	CategoryTypeWants   CategoryType = "WANTS"
	CategoryTypeSavings CategoryType = "SAVINGS"
	CategoryTypeIncome  CategoryType = "INCOME"
)

// Category labels transactions and optionally caps monthly spending.
type Category struct {
	ID               uuid.UUID        `json:"id"`
	OwnerID          string           `json:"owner_id"`
	Name             string           `json:"name"`
	Type             CategoryType     `json:"type"`
	Color            string           `json:"color"`
	Icon             string           `json:"icon"`
	MonthlyBudgetCap *moneypkg.Amount `json:"monthly_budget_cap,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// CreateCategoryParams is the input data to create a category.
type CreateCategoryParams struct {
	OwnerID          string
	Name             string
	Type             CategoryType
	Color            string
	Icon             string
	MonthlyBudgetCap *moneypkg.Amount
}

// UpdateCategoryParams holds the optional fields of a category update.
type UpdateCategoryParams struct {
	Name             *string
	Type             *CategoryType
	Color            *string
	Icon             *string
	MonthlyBudgetCap *moneypkg.Amount
}

// DefaultCategories returns the category set seeded for a new profile.
func DefaultCategories(ownerID string) []CreateCategoryParams {
	defaults := []struct {
		name  string
		typ   CategoryType
		color string
		icon  string
	}{
		{"Rent/Mortgage", CategoryTypeNeeds, "#8B5CF6", "Home"},
		{"Utilities", CategoryTypeNeeds, "#F59E0B", "Zap"},
		{"Groceries", CategoryTypeNeeds, "#10B981", "ShoppingCart"},
		{"Transport", CategoryTypeNeeds, "#3B82F6", "Car"},
		{"Insurance", CategoryTypeNeeds, "#6366F1", "Shield"},
		{"Healthcare", CategoryTypeNeeds, "#EF4444", "Heart"},
		{"Debt Payments", CategoryTypeNeeds, "#DC2626", "CreditCard"},
		{"Dining Out", CategoryTypeWants, "#F97316", "UtensilsCrossed"},
		{"Entertainment", CategoryTypeWants, "#EC4899", "Film"},
		{"Shopping", CategoryTypeWants, "#A855F7", "ShoppingBag"},
		{"Subscriptions", CategoryTypeWants, "#06B6D4", "Tv"},
		{"Hobbies", CategoryTypeWants, "#14B8A6", "Palette"},
		{"Travel", CategoryTypeWants, "#0EA5E9", "Plane"},
		{"Personal Care", CategoryTypeWants, "#F472B6", "Sparkles"},
		{"Emergency Fund", CategoryTypeSavings, "#059669", "Wallet"},
		{"Investments", CategoryTypeSavings, "#0891B2", "TrendingUp"},
		{"Retirement", CategoryTypeSavings, "#7C3AED", "PiggyBank"},
		{"Savings Goal", CategoryTypeSavings, "#16A34A", "Target"},
		{"Salary", CategoryTypeIncome, "#10B981", "Briefcase"},
		{"Freelance", CategoryTypeIncome, "#06B6D4", "Laptop"},
		{"Side Hustle", CategoryTypeIncome, "#8B5CF6", "Rocket"},
		{"Dividends", CategoryTypeIncome, "#0891B2", "TrendingUp"},
		{"Gifts", CategoryTypeIncome, "#EC4899", "Gift"},
		{"Other Income", CategoryTypeIncome, "#6366F1", "DollarSign"},
	}

	params := make([]CreateCategoryParams, 0, len(defaults))
	for _, d := range defaults {
		var zero moneypkg.Amount

		params = append(params, CreateCategoryParams{
			OwnerID:          ownerID,
			Name:             d.name,
			Type:             d.typ,
			Color:            d.color,
			Icon:             d.icon,
			MonthlyBudgetCap: &zero,
		})
	}

	return params
}
