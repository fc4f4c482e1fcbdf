package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/go-petr/pet-finance/pkg/moneypkg"
)

// BudgetSeverity is how close a category is to its monthly budget cap.
type BudgetSeverity string

// Budget severities. SeverityNone is used below 75% of the cap and for
// categories without a cap.
const (
	SeverityNone      BudgetSeverity = ""
	SeverityWarning   BudgetSeverity = "warning"
	SeverityCritical  BudgetSeverity = "critical"
	SeverityOverspent BudgetSeverity = "overspent"
)

func (s BudgetSeverity) rank() int {
	switch s {
	case SeverityOverspent:
		return 0
	case SeverityCritical:
		return 1
	case SeverityWarning:
		return 2
	}

	return 3
}

// CategorySpend is the amount spent in one category during a month.
type CategorySpend struct {
	CategoryID       uuid.UUID        `json:"category_id"`
	Name             string           `json:"name"`
	Type             CategoryType     `json:"type"`
	Spent            moneypkg.Amount  `json:"spent"`
	MonthlyBudgetCap *moneypkg.Amount `json:"monthly_budget_cap,omitempty"`
}

func (c CategorySpend) capped() bool {
	return c.MonthlyBudgetCap != nil && *c.MonthlyBudgetCap > 0
}

// OverBudget reports whether the spend exceeds a positive budget cap.
func (c CategorySpend) OverBudget() bool {
	return c.capped() && c.Spent > *c.MonthlyBudgetCap
}

// Percentage returns the share of the cap already spent, 0 without a cap.
func (c CategorySpend) Percentage() float64 {
	if !c.capped() {
		return 0
	}

	return float64(c.Spent) * 100 / float64(*c.MonthlyBudgetCap)
}

// Remaining returns the cap minus the spend. It is negative once the cap is
// exceeded and 0 without a cap.
func (c CategorySpend) Remaining() moneypkg.Amount {
	if !c.capped() {
		return 0
	}

	return *c.MonthlyBudgetCap - c.Spent
}

// Severity classifies the spend: warning from 75%, critical from 90% and
// overspent from 100% of the cap.
func (c CategorySpend) Severity() BudgetSeverity {
	if !c.capped() {
		return SeverityNone
	}

	// Integer minor units keep the tier boundaries exact.
	spent, limit := int64(c.Spent)*100, int64(*c.MonthlyBudgetCap)

	switch {
	case spent >= 100*limit:
		return SeverityOverspent
	case spent >= 90*limit:
		return SeverityCritical
	case spent >= 75*limit:
		return SeverityWarning
	}

	return SeverityNone
}

// BudgetAlert reports a category at or above the warning threshold.
type BudgetAlert struct {
	CategoryID uuid.UUID       `json:"category_id"`
	Name       string          `json:"name"`
	Severity   BudgetSeverity  `json:"severity"`
	Spent      moneypkg.Amount `json:"spent"`
	Budget     moneypkg.Amount `json:"budget"`
	Percentage float64         `json:"percentage"`
	Remaining  moneypkg.Amount `json:"remaining"`
}

// BudgetSplit is the 50/30/20 allocation of a month's income next to the
// actual spend of each category type.
type BudgetSplit struct {
	Income  moneypkg.Amount `json:"income"`
	Needs   SplitBucket     `json:"needs"`
	Wants   SplitBucket     `json:"wants"`
	Savings SplitBucket     `json:"savings"`
}

// SplitBucket is the target and the actual spend of one category type.
type SplitBucket struct {
	Target moneypkg.Amount `json:"target"`
	Spent  moneypkg.Amount `json:"spent"`
}

// MonthlySummary aggregates income and expenses of one calendar month.
type MonthlySummary struct {
	Year       int             `json:"year"`
	Month      time.Month      `json:"month"`
	Income     moneypkg.Amount `json:"income"`
	Expense    moneypkg.Amount `json:"expense"`
	Net        moneypkg.Amount `json:"net"`
	Categories []CategorySpend `json:"categories"`
}

// Alerts returns the categories at or above the warning threshold, most
// severe first and by spent percentage within a severity.
func (s MonthlySummary) Alerts() []BudgetAlert {
	alerts := []BudgetAlert{}

	for _, c := range s.Categories {
		severity := c.Severity()
		if severity == SeverityNone {
			continue
		}

		alerts = append(alerts, BudgetAlert{
			CategoryID: c.CategoryID,
			Name:       c.Name,
			Severity:   severity,
			Spent:      c.Spent,
			Budget:     *c.MonthlyBudgetCap,
			Percentage: c.Percentage(),
			Remaining:  c.Remaining(),
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if ri, rj := alerts[i].Severity.rank(), alerts[j].Severity.rank(); ri != rj {
			return ri < rj
		}

		return alerts[i].Percentage > alerts[j].Percentage
	})

	return alerts
}

// Split allocates 50% of the income to needs, 30% to wants and the rest to
// savings, so the targets always add up to the income.
func (s MonthlySummary) Split() BudgetSplit {
	needs := s.Income * 50 / 100
	wants := s.Income * 30 / 100

	split := BudgetSplit{
		Income:  s.Income,
		Needs:   SplitBucket{Target: needs},
		Wants:   SplitBucket{Target: wants},
		Savings: SplitBucket{Target: s.Income - needs - wants},
	}

	for _, c := range s.Categories {
		switch c.Type {
		case CategoryTypeNeeds:
			split.Needs.Spent += c.Spent
		case CategoryTypeWants:
			split.Wants.Spent += c.Spent
		case CategoryTypeSavings:
			split.Savings.Spent += c.Spent
		}
	}

	return split
}
