package recurring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-finance/internal/domain"
)

// memRules keeps rules and materialized transactions in memory and claims
// rules the way the database does.
type memRules struct {
	mu           sync.Mutex
	rules        map[string][]*domain.RecurringRule
	transactions []domain.Transaction
	failRule     uuid.UUID
}

func (m *memRules) ListDue(_ context.Context, ownerID string, day int) ([]domain.RecurringRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var due []domain.RecurringRule

	for _, r := range m.rules[ownerID] {
		if r.DayOfMonth == day {
			due = append(due, *r)
		}
	}

	return due, nil
}

func (m *memRules) Materialize(_ context.Context, rule domain.RecurringRule, now, dayStart, dayEnd time.Time) (domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rule.ID == m.failRule {
		return domain.Transaction{}, errors.New("insert failed")
	}

	for _, r := range m.rules[rule.OwnerID] {
		if r.ID != rule.ID {
			continue
		}

		if r.RanWithin(dayStart, dayEnd) {
			return domain.Transaction{}, domain.ErrRuleAlreadyRun
		}

		at := now
		r.LastRunDate = &at

		p := r.Transaction(now)
		t := domain.Transaction{
			ID:          uuid.New(),
			OwnerID:     p.OwnerID,
			Type:        p.Type,
			Amount:      p.Amount,
			AccountID:   p.AccountID,
			CategoryID:  p.CategoryID,
			Date:        p.Date,
			Description: p.Description,
			IsRecurring: p.IsRecurring,
			Version:     1,
		}
		m.transactions = append(m.transactions, t)

		return t, nil
	}

	return domain.Transaction{}, domain.ErrRuleAlreadyRun
}

type memUsers []string

func (u memUsers) ListIDs(context.Context) ([]string, error) {
	return u, nil
}

func newRule(ownerID string, day int) *domain.RecurringRule {
	return &domain.RecurringRule{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Name:       "Salary",
		Amount:     5000_00,
		Type:       domain.TransactionTypeIncome,
		DayOfMonth: day,
		AccountID:  uuid.New(),
		IsActive:   true,
	}
}

func TestRunCreatesTransaction(t *testing.T) {
	rule := newRule("alice", 15)
	rules := &memRules{rules: map[string][]*domain.RecurringRule{"alice": {rule}}}
	now := time.Date(2024, 3, 15, 0, 0, 3, 0, time.UTC)

	summary, err := New(memUsers{"alice"}, rules).Run(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, summary.Status())
	require.Equal(t, 1, summary.Created)
	require.Len(t, rules.transactions, 1)

	got := rules.transactions[0]
	require.Equal(t, rule.Amount, got.Amount)
	require.Equal(t, rule.Type, got.Type)
	require.Equal(t, rule.AccountID, got.AccountID)
	require.Equal(t, "Salary", got.Description)
	require.True(t, got.IsRecurring)
	require.True(t, got.Date.Equal(now))
	require.NotNil(t, rule.LastRunDate)
}

func TestRunTwiceSameDay(t *testing.T) {
	rules := &memRules{rules: map[string][]*domain.RecurringRule{"alice": {newRule("alice", 15)}}}
	m := New(memUsers{"alice"}, rules)

	first, err := m.Run(context.Background(), time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, 1, first.Created)

	second, err := m.Run(context.Background(), time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, 0, second.Created)
	require.Equal(t, 1, second.Skipped)

	require.Len(t, rules.transactions, 1)
}

func TestRunConcurrentRunsCreateOnce(t *testing.T) {
	rules := &memRules{rules: map[string][]*domain.RecurringRule{"alice": {newRule("alice", 15)}}}
	m := New(memUsers{"alice"}, rules)
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup

	for i := 0; i < 5; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if _, err := m.Run(context.Background(), now); err != nil {
				t.Errorf("Run() returned error: %v", err)
			}
		}()
	}

	wg.Wait()

	require.Len(t, rules.transactions, 1)
}

func TestRunNextMonthFiresAgain(t *testing.T) {
	rules := &memRules{rules: map[string][]*domain.RecurringRule{"alice": {newRule("alice", 15)}}}
	m := New(memUsers{"alice"}, rules)

	_, err := m.Run(context.Background(), time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	_, err = m.Run(context.Background(), time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, rules.transactions, 2)
}

func TestRunDayMissingFromMonth(t *testing.T) {
	rules := &memRules{rules: map[string][]*domain.RecurringRule{"alice": {newRule("alice", 31)}}}
	m := New(memUsers{"alice"}, rules)

	// Every day of April, a 30-day month.
	for day := 1; day <= 30; day++ {
		_, err := m.Run(context.Background(), time.Date(2024, 4, day, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
	}

	require.Empty(t, rules.transactions)

	_, err := m.Run(context.Background(), time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Empty(t, rules.transactions)
}

func TestRunSkipsInactiveRules(t *testing.T) {
	rule := newRule("alice", 15)
	rule.IsActive = false
	rules := &memRules{rules: map[string][]*domain.RecurringRule{"alice": {rule}}}

	summary, err := New(memUsers{"alice"}, rules).Run(context.Background(), time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, 1, summary.Skipped)
	require.Empty(t, rules.transactions)
}

func TestRunIsolatesRuleFailures(t *testing.T) {
	bad := newRule("alice", 15)
	good := newRule("alice", 15)
	other := newRule("bob", 15)

	rules := &memRules{
		rules: map[string][]*domain.RecurringRule{
			"alice": {bad, good},
			"bob":   {other},
		},
		failRule: bad.ID,
	}

	summary, err := New(memUsers{"alice", "bob"}, rules).Run(context.Background(), time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Equal(t, 3, summary.Processed)
	require.Equal(t, 2, summary.Created)
	require.Equal(t, 1, summary.Failed)
	require.Equal(t, StatusPartialFailure, summary.Status())
	require.Len(t, summary.Failures, 1)
	require.Equal(t, bad.ID, summary.Failures[0].RuleID)
	require.Len(t, rules.transactions, 2)
}

func TestRunErrors(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	errDB := errors.New("conn refused")

	t.Run("ListUsersFails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		users := NewMockUsers(ctrl)
		rules := NewMockRules(ctrl)

		users.EXPECT().ListIDs(gomock.Any()).Return(nil, errDB)
		rules.EXPECT().ListDue(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := New(users, rules).Run(context.Background(), now)
		require.ErrorIs(t, err, errDB)
	})

	t.Run("ListRulesFailsForOneUser", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		users := NewMockUsers(ctrl)
		rules := NewMockRules(ctrl)
		rule := newRule("bob", 15)

		users.EXPECT().ListIDs(gomock.Any()).Return([]string{"alice", "bob"}, nil)
		rules.EXPECT().ListDue(gomock.Any(), "alice", 15).Return(nil, errDB)
		rules.EXPECT().ListDue(gomock.Any(), "bob", 15).Return([]domain.RecurringRule{*rule}, nil)
		rules.EXPECT().
			Materialize(gomock.Any(), *rule, now, now, now.Add(24*time.Hour)).
			Return(domain.Transaction{ID: uuid.New()}, nil)

		summary, err := New(users, rules).Run(context.Background(), now)
		require.NoError(t, err)
		require.Equal(t, 1, summary.Created)
		require.Equal(t, 1, summary.Failed)
		require.Equal(t, "alice", summary.Failures[0].OwnerID)
		require.Equal(t, uuid.Nil, summary.Failures[0].RuleID)
		require.Equal(t, StatusPartialFailure, summary.Status())
	})

	t.Run("AllRulesFail", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		users := NewMockUsers(ctrl)
		rules := NewMockRules(ctrl)
		rule := newRule("alice", 15)

		users.EXPECT().ListIDs(gomock.Any()).Return([]string{"alice"}, nil)
		rules.EXPECT().ListDue(gomock.Any(), "alice", 15).Return([]domain.RecurringRule{*rule}, nil)
		rules.EXPECT().Materialize(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.Transaction{}, errDB)

		summary, err := New(users, rules).Run(context.Background(), now)
		require.NoError(t, err)
		require.Equal(t, StatusFailure, summary.Status())
	})
}

func TestSummaryStatus(t *testing.T) {
	testCases := []struct {
		name    string
		summary Summary
		want    Status
	}{
		{"Empty", Summary{}, StatusSuccess},
		{"AllCreated", Summary{Processed: 2, Created: 2}, StatusSuccess},
		{"SomeFailed", Summary{Processed: 2, Created: 1, Failed: 1}, StatusPartialFailure},
		{"SkippedAndFailed", Summary{Processed: 2, Skipped: 1, Failed: 1}, StatusPartialFailure},
		{"AllFailed", Summary{Processed: 2, Failed: 2}, StatusFailure},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			if got := tc.summary.Status(); got != tc.want {
				t.Errorf("Status() = %v, want %v", got, tc.want)
			}
		})
	}
}
