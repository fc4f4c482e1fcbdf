// Package recurring turns due recurring rules into transactions.
package recurring

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/domain"
)

// Users lists the users whose rules are materialized.
//
//go:generate mockgen -source materializer.go -destination materializer_mock.go -package recurring
type Users interface {
	ListIDs(ctx context.Context) ([]string, error)
}

// Rules provides access to recurring rules.
type Rules interface {
	ListDue(ctx context.Context, ownerID string, day int) ([]domain.RecurringRule, error)
	Materialize(ctx context.Context, rule domain.RecurringRule, now, dayStart, dayEnd time.Time) (domain.Transaction, error)
}

// Status is the overall outcome of a run.
type Status string

// Run statuses.
const (
	StatusSuccess        Status = "success"
	StatusPartialFailure Status = "partial_failure"
	StatusFailure        Status = "failure"
)

// Failure records a rule, or a whole user when RuleID is nil, that could not
// be processed.
type Failure struct {
	OwnerID string
	RuleID  uuid.UUID
	Err     error
}

// Summary reports the outcome of a run.
type Summary struct {
	Day       time.Time
	Processed int
	Created   int
	Skipped   int
	Failed    int
	Failures  []Failure
}

// Status returns success when nothing failed, failure when nothing but
// failures happened and partial_failure otherwise.
func (s Summary) Status() Status {
	switch {
	case s.Failed == 0:
		return StatusSuccess
	case s.Created == 0 && s.Skipped == 0:
		return StatusFailure
	}

	return StatusPartialFailure
}

// Materializer creates the transactions of recurring rules due on a day.
type Materializer struct {
	users Users
	rules Rules
}

// New returns a Materializer.
func New(users Users, rules Rules) *Materializer {
	return &Materializer{
		users: users,
		rules: rules,
	}
}

// Run materializes every rule scheduled on the UTC day of now that has not
// run yet that day. Rules for days missing from the month never fire.
//
// Failures of single users or rules are recorded in the summary and do not
// stop the run. Only a failure to list users is returned as an error.
func (m *Materializer) Run(ctx context.Context, now time.Time) (Summary, error) {
	now = now.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)
	day := dayStart.Day()

	l := zerolog.Ctx(ctx).With().Str("day", dayStart.Format(time.DateOnly)).Logger()
	l.Info().Int("day_of_month", day).Msg("processing recurring rules")

	summary := Summary{Day: dayStart}

	ownerIDs, err := m.users.ListIDs(ctx)
	if err != nil {
		l.Error().Err(err).Msg("listing users")
		return summary, err
	}

	for _, ownerID := range ownerIDs {
		ul := l.With().Str("owner_id", ownerID).Logger()

		rules, err := m.rules.ListDue(ctx, ownerID, day)
		if err != nil {
			ul.Error().Err(err).Msg("listing due rules")
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{OwnerID: ownerID, Err: err})

			continue
		}

		for _, rule := range rules {
			summary.Processed++

			rl := ul.With().Stringer("rule_id", rule.ID).Str("rule", rule.Name).Logger()

			if !rule.IsActive {
				rl.Debug().Msg("skipping inactive rule")
				summary.Skipped++

				continue
			}

			if rule.RanWithin(dayStart, dayEnd) {
				rl.Info().Msg("skipping rule, already processed today")
				summary.Skipped++

				continue
			}

			t, err := m.rules.Materialize(ctx, rule, now, dayStart, dayEnd)
			if errors.Is(err, domain.ErrRuleAlreadyRun) {
				rl.Info().Msg("skipping rule, claimed by another run")
				summary.Skipped++

				continue
			}

			if err != nil {
				rl.Error().Err(err).Msg("materializing rule")
				summary.Failed++
				summary.Failures = append(summary.Failures, Failure{OwnerID: ownerID, RuleID: rule.ID, Err: err})

				continue
			}

			rl.Info().Stringer("transaction_id", t.ID).Msg("created recurring transaction")
			summary.Created++
		}
	}

	event := l.Info()
	if summary.Failed > 0 {
		event = l.Warn()
	}

	event.
		Str("status", string(summary.Status())).
		Int("processed", summary.Processed).
		Int("created", summary.Created).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("recurring run completed")

	return summary, nil
}
