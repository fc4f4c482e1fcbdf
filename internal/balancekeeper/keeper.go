// Package balancekeeper keeps stored account balances consistent with the
// transactions that reference them.
//
// Every transaction write is turned into a set of signed per-account deltas
// that are applied as atomic increments, so concurrent writers never lose
// updates.
package balancekeeper

import (
	"bytes"
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/pkg/moneypkg"
)

// Adjustment is a signed change of one account's balance.
type Adjustment struct {
	AccountID uuid.UUID
	Delta     moneypkg.Amount
}

// Contribution returns the signed effect of t on the balance of accountID.
func Contribution(t domain.Transaction, accountID uuid.UUID) moneypkg.Amount {
	switch t.Type {
	case domain.TransactionTypeIncome:
		if t.AccountID == accountID {
			return t.Amount
		}
	case domain.TransactionTypeExpense:
		if t.AccountID == accountID {
			return -t.Amount
		}
	case domain.TransactionTypeTransfer:
		if t.AccountID == accountID {
			return -t.Amount
		}

		if t.ToAccountID.Valid && t.ToAccountID.UUID == accountID {
			return t.Amount
		}
	}

	return 0
}

func accounts(t domain.Transaction) []uuid.UUID {
	ids := []uuid.UUID{t.AccountID}
	if t.Type == domain.TransactionTypeTransfer && t.ToAccountID.Valid {
		ids = append(ids, t.ToAccountID.UUID)
	}

	return ids
}

// Plan returns the balance adjustments a change requires, merged per account,
// without zero deltas and ordered by account id.
func Plan(change domain.TransactionChange) []Adjustment {
	deltas := map[uuid.UUID]moneypkg.Amount{}

	apply := func(t domain.Transaction, sign moneypkg.Amount) {
		for _, id := range accounts(t) {
			deltas[id] += sign * Contribution(t, id)
		}
	}

	switch change.Kind() {
	case domain.ChangeCreate:
		apply(*change.After, 1)
	case domain.ChangeDelete:
		apply(*change.Before, -1)
	case domain.ChangeUpdate:
		if !change.Before.AffectsBalance(*change.After) {
			return nil
		}

		apply(*change.Before, -1)
		apply(*change.After, 1)
	}

	adjustments := make([]Adjustment, 0, len(deltas))

	for id, delta := range deltas {
		if delta != 0 {
			adjustments = append(adjustments, Adjustment{AccountID: id, Delta: delta})
		}
	}

	// Rows are locked in a consistent order to avoid deadlocks between keepers.
	sort.Slice(adjustments, func(i, j int) bool {
		return bytes.Compare(adjustments[i].AccountID[:], adjustments[j].AccountID[:]) < 0
	})

	return adjustments
}

// Ledger applies one change inside a single database transaction.
type Ledger interface {
	RecordProcessed(ctx context.Context, change domain.TransactionChange) (bool, error)
	AddBalance(ctx context.Context, ownerID string, id uuid.UUID, delta moneypkg.Amount) (domain.Account, error)
}

// Store runs fn with a Ledger bound to a new database transaction. The
// transaction is committed when fn returns nil.
//
//go:generate mockgen -source keeper.go -destination keeper_mock.go -package balancekeeper
type Store interface {
	InTx(ctx context.Context, fn func(Ledger) error) error
}

// Keeper applies transaction changes to account balances.
type Keeper struct {
	store Store
}

// New returns a Keeper backed by store.
func New(store Store) *Keeper {
	return &Keeper{store: store}
}

// Handle applies the change to the balances of the affected accounts.
//
// A change already applied is acknowledged without touching balances.
// Accounts that no longer exist are skipped with a warning. Any other error
// aborts the whole change so it can be redelivered.
func (k *Keeper) Handle(ctx context.Context, change domain.TransactionChange) error {
	l := zerolog.Ctx(ctx).With().
		Stringer("transaction_id", change.TransactionID).
		Int64("version", change.Version).
		Str("kind", string(change.Kind())).
		Logger()

	adjustments := Plan(change)

	return k.store.InTx(ctx, func(ledger Ledger) error {
		first, err := ledger.RecordProcessed(ctx, change)
		if err != nil {
			return err
		}

		if !first {
			l.Info().Msg("change already applied")
			return nil
		}

		for _, a := range adjustments {
			_, err := ledger.AddBalance(ctx, change.OwnerID, a.AccountID, a.Delta)
			if errors.Is(err, domain.ErrAccountNotFound) {
				l.Warn().
					Stringer("account_id", a.AccountID).
					Str("delta", a.Delta.String()).
					Msg("account not found, skipping balance adjustment")

				continue
			}

			if err != nil {
				l.Error().Err(err).Stringer("account_id", a.AccountID).Msg("adjusting balance")
				return err
			}
		}

		l.Debug().Int("adjustments", len(adjustments)).Msg("change applied")

		return nil
	})
}
