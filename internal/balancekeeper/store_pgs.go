package balancekeeper

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/go-petr/pet-finance/internal/accountrepo"
	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/internal/eventrepo"
	"github.com/go-petr/pet-finance/pkg/dbpkg"
	"github.com/go-petr/pet-finance/pkg/moneypkg"
)

// StorePGS runs ledgers on PostgreSQL transactions.
type StorePGS struct {
	conn *sql.DB
}

// NewStorePGS returns StorePGS.
func NewStorePGS(conn *sql.DB) *StorePGS {
	return &StorePGS{conn: conn}
}

type ledgerPGS struct {
	events   *eventrepo.RepoPGS
	accounts *accountrepo.RepoPGS
}

func (l ledgerPGS) RecordProcessed(ctx context.Context, change domain.TransactionChange) (bool, error) {
	return l.events.RecordProcessed(ctx, change)
}

func (l ledgerPGS) AddBalance(ctx context.Context, ownerID string, id uuid.UUID, delta moneypkg.Amount) (domain.Account, error) {
	return l.accounts.AddBalance(ctx, ownerID, id, delta)
}

// InTx runs fn with a ledger bound to a new database transaction.
func (s *StorePGS) InTx(ctx context.Context, fn func(Ledger) error) error {
	return dbpkg.WithTx(ctx, s.conn, func(tx *sql.Tx) error {
		return fn(ledgerPGS{
			events:   eventrepo.NewRepoPGS(tx),
			accounts: accountrepo.NewRepoPGS(tx),
		})
	})
}
