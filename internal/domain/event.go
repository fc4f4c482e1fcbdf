package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChangeKind classifies a transaction write.
type ChangeKind string

// Change kinds.
const (
	ChangeCreate ChangeKind = "CREATE"
	ChangeUpdate ChangeKind = "UPDATE"
	ChangeDelete ChangeKind = "DELETE"
	ChangeNoop   ChangeKind = "NOOP"
)

// TransactionChange is the before and after image of one transaction write.
//
// A nil Before means the transaction was created, a nil After means it was
// deleted.
type TransactionChange struct {
	EventID       uuid.UUID
	OwnerID       string
	TransactionID uuid.UUID
	Version       int64
	Before        *Transaction
	After         *Transaction
}

// Kind returns the kind of the write.
func (c TransactionChange) Kind() ChangeKind {
	switch {
	case c.Before == nil && c.After != nil:
		return ChangeCreate
	case c.Before != nil && c.After == nil:
		return ChangeDelete
	case c.Before != nil && c.After != nil:
		return ChangeUpdate
	}

	return ChangeNoop
}

// TransactionEvent is a change stored in the outbox waiting for delivery.
type TransactionEvent struct {
	TransactionChange
	CreatedAt   time.Time
	DeliveredAt *time.Time
	Attempts    int
	LastError   string
}
