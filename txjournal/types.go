// Package txjournal keeps a local record of every send the wallet attempts.
package txjournal

import (
	"context"
	"errors"
	"time"
)

type Status string

const (
	STATUS_PENDING   Status = "pending"   // built, not yet accepted by any provider
	STATUS_BROADCAST Status = "broadcast" // accepted, waiting for confirmations
	STATUS_CONFIRMED Status = "confirmed"
	STATUS_FAILED    Status = "failed"
)

var ErrNotFound = errors.New("journal entry not found")

// Entry is one send attempt.
type Entry struct {
	ID            string
	Asset         string
	Network       string
	From          string
	To            string
	Amount        int64 // smallest unit
	Fee           int64
	TxID          string
	Status        Status
	Confirmations int64
	Error         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Journal is what the wallet writes to while a send progresses.
type Journal interface {
	// Open records a new pending entry and returns its id.
	Open(ctx context.Context, e Entry) (string, error)

	// MarkBroadcast stores the transaction id accepted by the network.
	MarkBroadcast(ctx context.Context, id string, txID string) error

	// MarkConfirmed stores the confirmation count that settled the send.
	MarkConfirmed(ctx context.Context, id string, confirmations int64) error

	// MarkFailed stores the reason a send did not complete.
	MarkFailed(ctx context.Context, id string, reason error) error
}

// Reader queries the journal.
type Reader interface {
	Get(ctx context.Context, id string) (*Entry, error)
	GetByTxID(ctx context.Context, txID string) (*Entry, error)
	List(ctx context.Context, asset string, limit int) ([]Entry, error)
}

// Nop discards every write.
type Nop struct{}

func (Nop) Open(context.Context, Entry) (string, error) { return "", nil }
func (Nop) MarkBroadcast(context.Context, string, string) error { return nil }
func (Nop) MarkConfirmed(context.Context, string, int64) error { return nil }
func (Nop) MarkFailed(context.Context, string, error) error { return nil }
