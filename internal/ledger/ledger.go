// Package ledger abstracts settlement-token movement. The auction service
// calls it only at release time; everything network- or chain-specific stays
// behind the Client interface.
package ledger

import (
	"context"
	"time"
)

// Receipt records a completed transfer.
type Receipt struct {
	ID        string    `json:"id"` // equals the idempotency key
	From      string    `json:"from"`
	To        string    `json:"to"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// Client moves settlement tokens between addresses.
//
// Transfer is all-or-nothing and must be idempotent under idemKey: a retried
// call with the same key returns the original receipt without moving funds
// again. Any network/signing/insufficient-funds failure is reported wrapped
// in errs.ErrSettlementFailed.
type Client interface {
	Transfer(ctx context.Context, from, to string, amount int64, idemKey string) (Receipt, error)
}
