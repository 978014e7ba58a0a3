// Package postgres implements the escrow ledger on PostgreSQL. Account
// balances live in ledger_accounts; every transfer is keyed by its
// idempotency key in ledger_transfers, so a retried release returns the
// stored receipt instead of moving funds twice.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/phoenixpme/auction-service/internal/errs"
	"github.com/phoenixpme/auction-service/internal/ledger"
	"github.com/phoenixpme/auction-service/internal/repository/postgres"
)

// Ledger implements ledger.Client using PostgreSQL.
type Ledger struct{ db *postgres.DB }

// NewLedger constructs a Postgres-backed ledger.
func NewLedger(db *postgres.DB) *Ledger { return &Ledger{db: db} }

// Deposit credits an address outside any idempotency scope (operator funding).
func (l *Ledger) Deposit(ctx context.Context, addr string, amount int64) error {
	const q = `
INSERT INTO ledger_accounts (address, balance) VALUES ($1, $2)
ON CONFLICT (address) DO UPDATE SET balance = ledger_accounts.balance + EXCLUDED.balance`
	_, err := l.db.Pool.Exec(ctx, q, addr, amount)
	return err
}

// Balance returns the current balance of addr (zero for unknown addresses).
func (l *Ledger) Balance(ctx context.Context, addr string) (int64, error) {
	const q = `SELECT balance FROM ledger_accounts WHERE address=$1`
	var bal int64
	err := l.db.Pool.QueryRow(ctx, q, addr).Scan(&bal)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return bal, err
}

// Transfer debits from and credits to inside one transaction, idempotent
// under idemKey.
func (l *Ledger) Transfer(ctx context.Context, from, to string, amount int64, idemKey string) (rcpt ledger.Receipt, err error) {
	if amount < 0 {
		return ledger.Receipt{}, fmt.Errorf("%w: negative amount", errs.ErrSettlementFailed)
	}

	tx, err := l.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return ledger.Receipt{}, fmt.Errorf("%w: %v", errs.ErrSettlementFailed, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = fmt.Errorf("%w: commit: %v", errs.ErrSettlementFailed, e)
		}
	}()

	// Replay check first: a transfer under this key already settled.
	const sel = `SELECT from_addr, to_addr, amount, created_at FROM ledger_transfers WHERE idem_key=$1`
	row := tx.QueryRow(ctx, sel, idemKey)
	var prior ledger.Receipt
	scanErr := row.Scan(&prior.From, &prior.To, &prior.Amount, &prior.CreatedAt)
	switch {
	case scanErr == nil:
		prior.ID = idemKey
		return prior, nil
	case !errors.Is(scanErr, pgx.ErrNoRows):
		return ledger.Receipt{}, fmt.Errorf("%w: %v", errs.ErrSettlementFailed, scanErr)
	}

	const debit = `
UPDATE ledger_accounts SET balance = balance - $2
WHERE address=$1 AND balance >= $2`
	tag, err := tx.Exec(ctx, debit, from, amount)
	if err != nil {
		return ledger.Receipt{}, fmt.Errorf("%w: %v", errs.ErrSettlementFailed, err)
	}
	if tag.RowsAffected() == 0 {
		err = fmt.Errorf("%w: insufficient funds at %s", errs.ErrSettlementFailed, from)
		return ledger.Receipt{}, err
	}

	const credit = `
INSERT INTO ledger_accounts (address, balance) VALUES ($1, $2)
ON CONFLICT (address) DO UPDATE SET balance = ledger_accounts.balance + EXCLUDED.balance`
	if _, err = tx.Exec(ctx, credit, to, amount); err != nil {
		return ledger.Receipt{}, fmt.Errorf("%w: %v", errs.ErrSettlementFailed, err)
	}

	const ins = `
INSERT INTO ledger_transfers (idem_key, from_addr, to_addr, amount)
VALUES ($1,$2,$3,$4)
RETURNING created_at`
	rcpt = ledger.Receipt{ID: idemKey, From: from, To: to, Amount: amount}
	if err = tx.QueryRow(ctx, ins, idemKey, from, to, amount).Scan(&rcpt.CreatedAt); err != nil {
		return ledger.Receipt{}, fmt.Errorf("%w: %v", errs.ErrSettlementFailed, err)
	}
	return rcpt, nil
}

var _ ledger.Client = (*Ledger)(nil)
