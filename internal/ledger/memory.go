package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/phoenixpme/auction-service/internal/errs"
)

// InMemory is a balance-tracking Client for dev mode and tests.
type InMemory struct {
	mu        sync.Mutex
	balances  map[string]int64
	transfers map[string]Receipt
}

// NewInMemory constructs an empty in-memory ledger.
func NewInMemory() *InMemory {
	return &InMemory{
		balances:  make(map[string]int64),
		transfers: make(map[string]Receipt),
	}
}

// Deposit credits an address (dev funding, no idempotency).
func (l *InMemory) Deposit(addr string, amount int64) {
	l.mu.Lock()
	l.balances[addr] += amount
	l.mu.Unlock()
}

// Balance returns the current balance of addr.
func (l *InMemory) Balance(addr string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[addr]
}

// Transfer debits from and credits to, idempotent under idemKey.
func (l *InMemory) Transfer(_ context.Context, from, to string, amount int64, idemKey string) (Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if prior, ok := l.transfers[idemKey]; ok {
		return prior, nil
	}
	if amount < 0 {
		return Receipt{}, fmt.Errorf("%w: negative amount", errs.ErrSettlementFailed)
	}
	if l.balances[from] < amount {
		return Receipt{}, fmt.Errorf("%w: insufficient funds at %s", errs.ErrSettlementFailed, from)
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	r := Receipt{ID: idemKey, From: from, To: to, Amount: amount, CreatedAt: time.Now()}
	l.transfers[idemKey] = r
	return r, nil
}

var _ Client = (*InMemory)(nil)
