package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/phoenixpme/auction-service/internal/errs"
	repopg "github.com/phoenixpme/auction-service/internal/repository/postgres"
)

func newLedger(t *testing.T) (*Ledger, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewLedger(&repopg.DB{Pool: mock}), mock
}

func TestLedger_Transfer_OK(t *testing.T) {
	l, mock := newLedger(t)
	defer mock.Close()
	created := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT from_addr, to_addr, amount, created_at FROM ledger_transfers`).
		WithArgs("key-1").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`UPDATE ledger_accounts SET balance = balance - \$2`).
		WithArgs("buyer", int64(148)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO ledger_accounts`).
		WithArgs("seller", int64(148)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`INSERT INTO ledger_transfers`).
		WithArgs("key-1", "buyer", "seller", int64(148)).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectCommit()

	r, err := l.Transfer(context.Background(), "buyer", "seller", 148, "key-1")
	require.NoError(t, err)
	require.Equal(t, "key-1", r.ID)
	require.Equal(t, int64(148), r.Amount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_Transfer_ReplaysStoredReceipt(t *testing.T) {
	l, mock := newLedger(t)
	defer mock.Close()
	created := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT from_addr, to_addr, amount, created_at FROM ledger_transfers`).
		WithArgs("key-1").
		WillReturnRows(pgxmock.NewRows([]string{"from_addr", "to_addr", "amount", "created_at"}).
			AddRow("buyer", "seller", int64(148), created))
	mock.ExpectCommit()

	r, err := l.Transfer(context.Background(), "buyer", "seller", 148, "key-1")
	require.NoError(t, err)
	require.Equal(t, int64(148), r.Amount)
	require.Equal(t, "buyer", r.From)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_Transfer_InsufficientFunds(t *testing.T) {
	l, mock := newLedger(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT from_addr, to_addr, amount, created_at FROM ledger_transfers`).
		WithArgs("key-2").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`UPDATE ledger_accounts SET balance = balance - \$2`).
		WithArgs("buyer", int64(500)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	_, err := l.Transfer(context.Background(), "buyer", "seller", 500, "key-2")
	require.ErrorIs(t, err, errs.ErrSettlementFailed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_Transfer_NegativeAmount(t *testing.T) {
	l, mock := newLedger(t)
	defer mock.Close()

	_, err := l.Transfer(context.Background(), "a", "b", -1, "k")
	require.ErrorIs(t, err, errs.ErrSettlementFailed)
}
