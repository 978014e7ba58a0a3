package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/phoenixpme/auction-service/internal/errs"
	"github.com/phoenixpme/auction-service/internal/model"
	"github.com/phoenixpme/auction-service/internal/repository"
)

// AuctionStore implements repository.AuctionStore using PostgreSQL.
//
// The auctions row carries the current highest bid inline (nullable columns)
// plus a ver column; Save does a conditional UPDATE on ver, which is the
// whole optimistic-concurrency story.
type AuctionStore struct{ db *DB }

// NewAuctionStore constructs an auction store.
func NewAuctionStore(db *DB) *AuctionStore { return &AuctionStore{db: db} }

const auctionCols = `id, seller, item_description, starting_price, reserve_price,
end_time, status, high_bidder, high_amount, high_placed_at, bid_count,
winner, winning_amount, ver, created_at`

// Create inserts a new auction at version 0.
func (s *AuctionStore) Create(ctx context.Context, a *model.Auction) error {
	const q = `
INSERT INTO auctions (id, seller, item_description, starting_price, reserve_price,
                      end_time, status, bid_count, winner, winning_amount, ver, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,0,'',0,0,$8)`
	_, err := s.db.Pool.Exec(ctx, q,
		a.ID, a.Seller, a.ItemDescription, a.StartingPrice, a.ReservePrice,
		a.EndTime, string(a.Status), a.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// Get loads an auction by id.
func (s *AuctionStore) Get(ctx context.Context, id uuid.UUID) (*model.Auction, error) {
	const q = `SELECT ` + auctionCols + ` FROM auctions WHERE id=$1`
	a, err := scanAuction(s.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

const saveQuery = `
UPDATE auctions
SET status=$2, high_bidder=$3, high_amount=$4, high_placed_at=$5,
    bid_count=$6, winner=$7, winning_amount=$8, ver=$9
WHERE id=$1 AND ver=$10`

// Save persists the full auction state conditioned on a.Ver.
func (s *AuctionStore) Save(ctx context.Context, a *model.Auction) error {
	tag, err := s.db.Pool.Exec(ctx, saveQuery, saveArgs(a)...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrConflict
	}
	a.Ver++
	return nil
}

// SaveWithBid commits the conditional auction update and the bids insert in
// one transaction; a failed insert rolls the state transition back.
func (s *AuctionStore) SaveWithBid(ctx context.Context, a *model.Auction, b *model.Bid) (err error) {
	tx, err := s.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		} else {
			a.Ver++
		}
	}()

	tag, err := tx.Exec(ctx, saveQuery, saveArgs(a)...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrConflict
	}

	const ins = `INSERT INTO bids (auction_id, bidder, amount, placed_at) VALUES ($1,$2,$3,$4)`
	_, err = tx.Exec(ctx, ins, b.AuctionID, b.Bidder, b.Amount, b.PlacedAt)
	return err
}

func saveArgs(a *model.Auction) []any {
	var (
		highBidder   *string
		highAmount   *int64
		highPlacedAt *time.Time
	)
	if hb := a.HighestBid; hb != nil {
		highBidder, highAmount, highPlacedAt = &hb.Bidder, &hb.Amount, &hb.PlacedAt
	}
	return []any{
		a.ID, string(a.Status), highBidder, highAmount, highPlacedAt,
		a.BidCount, a.Winner, a.WinningAmount, a.Ver + 1, a.Ver,
	}
}

// ListBids returns the full bid history ordered by placed_at ascending.
func (s *AuctionStore) ListBids(ctx context.Context, auctionID uuid.UUID) ([]model.Bid, error) {
	const q = `
SELECT auction_id, bidder, amount, placed_at
FROM bids WHERE auction_id=$1
ORDER BY placed_at ASC, id ASC`
	rows, err := s.db.Pool.Query(ctx, q, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Bid
	for rows.Next() {
		var b model.Bid
		if err = rows.Scan(&b.AuctionID, &b.Bidder, &b.Amount, &b.PlacedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// List returns auctions matching the filter, newest first.
func (s *AuctionStore) List(ctx context.Context, f repository.ListFilter) ([]model.Auction, error) {
	const q = `
SELECT ` + auctionCols + `
FROM auctions
WHERE ($1 = '' OR status = $1) AND ($2 = '' OR seller = $2)
ORDER BY created_at DESC`
	rows, err := s.db.Pool.Query(ctx, q, string(f.Status), f.Seller)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func scanAuction(row pgx.Row) (*model.Auction, error) {
	var (
		a            model.Auction
		status       string
		highBidder   *string
		highAmount   *int64
		highPlacedAt *time.Time
	)
	if err := row.Scan(
		&a.ID, &a.Seller, &a.ItemDescription, &a.StartingPrice, &a.ReservePrice,
		&a.EndTime, &status, &highBidder, &highAmount, &highPlacedAt, &a.BidCount,
		&a.Winner, &a.WinningAmount, &a.Ver, &a.CreatedAt,
	); err != nil {
		return nil, err
	}
	a.Status = model.AuctionStatus(status)
	if highBidder != nil && highAmount != nil && highPlacedAt != nil {
		a.HighestBid = &model.Bid{
			AuctionID: a.ID,
			Bidder:    *highBidder,
			Amount:    *highAmount,
			PlacedAt:  *highPlacedAt,
		}
	}
	return &a, nil
}
