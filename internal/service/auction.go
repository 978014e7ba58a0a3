// Package service contains application services for auctions and authentication.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/phoenixpme/auction-service/internal/clock"
	"github.com/phoenixpme/auction-service/internal/errs"
	"github.com/phoenixpme/auction-service/internal/ledger"
	"github.com/phoenixpme/auction-service/internal/model"
	"github.com/phoenixpme/auction-service/internal/notify"
	"github.com/phoenixpme/auction-service/internal/repository"
)

// saveAttempts bounds the optimistic-concurrency retry loop per operation.
const saveAttempts = 3

// AuctionService owns auction and bid state and enforces the bidding protocol.
type AuctionService interface {
	// CreateAuction opens a new Active auction for the seller.
	CreateAuction(ctx context.Context, seller, itemDescription string, startingPrice int64, duration time.Duration, reservePrice int64) (*model.Auction, error)
	// PlaceBid accepts a strictly higher bid while the auction is Active.
	PlaceBid(ctx context.Context, auctionID uuid.UUID, bidder string, amount int64) (*model.Bid, error)
	// EndAuction closes bidding; seller any time, anyone after expiry.
	EndAuction(ctx context.Context, auctionID uuid.UUID, caller string) (*model.Auction, error)
	// ReleaseFunds settles an Ended auction through the ledger.
	ReleaseFunds(ctx context.Context, auctionID uuid.UUID, caller string) (*model.Auction, error)
	// CancelAuction withdraws an Active auction that never received a bid.
	CancelAuction(ctx context.Context, auctionID uuid.UUID, caller string) (*model.Auction, error)
	// GetAuction fetches one auction.
	GetAuction(ctx context.Context, auctionID uuid.UUID) (*model.Auction, error)
	// ListAuctions returns auctions matching the filter.
	ListAuctions(ctx context.Context, f repository.ListFilter) ([]model.Auction, error)
	// ListBids returns the bid history, oldest first.
	ListBids(ctx context.Context, auctionID uuid.UUID) ([]model.Bid, error)
}

// AuctionConfig carries the tunable protocol parameters.
type AuctionConfig struct {
	FeeRate         FeeRate
	MinBidIncrement int64 // smallest unit by default
	PlatformAddress string
	MaxDescription  int           // item description length cap, 0 = default
	DefaultDuration time.Duration // used when a create request omits duration
}

type AuctionServiceImpl struct {
	store  repository.AuctionStore
	ledger ledger.Client
	sink   notify.Sink
	clock  clock.Clock
	cfg    AuctionConfig
}

// NewAuctionService constructs the auction lifecycle service.
func NewAuctionService(store repository.AuctionStore, lc ledger.Client, sink notify.Sink, clk clock.Clock, cfg AuctionConfig) *AuctionServiceImpl {
	if cfg.MinBidIncrement <= 0 {
		cfg.MinBidIncrement = 1
	}
	if cfg.MaxDescription <= 0 {
		cfg.MaxDescription = 4096
	}
	return &AuctionServiceImpl{store: store, ledger: lc, sink: sink, clock: clk, cfg: cfg}
}

// CreateAuction validates input and persists a new Active auction.
func (s *AuctionServiceImpl) CreateAuction(
	ctx context.Context, seller, itemDescription string, startingPrice int64, duration time.Duration, reservePrice int64,
) (*model.Auction, error) {
	if strings.TrimSpace(seller) == "" {
		return nil, fmt.Errorf("%w: empty seller address", errs.ErrInvalidArgument)
	}
	if strings.TrimSpace(itemDescription) == "" || len(itemDescription) > s.cfg.MaxDescription {
		return nil, fmt.Errorf("%w: item description empty or too long", errs.ErrInvalidArgument)
	}
	if startingPrice <= 0 {
		return nil, fmt.Errorf("%w: starting price must be positive", errs.ErrInvalidArgument)
	}
	if duration == 0 {
		duration = s.cfg.DefaultDuration
	}
	if duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", errs.ErrInvalidArgument)
	}
	if reservePrice != 0 && reservePrice < startingPrice {
		return nil, fmt.Errorf("%w: reserve price below starting price", errs.ErrInvalidArgument)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	a := &model.Auction{
		ID:              id,
		Seller:          seller,
		ItemDescription: itemDescription,
		StartingPrice:   startingPrice,
		ReservePrice:    reservePrice,
		EndTime:         now.Add(duration),
		Status:          model.StatusActive,
		CreatedAt:       now,
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// PlaceBid applies the bidding rules under the optimistic-concurrency retry
// loop: read, validate against the freshest state, commit via conditional
// save, retry on conflict.
func (s *AuctionServiceImpl) PlaceBid(ctx context.Context, auctionID uuid.UUID, bidder string, amount int64) (*model.Bid, error) {
	if strings.TrimSpace(bidder) == "" {
		return nil, fmt.Errorf("%w: empty bidder address", errs.ErrInvalidArgument)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: bid amount must be positive", errs.ErrInvalidArgument)
	}

	for attempt := 0; attempt < saveAttempts; attempt++ {
		a, err := s.store.Get(ctx, auctionID)
		if err != nil {
			return nil, err
		}
		if bidder == a.Seller {
			return nil, fmt.Errorf("%w: seller may not bid on own auction", errs.ErrInvalidArgument)
		}
		now := s.clock.Now()
		if a.Status != model.StatusActive || !now.Before(a.EndTime) {
			return nil, fmt.Errorf("%w: auction is not open for bidding", errs.ErrInvalidState)
		}

		minAcceptable := a.StartingPrice
		if a.HighestBid != nil {
			minAcceptable = a.HighestBid.Amount + s.cfg.MinBidIncrement
		}
		if amount < minAcceptable {
			return nil, fmt.Errorf("%w: minimum acceptable bid is %d", errs.ErrBidTooLow, minAcceptable)
		}

		prev := a.HighestBid
		bid := &model.Bid{AuctionID: auctionID, Bidder: bidder, Amount: amount, PlacedAt: now}
		a.HighestBid = bid
		a.BidCount++

		if err := s.store.SaveWithBid(ctx, a, bid); err != nil {
			if errors.Is(err, errs.ErrConflict) {
				continue
			}
			return nil, err
		}

		if prev != nil && prev.Bidder != bidder {
			s.emit(ctx, model.Event{
				Kind:      model.EventOutBid,
				AuctionID: auctionID,
				Recipient: prev.Bidder,
				Bidder:    bidder,
				Amount:    amount,
			})
		}
		s.emit(ctx, model.Event{
			Kind:      model.EventBidAccepted,
			AuctionID: auctionID,
			Bidder:    bidder,
			Amount:    amount,
		})
		return bid, nil
	}
	return nil, errs.ErrConflict
}

// EndAuction transitions Active -> Ended, fixing the winner (or none when the
// reserve was not met). Safe to call redundantly from an external sweeper:
// the second call fails ErrInvalidState without touching the outcome.
func (s *AuctionServiceImpl) EndAuction(ctx context.Context, auctionID uuid.UUID, caller string) (*model.Auction, error) {
	for attempt := 0; attempt < saveAttempts; attempt++ {
		a, err := s.store.Get(ctx, auctionID)
		if err != nil {
			return nil, err
		}
		now := s.clock.Now()
		if caller != a.Seller && now.Before(a.EndTime) {
			return nil, fmt.Errorf("%w: only the seller may end before expiry", errs.ErrForbidden)
		}
		if a.Status != model.StatusActive {
			return nil, fmt.Errorf("%w: auction already %s", errs.ErrInvalidState, a.Status)
		}

		a.Status = model.StatusEnded
		if a.HighestBid != nil && (a.ReservePrice == 0 || a.HighestBid.Amount >= a.ReservePrice) {
			a.Winner = a.HighestBid.Bidder
			a.WinningAmount = a.HighestBid.Amount
		} else {
			// no bids, or reserve not met
			a.Winner = ""
			a.WinningAmount = 0
		}

		if err := s.store.Save(ctx, a); err != nil {
			if errors.Is(err, errs.ErrConflict) {
				continue
			}
			return nil, err
		}
		s.emit(ctx, model.Event{
			Kind:      model.EventAuctionEnded,
			AuctionID: auctionID,
			Winner:    a.Winner,
			Amount:    a.WinningAmount,
		})
		return a, nil
	}
	return nil, errs.ErrConflict
}

// ReleaseFunds settles an Ended auction: net to the seller, fee to the
// platform address, both idempotent under keys derived from the auction id.
// A ledger failure leaves the auction Ended so release can be retried.
func (s *AuctionServiceImpl) ReleaseFunds(ctx context.Context, auctionID uuid.UUID, caller string) (*model.Auction, error) {
	for attempt := 0; attempt < saveAttempts; attempt++ {
		a, err := s.store.Get(ctx, auctionID)
		if err != nil {
			return nil, err
		}
		if caller != a.Seller {
			return nil, fmt.Errorf("%w: only the seller may release funds", errs.ErrForbidden)
		}
		if a.Status != model.StatusEnded {
			return nil, fmt.Errorf("%w: auction is %s, not ended", errs.ErrInvalidState, a.Status)
		}

		var (
			fee, net int64
			receipts []string
		)
		if a.Winner != "" {
			// Fee rate in effect now, not at bid time.
			fee, net = s.cfg.FeeRate.Split(a.WinningAmount)
			if s.cfg.PlatformAddress == "" {
				// no fee account to route to; the seller receives everything
				fee, net = 0, a.WinningAmount
			}

			r, err := s.ledger.Transfer(ctx, a.Winner, a.Seller, net, auctionID.String()+"/seller")
			if err != nil {
				return nil, err // wrapped ErrSettlementFailed; status unchanged
			}
			receipts = append(receipts, r.ID)

			if fee > 0 {
				r, err = s.ledger.Transfer(ctx, a.Winner, s.cfg.PlatformAddress, fee, auctionID.String()+"/fee")
				if err != nil {
					return nil, err
				}
				receipts = append(receipts, r.ID)
			}
		}

		a.Status = model.StatusCompleted
		if err := s.store.Save(ctx, a); err != nil {
			if errors.Is(err, errs.ErrConflict) {
				// Transfers are idempotent, so re-running the loop is safe.
				continue
			}
			return nil, err
		}
		s.emit(ctx, model.Event{
			Kind:       model.EventFundsReleased,
			AuctionID:  auctionID,
			Recipient:  a.Seller,
			Winner:     a.Winner,
			Amount:     a.WinningAmount,
			Fee:        fee,
			NetAmount:  net,
			ReceiptIDs: receipts,
		})
		return a, nil
	}
	return nil, errs.ErrConflict
}

// CancelAuction withdraws a never-bid Active auction. The first accepted bid
// bars cancellation permanently, even if that bid is later superseded.
func (s *AuctionServiceImpl) CancelAuction(ctx context.Context, auctionID uuid.UUID, caller string) (*model.Auction, error) {
	for attempt := 0; attempt < saveAttempts; attempt++ {
		a, err := s.store.Get(ctx, auctionID)
		if err != nil {
			return nil, err
		}
		if caller != a.Seller {
			return nil, fmt.Errorf("%w: only the seller may cancel", errs.ErrForbidden)
		}
		if a.Status != model.StatusActive || a.BidCount > 0 {
			return nil, fmt.Errorf("%w: cancellation requires an active auction with no bids", errs.ErrInvalidState)
		}

		a.Status = model.StatusCancelled
		if err := s.store.Save(ctx, a); err != nil {
			if errors.Is(err, errs.ErrConflict) {
				continue
			}
			return nil, err
		}
		return a, nil
	}
	return nil, errs.ErrConflict
}

// GetAuction fetches one auction.
func (s *AuctionServiceImpl) GetAuction(ctx context.Context, auctionID uuid.UUID) (*model.Auction, error) {
	return s.store.Get(ctx, auctionID)
}

// ListAuctions returns auctions matching the filter.
func (s *AuctionServiceImpl) ListAuctions(ctx context.Context, f repository.ListFilter) ([]model.Auction, error) {
	return s.store.List(ctx, f)
}

// ListBids returns the bid history, oldest first.
func (s *AuctionServiceImpl) ListBids(ctx context.Context, auctionID uuid.UUID) ([]model.Bid, error) {
	if _, err := s.store.Get(ctx, auctionID); err != nil {
		return nil, err
	}
	return s.store.ListBids(ctx, auctionID)
}

// emit publishes best-effort after the state transition committed; sink
// failures must not fail the operation.
func (s *AuctionServiceImpl) emit(ctx context.Context, ev model.Event) {
	ev.OccurredAt = s.clock.Now()
	_ = s.sink.Publish(ctx, ev)
}
