// Package memory provides an in-memory AuctionStore with the same
// conditional-save semantics as the PostgreSQL implementation. Used as the
// dev-mode store and as the reference backend for service tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/phoenixpme/auction-service/internal/errs"
	"github.com/phoenixpme/auction-service/internal/model"
	"github.com/phoenixpme/auction-service/internal/repository"
)

// AuctionStore keeps auctions and bid history in process memory.
type AuctionStore struct {
	mu       sync.Mutex
	auctions map[uuid.UUID]*model.Auction
	bids     map[uuid.UUID][]model.Bid
}

// NewAuctionStore constructs an empty store.
func NewAuctionStore() *AuctionStore {
	return &AuctionStore{
		auctions: make(map[uuid.UUID]*model.Auction),
		bids:     make(map[uuid.UUID][]model.Bid),
	}
}

// Create inserts a new auction at version 0.
func (s *AuctionStore) Create(_ context.Context, a *model.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.auctions[a.ID]; ok {
		return errs.ErrAlreadyExists
	}
	s.auctions[a.ID] = cloneAuction(a)
	return nil
}

// Get returns a copy of the auction; callers mutate freely and commit via Save.
func (s *AuctionStore) Get(_ context.Context, id uuid.UUID) (*model.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return cloneAuction(a), nil
}

// Save commits the auction iff the stored version still equals a.Ver.
func (s *AuctionStore) Save(_ context.Context, a *model.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.auctions[a.ID]
	if !ok {
		return errs.ErrNotFound
	}
	if cur.Ver != a.Ver {
		return errs.ErrConflict
	}
	a.Ver++
	s.auctions[a.ID] = cloneAuction(a)
	return nil
}

// SaveWithBid commits the auction state and the bid history entry under one
// lock hold, so a conflicting writer can never observe one without the other.
func (s *AuctionStore) SaveWithBid(_ context.Context, a *model.Auction, b *model.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.auctions[a.ID]
	if !ok {
		return errs.ErrNotFound
	}
	if cur.Ver != a.Ver {
		return errs.ErrConflict
	}
	a.Ver++
	s.auctions[a.ID] = cloneAuction(a)
	s.bids[b.AuctionID] = append(s.bids[b.AuctionID], *b)
	return nil
}

// ListBids returns bid history ordered by placed_at ascending.
func (s *AuctionStore) ListBids(_ context.Context, auctionID uuid.UUID) ([]model.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]model.Bid(nil), s.bids[auctionID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].PlacedAt.Before(out[j].PlacedAt) })
	return out, nil
}

// List returns auctions matching the filter, newest first.
func (s *AuctionStore) List(_ context.Context, f repository.ListFilter) ([]model.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Auction
	for _, a := range s.auctions {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Seller != "" && a.Seller != f.Seller {
			continue
		}
		out = append(out, *cloneAuction(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func cloneAuction(a *model.Auction) *model.Auction {
	cp := *a
	if a.HighestBid != nil {
		hb := *a.HighestBid
		cp.HighestBid = &hb
	}
	return &cp
}

var _ repository.AuctionStore = (*AuctionStore)(nil)
