// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/phoenixpme/auction-service/internal/model"
)

// ListFilter narrows Auction listings. Zero values match everything.
type ListFilter struct {
	Status model.AuctionStatus
	Seller string
}

// AuctionStore provides versioned access to auctions and their bid history.
//
// Save is the single commit point for a state transition: it succeeds only if
// the stored version still equals a.Ver (the version observed at read time),
// bumps the version, and fails with errs.ErrConflict when another writer
// committed first. Callers re-read and re-validate on conflict.
type AuctionStore interface {
	// Create inserts a new auction at version 0.
	Create(ctx context.Context, a *model.Auction) error

	// Get loads an auction by id, errs.ErrNotFound if absent.
	Get(ctx context.Context, id uuid.UUID) (*model.Auction, error)

	// Save persists the full auction state conditioned on a.Ver; on success
	// the stored and in-memory versions are incremented.
	Save(ctx context.Context, a *model.Auction) error

	// SaveWithBid commits the auction state and a bid history record as one
	// unit, under the same version condition as Save. Either both land or
	// neither does.
	SaveWithBid(ctx context.Context, a *model.Auction, b *model.Bid) error

	// ListBids returns the full bid history ordered by placed_at ascending.
	ListBids(ctx context.Context, auctionID uuid.UUID) ([]model.Bid, error)

	// List returns auctions matching the filter, newest first.
	List(ctx context.Context, f ListFilter) ([]model.Auction, error)
}
