// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// AuctionStatus is the lifecycle state of an auction.
// Transitions are one-directional: Active -> Ended -> Completed,
// or Active -> Cancelled (only while no bid was ever placed).
type AuctionStatus string

const (
	StatusActive    AuctionStatus = "active"
	StatusEnded     AuctionStatus = "ended"
	StatusCompleted AuctionStatus = "completed"
	StatusCancelled AuctionStatus = "cancelled"
)

// Terminal reports whether no further transition is possible from s.
func (s AuctionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Auction is the authoritative record for a single listing.
// All amounts are in the settlement token's minor unit.
type Auction struct {
	ID              uuid.UUID
	Seller          string // settlement-network address
	ItemDescription string
	StartingPrice   int64
	ReservePrice    int64 // 0 means no reserve
	EndTime         time.Time
	Status          AuctionStatus
	HighestBid      *Bid  // nil until the first accepted bid
	BidCount        int64 // total accepted bids ever, bars cancellation once > 0
	Winner          string
	WinningAmount   int64
	Ver             int64 // optimistic concurrency version (>= 0)
	CreatedAt       time.Time
}

// Bid is an accepted bid. Immutable once recorded; superseded bids are
// retained as history.
type Bid struct {
	AuctionID uuid.UUID
	Bidder    string
	Amount    int64
	PlacedAt  time.Time // assigned by the service clock, never by the caller
}

// Tokens collects issued access tokens.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// User represents a marketplace account.
type User struct {
	ID        uuid.UUID
	Username  string // unique
	PwdHash   []byte // Argon2id(password, SaltAuth)
	SaltAuth  []byte // per-user auth salt
	Address   string // settlement-network address bound at registration
	CreatedAt time.Time
}

// EventKind names a domain event emitted by the auction service.
type EventKind string

const (
	EventBidAccepted   EventKind = "bid_accepted"
	EventOutBid        EventKind = "outbid"
	EventAuctionEnded  EventKind = "auction_ended"
	EventFundsReleased EventKind = "funds_released"
)

// Event is a domain event handed to notification sinks. Fields beyond
// Kind/AuctionID/OccurredAt are populated per kind.
type Event struct {
	Kind       EventKind `json:"kind"`
	AuctionID  uuid.UUID `json:"auction_id"`
	Recipient  string    `json:"recipient,omitempty"` // address the event is addressed to; empty = broadcast
	Bidder     string    `json:"bidder,omitempty"`
	Amount     int64     `json:"amount,omitempty"`
	Winner     string    `json:"winner,omitempty"` // empty on AuctionEnded means reserve not met / no bids
	Fee        int64     `json:"fee,omitempty"`
	NetAmount  int64     `json:"net_amount,omitempty"`
	ReceiptIDs []string  `json:"receipt_ids,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
