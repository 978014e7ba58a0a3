// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates malformed or out-of-range input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrForbidden indicates the caller lacks authority for the action.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState indicates the operation is not legal in the auction's
	// current lifecycle state.
	ErrInvalidState = errors.New("invalid state")

	// ErrBidTooLow indicates a bid below the minimum acceptable amount.
	ErrBidTooLow = errors.New("bid too low")

	// ErrConflict indicates optimistic concurrency failure (version mismatch)
	// after the internal retry budget was exhausted.
	ErrConflict = errors.New("conflict")

	// ErrSettlementFailed indicates the ledger transfer failed; the auction
	// stays Ended and release can be retried.
	ErrSettlementFailed = errors.New("settlement failed")

	// ErrUnauthorized indicates failed authentication.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")
)
