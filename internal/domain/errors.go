package domain

import "errors"

// Engine error taxonomy. Services return these sentinels (or wrap them);
// handlers translate them to HTTP status codes. None are retried internally.
var (
	ErrUnauthorized        = errors.New("Unauthorized")
	ErrInvalidEmitter      = errors.New("Emitter not found or not registered")
	ErrInvalidProject      = errors.New("Invalid or unverified project list")
	ErrInsufficientCredits = errors.New("Insufficient credits to cover required offset")
	ErrAlreadyMatched      = errors.New("Emitter already has a finalized match")
	ErrSystemPaused        = errors.New("Matching is paused")
	ErrInvalidAmount       = errors.New("Invalid amount")
	ErrOperationFailed     = errors.New("Collaborator call failed")
	ErrInvalidMode         = errors.New("Invalid match mode")
	ErrMetadataTooLong     = errors.New("Metadata exceeds maximum length")
	ErrNoPendingMatch      = errors.New("No pending or unexpired match proposal")
	ErrGovernanceDenied    = errors.New("Caller lacks governance permission")
	ErrAlreadyRetired      = errors.New("Match is already retired")
	ErrNoPreference        = errors.New("No saved auto-match preference")
)
