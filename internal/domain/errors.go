package domain

import "errors"

// Shared error taxonomy. Services return these (possibly wrapped); the API
// layer maps them to HTTP status codes.
var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrNotFound               = errors.New("not found")
	ErrAlreadyProcessed       = errors.New("payment already processed")
	ErrConcurrentModification = errors.New("concurrent modification, retry the operation")
	ErrInvalidCadence         = errors.New("unsupported billing cadence")
	ErrLedgerDrift            = errors.New("ledger totals disagree with charge outstanding amounts")
)
