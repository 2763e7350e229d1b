package models

import "errors"

// Error taxonomy shared across the analysis pipeline and the ledger.
// Ledger errors reject the requested operation without mutating state;
// data errors are per-symbol recoverable during scans.
var (
	// ErrInsufficientHistory means the bar series is shorter than the
	// longest lookback an indicator needs.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrDataUnavailable means the provider has no series for a symbol
	// (unknown, delisted, or provider outage). Scans skip and continue.
	ErrDataUnavailable = errors.New("data unavailable")

	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInsufficientShares  = errors.New("insufficient shares")
	ErrNoSuchPosition      = errors.New("no such position")
	ErrInvalidStopDistance = errors.New("invalid stop distance")

	// ErrLedgerInvariant marks a defect class: cash or shares would go
	// negative despite pre-mutation validation. It must never occur.
	ErrLedgerInvariant = errors.New("ledger invariant violation")
)
