package ledger

import "errors"

var (
	// ErrInsufficientCredits is returned when a debit exceeds the balance
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrInvalidAmount is returned for zero or negative amounts
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrUnknownKind is returned by ParseKind
	ErrUnknownKind = errors.New("unknown transaction kind")

	// ErrInconsistent is returned by Verify when the log and balance disagree
	ErrInconsistent = errors.New("ledger is inconsistent")
)
