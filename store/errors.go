package store

import "errors"

// Sentinel errors returned by the ledger. Handlers map these onto HTTP
// statuses; none of them leaves partial state behind.
var (
	// ErrValidation marks malformed, user-correctable input. Wrapped with a
	// detail message, e.g. fmt.Errorf("%w: price must be positive", ErrValidation).
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInsufficientBalance is returned when a withdrawal exceeds the user's
	// balance, either at request time or re-checked at approval time.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidTransition is returned when a record is no longer in a state
	// that permits the requested mutation (e.g. re-approving a withdrawal).
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrForbidden is returned when the acting user lacks admin privilege.
	ErrForbidden = errors.New("forbidden")
)
