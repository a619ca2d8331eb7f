package inventory

import "errors"

var (
	// ErrInsufficientStock means a consumption asked for more than the
	// warehouse holds. The operation is rejected atomically; nothing is
	// partially applied.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInsufficientAvailable means a reservation asked for more than
	// on_hand minus what is already reserved.
	ErrInsufficientAvailable = errors.New("insufficient available stock")

	// ErrTrackingMismatch means lot/serial metadata is missing for a
	// tracked product, supplied for an untracked one, or a serial number
	// collides with an existing unit.
	ErrTrackingMismatch = errors.New("tracking mismatch")

	// ErrContention is a transient conflict with a concurrent writer on
	// the same (product, warehouse). Retryable.
	ErrContention = errors.New("inventory contention")

	ErrProductNotFound = errors.New("product not found")
)
