package bookings

import "errors"

// Failure categories surfaced by the reservation service. Each maps to a
// distinct user-facing message; callers must never see raw internals.
var (
	// ErrSlotUnavailable is returned when the requested interval overlaps an
	// existing booking in a blocking status. Expected and frequent; the caller
	// retries with a different slot, never automatically.
	ErrSlotUnavailable = errors.New("slot is no longer available")

	// ErrPayeeAccountUnusable is returned when the space owner has no usable
	// connected payment account at reservation time.
	ErrPayeeAccountUnusable = errors.New("space owner cannot currently accept bookings")

	// ErrUnauthenticated is returned when the caller has no authenticated
	// identity.
	ErrUnauthenticated = errors.New("caller is not authenticated")

	// ErrSpaceUnavailable is returned when the space does not exist or is not
	// accepting reservations.
	ErrSpaceUnavailable = errors.New("space is not available for booking")

	// ErrMalformedRecord indicates a booking row that violates its own
	// invariants (e.g. unparseable time fields). Treated as an internal
	// error, logged, never silently swallowed.
	ErrMalformedRecord = errors.New("malformed booking record")

	ErrBookingNotFound    = errors.New("booking not found")
	ErrForbidden          = errors.New("booking does not belong to caller")
	ErrTerminalStatus     = errors.New("booking is in a terminal status")
	ErrInvalidTransition  = errors.New("booking status transition not allowed")
	ErrPaymentNotCaptured = errors.New("booking payment has not been captured")
)
