package bookings

type Status string

const (
	StatusPending         Status = "PENDING"
	StatusConfirmed       Status = "CONFIRMED"
	StatusServed          Status = "SERVED"
	StatusFrozen          Status = "FROZEN"
	StatusPayoutScheduled Status = "PAYOUT_SCHEDULED"
	StatusPayoutCompleted Status = "PAYOUT_COMPLETED"
	StatusCancelled       Status = "CANCELLED"
	StatusRejected        Status = "REJECTED"
)

// allowedTransitions is the single source of truth for the booking lifecycle.
// Every collaborator validates through CanTransitionTo instead of re-deriving
// branch logic.
var allowedTransitions = map[Status][]Status{
	StatusPending:         {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed:       {StatusServed, StatusFrozen, StatusCancelled},
	StatusServed:          {StatusPayoutScheduled, StatusFrozen, StatusCancelled},
	StatusFrozen:          {StatusConfirmed, StatusCancelled},
	StatusPayoutScheduled: {StatusPayoutCompleted},
	StatusPayoutCompleted: {},
	StatusCancelled:       {},
	StatusRejected:        {},
}

// ReservationBlockingStatuses are the statuses that hold a slot against new
// reservation attempts. PENDING blocks too: a host-approval booking keeps its
// slot while awaiting decision.
var ReservationBlockingStatuses = []Status{
	StatusPending, StatusConfirmed, StatusServed, StatusFrozen,
}

func (s Status) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the status is immutable.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCancelled, StatusRejected, StatusPayoutCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle permits moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CanBeCancelled reports whether a booking in this status may still be
// cancelled (by a party or by the disconnection guard).
func (s Status) CanBeCancelled() bool {
	return s.CanTransitionTo(StatusCancelled)
}

// BlocksSlot reports whether a booking in this status holds its interval
// against new reservations.
func (s Status) BlocksSlot() bool {
	for _, b := range ReservationBlockingStatuses {
		if s == b {
			return true
		}
	}
	return false
}
