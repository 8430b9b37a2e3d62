package bookings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_TerminalStatesAllowNoTransitions(t *testing.T) {
	terminals := []Status{StatusCancelled, StatusRejected, StatusPayoutCompleted}
	all := []Status{
		StatusPending, StatusConfirmed, StatusServed, StatusFrozen,
		StatusPayoutScheduled, StatusPayoutCompleted, StatusCancelled, StatusRejected,
	}

	for _, terminal := range terminals {
		assert.True(t, terminal.IsTerminal(), "%s should be terminal", terminal)
		for _, next := range all {
			assert.False(t, terminal.CanTransitionTo(next),
				"%s -> %s must be rejected", terminal, next)
		}
	}
}

func TestStatus_LifecyclePaths(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusServed, false},
		{StatusConfirmed, StatusServed, true},
		{StatusConfirmed, StatusFrozen, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusServed, StatusPayoutScheduled, true},
		{StatusServed, StatusConfirmed, false},
		{StatusFrozen, StatusConfirmed, true},
		{StatusFrozen, StatusCancelled, true},
		{StatusFrozen, StatusServed, false},
		{StatusPayoutScheduled, StatusPayoutCompleted, true},
		{StatusPayoutScheduled, StatusCancelled, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestStatus_FrozenIsDirectlyCancellable(t *testing.T) {
	// A frozen booking inside the cancel window goes straight to CANCELLED
	// without thawing first.
	assert.True(t, StatusFrozen.CanBeCancelled())
}

func TestStatus_BlockingSetHoldsSlots(t *testing.T) {
	blocking := []Status{StatusPending, StatusConfirmed, StatusServed, StatusFrozen}
	for _, s := range blocking {
		assert.True(t, s.BlocksSlot(), "%s should hold its slot", s)
	}

	released := []Status{StatusCancelled, StatusRejected, StatusPayoutScheduled, StatusPayoutCompleted}
	for _, s := range released {
		assert.False(t, s.BlocksSlot(), "%s should release its slot", s)
	}
}

func TestStatus_IsValid(t *testing.T) {
	assert.True(t, StatusPending.IsValid())
	assert.True(t, StatusPayoutCompleted.IsValid())
	assert.False(t, Status("EXPIRED").IsValid())
}
