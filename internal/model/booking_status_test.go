package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingStatusTransitions(t *testing.T) {
	cases := []struct {
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusPending, false},

		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusPending, false},
		{StatusConfirmed, StatusFailed, false},

		{StatusCancelled, StatusPending, true},
		{StatusCancelled, StatusConfirmed, true},
		{StatusCancelled, StatusCompleted, true},
		{StatusCancelled, StatusFailed, true},

		{StatusFailed, StatusPending, true},
		{StatusFailed, StatusConfirmed, true},
		{StatusFailed, StatusCancelled, true},
		{StatusFailed, StatusCompleted, true},

		// COMPLETED is frozen.
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusFailed, false},
	}
	for _, tc := range cases {
		got := tc.from.CanTransitionTo(tc.to)
		assert.Equalf(t, tc.allowed, got, "%s -> %s", tc.from, tc.to)
	}
}

func TestBookingStatusHoldsSlots(t *testing.T) {
	assert.True(t, StatusPending.HoldsSlots())
	assert.True(t, StatusConfirmed.HoldsSlots())
	assert.True(t, StatusCompleted.HoldsSlots())
	assert.False(t, StatusCancelled.HoldsSlots())
	assert.False(t, StatusFailed.HoldsSlots())
}

func TestBookingStatusTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusCancelled.IsTerminal())
	assert.True(t, BookingStatus("BOGUS").IsTerminal())
}

func TestParseBookingStatus(t *testing.T) {
	s, err := ParseBookingStatus("CONFIRMED")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, s)

	_, err = ParseBookingStatus("confirmed")
	assert.Error(t, err)

	_, err = ParseBookingStatus("SHIPPED")
	assert.Error(t, err)
}
