package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{"pending to completed", BookingStatusPending, BookingStatusCompleted, true},
		{"pending to cancelled", BookingStatusPending, BookingStatusCancelled, true},
		{"completed to cancelled", BookingStatusCompleted, BookingStatusCancelled, false},
		{"completed to pending", BookingStatusCompleted, BookingStatusPending, false},
		{"cancelled to completed", BookingStatusCancelled, BookingStatusCompleted, false},
		{"cancelled to pending", BookingStatusCancelled, BookingStatusPending, false},
		{"pending to pending", BookingStatusPending, BookingStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
		})
	}
}

func TestBookingStatusTerminal(t *testing.T) {
	assert.False(t, BookingStatusPending.Terminal())
	assert.True(t, BookingStatusCompleted.Terminal())
	assert.True(t, BookingStatusCancelled.Terminal())
}
