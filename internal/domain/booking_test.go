package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		from     BookingStatus
		event    BookingEvent
		expected BookingStatus
		ok       bool
	}{
		{BookingStatusPending, BookingEventConfirm, BookingStatusConfirmed, true},
		{BookingStatusConfirmed, BookingEventComplete, BookingStatusCompleted, true},
		{BookingStatusPending, BookingEventCancel, BookingStatusCancelled, true},
		{BookingStatusConfirmed, BookingEventCancel, BookingStatusCancelled, true},
		{BookingStatusPending, BookingEventComplete, BookingStatusPending, false},
		{BookingStatusConfirmed, BookingEventConfirm, BookingStatusConfirmed, false},
		{BookingStatusCompleted, BookingEventCancel, BookingStatusCompleted, false},
		{BookingStatusCompleted, BookingEventConfirm, BookingStatusCompleted, false},
		{BookingStatusCancelled, BookingEventConfirm, BookingStatusCancelled, false},
		{BookingStatusCancelled, BookingEventCancel, BookingStatusCancelled, false},
		{BookingStatusCancelled, BookingEventComplete, BookingStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+" "+string(tt.event), func(t *testing.T) {
			next, err := Transition(tt.from, tt.event)
			assert.Equal(t, tt.expected, next)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTransition))
			assert.Contains(t, err.Error(), string(tt.event))
			assert.Contains(t, err.Error(), string(tt.from))
		})
	}

	t.Run("Unknown event", func(t *testing.T) {
		_, err := Transition(BookingStatusPending, BookingEvent("archive"))
		assert.True(t, errors.Is(err, ErrValidationFailed))
	})
}

func TestBooking_ApplyLeavesStatusOnFailure(t *testing.T) {
	b := &Booking{ID: 7, Status: BookingStatusCompleted}

	err := b.Cancel()
	assert.Error(t, err)
	assert.Equal(t, BookingStatusCompleted, b.Status)

	b = &Booking{ID: 8, Status: BookingStatusPending}
	require.NoError(t, b.Confirm())
	require.NoError(t, b.Complete())
	assert.Equal(t, BookingStatusCompleted, b.Status)
}

func TestParseBookingStatus(t *testing.T) {
	s, err := ParseBookingStatus("CONFIRMED")
	assert.NoError(t, err)
	assert.Equal(t, BookingStatusConfirmed, s)

	_, err = ParseBookingStatus("confirmed")
	assert.True(t, errors.Is(err, ErrValidationFailed))
}

func TestBookingRequest_Validate(t *testing.T) {
	valid := BookingRequest{UserID: 1, ItemID: 2, StartDate: day(0), EndDate: day(2), Quantity: 1}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *BookingRequest)
	}{
		{"Missing item", func(r *BookingRequest) { r.ItemID = 0 }},
		{"Missing user", func(r *BookingRequest) { r.UserID = 0 }},
		{"Zero quantity", func(r *BookingRequest) { r.Quantity = 0 }},
		{"Negative quantity", func(r *BookingRequest) { r.Quantity = -3 }},
		{"Quantity above maximum", func(r *BookingRequest) { r.Quantity = math.MaxInt }},
		{"Empty range", func(r *BookingRequest) { r.EndDate = r.StartDate }},
		{"Reversed range", func(r *BookingRequest) { r.StartDate, r.EndDate = r.EndDate, r.StartDate }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			assert.True(t, errors.Is(r.Validate(), ErrValidationFailed))
		})
	}
}

func TestBookingUpdate_Validate(t *testing.T) {
	valid := BookingUpdate{StartDate: day(0), EndDate: day(2), Quantity: MaxQuantity}
	assert.NoError(t, valid.Validate())

	tooMany := valid
	tooMany.Quantity = math.MaxInt
	assert.True(t, errors.Is(tooMany.Validate(), ErrValidationFailed))
}

func TestBookingFilter_Matches(t *testing.T) {
	b := &Booking{ItemID: 3, UserID: 4, Status: BookingStatusPending}

	assert.True(t, BookingFilter{}.Matches(b))
	assert.True(t, BookingFilter{ItemID: 3, Status: BookingStatusPending}.Matches(b))
	assert.False(t, BookingFilter{UserID: 5}.Matches(b))
	assert.False(t, BookingFilter{Status: BookingStatusCancelled}.Matches(b))
}
