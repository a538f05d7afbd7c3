package utils

import (
	"errors"
	"math"
	"testing"
	"time"

	"rental-booking-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestCheckCapacity(t *testing.T) {
	tests := []struct {
		name      string
		stock     int
		existing  int
		requested int
		admit     bool
	}{
		{"Fits exactly", 5, 3, 2, true},
		{"Empty item", 5, 0, 5, true},
		{"One over", 5, 3, 3, false},
		{"No stock", 0, 0, 1, false},
		{"Already full", 2, 2, 1, false},
		{"Huge request", 5, 1, math.MaxInt, false},
		{"Huge request on empty item", 5, 0, math.MaxInt, false},
		{"Huge existing sum", 5, math.MaxInt, 1, false},
		{"Huge stock", math.MaxInt, math.MaxInt - 1, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCapacity(tt.stock, tt.existing, tt.requested)
			if tt.admit {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, domain.ErrCapacityExceeded), "got %v", err)
			}
		})
	}

	t.Run("Zero request rejected", func(t *testing.T) {
		err := CheckCapacity(5, 0, 0)
		assert.True(t, errors.Is(err, domain.ErrValidationFailed))
	})
}

func TestSumQuantities(t *testing.T) {
	day := func(n int) time.Time { return start.AddDate(0, 0, n) }
	bookings := []domain.Booking{
		{ID: 1, StartDate: day(0), EndDate: day(3), Quantity: 2, Status: domain.BookingStatusPending},
		{ID: 2, StartDate: day(2), EndDate: day(5), Quantity: 1, Status: domain.BookingStatusConfirmed},
		{ID: 3, StartDate: day(1), EndDate: day(4), Quantity: 4, Status: domain.BookingStatusCancelled},
		{ID: 4, StartDate: day(5), EndDate: day(6), Quantity: 7, Status: domain.BookingStatusPending},
	}
	window := domain.TimeRange{Start: day(1), End: day(5)}

	t.Run("Cancelled and back-to-back bookings excluded", func(t *testing.T) {
		assert.Equal(t, 3, SumQuantities(bookings, window, 0))
	})

	t.Run("Own booking excluded on update", func(t *testing.T) {
		assert.Equal(t, 1, SumQuantities(bookings, window, 1))
	})

	t.Run("Saturates instead of wrapping", func(t *testing.T) {
		huge := []domain.Booking{
			{ID: 1, StartDate: day(0), EndDate: day(3), Quantity: math.MaxInt, Status: domain.BookingStatusPending},
			{ID: 2, StartDate: day(0), EndDate: day(3), Quantity: 2, Status: domain.BookingStatusPending},
		}
		assert.Equal(t, math.MaxInt, SumQuantities(huge, window, 0))
	})
}

func TestCheckCapacity_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		stock := rapid.IntRange(0, math.MaxInt).Draw(t, "stock")
		existing := rapid.IntRange(0, math.MaxInt).Draw(t, "existing")
		requested := rapid.IntRange(1, math.MaxInt).Draw(t, "requested")

		err := CheckCapacity(stock, existing, requested)
		fits := uint64(existing)+uint64(requested) <= uint64(stock)
		if fits != (err == nil) {
			t.Fatalf("stock=%d existing=%d requested=%d: got %v", stock, existing, requested, err)
		}
	})
}

func TestPeakUsage(t *testing.T) {
	day := func(n int) time.Time { return start.AddDate(0, 0, n) }

	t.Run("Back-to-back bookings do not stack", func(t *testing.T) {
		bookings := []domain.Booking{
			{StartDate: day(0), EndDate: day(2), Quantity: 2, Status: domain.BookingStatusConfirmed},
			{StartDate: day(2), EndDate: day(4), Quantity: 3, Status: domain.BookingStatusPending},
		}
		assert.Equal(t, 3, PeakUsage(bookings))
	})

	t.Run("Overlaps stack and terminal bookings are ignored", func(t *testing.T) {
		bookings := []domain.Booking{
			{StartDate: day(0), EndDate: day(5), Quantity: 2, Status: domain.BookingStatusConfirmed},
			{StartDate: day(1), EndDate: day(3), Quantity: 1, Status: domain.BookingStatusPending},
			{StartDate: day(2), EndDate: day(4), Quantity: 1, Status: domain.BookingStatusPending},
			{StartDate: day(0), EndDate: day(9), Quantity: 9, Status: domain.BookingStatusCancelled},
			{StartDate: day(0), EndDate: day(9), Quantity: 9, Status: domain.BookingStatusCompleted},
		}
		assert.Equal(t, 4, PeakUsage(bookings))
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, 0, PeakUsage(nil))
	})
}
