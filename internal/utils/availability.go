package utils

import (
	"cmp"
	"math"
	"slices"

	"rental-booking-backend/internal/domain"
)

// CheckCapacity admits a request when existingSum + requested <= totalStock.
// The comparison is arranged so it cannot overflow.
func CheckCapacity(totalStock, existingSum, requested int) error {
	if requested <= 0 {
		return domain.ValidationError("check capacity", "requested quantity must be positive, got %d", requested)
	}
	if requested > totalStock || existingSum > totalStock-requested {
		return domain.CapacityError("check capacity",
			"requested %d units but only %d of %d are free for the period",
			requested, max(totalStock-existingSum, 0), totalStock)
	}
	return nil
}

// SumQuantities totals the quantities of the active bookings that overlap r.
// The booking with id excludeID is skipped so an update does not count its
// own prior reservation; pass 0 to include every booking. The total saturates
// at math.MaxInt.
func SumQuantities(bookings []domain.Booking, r domain.TimeRange, excludeID int64) int {
	sum := 0
	for _, b := range bookings {
		if !b.Status.IsActive() {
			continue
		}
		if excludeID != 0 && b.ID == excludeID {
			continue
		}
		if !b.Range().Overlaps(r) {
			continue
		}
		if b.Quantity > math.MaxInt-sum {
			return math.MaxInt
		}
		sum += b.Quantity
	}
	return sum
}

// PeakUsage returns the largest number of units held at any instant by the
// given bookings. Cancelled and completed bookings hold nothing.
func PeakUsage(bookings []domain.Booking) int {
	type edge struct {
		at    int64
		delta int
	}
	edges := make([]edge, 0, 2*len(bookings))
	for _, b := range bookings {
		if b.Status != domain.BookingStatusPending && b.Status != domain.BookingStatusConfirmed {
			continue
		}
		edges = append(edges, edge{b.StartDate.UnixNano(), b.Quantity}, edge{b.EndDate.UnixNano(), -b.Quantity})
	}
	// Releases sort before acquisitions at the same instant; ranges are half-open.
	slices.SortFunc(edges, func(a, b edge) int {
		if a.at != b.at {
			return cmp.Compare(a.at, b.at)
		}
		return cmp.Compare(a.delta, b.delta)
	})

	peak, cur := 0, 0
	for _, e := range edges {
		cur += e.delta
		peak = max(peak, cur)
	}
	return peak
}
