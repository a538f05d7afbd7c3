package repository

import (
	"context"
	"time"

	"rental-booking-backend/internal/domain"
)

// Implementations report a missing row as a domain NotFound error and any
// other storage failure as a plain wrapped error.

type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
	List(ctx context.Context) ([]domain.Item, error)
	Update(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, id int64) error
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)

	// FindOverlapping returns the non-cancelled bookings of an item whose
	// period overlaps r.
	FindOverlapping(ctx context.Context, itemID int64, r domain.TimeRange) ([]domain.Booking, error)

	// ListConfirmedEndingBefore returns confirmed bookings with EndDate <= cutoff.
	ListConfirmedEndingBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)
}

// ItemLocker serializes capacity-sensitive writes on a single item.
type ItemLocker interface {
	// WithItemLock loads the item under an exclusive lock and runs fn while the
	// lock is held. Repository calls made with the ctx passed to fn take part in
	// the same unit of work; if fn fails nothing it wrote is kept.
	WithItemLock(ctx context.Context, itemID int64, fn func(ctx context.Context, item *domain.Item) error) error
}
