package service

import (
	"context"

	"rental-booking-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// RateLookup returns units of the target currency per one unit of the base
// currency.
type RateLookup interface {
	RateToTarget(ctx context.Context, code string) (decimal.Decimal, error)
}

type CurrencyService interface {
	ExchangeInfo(ctx context.Context, code string) (domain.ExchangeInfo, error)
}

type ItemService interface {
	CreateItem(ctx context.Context, item *domain.Item, currency string) error
	GetItem(ctx context.Context, id int64, currency string) (*domain.Item, error)
	ListItems(ctx context.Context, currency string) ([]domain.Item, error)
	UpdateItem(ctx context.Context, id int64, changes domain.ItemChanges) (*domain.Item, error)
	DeleteItem(ctx context.Context, id int64) error
}

type BookingService interface {
	CreateBooking(ctx context.Context, req domain.BookingRequest, currency string) (*domain.Booking, error)
	GetBooking(ctx context.Context, id int64, currency string) (*domain.Booking, error)
	ListBookings(ctx context.Context, filter domain.BookingFilter, currency string) ([]domain.Booking, error)
	UpdateBooking(ctx context.Context, id int64, upd domain.BookingUpdate) (*domain.Booking, error)
	ConfirmBooking(ctx context.Context, id int64) (*domain.Booking, error)
	CancelBooking(ctx context.Context, id int64) (*domain.Booking, error)
	CompleteBooking(ctx context.Context, id int64) (*domain.Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
	// CompleteElapsedBookings completes every confirmed booking that has ended
	// and returns how many were completed.
	CompleteElapsedBookings(ctx context.Context) (int, error)
}
