package service_test

import (
	"context"
	"time"

	"rental-booking-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockBookingRepo
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	b := *args.Get(0).(*domain.Booking)
	return &b, args.Error(1)
}
func (m *MockBookingRepo) Update(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockBookingRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockBookingRepo) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) FindOverlapping(ctx context.Context, itemID int64, r domain.TimeRange) ([]domain.Booking, error) {
	args := m.Called(ctx, itemID, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListConfirmedEndingBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

// MockItemRepo
type MockItemRepo struct {
	mock.Mock
}

func (m *MockItemRepo) Create(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}
func (m *MockItemRepo) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	item := *args.Get(0).(*domain.Item)
	return &item, args.Error(1)
}
func (m *MockItemRepo) List(ctx context.Context) ([]domain.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Item), args.Error(1)
}
func (m *MockItemRepo) Update(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}
func (m *MockItemRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockItemLocker hands fn the item configured for the call.
type MockItemLocker struct {
	mock.Mock
}

func (m *MockItemLocker) WithItemLock(ctx context.Context, itemID int64, fn func(ctx context.Context, item *domain.Item) error) error {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return args.Error(1)
	}
	item := *args.Get(0).(*domain.Item)
	return fn(ctx, &item)
}

// MockRateLookup
type MockRateLookup struct {
	mock.Mock
}

func (m *MockRateLookup) RateToTarget(ctx context.Context, code string) (decimal.Decimal, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
