package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rental-booking-backend/internal/clock"
	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	jun1 = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	jun3 = time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	jun5 = time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
)

func seedItem(t *testing.T, s *Store, stock int) *domain.Item {
	t.Helper()
	item := &domain.Item{Name: "Kayak", BaseDailyPrice: decimal.NewFromInt(30), TotalStock: stock, Active: true}
	require.NoError(t, s.ItemRepository.Create(context.Background(), item))
	return item
}

func TestStore_ItemTimestampsFollowClock(t *testing.T) {
	s := NewStore(clock.NewFixed(jun3))
	ctx := context.Background()
	item := seedItem(t, s, 2)
	assert.Equal(t, jun3, item.CreatedAt)
	assert.Equal(t, jun3, item.UpdatedAt)

	stored, err := s.ItemRepository.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, jun3, stored.CreatedAt)

	later := NewStore(clock.NewFixed(jun5))
	later.items[item.ID] = *stored
	stored.TotalStock = 4
	require.NoError(t, later.ItemRepository.Update(ctx, stored))
	assert.Equal(t, jun3, stored.CreatedAt)
	assert.Equal(t, jun5, stored.UpdatedAt)
}

func TestStore_FindOverlapping(t *testing.T) {
	s := NewStore(clock.NewFixed(jun1))
	ctx := context.Background()
	item := seedItem(t, s, 5)

	for _, b := range []domain.Booking{
		{ItemID: item.ID, StartDate: jun1, EndDate: jun3, Quantity: 1, Status: domain.BookingStatusPending},
		{ItemID: item.ID, StartDate: jun3, EndDate: jun5, Quantity: 2, Status: domain.BookingStatusConfirmed},
		{ItemID: item.ID, StartDate: jun1, EndDate: jun5, Quantity: 4, Status: domain.BookingStatusCancelled},
		{ItemID: item.ID + 1, StartDate: jun1, EndDate: jun5, Quantity: 1, Status: domain.BookingStatusPending},
	} {
		b := b
		require.NoError(t, s.BookingRepository.Create(ctx, &b))
	}

	found, err := s.BookingRepository.FindOverlapping(ctx, item.ID, domain.TimeRange{Start: jun1, End: jun3})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 1, found[0].Quantity)
}

func TestStore_WithItemLock_DiscardsWritesOnError(t *testing.T) {
	s := NewStore(clock.NewFixed(jun1))
	ctx := context.Background()
	item := seedItem(t, s, 1)

	boom := errors.New("boom")
	err := s.WithItemLock(ctx, item.ID, func(ctx context.Context, item *domain.Item) error {
		b := &domain.Booking{ItemID: item.ID, StartDate: jun1, EndDate: jun3, Quantity: 1, Status: domain.BookingStatusPending}
		if err := s.BookingRepository.Create(ctx, b); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	all, err := s.BookingRepository.List(ctx, domain.BookingFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStore_WithItemLock_MissingItem(t *testing.T) {
	s := NewStore(clock.NewFixed(jun1))
	err := s.WithItemLock(context.Background(), 42, func(ctx context.Context, item *domain.Item) error {
		t.Fatal("fn must not run for a missing item")
		return nil
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestStore_WithItemLock_SerializesCapacityChecks(t *testing.T) {
	s := NewStore(clock.NewFixed(jun1))
	ctx := context.Background()
	item := seedItem(t, s, 3)
	period := domain.TimeRange{Start: jun1, End: jun3}

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(user int64) {
			defer wg.Done()
			err := s.WithItemLock(ctx, item.ID, func(ctx context.Context, item *domain.Item) error {
				existing, err := s.BookingRepository.FindOverlapping(ctx, item.ID, period)
				if err != nil {
					return err
				}
				if err := utils.CheckCapacity(item.TotalStock, utils.SumQuantities(existing, period, 0), 1); err != nil {
					return err
				}
				time.Sleep(time.Millisecond)
				return s.BookingRepository.Create(ctx, &domain.Booking{UserID: user, ItemID: item.ID,
					StartDate: period.Start, EndDate: period.End, Quantity: 1, Status: domain.BookingStatusPending})
			})
			if err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			} else {
				assert.True(t, errors.Is(err, domain.ErrCapacityExceeded), "unexpected error: %v", err)
			}
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 3, admitted)
	found, err := s.BookingRepository.FindOverlapping(ctx, item.ID, period)
	require.NoError(t, err)
	assert.Equal(t, 3, utils.SumQuantities(found, period, 0))
}
