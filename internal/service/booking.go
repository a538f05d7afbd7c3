package service

import (
	"context"

	"rental-booking-backend/internal/clock"
	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/logger"
	"rental-booking-backend/internal/metrics"
	"rental-booking-backend/internal/repository"
	"rental-booking-backend/internal/tracing"
	"rental-booking-backend/internal/utils"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

type bookingService struct {
	itemRepo    repository.ItemRepository
	bookingRepo repository.BookingRepository
	locker      repository.ItemLocker
	rates       RateLookup
	clock       clock.Clock
}

func NewBookingService(
	itemRepo repository.ItemRepository,
	bookingRepo repository.BookingRepository,
	locker repository.ItemLocker,
	rates RateLookup,
	clk clock.Clock,
) BookingService {
	return &bookingService{
		itemRepo:    itemRepo,
		bookingRepo: bookingRepo,
		locker:      locker,
		rates:       rates,
		clock:       clk,
	}
}

// finish wraps collaborator failures and records the outcome.
func finish(op string, err error) error {
	err = domain.DependencyError(op, err)
	if err != nil {
		metrics.ObserveBooking(op, string(domain.KindOf(err)))
	} else {
		metrics.ObserveBooking(op, "ok")
	}
	return err
}

func (s *bookingService) rateTo(ctx context.Context, currency string) (decimal.Decimal, error) {
	r, err := s.rates.RateToTarget(ctx, currency)
	if err != nil {
		return decimal.Zero, domain.DependencyError("rate lookup", err)
	}
	return r, nil
}

func (s *bookingService) CreateBooking(ctx context.Context, req domain.BookingRequest, currency string) (b *domain.Booking, err error) {
	logger.EnterMethod("bookingService.CreateBooking", "itemID", req.ItemID, "userID", req.UserID, "quantity", req.Quantity)
	ctx, span := tracing.Start(ctx, "BookingService.CreateBooking",
		attribute.Int64("item_id", req.ItemID), attribute.Int("quantity", req.Quantity))
	defer func() {
		err = finish("create", err)
		tracing.End(span, err)
		if err != nil {
			logger.ExitMethodWithError("bookingService.CreateBooking", err, "itemID", req.ItemID)
			b = nil
		}
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	period := req.Range()

	// The rate is resolved before the item lock so no network call runs while
	// the lock is held. An unknown item still reports NotFound first; the
	// locked read below stays authoritative.
	var fromRate decimal.Decimal
	if currency != "" {
		if _, err := s.itemRepo.GetByID(ctx, req.ItemID); err != nil {
			return nil, domain.DependencyError("get item", err)
		}
		rateTo, err := s.rateTo(ctx, currency)
		if err != nil {
			return nil, err
		}
		if fromRate, err = utils.FromRate(rateTo); err != nil {
			return nil, err
		}
	}

	err = s.locker.WithItemLock(ctx, req.ItemID, func(ctx context.Context, item *domain.Item) error {
		if !item.Active {
			return domain.ValidationError("create booking", "item %d is not available for booking", item.ID)
		}

		overlapping, err := s.bookingRepo.FindOverlapping(ctx, item.ID, period)
		if err != nil {
			return domain.DependencyError("find overlapping bookings", err)
		}
		if err := utils.CheckCapacity(item.TotalStock, utils.SumQuantities(overlapping, period, 0), req.Quantity); err != nil {
			return err
		}

		price, err := utils.CalculatePrice(period, item.BaseDailyPrice, req.Quantity)
		if err != nil {
			return err
		}
		if currency != "" {
			price = utils.ConvertPrice(price, fromRate)
		}

		now := s.clock.Now()
		b = &domain.Booking{
			UserID:          req.UserID,
			ItemID:          item.ID,
			StartDate:       period.Start,
			EndDate:         period.End,
			Status:          domain.BookingStatusPending,
			Quantity:        req.Quantity,
			CalculatedPrice: price,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.bookingRepo.Create(ctx, b); err != nil {
			return domain.DependencyError("create booking", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Booking created", "bookingID", b.ID, "itemID", b.ItemID, "quantity", b.Quantity, "price", b.CalculatedPrice.StringFixed(2))
	logger.ExitMethod("bookingService.CreateBooking", "bookingID", b.ID)
	return b, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id int64, currency string) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.GetBooking", "bookingID", id, "currency", currency)

	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.DependencyError("get booking", err)
	}
	if currency == "" {
		return b, nil
	}

	rateTo, err := s.rateTo(ctx, currency)
	if err != nil {
		return nil, err
	}
	b.CalculatedPrice = utils.ConvertPrice(b.CalculatedPrice, rateTo)
	return b, nil
}

func (s *bookingService) ListBookings(ctx context.Context, filter domain.BookingFilter, currency string) ([]domain.Booking, error) {
	logger.EnterMethod("bookingService.ListBookings", "itemID", filter.ItemID, "userID", filter.UserID, "status", filter.Status)

	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, domain.ValidationError("list bookings", "invalid booking status: %s", filter.Status)
	}

	var rateTo decimal.Decimal
	if currency != "" {
		var err error
		if rateTo, err = s.rateTo(ctx, currency); err != nil {
			return nil, err
		}
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.DependencyError("list bookings", err)
	}
	if currency != "" {
		for i := range bookings {
			bookings[i].CalculatedPrice = utils.ConvertPrice(bookings[i].CalculatedPrice, rateTo)
		}
	}
	return bookings, nil
}

// withBookingLock loads the booking, locks its item and hands fn the booking
// as re-read under the lock.
func (s *bookingService) withBookingLock(ctx context.Context, id int64, fn func(ctx context.Context, item *domain.Item, b *domain.Booking) error) error {
	current, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return domain.DependencyError("get booking", err)
	}
	return s.locker.WithItemLock(ctx, current.ItemID, func(ctx context.Context, item *domain.Item) error {
		b, err := s.bookingRepo.GetByID(ctx, id)
		if err != nil {
			return domain.DependencyError("get booking", err)
		}
		return fn(ctx, item, b)
	})
}

func (s *bookingService) UpdateBooking(ctx context.Context, id int64, upd domain.BookingUpdate) (updated *domain.Booking, err error) {
	logger.EnterMethod("bookingService.UpdateBooking", "bookingID", id, "quantity", upd.Quantity)
	ctx, span := tracing.Start(ctx, "BookingService.UpdateBooking", attribute.Int64("booking_id", id))
	defer func() {
		err = finish("update", err)
		tracing.End(span, err)
		if err != nil {
			logger.ExitMethodWithError("bookingService.UpdateBooking", err, "bookingID", id)
			updated = nil
		}
	}()

	if err := upd.Validate(); err != nil {
		return nil, err
	}
	period := upd.Range()

	err = s.withBookingLock(ctx, id, func(ctx context.Context, item *domain.Item, b *domain.Booking) error {
		if b.Status.IsTerminal() {
			return domain.TransitionError(domain.BookingEventUpdate, b.Status)
		}

		overlapping, err := s.bookingRepo.FindOverlapping(ctx, item.ID, period)
		if err != nil {
			return domain.DependencyError("find overlapping bookings", err)
		}
		if err := utils.CheckCapacity(item.TotalStock, utils.SumQuantities(overlapping, period, b.ID), upd.Quantity); err != nil {
			return err
		}

		// Always priced from the stored base rate; updates never convert.
		price, err := utils.CalculatePrice(period, item.BaseDailyPrice, upd.Quantity)
		if err != nil {
			return err
		}

		next := *b
		next.StartDate = period.Start
		next.EndDate = period.End
		next.Quantity = upd.Quantity
		next.CalculatedPrice = price
		next.UpdatedAt = s.clock.Now()
		if err := s.bookingRepo.Update(ctx, &next); err != nil {
			return domain.DependencyError("update booking", err)
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Booking updated", "bookingID", id, "quantity", updated.Quantity, "price", updated.CalculatedPrice.StringFixed(2))
	return updated, nil
}

func (s *bookingService) transition(ctx context.Context, id int64, event domain.BookingEvent) (updated *domain.Booking, err error) {
	logger.EnterMethod("bookingService.transition", "bookingID", id, "event", event)
	ctx, span := tracing.Start(ctx, "BookingService."+string(event),
		attribute.Int64("booking_id", id), attribute.String("event", string(event)))
	defer func() {
		err = finish(string(event), err)
		tracing.End(span, err)
		if err != nil {
			logger.ExitMethodWithError("bookingService.transition", err, "bookingID", id, "event", event)
			updated = nil
		}
	}()

	err = s.withBookingLock(ctx, id, func(ctx context.Context, _ *domain.Item, b *domain.Booking) error {
		next := *b
		if err := next.Apply(event); err != nil {
			return err
		}
		next.UpdatedAt = s.clock.Now()
		if err := s.bookingRepo.Update(ctx, &next); err != nil {
			return domain.DependencyError(string(event)+" booking", err)
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Booking status changed", "bookingID", id, "event", event, "status", updated.Status)
	return updated, nil
}

func (s *bookingService) ConfirmBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.transition(ctx, id, domain.BookingEventConfirm)
}

func (s *bookingService) CancelBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.transition(ctx, id, domain.BookingEventCancel)
}

func (s *bookingService) CompleteBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.transition(ctx, id, domain.BookingEventComplete)
}

// DeleteBooking removes a booking. Confirmed bookings must be cancelled first.
func (s *bookingService) DeleteBooking(ctx context.Context, id int64) (err error) {
	logger.EnterMethod("bookingService.DeleteBooking", "bookingID", id)
	ctx, span := tracing.Start(ctx, "BookingService.DeleteBooking", attribute.Int64("booking_id", id))
	defer func() {
		err = finish("delete", err)
		tracing.End(span, err)
	}()

	err = s.withBookingLock(ctx, id, func(ctx context.Context, _ *domain.Item, b *domain.Booking) error {
		if b.Status == domain.BookingStatusConfirmed {
			return domain.TransitionError(domain.BookingEventDelete, b.Status)
		}
		if err := s.bookingRepo.Delete(ctx, id); err != nil {
			return domain.DependencyError("delete booking", err)
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.DeleteBooking", err, "bookingID", id)
		return err
	}
	logger.Info("Booking deleted", "bookingID", id)
	return nil
}

func (s *bookingService) CompleteElapsedBookings(ctx context.Context) (int, error) {
	logger.EnterMethod("bookingService.CompleteElapsedBookings")
	now := s.clock.Now()

	elapsed, err := s.bookingRepo.ListConfirmedEndingBefore(ctx, now)
	if err != nil {
		return 0, domain.DependencyError("list elapsed bookings", err)
	}

	completed := 0
	for _, b := range elapsed {
		if err := ctx.Err(); err != nil {
			return completed, err
		}
		logger.Debug("Completing elapsed booking", "bookingID", b.ID, "itemID", b.ItemID, "endDate", b.EndDate)
		if _, err := s.CompleteBooking(ctx, b.ID); err != nil {
			logger.Error("Failed to complete elapsed booking", "bookingID", b.ID, "error", err)
			continue
		}
		completed++
	}

	logger.Info("Elapsed bookings completed", "found", len(elapsed), "completed", completed, "cutoff", now)
	return completed, nil
}
