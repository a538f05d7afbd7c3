package service

import (
	"context"

	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/logger"
	"rental-booking-backend/internal/repository"
	"rental-booking-backend/internal/utils"

	"github.com/shopspring/decimal"
)

type itemService struct {
	itemRepo    repository.ItemRepository
	bookingRepo repository.BookingRepository
	locker      repository.ItemLocker
	rates       RateLookup
}

func NewItemService(
	itemRepo repository.ItemRepository,
	bookingRepo repository.BookingRepository,
	locker repository.ItemLocker,
	rates RateLookup,
) ItemService {
	return &itemService{
		itemRepo:    itemRepo,
		bookingRepo: bookingRepo,
		locker:      locker,
		rates:       rates,
	}
}

// CreateItem stores a new item. When currency is set the price and deposit are
// read as amounts in that currency and converted into the base currency.
func (s *itemService) CreateItem(ctx context.Context, item *domain.Item, currency string) error {
	logger.EnterMethod("itemService.CreateItem", "name", item.Name, "currency", currency)

	item.Normalize()
	if err := item.Validate(); err != nil {
		return err
	}

	if currency != "" {
		rateTo, err := s.rates.RateToTarget(ctx, currency)
		if err != nil {
			return domain.DependencyError("rate lookup", err)
		}
		fromRate, err := utils.FromRate(rateTo)
		if err != nil {
			return err
		}
		item.BaseDailyPrice = utils.ConvertPrice(item.BaseDailyPrice, fromRate)
		item.SecurityDeposit = utils.ConvertPrice(item.SecurityDeposit, fromRate)
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		logger.ExitMethodWithError("itemService.CreateItem", err)
		return domain.DependencyError("create item", err)
	}
	logger.Info("Item created", "itemID", item.ID, "name", item.Name, "stock", item.TotalStock)
	return nil
}

func (s *itemService) project(item *domain.Item, rateTo decimal.Decimal) {
	item.BaseDailyPrice = utils.ConvertPrice(item.BaseDailyPrice, rateTo)
	item.SecurityDeposit = utils.ConvertPrice(item.SecurityDeposit, rateTo)
}

func (s *itemService) GetItem(ctx context.Context, id int64, currency string) (*domain.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.DependencyError("get item", err)
	}
	if currency != "" {
		rateTo, err := s.rates.RateToTarget(ctx, currency)
		if err != nil {
			return nil, domain.DependencyError("rate lookup", err)
		}
		s.project(item, rateTo)
	}
	return item, nil
}

func (s *itemService) ListItems(ctx context.Context, currency string) ([]domain.Item, error) {
	var rateTo decimal.Decimal
	if currency != "" {
		var err error
		if rateTo, err = s.rates.RateToTarget(ctx, currency); err != nil {
			return nil, domain.DependencyError("rate lookup", err)
		}
	}

	items, err := s.itemRepo.List(ctx)
	if err != nil {
		return nil, domain.DependencyError("list items", err)
	}
	if currency != "" {
		for i := range items {
			s.project(&items[i], rateTo)
		}
	}
	return items, nil
}

// UpdateItem replaces the item's mutable fields. Stock cannot drop below the
// peak number of units held by pending and confirmed bookings.
func (s *itemService) UpdateItem(ctx context.Context, id int64, changes domain.ItemChanges) (*domain.Item, error) {
	logger.EnterMethod("itemService.UpdateItem", "itemID", id)

	var updated *domain.Item
	err := s.locker.WithItemLock(ctx, id, func(ctx context.Context, item *domain.Item) error {
		next := *item
		if err := next.ApplyChanges(changes); err != nil {
			return err
		}

		if next.TotalStock < item.TotalStock {
			bookings, err := s.bookingRepo.List(ctx, domain.BookingFilter{ItemID: id})
			if err != nil {
				return domain.DependencyError("list item bookings", err)
			}
			if peak := utils.PeakUsage(bookings); next.TotalStock < peak {
				return domain.CapacityError("update item",
					"total stock %d is below the %d units already reserved", next.TotalStock, peak)
			}
		}

		if err := s.itemRepo.Update(ctx, &next); err != nil {
			return domain.DependencyError("update item", err)
		}
		updated = &next
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("itemService.UpdateItem", err, "itemID", id)
		return nil, domain.DependencyError("update item", err)
	}

	logger.Info("Item updated", "itemID", id, "stock", updated.TotalStock, "active", updated.Active)
	return updated, nil
}

// DeleteItem removes an item that no booking references.
func (s *itemService) DeleteItem(ctx context.Context, id int64) error {
	logger.EnterMethod("itemService.DeleteItem", "itemID", id)

	err := s.locker.WithItemLock(ctx, id, func(ctx context.Context, item *domain.Item) error {
		bookings, err := s.bookingRepo.List(ctx, domain.BookingFilter{ItemID: id})
		if err != nil {
			return domain.DependencyError("list item bookings", err)
		}
		if len(bookings) > 0 {
			return domain.ValidationError("delete item", "item %d still has %d bookings", id, len(bookings))
		}
		if err := s.itemRepo.Delete(ctx, id); err != nil {
			return domain.DependencyError("delete item", err)
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("itemService.DeleteItem", err, "itemID", id)
		return domain.DependencyError("delete item", err)
	}

	logger.Info("Item deleted", "itemID", id)
	return nil
}
