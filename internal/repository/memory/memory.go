// Package memory is an in-process store used by the development config and
// by service tests. Capacity-sensitive writes are serialized with one mutex
// per item.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"rental-booking-backend/internal/clock"
	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/repository"
)

type Store struct {
	clock    clock.Clock
	mu       sync.RWMutex
	items    map[int64]domain.Item
	bookings map[int64]domain.Booking
	nextItem int64
	nextBook int64

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex

	repository.ItemRepository
	repository.BookingRepository
}

// NewStore returns an empty store that stamps item timestamps from clk. A nil
// clk uses the system clock.
func NewStore(clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.NewSystem()
	}
	s := &Store{
		clock:    clk,
		items:    make(map[int64]domain.Item),
		bookings: make(map[int64]domain.Booking),
		locks:    make(map[int64]*sync.Mutex),
	}
	s.ItemRepository = &itemRepository{s: s}
	s.BookingRepository = &bookingRepository{s: s}
	return s
}

func (s *Store) itemLock(id int64) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// WithItemLock holds the item's mutex while fn runs. Writes made by fn are
// staged and only applied when fn returns nil.
func (s *Store) WithItemLock(ctx context.Context, itemID int64, fn func(ctx context.Context, item *domain.Item) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l := s.itemLock(itemID)
	l.Lock()
	defer l.Unlock()

	item, err := s.ItemRepository.GetByID(ctx, itemID)
	if err != nil {
		return err
	}

	uow := &unitOfWork{}
	if err := fn(context.WithValue(ctx, uowKey{}, uow), item); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, apply := range uow.writes {
		apply()
	}
	return nil
}

type uowKey struct{}

// unitOfWork collects the writes issued inside WithItemLock.
type unitOfWork struct {
	writes []func()
}

func unitFrom(ctx context.Context) *unitOfWork {
	u, _ := ctx.Value(uowKey{}).(*unitOfWork)
	return u
}

// write applies fn now, or stages it when ctx belongs to a unit of work.
// Staged writes run under s.mu when the unit commits.
func (s *Store) write(ctx context.Context, fn func()) {
	if u := unitFrom(ctx); u != nil {
		u.writes = append(u.writes, fn)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

type itemRepository struct {
	s *Store
}

func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	now := r.s.clock.Now()
	r.s.mu.Lock()
	r.s.nextItem++
	item.ID = r.s.nextItem
	r.s.mu.Unlock()
	item.CreatedAt, item.UpdatedAt = now, now

	stored := *item
	r.s.write(ctx, func() { r.s.items[stored.ID] = stored })
	return nil
}

func (r *itemRepository) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	item, ok := r.s.items[id]
	if !ok {
		return nil, domain.NotFoundError("get item", "item %d not found", id)
	}
	return &item, nil
}

func (r *itemRepository) List(ctx context.Context) ([]domain.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items := make([]domain.Item, 0, len(r.s.items))
	for _, item := range r.s.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *itemRepository) Update(ctx context.Context, item *domain.Item) error {
	if _, err := r.GetByID(ctx, item.ID); err != nil {
		return domain.NotFoundError("update item", "item %d not found", item.ID)
	}
	item.UpdatedAt = r.s.clock.Now()
	stored := *item
	r.s.write(ctx, func() { r.s.items[stored.ID] = stored })
	return nil
}

func (r *itemRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return domain.NotFoundError("delete item", "item %d not found", id)
	}
	r.s.write(ctx, func() { delete(r.s.items, id) })
	return nil
}

type bookingRepository struct {
	s *Store
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	r.s.mu.Lock()
	r.s.nextBook++
	b.ID = r.s.nextBook
	r.s.mu.Unlock()

	stored := *b
	r.s.write(ctx, func() { r.s.bookings[stored.ID] = stored })
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.NotFoundError("get booking", "booking %d not found", id)
	}
	return &b, nil
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	if _, err := r.GetByID(ctx, b.ID); err != nil {
		return domain.NotFoundError("update booking", "booking %d not found", b.ID)
	}
	stored := *b
	r.s.write(ctx, func() { r.s.bookings[stored.ID] = stored })
	return nil
}

func (r *bookingRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return domain.NotFoundError("delete booking", "booking %d not found", id)
	}
	r.s.write(ctx, func() { delete(r.s.bookings, id) })
	return nil
}

func (r *bookingRepository) selectBookings(match func(b *domain.Booking) bool) []domain.Booking {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Booking
	for _, b := range r.s.bookings {
		if match(&b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *bookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	return r.selectBookings(filter.Matches), nil
}

func (r *bookingRepository) FindOverlapping(ctx context.Context, itemID int64, tr domain.TimeRange) ([]domain.Booking, error) {
	return r.selectBookings(func(b *domain.Booking) bool {
		return b.ItemID == itemID && b.Status.IsActive() && b.Range().Overlaps(tr)
	}), nil
}

func (r *bookingRepository) ListConfirmedEndingBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	return r.selectBookings(func(b *domain.Booking) bool {
		return b.Status == domain.BookingStatusConfirmed && !b.EndDate.After(cutoff)
	}), nil
}

// Ping always succeeds while ctx is live.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}
