package postgres

import (
	"context"
	"database/sql"

	"rental-booking-backend/internal/clock"
	"rental-booking-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.ItemRepository
	repository.BookingRepository
	repository.ItemLocker
}

func NewStore(db *sql.DB, clk clock.Clock) *Store {
	return &Store{
		db:                db,
		ItemRepository:    NewItemRepository(db, clk),
		BookingRepository: NewBookingRepository(db),
		ItemLocker:        NewItemLocker(db),
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
