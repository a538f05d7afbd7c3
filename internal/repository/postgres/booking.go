package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/logger"
	"rental-booking-backend/internal/repository"
)

const bookingColumns = `id, user_id, item_id, start_date, end_date, status, quantity, calculated_price, created_at, updated_at`

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	err := row.Scan(&b.ID, &b.UserID, &b.ItemID, &b.StartDate, &b.EndDate, &b.Status, &b.Quantity,
		&b.CalculatedPrice, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.StartDate, b.EndDate = b.StartDate.UTC(), b.EndDate.UTC()
	b.CreatedAt, b.UpdatedAt = b.CreatedAt.UTC(), b.UpdatedAt.UTC()
	return b, nil
}

func (r *bookingRepository) queryBookings(ctx context.Context, op, query string, args ...any) ([]domain.Booking, error) {
	logger.DatabaseCall(op, query)
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.DatabaseResult(op, int64(len(bookings)), nil)
	return bookings, nil
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `INSERT INTO bookings (user_id, item_id, start_date, end_date, status, quantity, calculated_price, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	logger.DatabaseCall("create booking", query, "item_id", b.ItemID)
	err := conn(ctx, r.db).QueryRowContext(ctx, query, b.UserID, b.ItemID, b.StartDate, b.EndDate, b.Status, b.Quantity,
		b.CalculatedPrice, b.CreatedAt, b.UpdatedAt).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError("get booking", "booking %d not found", id)
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	query := `UPDATE bookings SET start_date=$1, end_date=$2, status=$3, quantity=$4, calculated_price=$5, updated_at=$6
	          WHERE id=$7`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, b.StartDate, b.EndDate, b.Status, b.Quantity, b.CalculatedPrice,
		b.UpdatedAt, b.ID)
	return requireRow(res, err, "update booking", "booking", b.ID)
}

func (r *bookingRepository) Delete(ctx context.Context, id int64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	return requireRow(res, err, "delete booking", "booking", id)
}

func (r *bookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	var args []any
	if filter.ItemID != 0 {
		args = append(args, filter.ItemID)
		query += fmt.Sprintf(" AND item_id = $%d", len(args))
	}
	if filter.UserID != 0 {
		args = append(args, filter.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY id"
	return r.queryBookings(ctx, "list bookings", query, args...)
}

func (r *bookingRepository) FindOverlapping(ctx context.Context, itemID int64, tr domain.TimeRange) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE item_id = $1 AND start_date < $2 AND end_date > $3 AND status <> $4
	          ORDER BY id`
	return r.queryBookings(ctx, "find overlapping bookings", query, itemID, tr.End, tr.Start, domain.BookingStatusCancelled)
}

func (r *bookingRepository) ListConfirmedEndingBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = $1 AND end_date <= $2 ORDER BY end_date`
	return r.queryBookings(ctx, "list elapsed bookings", query, domain.BookingStatusConfirmed, cutoff)
}
