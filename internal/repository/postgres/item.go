package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rental-booking-backend/internal/clock"
	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/logger"
	"rental-booking-backend/internal/repository"
)

const itemColumns = `id, name, category, base_daily_price, security_deposit, total_stock, active, created_at, updated_at`

type itemRepository struct {
	db    *sql.DB
	clock clock.Clock
}

// NewItemRepository stamps created_at and updated_at from clk; nil means the
// system clock.
func NewItemRepository(db *sql.DB, clk clock.Clock) repository.ItemRepository {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &itemRepository{db: db, clock: clk}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.Item, error) {
	item := &domain.Item{}
	err := row.Scan(&item.ID, &item.Name, &item.Category, &item.BaseDailyPrice, &item.SecurityDeposit,
		&item.TotalStock, &item.Active, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	return item, nil
}

func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	query := `INSERT INTO items (name, category, base_daily_price, security_deposit, total_stock, active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	now := r.clock.Now().UTC()
	logger.DatabaseCall("create item", query, "name", item.Name)
	err := conn(ctx, r.db).QueryRowContext(ctx, query, item.Name, item.Category, item.BaseDailyPrice, item.SecurityDeposit,
		item.TotalStock, item.Active, now, now).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	item.CreatedAt, item.UpdatedAt = now, now
	return nil
}

func (r *itemRepository) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	item, err := scanItem(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError("get item", "item %d not found", id)
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (r *itemRepository) List(ctx context.Context) ([]domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("list items: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (r *itemRepository) Update(ctx context.Context, item *domain.Item) error {
	query := `UPDATE items SET name=$1, category=$2, base_daily_price=$3, security_deposit=$4, total_stock=$5, active=$6, updated_at=$7
	          WHERE id=$8`
	now := r.clock.Now().UTC()
	res, err := conn(ctx, r.db).ExecContext(ctx, query, item.Name, item.Category, item.BaseDailyPrice, item.SecurityDeposit,
		item.TotalStock, item.Active, now, item.ID)
	if err := requireRow(res, err, "update item", "item", item.ID); err != nil {
		return err
	}
	item.UpdatedAt = now
	return nil
}

func (r *itemRepository) Delete(ctx context.Context, id int64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	return requireRow(res, err, "delete item", "item", id)
}

// requireRow turns a statement that touched no rows into NotFound.
func requireRow(res sql.Result, err error, op, entity string, id int64) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult(op, n, err)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return domain.NotFoundError(op, "%s %d not found", entity, id)
	}
	return nil
}
