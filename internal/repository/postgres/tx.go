package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/logger"
	"rental-booking-backend/internal/repository"
)

type txKey struct{}

// querier is the subset of *sql.DB and *sql.Tx the repositories use.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn returns the transaction carried by ctx, or db when there is none.
func conn(ctx context.Context, db *sql.DB) querier {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return db
}

func withTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.Warn("Rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func txFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

type itemLocker struct {
	db *sql.DB
}

// NewItemLocker locks the item row with SELECT ... FOR UPDATE inside a
// transaction; concurrent writers on the same item queue on the row lock.
func NewItemLocker(db *sql.DB) repository.ItemLocker {
	return &itemLocker{db: db}
}

func (l *itemLocker) WithItemLock(ctx context.Context, itemID int64, fn func(ctx context.Context, item *domain.Item) error) error {
	return withTx(ctx, l.db, func(ctx context.Context) error {
		query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1 FOR UPDATE`
		logger.DatabaseCall("lock item", query, "item_id", itemID)
		item, err := scanItem(conn(ctx, l.db).QueryRowContext(ctx, query, itemID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NotFoundError("lock item", "item %d not found", itemID)
			}
			return fmt.Errorf("lock item: %w", err)
		}
		return fn(ctx, item)
	})
}
