// Package app assembles stores, the rate client and services from
// configuration. Both binaries start from it.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rental-booking-backend/internal/clock"
	"rental-booking-backend/internal/config"
	"rental-booking-backend/internal/currency"
	"rental-booking-backend/internal/logger"
	"rental-booking-backend/internal/repository"
	"rental-booking-backend/internal/repository/memory"
	"rental-booking-backend/internal/repository/postgres"
	"rental-booking-backend/internal/service"

	"github.com/redis/go-redis/v9"
)

type store interface {
	repository.ItemLocker
	Ping(ctx context.Context) error
}

type App struct {
	Items      service.ItemService
	Bookings   service.BookingService
	Currencies service.CurrencyService
	Rates      *currency.Client

	store   store
	closers []func() error
}

// New connects to the configured backends and builds the services.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	var (
		items    repository.ItemRepository
		bookings repository.BookingRepository
	)
	switch cfg.Database.Driver {
	case config.DriverMemory:
		logger.Warn("Using in-memory store; data is lost on restart")
		s := memory.NewStore(clock.NewSystem())
		items, bookings, a.store = s.ItemRepository, s.BookingRepository, s
	default:
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
		db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		logger.Info("Database connection established")
		s := postgres.NewStore(db, clock.NewSystem())
		items, bookings, a.store = s.ItemRepository, s.BookingRepository, s
		a.closers = append(a.closers, s.Close)
	}

	a.Rates = currency.NewClient(currency.Options{
		BaseURL:           cfg.Currency.BaseURL,
		APIKey:            cfg.Currency.APIKey,
		BaseCurrency:      cfg.Currency.BaseCurrency,
		Timeout:           cfg.Currency.Timeout(),
		CacheTTL:          cfg.Currency.CacheTTL(),
		RequestsPerSecond: cfg.Currency.RequestsPerSecond,
	}, a.rateCache(ctx, cfg))

	a.Items = service.NewItemService(items, bookings, a.store, a.Rates)
	a.Bookings = service.NewBookingService(items, bookings, a.store, a.Rates, clock.NewSystem())
	a.Currencies = service.NewCurrencyService(a.Rates, cfg.Currency.BaseCurrency)
	return a, nil
}

// rateCache returns a Redis cache when one is configured and reachable and
// falls back to an in-process cache otherwise.
func (a *App) rateCache(ctx context.Context, cfg *config.Config) currency.Cache {
	if cfg.Redis.Addr == "" {
		return currency.NewMemoryCache()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unavailable, caching exchange rates in process", "addr", cfg.Redis.Addr, "error", err)
		client.Close()
		return currency.NewMemoryCache()
	}
	logger.Info("Caching exchange rates in Redis", "addr", cfg.Redis.Addr)
	a.closers = append(a.closers, client.Close)
	return currency.NewRedisCache(client, cfg.Currency.BaseCurrency)
}

// Health reports whether the store is reachable.
func (a *App) Health(ctx context.Context) error {
	return a.store.Ping(ctx)
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
