package currency

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"rental-booking-backend/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRateServer(t *testing.T, body string, status int) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("access_key"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testOptions(baseURL string) Options {
	return Options{
		BaseURL:           baseURL,
		APIKey:            "secret",
		BaseCurrency:      "eur",
		Timeout:           time.Second,
		CacheTTL:          time.Minute,
		RequestsPerSecond: 100,
	}
}

func TestClient_RateToTarget(t *testing.T) {
	t.Run("Divides target by base", func(t *testing.T) {
		srv, calls := newRateServer(t, `{"success":true,"rates":{"EUR":2,"USD":1}}`, http.StatusOK)
		c := NewClient(testOptions(srv.URL), NewMemoryCache())

		r, err := c.RateToTarget(context.Background(), "usd")
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("0.5").Equal(r), "got %s", r)

		_, err = c.RateToTarget(context.Background(), "USD")
		require.NoError(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(calls), "second lookup should come from cache")
	})

	t.Run("Base currency needs no lookup", func(t *testing.T) {
		srv, calls := newRateServer(t, `{}`, http.StatusOK)
		c := NewClient(testOptions(srv.URL), nil)

		r, err := c.RateToTarget(context.Background(), "EUR")
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(1).Equal(r))
		assert.Equal(t, int32(0), atomic.LoadInt32(calls))
	})

	t.Run("Missing rate", func(t *testing.T) {
		srv, _ := newRateServer(t, `{"success":true,"rates":{"EUR":1}}`, http.StatusOK)
		c := NewClient(testOptions(srv.URL), nil)

		_, err := c.RateToTarget(context.Background(), "GBP")
		assert.Error(t, err)
	})

	t.Run("Provider error", func(t *testing.T) {
		srv, _ := newRateServer(t, `{"success":false,"error":{"code":101,"info":"invalid access key"}}`, http.StatusOK)
		c := NewClient(testOptions(srv.URL), nil)

		_, err := c.RateToTarget(context.Background(), "GBP")
		assert.ErrorContains(t, err, "invalid access key")
	})

	t.Run("Server failure", func(t *testing.T) {
		srv, _ := newRateServer(t, `oops`, http.StatusInternalServerError)
		c := NewClient(testOptions(srv.URL), nil)

		_, err := c.RateToTarget(context.Background(), "GBP")
		assert.ErrorContains(t, err, "unexpected status 500")
	})

	t.Run("Invalid code", func(t *testing.T) {
		c := NewClient(testOptions("http://127.0.0.1:0"), nil)
		_, err := c.RateToTarget(context.Background(), "dollars")
		assert.True(t, errors.Is(err, domain.ErrValidationFailed))
	})
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "USD", decimal.NewFromInt(2), time.Minute))
	_, ok, _ := c.Get(ctx, "USD")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = c.Get(ctx, "USD")
	assert.False(t, ok)
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	c := NewRedisCache(client, "eur")
	require.NoError(t, c.Set(ctx, "USD", decimal.RequireFromString("1.0825"), time.Minute))
	defer client.Del(ctx, c.key("USD"))

	r, ok, err := c.Get(ctx, "USD")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, decimal.RequireFromString("1.0825").Equal(r))

	_, ok, err = c.Get(ctx, "JPY")
	require.NoError(t, err)
	assert.False(t, ok)
}
