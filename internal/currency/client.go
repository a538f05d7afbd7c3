// Package currency looks up exchange rates from a fixer-style HTTP API.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/logger"
	"rental-booking-backend/internal/metrics"
	"rental-booking-backend/internal/tracing"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const ratePrecision = 16

type Options struct {
	BaseURL           string
	APIKey            string
	BaseCurrency      string
	Timeout           time.Duration
	CacheTTL          time.Duration
	RequestsPerSecond float64
}

// Client resolves how many units of a target currency one unit of the base
// currency buys.
type Client struct {
	httpClient *http.Client
	opts       Options
	limiter    *rate.Limiter
	cache      Cache
}

// NewClient builds a rate client. A nil cache disables caching.
func NewClient(opts Options, cache Cache) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 1
	}
	opts.BaseCurrency = strings.ToUpper(opts.BaseCurrency)
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/") + "/"
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		opts:       opts,
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		cache:      cache,
	}
}

func (c *Client) BaseCurrency() string {
	return c.opts.BaseCurrency
}

type latestResponse struct {
	Success bool                       `json:"success"`
	Rates   map[string]decimal.Decimal `json:"rates"`
	Error   *struct {
		Code int    `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// NormalizeCode upper-cases a currency code and checks it is three letters.
func NormalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", domain.ValidationError("currency", "invalid currency code %q", code)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", domain.ValidationError("currency", "invalid currency code %q", code)
		}
	}
	return code, nil
}

// RateToTarget returns the rate from the base currency to code.
func (c *Client) RateToTarget(ctx context.Context, code string) (decimal.Decimal, error) {
	code, err := NormalizeCode(code)
	if err != nil {
		return decimal.Zero, err
	}
	if code == c.opts.BaseCurrency {
		return decimal.NewFromInt(1), nil
	}

	if c.cache != nil {
		cached, ok, err := c.cache.Get(ctx, code)
		if err != nil {
			logger.Warn("Rate cache read failed", "currency", code, "error", err)
		} else if ok {
			metrics.RateLookups.WithLabelValues("cache", "hit").Inc()
			return cached, nil
		}
	}

	r, err := c.fetch(ctx, code)
	if err != nil {
		metrics.RateLookups.WithLabelValues("remote", "error").Inc()
		return decimal.Zero, err
	}
	metrics.RateLookups.WithLabelValues("remote", "ok").Inc()

	if c.cache != nil && c.opts.CacheTTL > 0 {
		if err := c.cache.Set(ctx, code, r, c.opts.CacheTTL); err != nil {
			logger.Warn("Rate cache write failed", "currency", code, "error", err)
		}
	}
	return r, nil
}

func (c *Client) fetch(ctx context.Context, code string) (result decimal.Decimal, err error) {
	ctx, span := tracing.Start(ctx, "currency.RateToTarget")
	defer func() { tracing.End(span, err) }()

	if err := c.limiter.Wait(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("rate limiter: %w", err)
	}

	q := url.Values{}
	q.Set("access_key", c.opts.APIKey)
	q.Set("symbols", c.opts.BaseCurrency+","+code)
	endpoint := c.opts.BaseURL + "latest?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("build rate request: %w", err)
	}
	tracing.Inject(ctx, req.Header)

	logger.ExternalServiceCall("currency", "latest", "symbols", c.opts.BaseCurrency+","+code)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.ExternalServiceResult("currency", "latest", err)
		return decimal.Zero, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("fetch rates: unexpected status %d", resp.StatusCode)
		logger.ExternalServiceResult("currency", "latest", err)
		return decimal.Zero, err
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("decode rates: %w", err)
	}
	if body.Error != nil {
		return decimal.Zero, fmt.Errorf("rate provider error %d: %s", body.Error.Code, body.Error.Info)
	}

	fromRate, okFrom := body.Rates[c.opts.BaseCurrency]
	toRate, okTo := body.Rates[code]
	if !okFrom || !okTo {
		return decimal.Zero, fmt.Errorf("rate provider response missing %s or %s", c.opts.BaseCurrency, code)
	}
	if !fromRate.IsPositive() || !toRate.IsPositive() {
		return decimal.Zero, fmt.Errorf("rate provider returned non-positive rates for %s/%s", c.opts.BaseCurrency, code)
	}
	logger.ExternalServiceResult("currency", "latest", nil, "currency", code)
	return toRate.DivRound(fromRate, ratePrecision), nil
}
