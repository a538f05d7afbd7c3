package service

import (
	"context"
	"strings"

	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/logger"
)

type currencyService struct {
	rates        RateLookup
	baseCurrency string
}

func NewCurrencyService(rates RateLookup, baseCurrency string) CurrencyService {
	return &currencyService{rates: rates, baseCurrency: strings.ToUpper(baseCurrency)}
}

func (s *currencyService) ExchangeInfo(ctx context.Context, code string) (domain.ExchangeInfo, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return domain.ExchangeInfo{}, domain.ValidationError("exchange info", "currency code is required")
	}

	rate, err := s.rates.RateToTarget(ctx, code)
	if err != nil {
		logger.Warn("Exchange rate lookup failed", "currency", code, "error", err)
		return domain.ExchangeInfo{}, domain.DependencyError("exchange info", err)
	}
	return domain.ExchangeInfo{FromCurrency: s.baseCurrency, ToCurrency: code, ExchangeRate: rate}, nil
}
