package utils

import (
	"time"

	"rental-booking-backend/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	// MoneyPlaces is the number of decimal places every stored or displayed amount carries.
	MoneyPlaces = 2
	day         = 24 * time.Hour
)

// RoundMoney rounds to cents, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// RentalDays returns the number of whole days in the range. Partial days are
// truncated, so a 47 hour rental is charged as one day.
func RentalDays(r domain.TimeRange) int64 {
	return int64(r.End.Sub(r.Start) / day)
}

// CalculatePrice computes days * dailyRate * quantity rounded to cents.
func CalculatePrice(r domain.TimeRange, dailyRate decimal.Decimal, quantity int) (decimal.Decimal, error) {
	if err := r.Validate(); err != nil {
		return decimal.Zero, err
	}
	if quantity <= 0 {
		return decimal.Zero, domain.ValidationError("calculate price", "quantity must be positive, got %d", quantity)
	}
	if dailyRate.IsNegative() {
		return decimal.Zero, domain.ValidationError("calculate price", "daily rate cannot be negative")
	}

	days := decimal.NewFromInt(RentalDays(r))
	qty := decimal.NewFromInt(int64(quantity))
	return RoundMoney(days.Mul(dailyRate).Mul(qty)), nil
}

// ConvertPrice applies a currency multiplier. Apply it at most once per
// read or write path; repeated conversion compounds.
func ConvertPrice(price, rate decimal.Decimal) decimal.Decimal {
	return RoundMoney(price.Mul(rate))
}

// FromRate inverts a rate-to-target lookup into the multiplier that brings an
// amount quoted in the target currency back into the base currency.
func FromRate(rateTo decimal.Decimal) (decimal.Decimal, error) {
	if !rateTo.IsPositive() {
		return decimal.Zero, domain.ValidationError("currency rate", "exchange rate must be positive, got %s", rateTo)
	}
	return decimal.NewFromInt(1).DivRound(rateTo, 16), nil
}
