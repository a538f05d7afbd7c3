package domain

import "github.com/shopspring/decimal"

type ExchangeInfo struct {
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
}
