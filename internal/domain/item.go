package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	BaseDailyPrice  decimal.Decimal `json:"base_daily_price"`
	SecurityDeposit decimal.Decimal `json:"security_deposit"`
	TotalStock      int             `json:"total_stock"`
	Active          bool            `json:"active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ItemChanges holds the fields an item update replaces.
type ItemChanges struct {
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	BaseDailyPrice  decimal.Decimal `json:"base_daily_price"`
	SecurityDeposit decimal.Decimal `json:"security_deposit"`
	TotalStock      int             `json:"total_stock"`
	Active          bool            `json:"active"`
}

func (i *Item) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ValidationError("item", "name is required")
	}
	if i.BaseDailyPrice.IsNegative() {
		return ValidationError("item", "base daily price cannot be negative")
	}
	if i.SecurityDeposit.IsNegative() {
		return ValidationError("item", "security deposit cannot be negative")
	}
	if i.TotalStock < 0 {
		return ValidationError("item", "total stock cannot be negative, got %d", i.TotalStock)
	}
	if i.TotalStock > MaxQuantity {
		return ValidationError("item", "total stock %d exceeds the maximum of %d", i.TotalStock, MaxQuantity)
	}
	return nil
}

// Normalize rounds money fields to cents and trims text.
func (i *Item) Normalize() {
	i.Name = strings.TrimSpace(i.Name)
	i.Category = strings.TrimSpace(i.Category)
	i.BaseDailyPrice = i.BaseDailyPrice.Round(2)
	i.SecurityDeposit = i.SecurityDeposit.Round(2)
}

// ApplyChanges replaces the mutable fields and validates the result. On
// failure the item is unchanged.
func (i *Item) ApplyChanges(c ItemChanges) error {
	next := *i
	next.Name = c.Name
	next.Category = c.Category
	next.BaseDailyPrice = c.BaseDailyPrice
	next.SecurityDeposit = c.SecurityDeposit
	next.TotalStock = c.TotalStock
	next.Active = c.Active
	next.Normalize()
	if err := next.Validate(); err != nil {
		return err
	}
	*i = next
	return nil
}
