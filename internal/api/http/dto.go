package http

import (
	"strings"
	"time"

	"rental-booking-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type itemRequest struct {
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	BaseDailyPrice  decimal.Decimal `json:"base_daily_price"`
	SecurityDeposit decimal.Decimal `json:"security_deposit"`
	TotalStock      int             `json:"total_stock"`
	Active          *bool           `json:"active"`
}

func (r itemRequest) active() bool {
	return r.Active == nil || *r.Active
}

type itemResponse struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	BaseDailyPrice  string    `json:"base_daily_price"`
	SecurityDeposit string    `json:"security_deposit"`
	Currency        string    `json:"currency,omitempty"`
	TotalStock      int       `json:"total_stock"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toItemResponse(item *domain.Item, currency string) itemResponse {
	return itemResponse{
		ID:              item.ID,
		Name:            item.Name,
		Category:        item.Category,
		BaseDailyPrice:  item.BaseDailyPrice.StringFixed(2),
		SecurityDeposit: item.SecurityDeposit.StringFixed(2),
		Currency:        strings.ToUpper(currency),
		TotalStock:      item.TotalStock,
		Active:          item.Active,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}

type bookingRequest struct {
	UserID    int64  `json:"user_id"`
	ItemID    int64  `json:"item_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Quantity  int    `json:"quantity"`
}

func (r bookingRequest) toDomain() (domain.BookingRequest, error) {
	start, err := parseDate("start_date", r.StartDate)
	if err != nil {
		return domain.BookingRequest{}, err
	}
	end, err := parseDate("end_date", r.EndDate)
	if err != nil {
		return domain.BookingRequest{}, err
	}
	return domain.BookingRequest{UserID: r.UserID, ItemID: r.ItemID, StartDate: start, EndDate: end, Quantity: r.Quantity}, nil
}

type bookingUpdateRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Quantity  int    `json:"quantity"`
}

func (r bookingUpdateRequest) toDomain() (domain.BookingUpdate, error) {
	start, err := parseDate("start_date", r.StartDate)
	if err != nil {
		return domain.BookingUpdate{}, err
	}
	end, err := parseDate("end_date", r.EndDate)
	if err != nil {
		return domain.BookingUpdate{}, err
	}
	return domain.BookingUpdate{StartDate: start, EndDate: end, Quantity: r.Quantity}, nil
}

type bookingResponse struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	ItemID          int64     `json:"item_id"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	Status          string    `json:"status"`
	Quantity        int       `json:"quantity"`
	CalculatedPrice string    `json:"calculated_price"`
	Currency        string    `json:"currency,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toBookingResponse(b *domain.Booking, currency string) bookingResponse {
	return bookingResponse{
		ID:              b.ID,
		UserID:          b.UserID,
		ItemID:          b.ItemID,
		StartDate:       b.StartDate,
		EndDate:         b.EndDate,
		Status:          string(b.Status),
		Quantity:        b.Quantity,
		CalculatedPrice: b.CalculatedPrice.StringFixed(2),
		Currency:        strings.ToUpper(currency),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

type exchangeInfoResponse struct {
	FromCurrency string `json:"from_currency"`
	ToCurrency   string `json:"to_currency"`
	ExchangeRate string `json:"exchange_rate"`
}
