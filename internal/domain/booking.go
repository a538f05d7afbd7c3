package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// MaxQuantity bounds booking quantities and item stock; both are stored as
// 32-bit INTEGER columns.
const MaxQuantity = math.MaxInt32

func validateQuantity(q int) error {
	if q <= 0 {
		return ValidationError("booking", "quantity must be positive, got %d", q)
	}
	if q > MaxQuantity {
		return ValidationError("booking", "quantity %d exceeds the maximum of %d", q, MaxQuantity)
	}
	return nil
}

type BookingEvent string

const (
	BookingEventConfirm  BookingEvent = "confirm"
	BookingEventComplete BookingEvent = "complete"
	BookingEventCancel   BookingEvent = "cancel"

	// Not lifecycle events; used to name the operation in guard failures.
	BookingEventUpdate BookingEvent = "update"
	BookingEventDelete BookingEvent = "delete"
)

// bookingTransitions maps each event to the states it may fire from and the
// state it leads to.
var bookingTransitions = map[BookingEvent]struct {
	from []BookingStatus
	to   BookingStatus
}{
	BookingEventConfirm:  {from: []BookingStatus{BookingStatusPending}, to: BookingStatusConfirmed},
	BookingEventComplete: {from: []BookingStatus{BookingStatusConfirmed}, to: BookingStatusCompleted},
	BookingEventCancel:   {from: []BookingStatus{BookingStatusPending, BookingStatusConfirmed}, to: BookingStatusCancelled},
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted
}

// IsActive reports whether a booking in this status holds stock.
func (s BookingStatus) IsActive() bool {
	return s != BookingStatusCancelled
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", ValidationError("parse status", "invalid booking status: %s", s)
	}
	return status, nil
}

// Transition returns the status reached by firing event from s.
func Transition(s BookingStatus, event BookingEvent) (BookingStatus, error) {
	t, ok := bookingTransitions[event]
	if !ok {
		return s, ValidationError("transition", "unknown booking event: %s", event)
	}
	for _, from := range t.from {
		if from == s {
			return t.to, nil
		}
	}
	return s, TransitionError(event, s)
}

type Booking struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	ItemID          int64           `json:"item_id"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	Status          BookingStatus   `json:"status"`
	Quantity        int             `json:"quantity"`
	CalculatedPrice decimal.Decimal `json:"calculated_price"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (b *Booking) Range() TimeRange {
	return TimeRange{Start: b.StartDate, End: b.EndDate}
}

// Apply fires event against the booking. On failure the booking is unchanged.
func (b *Booking) Apply(event BookingEvent) error {
	next, err := Transition(b.Status, event)
	if err != nil {
		return err
	}
	b.Status = next
	return nil
}

func (b *Booking) Confirm() error  { return b.Apply(BookingEventConfirm) }
func (b *Booking) Complete() error { return b.Apply(BookingEventComplete) }
func (b *Booking) Cancel() error   { return b.Apply(BookingEventCancel) }

// BookingRequest carries the caller-controlled fields of a booking. Price,
// status and timestamps are always derived.
type BookingRequest struct {
	UserID    int64     `json:"user_id"`
	ItemID    int64     `json:"item_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Quantity  int       `json:"quantity"`
}

func (r BookingRequest) Range() TimeRange {
	return TimeRange{Start: r.StartDate.UTC(), End: r.EndDate.UTC()}
}

func (r BookingRequest) Validate() error {
	if r.ItemID <= 0 {
		return ValidationError("booking", "item id is required")
	}
	if r.UserID <= 0 {
		return ValidationError("booking", "user id is required")
	}
	if err := validateQuantity(r.Quantity); err != nil {
		return err
	}
	return r.Range().Validate()
}

// BookingUpdate is the set of fields an update may change.
type BookingUpdate struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Quantity  int       `json:"quantity"`
}

func (u BookingUpdate) Range() TimeRange {
	return TimeRange{Start: u.StartDate.UTC(), End: u.EndDate.UTC()}
}

func (u BookingUpdate) Validate() error {
	if err := validateQuantity(u.Quantity); err != nil {
		return err
	}
	return u.Range().Validate()
}

type BookingFilter struct {
	ItemID int64
	UserID int64
	Status BookingStatus
}

func (f BookingFilter) Matches(b *Booking) bool {
	if f.ItemID != 0 && b.ItemID != f.ItemID {
		return false
	}
	if f.UserID != 0 && b.UserID != f.UserID {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	return true
}

func (b *Booking) String() string {
	return fmt.Sprintf("booking %d (item %d, %s..%s, qty %d, %s)",
		b.ID, b.ItemID, b.StartDate.Format(time.DateOnly), b.EndDate.Format(time.DateOnly), b.Quantity, b.Status)
}
