package domain

import "time"

// TimeRange is the half-open interval [Start, End).
type TimeRange struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

func NewTimeRange(start, end time.Time) (TimeRange, error) {
	r := TimeRange{Start: start.UTC(), End: end.UTC()}
	if err := r.Validate(); err != nil {
		return TimeRange{}, err
	}
	return r, nil
}

func (r TimeRange) Valid() bool {
	return r.End.After(r.Start)
}

func (r TimeRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return ValidationError("time range", "start and end dates are required")
	}
	if !r.Valid() {
		return ValidationError("time range", "end date %s must be after start date %s",
			r.End.Format(time.RFC3339), r.Start.Format(time.RFC3339))
	}
	return nil
}

// Overlaps reports whether two ranges share an instant. Back-to-back ranges
// (one ends exactly when the other starts) do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && r.End.After(other.Start)
}

// Overlaps is the free-function form of TimeRange.Overlaps.
func Overlaps(a, b TimeRange) bool {
	return a.Overlaps(b)
}
