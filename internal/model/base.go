package model

import (
	"time"
)

// DateLayout is the calendar date format used across all record files.
const DateLayout = "2006-01-02"

// Timestamps are the bookkeeping fields most record files carry at the top level.
type Timestamps struct {
	CreatedAt   *string `json:"created_at"`
	LastUpdated *string `json:"last_updated"`
}

// DateRange is an inclusive [Start, End] calendar range. Empty bounds are open.
type DateRange struct {
	Start string `json:"start" form:"start" binding:"isodate"`
	End   string `json:"end" form:"end" binding:"isodate"`
}

// IsZero reports whether neither bound is set.
func (r *DateRange) IsZero() bool {
	return r == nil || (r.Start == "" && r.End == "")
}

// Contains reports whether date falls inside the range. Dates are compared on
// their leading YYYY-MM-DD so full timestamps are accepted too. An empty date
// is never contained.
func (r *DateRange) Contains(date string) bool {
	if date == "" {
		return false
	}
	if r.IsZero() {
		return true
	}
	d := dayOf(date)
	if r.Start != "" && d < dayOf(r.Start) {
		return false
	}
	if r.End != "" && d > dayOf(r.End) {
		return false
	}
	return true
}

// Validate checks both bounds parse and that Start is not after End.
func (r *DateRange) Validate() error {
	if r.IsZero() {
		return nil
	}
	var start, end time.Time
	var err error
	if r.Start != "" {
		if start, err = time.Parse(DateLayout, dayOf(r.Start)); err != nil {
			return err
		}
	}
	if r.End != "" {
		if end, err = time.Parse(DateLayout, dayOf(r.End)); err != nil {
			return err
		}
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return ErrInvalidDateRange
	}
	return nil
}

func dayOf(date string) string {
	if len(date) >= len(DateLayout) {
		return date[:len(DateLayout)]
	}
	return date
}

// YearOf returns the four-digit year prefix of a date string, or "".
func YearOf(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

// JSONMap represents a generic JSON object
type JSONMap map[string]interface{}
