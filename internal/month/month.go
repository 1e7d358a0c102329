package month

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Month is a calendar month normalized to 00:00 UTC on its first day.
// It is half of the (customer, month) key every reporting table shares.
type Month struct {
	t time.Time
}

var ErrInvalidFormat = errors.New("invalid_month_format")

// Of normalizes any instant to its containing month.
func Of(t time.Time) Month {
	return Month{t: time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)}
}

// Parse accepts "2006-01" and "2006-01-02" forms; days are discarded.
func Parse(raw string) (Month, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range []string{"2006-01-02", "2006-01", time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return Of(t), nil
		}
	}
	return Month{}, fmt.Errorf("%w: %q", ErrInvalidFormat, raw)
}

func (m Month) Time() time.Time {
	return m.t
}

func (m Month) IsZero() bool {
	return m.t.IsZero()
}

// Add returns the month n calendar months later (n may be negative).
func (m Month) Add(n int) Month {
	return Of(m.t.AddDate(0, n, 0))
}

func (m Month) Before(other Month) bool {
	return m.t.Before(other.t)
}

func (m Month) Equal(other Month) bool {
	return m.t.Equal(other.t)
}

// String renders the storage form, e.g. "2025-08-01".
func (m Month) String() string {
	return m.t.Format("2006-01-02")
}

// Label renders the chart category form, e.g. "Aug-25".
func (m Month) Label() string {
	return m.t.Format("Jan-06")
}

// DisplayName renders the long form, e.g. "August 2025".
func (m Month) DisplayName() string {
	return m.t.Format("January 2006")
}

// Key identifies one reporting period for one customer.
type Key struct {
	Customer string
	Month    Month
}

func NewKey(customer string, m Month) Key {
	return Key{Customer: strings.TrimSpace(customer), Month: m}
}

func (k Key) String() string {
	return k.Customer + "/" + k.Month.String()
}
