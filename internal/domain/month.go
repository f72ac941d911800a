package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// MonthFormat is the format used to represent months as strings.
const MonthFormat = "2006-01"

// Month represents a calendar month with no finer granularity.
// All temporal parameters of the ledger (version validity, inactivation
// cutover, balance query bounds) operate at month granularity.
type Month struct {
	y int
	m time.Month
}

// NewMonth returns a normalized Month for the given year and month.
// Out-of-range months roll over the year, as time.Date does.
func NewMonth(year int, month time.Month) Month {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Month{y: t.Year(), m: t.Month()}
}

// MonthOf returns the Month containing the given instant.
func MonthOf(t time.Time) Month {
	return Month{y: t.Year(), m: t.Month()}
}

// ThisMonth returns the current calendar month.
func ThisMonth() Month {
	return MonthOf(time.Now())
}

// Year returns the month's year.
func (m Month) Year() int { return m.y }

// Month returns the month-of-year.
func (m Month) Month() time.Month { return m.m }

// IsZero reports whether m is the zero value.
func (m Month) IsZero() bool { return m.y == 0 && m.m == 0 }

// FirstDay returns the first day of the month at midnight UTC.
func (m Month) FirstDay() time.Time {
	return time.Date(m.y, m.m, 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths returns the month n months after m (n may be negative).
func (m Month) AddMonths(n int) Month {
	return NewMonth(m.y, m.m+time.Month(n))
}

// NextMonth returns the month immediately after m.
func (m Month) NextMonth() Month { return m.AddMonths(1) }

// Before reports whether m is strictly before x.
func (m Month) Before(x Month) bool {
	return m.y < x.y || (m.y == x.y && m.m < x.m)
}

// After reports whether m is strictly after x.
func (m Month) After(x Month) bool { return x.Before(m) }

// Compare returns -1, 0 or +1 depending on whether m is before, equal to,
// or after x.
func (m Month) Compare(x Month) int {
	switch {
	case m.Before(x):
		return -1
	case m.After(x):
		return 1
	default:
		return 0
	}
}

// Contains reports whether the instant t falls within the month.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.y && t.Month() == m.m
}

// String formats the month as "YYYY-MM".
func (m Month) String() string { return m.FirstDay().Format(MonthFormat) }

// ParseMonth parses a Month from a "YYYY-MM" string.
func ParseMonth(str string) (Month, error) {
	t, err := time.Parse(MonthFormat, str)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q want format %q: %w", str, MonthFormat, err)
	}
	return MonthOf(t), nil
}

// MustParseMonth is like ParseMonth but panics on error.
func MustParseMonth(str string) Month {
	m, err := ParseMonth(str)
	if err != nil {
		panic(err.Error())
	}
	return m
}

// MarshalJSON encodes the month as a "YYYY-MM" JSON string.
func (m Month) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes the month from a "YYYY-MM" JSON string.
func (m *Month) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	parsed, err := ParseMonth(str)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

var _ json.Marshaler = (*Month)(nil)
var _ json.Unmarshaler = (*Month)(nil)
