package audit

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Day-granularity calendar date (the audit never needs finer)
// =============================================================================

// Date is a calendar date normalized to UTC midnight. The zero value means
// "absent" (optional column, or a lenient parse failure).
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return DateOf(time.Now())
}

// dateLayouts are tried in order. Day-first where ambiguous: "03/04/2024"
// is 3 April, never March 4.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2.1.2006",
}

// ParseDate parses a date string in strict mode. Every failure, including
// an empty string, is an error; callers that treat empty as absent must
// check before parsing.
func ParseDate(s string) (Date, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("unparseable date %q", s)
}

// ParseDateLenient parses a date string in lenient mode: failures coerce to
// the zero Date and report ok=false so callers can count and exclude them.
func ParseDateLenient(s string) (Date, bool) {
	d, err := ParseDate(s)
	if err != nil {
		return Date{}, false
	}
	return d, true
}

// Comparison
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }
func (d Date) IsZero() bool           { return d.t.IsZero() }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }
func (d Date) Time() time.Time   { return d.t }

// String formats as ISO yyyy-mm-dd; the zero Date formats as "".
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format("2006-01-02")
}

// DaysBetween returns the whole days from one date to another (negative if
// to precedes from).
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// MinDate returns the earlier of two dates.
func MinDate(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

// MaxDate returns the later of two dates.
func MaxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}
