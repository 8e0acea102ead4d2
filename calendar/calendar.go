/*
Package calendar computes chargeable leave days.

PURPOSE:
  Converts a date range plus a session (full day, morning, afternoon) into
  the number of days that count against a leave allowance. Weekends and
  company holidays are free; scheduled make-up workdays are not.

KEY CONCEPTS:
  - Date:     A day-granularity point in time (no clock component)
  - Session:  FULL, AM, or PM. Half-day sessions only apply to
              single-day ranges.
  - Calendar: Holiday/make-up-day lookup, injectable so the fixed
              table can be swapped for a real provider.

CHARGEABILITY RULE:
  A day is chargeable when it is a plain weekday that is not a holiday,
  OR it is an explicit make-up workday (a weekend day scheduled as a
  working day). A date cannot be both a holiday and a make-up day in
  valid calendar data.

DETERMINISM:
  WorkDays is a pure function. Same inputs, same output, no state.

SEE ALSO:
  - fixed.go: The bounded holiday table shipped with the engine
  - leave:    The lifecycle engine consuming the computed day counts
*/
package calendar

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DATE - Day-granularity time point
// =============================================================================

// Date is a calendar day in UTC. The zero value is the zero time.
type Date struct {
	t time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates a time to its calendar day.
func FromTime(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// MustParseDate is for fixed tables and tests.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic and properties
func (d Date) AddDays(n int) Date       { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) Weekday() time.Weekday    { return d.t.Weekday() }
func (d Date) IsZero() bool             { return d.t.IsZero() }
func (d Date) Time() time.Time          { return d.t }

func (d Date) IsWeekend() bool {
	wd := d.t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) String() string { return d.t.Format(dateLayout) }

// MarshalJSON renders the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date literal %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// SESSION - Which part of the day is taken
// =============================================================================

type Session string

const (
	SessionFull      Session = "FULL"
	SessionMorning   Session = "AM"
	SessionAfternoon Session = "PM"
)

// IsHalfDay reports whether the session covers half a working day.
func (s Session) IsHalfDay() bool {
	return s == SessionMorning || s == SessionAfternoon
}

// Valid reports whether the session is one of the known values.
func (s Session) Valid() bool {
	switch s {
	case SessionFull, SessionMorning, SessionAfternoon:
		return true
	}
	return false
}

// =============================================================================
// CALENDAR - Holiday and make-up-day lookup
// =============================================================================

// Calendar answers whether a date is a holiday or a scheduled make-up
// workday. Dates outside the provider's known span are plain
// weekday/weekend days.
type Calendar interface {
	IsHoliday(d Date) bool
	IsMakeupWorkday(d Date) bool
}

// NoHolidays is a calendar with no holidays and no make-up days.
type NoHolidays struct{}

func (NoHolidays) IsHoliday(Date) bool       { return false }
func (NoHolidays) IsMakeupWorkday(Date) bool { return false }

// =============================================================================
// WORKDAY CALCULATION
// =============================================================================

var half = decimal.NewFromFloat(0.5)

// WorkDays returns the chargeable day count for [start, end] inclusive.
//
// Returns zero when start is after end; rejecting an inverted range as a
// validation error is the caller's job. Half-day sessions are only
// meaningful when start == end; pairing them with a multi-day range must
// be rejected by the caller before computing days.
func WorkDays(start, end Date, session Session, cal Calendar) decimal.Decimal {
	if start.After(end) {
		return decimal.Zero
	}

	count := 0
	for d := start; d.BeforeOrEqual(end); d = d.AddDays(1) {
		if IsChargeable(d, cal) {
			count++
		}
	}

	if start.Equal(end) && session.IsHalfDay() {
		if count > 0 {
			return half
		}
		return decimal.Zero
	}

	return decimal.NewFromInt(int64(count))
}

// IsChargeable reports whether a single day counts against the allowance.
func IsChargeable(d Date, cal Calendar) bool {
	if cal.IsMakeupWorkday(d) {
		return true
	}
	return !d.IsWeekend() && !cal.IsHoliday(d)
}
