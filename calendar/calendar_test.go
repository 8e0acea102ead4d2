package calendar_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/calendar"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func date(s string) calendar.Date {
	return calendar.MustParseDate(s)
}

func days(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// =============================================================================
// WORKDAY CALCULATION
// =============================================================================

func TestWorkDays_InvertedRange_Zero(t *testing.T) {
	// GIVEN: A range where start is after end
	// WHEN: Computing workdays
	// THEN: The result is zero; rejecting the range is the caller's job

	got := calendar.WorkDays(date("2025-05-22"), date("2025-05-20"), calendar.SessionFull, calendar.Taiwan())
	assert.True(t, got.IsZero())
}

func TestWorkDays_PlainWeekday_One(t *testing.T) {
	// 2025-05-20 is a Tuesday with no holiday
	got := calendar.WorkDays(date("2025-05-20"), date("2025-05-20"), calendar.SessionFull, calendar.Taiwan())
	assert.True(t, got.Equal(days(1)), "got %s", got)
}

func TestWorkDays_Weekend_Zero(t *testing.T) {
	// 2025-05-24 is a Saturday and not a make-up workday
	got := calendar.WorkDays(date("2025-05-24"), date("2025-05-24"), calendar.SessionFull, calendar.Taiwan())
	assert.True(t, got.IsZero(), "got %s", got)
}

func TestWorkDays_Holiday_Zero(t *testing.T) {
	// 2025-10-10 is a national holiday on a Friday
	got := calendar.WorkDays(date("2025-10-10"), date("2025-10-10"), calendar.SessionFull, calendar.Taiwan())
	assert.True(t, got.IsZero(), "got %s", got)
}

func TestWorkDays_MakeupSaturday_Chargeable(t *testing.T) {
	// GIVEN: 2025-02-08, a Saturday scheduled as a make-up workday
	// WHEN: Taking it as leave
	// THEN: It counts against the allowance

	got := calendar.WorkDays(date("2025-02-08"), date("2025-02-08"), calendar.SessionFull, calendar.Taiwan())
	assert.True(t, got.Equal(days(1)), "got %s", got)
}

func TestWorkDays_MultiDay_SkipsWeekendAndHolidays(t *testing.T) {
	// GIVEN: 2025-05-29 (Thu) .. 2025-06-02 (Mon),
	//        spanning a weekend where 2025-05-31 (Sat) is also a holiday
	// WHEN: Computing workdays
	// THEN: Only Thu, Fri and Mon count

	got := calendar.WorkDays(date("2025-05-29"), date("2025-06-02"), calendar.SessionFull, calendar.Taiwan())
	assert.True(t, got.Equal(days(3)), "got %s", got)
}

func TestWorkDays_ThreeWeekdayRange(t *testing.T) {
	// 2025-05-20 (Tue) .. 2025-05-22 (Thu)
	got := calendar.WorkDays(date("2025-05-20"), date("2025-05-22"), calendar.SessionFull, calendar.Taiwan())
	assert.True(t, got.Equal(days(3)), "got %s", got)
}

// =============================================================================
// HALF-DAY SESSIONS
// =============================================================================

func TestWorkDays_HalfDay_ChargeableDay_Half(t *testing.T) {
	// GIVEN: A single chargeable weekday
	// WHEN: Requesting only the morning
	// THEN: The result is exactly half the full-day result

	full := calendar.WorkDays(date("2025-05-20"), date("2025-05-20"), calendar.SessionFull, calendar.Taiwan())
	am := calendar.WorkDays(date("2025-05-20"), date("2025-05-20"), calendar.SessionMorning, calendar.Taiwan())
	pm := calendar.WorkDays(date("2025-05-20"), date("2025-05-20"), calendar.SessionAfternoon, calendar.Taiwan())

	require.True(t, full.Equal(days(1)))
	assert.True(t, am.Equal(days(0.5)), "got %s", am)
	assert.True(t, pm.Equal(days(0.5)), "got %s", pm)
}

func TestWorkDays_HalfDay_FreeDay_Zero(t *testing.T) {
	// A half-day request on a weekend still charges nothing
	got := calendar.WorkDays(date("2025-05-24"), date("2025-05-24"), calendar.SessionMorning, calendar.Taiwan())
	assert.True(t, got.IsZero(), "got %s", got)
}

// =============================================================================
// CALENDAR BOUNDS AND DETERMINISM
// =============================================================================

func TestWorkDays_OutsideTableSpan_PlainRules(t *testing.T) {
	// Dates beyond the fixed table fall back to weekday/weekend rules.
	// 2030-01-01 is a Tuesday; the table knows nothing about 2030.
	got := calendar.WorkDays(date("2030-01-01"), date("2030-01-01"), calendar.SessionFull, calendar.Taiwan())
	assert.True(t, got.Equal(days(1)), "got %s", got)
}

func TestWorkDays_Deterministic(t *testing.T) {
	cal := calendar.Taiwan()
	first := calendar.WorkDays(date("2025-01-25"), date("2025-02-10"), calendar.SessionFull, cal)
	for i := 0; i < 5; i++ {
		again := calendar.WorkDays(date("2025-01-25"), date("2025-02-10"), calendar.SessionFull, cal)
		require.True(t, first.Equal(again))
	}
}

func TestWorkDays_NoHolidaysCalendar(t *testing.T) {
	// With no holiday table, a full workweek is five days
	got := calendar.WorkDays(date("2025-05-19"), date("2025-05-25"), calendar.SessionFull, calendar.NoHolidays{})
	assert.True(t, got.Equal(days(5)), "got %s", got)
}

// =============================================================================
// DATE PARSING
// =============================================================================

func TestParseDate_RoundTrip(t *testing.T) {
	d, err := calendar.ParseDate("2025-05-20")
	require.NoError(t, err)
	assert.Equal(t, "2025-05-20", d.String())
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := calendar.ParseDate("05/20/2025")
	assert.Error(t, err)
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := date("2025-05-20")
	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2025-05-20"`, string(b))

	var parsed calendar.Date
	require.NoError(t, parsed.UnmarshalJSON(b))
	assert.True(t, parsed.Equal(d))
}
