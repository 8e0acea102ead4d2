package calendar

// =============================================================================
// FIXED CALENDAR - Bounded holiday table
// =============================================================================

// FixedCalendar is a Calendar backed by explicit date sets. It only knows
// the dates it was given; everything else is a plain weekday or weekend.
type FixedCalendar struct {
	holidays map[Date]struct{}
	makeup   map[Date]struct{}
}

func NewFixedCalendar(holidays, makeupWorkdays []Date) *FixedCalendar {
	c := &FixedCalendar{
		holidays: make(map[Date]struct{}, len(holidays)),
		makeup:   make(map[Date]struct{}, len(makeupWorkdays)),
	}
	for _, d := range holidays {
		c.holidays[d] = struct{}{}
	}
	for _, d := range makeupWorkdays {
		c.makeup[d] = struct{}{}
	}
	return c
}

func (c *FixedCalendar) IsHoliday(d Date) bool {
	_, ok := c.holidays[d]
	return ok
}

func (c *FixedCalendar) IsMakeupWorkday(d Date) bool {
	_, ok := c.makeup[d]
	return ok
}

// Taiwan public holidays for the supported span. Lunar New Year dominates
// the early-year block; make-up Saturdays compensate for bridge days.
var taiwanHolidays = []string{
	"2025-01-01",
	"2025-01-27", "2025-01-28", "2025-01-29", "2025-01-30", "2025-01-31",
	"2025-02-01", "2025-02-02",
	"2025-02-28",
	"2025-04-03", "2025-04-04",
	"2025-05-31",
	"2025-10-06", "2025-10-10",
}

var taiwanMakeupWorkdays = []string{
	"2025-02-08",
	"2026-02-07",
}

// Taiwan returns the fixed holiday calendar used by the engine.
func Taiwan() *FixedCalendar {
	return NewFixedCalendar(parseAll(taiwanHolidays), parseAll(taiwanMakeupWorkdays))
}

func parseAll(dates []string) []Date {
	out := make([]Date, len(dates))
	for i, s := range dates {
		out[i] = MustParseDate(s)
	}
	return out
}
