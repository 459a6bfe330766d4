package recurrence

import (
	"strconv"
	"strings"
	"time"

	"github.com/samber/mo"
)

// untilLayout is the UNTIL stamp, always written in UTC.
const untilLayout = "20060102T150405Z"

// weekStart is the WKST every generated rule carries.
const weekStart = "SU"

// Rule is the broken-down RRULE produced from a Model, before it is rendered as text or xCal.
// Empty fields are omitted from the output.
type Rule struct {
	Freq       string
	Interval   int // written only when > 1
	ByMonth    []int
	BySetPos   []int
	ByDay      []string
	ByMonthDay []int
	Until      mo.Option[time.Time]
	Count      int
	WeekStart  string
}

// RRULE renders m with the default engine. See Engine.RRULE.
func RRULE(m Model) (string, error) {
	return defaultEngine.RRULE(m)
}

// RRULE renders m as RRULE text, e.g. "FREQ=WEEKLY;BYDAY=MO,WE,FR;WKST=SU". The text is a
// display and export artifact; nothing in this module reads it back.
func (e *Engine) RRULE(m Model) (string, error) {
	r, err := e.Rule(m)
	if err != nil {
		return "", err
	}
	return r.String(), nil
}

// Rule breaks m down into RRULE parts, deriving day and month fields from the anchor date.
func (e *Engine) Rule(m Model) (Rule, error) {
	r := Rule{
		Interval:  m.Frequency,
		WeekStart: weekStart,
	}

	switch m.Period {
	case PeriodNone:
		return Rule{}, &Error{Op: "rrule", Field: "period", Value: int64(m.Period), Err: ErrNoRecurrence}
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		r.Freq = m.Period.String()
	default:
		return Rule{}, &Error{Op: "rrule", Field: "period", Value: int64(m.Period), Err: ErrUnknownUnit}
	}
	if m.Frequency < 1 {
		return Rule{}, &Error{Op: "rrule", Field: "frequency", Value: int64(m.Frequency), Err: ErrInvalidInterval}
	}

	anchor := m.Anchor(e.config.Location)

	switch m.Period {
	case PeriodWeekly:
		if m.Weekdays.Empty() {
			return Rule{}, &Error{Op: "rrule", Field: "weekdays", Value: int64(m.Weekdays), Err: ErrEmptyWeekdaySelection}
		}
		for _, d := range m.Weekdays.Days() {
			r.ByDay = append(r.ByDay, weekdayCodes[d])
		}
	case PeriodMonthly:
		switch m.MonthDay {
		case SameDayOfMonth:
			r.ByMonthDay = []int{anchor.Day()}
		case SameDayOfWeek:
			r.BySetPos = []int{weekdayOrdinal(anchor)}
			r.ByDay = []string{weekdayCodes[anchor.Weekday()]}
		case LastDayOfMonth:
			r.ByMonthDay = []int{-1}
		default:
			return Rule{}, &Error{Op: "rrule", Field: "month_day", Value: int64(m.MonthDay), Err: ErrUnsupportedMonthlyStrategy}
		}
	case PeriodYearly:
		r.ByMonth = []int{int(anchor.Month())}
		r.ByMonthDay = []int{anchor.Day()}
	}

	if err := validateEnd(m.End, "rrule"); err != nil {
		return Rule{}, err
	}
	switch m.End.Kind {
	case EndUntilDate:
		r.Until = mo.Some(time.UnixMilli(m.End.Until).UTC())
	case EndAfterCount:
		r.Count = m.End.Count
	}

	return r, nil
}

// weekdayOrdinal returns which occurrence of its weekday t is within its month, 1 to 4, or
// -1 for the fifth.
func weekdayOrdinal(t time.Time) int {
	n := (t.Day()-1)/7 + 1
	if n == 5 {
		return -1
	}
	return n
}

// String renders the rule in FREQ, INTERVAL, BYMONTH, BYSETPOS, BYDAY, BYMONTHDAY, UNTIL,
// COUNT, WKST order.
func (r Rule) String() string {
	parts := []string{"FREQ=" + r.Freq}
	if r.Interval > 1 {
		parts = append(parts, "INTERVAL="+strconv.Itoa(r.Interval))
	}
	if len(r.ByMonth) > 0 {
		parts = append(parts, "BYMONTH="+joinInts(r.ByMonth))
	}
	if len(r.BySetPos) > 0 {
		parts = append(parts, "BYSETPOS="+joinInts(r.BySetPos))
	}
	if len(r.ByDay) > 0 {
		parts = append(parts, "BYDAY="+strings.Join(r.ByDay, ","))
	}
	if len(r.ByMonthDay) > 0 {
		parts = append(parts, "BYMONTHDAY="+joinInts(r.ByMonthDay))
	}
	if until, ok := r.Until.Get(); ok {
		parts = append(parts, "UNTIL="+until.UTC().Format(untilLayout))
	}
	if r.Count > 0 {
		parts = append(parts, "COUNT="+strconv.Itoa(r.Count))
	}
	if r.WeekStart != "" {
		parts = append(parts, "WKST="+r.WeekStart)
	}
	return strings.Join(parts, ";")
}

func joinInts(values []int) string {
	s := make([]string, len(values))
	for i, v := range values {
		s[i] = strconv.Itoa(v)
	}
	return strings.Join(s, ",")
}
