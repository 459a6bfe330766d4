package recurrence

import (
	"strings"
	"time"
)

// weekdayCodes are the RRULE BYDAY codes indexed by time.Weekday (0 = Sunday).
var weekdayCodes = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// WeekdayCode returns the two-letter RRULE code for d, or "" if d is out of range.
func WeekdayCode(d time.Weekday) string {
	if !validDay(d) {
		return ""
	}
	return weekdayCodes[d]
}

func validDay(d time.Weekday) bool {
	return d >= time.Sunday && d <= time.Saturday
}

// WeekdayMask is the stored weekday selection. Day d lives at bit d+1, so bit 0 is never
// set; the raw value is kept for compatibility with existing data.
type WeekdayMask uint8

func dayBit(d time.Weekday) WeekdayMask {
	return 1 << (uint(d) + 1)
}

// NewWeekdayMask builds a mask with the given days selected.
func NewWeekdayMask(days ...time.Weekday) (WeekdayMask, error) {
	var m WeekdayMask
	for _, d := range days {
		var err error
		if m, err = m.Set(d, true); err != nil {
			return 0, err
		}
	}
	return m, nil
}

// IsSelected reports whether d is selected. Out-of-range days are never selected; unlike Set,
// this is not an error.
func (m WeekdayMask) IsSelected(d time.Weekday) bool {
	if !validDay(d) {
		return false
	}
	return m&dayBit(d) != 0
}

// Set returns a copy of m with d selected or cleared.
func (m WeekdayMask) Set(d time.Weekday, selected bool) (WeekdayMask, error) {
	if !validDay(d) {
		return m, &Error{Op: "set weekday", Field: "day", Value: int64(d), Err: ErrInvalidDayIndex}
	}
	if selected {
		return m | dayBit(d), nil
	}
	return m &^ dayBit(d), nil
}

// Days lists the selected days from Sunday to Saturday.
func (m WeekdayMask) Days() []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if m.IsSelected(d) {
			days = append(days, d)
		}
	}
	return days
}

// Empty reports whether no day is selected. Bit 0 carries no day.
func (m WeekdayMask) Empty() bool {
	return m&^1 == 0
}

// String renders the selection as comma-joined BYDAY codes, e.g. "MO,WE,FR".
func (m WeekdayMask) String() string {
	days := m.Days()
	codes := make([]string, 0, len(days))
	for _, d := range days {
		codes = append(codes, weekdayCodes[d])
	}
	return strings.Join(codes, ",")
}
