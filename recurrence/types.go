package recurrence

import (
	"time"

	"github.com/samber/mo"
)

// MaxAllowedOccurrenceCount is the largest value of StoredRule.Until that is read as an
// occurrence count. Anything above it is an epoch-millisecond end date.
const MaxAllowedOccurrenceCount = 999

// Period is the repeat unit chosen in the picker.
type Period int

const (
	PeriodNone Period = iota // does not repeat
	PeriodDaily
	PeriodWeekly
	PeriodMonthly
	PeriodYearly
)

func (p Period) String() string {
	switch p {
	case PeriodNone:
		return "NONE"
	case PeriodDaily:
		return "DAILY"
	case PeriodWeekly:
		return "WEEKLY"
	case PeriodMonthly:
		return "MONTHLY"
	case PeriodYearly:
		return "YEARLY"
	default:
		return "UNKNOWN"
	}
}

// Unit is the stored code for a period. There is no code for PeriodNone: a rule that does
// not repeat has no stored representation at all.
type Unit int

const (
	UnitDay   Unit = 1
	UnitWeek  Unit = 2
	UnitMonth Unit = 3
	UnitYear  Unit = 4
)

// MonthDayStrategy selects which day a monthly rule lands on.
type MonthDayStrategy int

// The numeric values double as the stored meta codes.
const (
	SameDayOfMonth MonthDayStrategy = iota
	SameDayOfWeek
	LastDayOfMonth
	// LastWeekday and LastWeekendDay exist in the stored vocabulary only. Nothing produces
	// them and decoding them fails with ErrUnsupportedMonthlyStrategy.
	LastWeekday
	LastWeekendDay
)

func (s MonthDayStrategy) String() string {
	switch s {
	case SameDayOfMonth:
		return "SAME_DAY_OF_MONTH"
	case SameDayOfWeek:
		return "SAME_DAY_OF_WEEK"
	case LastDayOfMonth:
		return "LAST_DAY_OF_MONTH"
	case LastWeekday:
		return "LAST_WEEKDAY"
	case LastWeekendDay:
		return "LAST_WEEKEND_DAY"
	default:
		return "UNKNOWN"
	}
}

// supported reports whether the strategy can live in a Model.
func (s MonthDayStrategy) supported() bool {
	return s == SameDayOfMonth || s == SameDayOfWeek || s == LastDayOfMonth
}

// EndKind tags the variant held by an EndCondition.
type EndKind int

const (
	EndNever EndKind = iota
	EndAfterCount
	EndUntilDate
)

// EndCondition is a tagged union: Count is set only for EndAfterCount, Until only for
// EndUntilDate. Build it with Never, AfterCount or UntilDate.
type EndCondition struct {
	Kind  EndKind
	Count int   // number of occurrences
	Until int64 // epoch milliseconds
}

func Never() EndCondition { return EndCondition{Kind: EndNever} }

func AfterCount(n int) EndCondition { return EndCondition{Kind: EndAfterCount, Count: n} }

func UntilDate(ms int64) EndCondition { return EndCondition{Kind: EndUntilDate, Until: ms} }

// Model is the editable form of a recurrence rule, as held by the recurrence picker.
type Model struct {
	Period    Period
	Frequency int // interval multiplier, >= 1

	// AnchorDate is the first occurrence in epoch milliseconds.
	AnchorDate int64

	// Weekdays is only meaningful for PeriodWeekly.
	Weekdays WeekdayMask
	// MonthDay is only meaningful for PeriodMonthly.
	MonthDay MonthDayStrategy

	End EndCondition
}

// DefaultModel seeds a freshly opened picker: every 1 period, never ending, and for weekly
// rules the anchor's own weekday selected.
func DefaultModel(period Period, anchor time.Time) Model {
	m := Model{
		Period:     period,
		Frequency:  1,
		AnchorDate: anchor.UnixMilli(),
		End:        Never(),
	}
	if period == PeriodWeekly {
		m.Weekdays, _ = m.Weekdays.Set(anchor.Weekday(), true)
	}
	return m
}

// Anchor returns AnchorDate as a time in loc.
func (m Model) Anchor(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(m.AnchorDate).In(loc)
}

// Normalize clears fields the period does not use.
func (m Model) Normalize() Model {
	if m.Period != PeriodWeekly {
		m.Weekdays = 0
	}
	if m.Period != PeriodMonthly {
		m.MonthDay = SameDayOfMonth
	}
	switch m.End.Kind {
	case EndAfterCount:
		m.End.Until = 0
	case EndUntilDate:
		m.End.Count = 0
	default:
		m.End = Never()
	}
	return m
}

// Validate checks the model the way the picker must before committing it.
func (m Model) Validate() error {
	switch m.Period {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
	case PeriodNone:
		return &Error{Op: "validate", Field: "period", Value: int64(m.Period), Err: ErrNoRecurrence}
	default:
		return &Error{Op: "validate", Field: "period", Value: int64(m.Period), Err: ErrUnknownUnit}
	}
	if m.Frequency < 1 {
		return &Error{Op: "validate", Field: "frequency", Value: int64(m.Frequency), Err: ErrInvalidInterval}
	}
	if m.Period == PeriodWeekly && m.Weekdays.Empty() {
		return &Error{Op: "validate", Field: "weekdays", Value: int64(m.Weekdays), Err: ErrEmptyWeekdaySelection}
	}
	if m.Period == PeriodMonthly && !m.MonthDay.supported() {
		return &Error{Op: "validate", Field: "month_day", Value: int64(m.MonthDay), Err: ErrUnsupportedMonthlyStrategy}
	}
	return validateEnd(m.End, "validate")
}

func validateEnd(end EndCondition, op string) error {
	switch end.Kind {
	case EndNever:
		return nil
	case EndAfterCount:
		if end.Count < 1 {
			return &Error{Op: op, Field: "count", Value: int64(end.Count), Err: ErrInvalidUntil}
		}
		if end.Count > MaxAllowedOccurrenceCount {
			return &Error{Op: op, Field: "count", Value: int64(end.Count), Err: ErrOutOfRangeOccurrenceCount}
		}
		return nil
	case EndUntilDate:
		if end.Until <= MaxAllowedOccurrenceCount {
			return &Error{Op: op, Field: "until", Value: end.Until, Err: ErrInvalidUntil}
		}
		return nil
	default:
		return &Error{Op: op, Field: "end", Value: int64(end.Kind), Err: ErrInvalidUntil}
	}
}

// StoredRule is the compact form persisted and synced by the application.
type StoredRule struct {
	// RRuleText is a cached display string. It is never read back.
	RRuleText mo.Option[string] `json:"rrule_text"`

	// Exception metadata for a single instance of a series; carried through untouched.
	OccurrenceID mo.Option[string] `json:"occurrence_id"`
	IsReschedule mo.Option[bool]   `json:"is_reschedule"`

	Unit     Unit `json:"unit"`
	Interval int  `json:"interval"`
	// Until is 0 for forever, 1..=MaxAllowedOccurrenceCount for a count, and an epoch
	// millisecond end date above that.
	Until int64 `json:"until"`
	// Meta holds weekday indexes for UnitWeek and a single strategy code for UnitMonth.
	Meta []int `json:"meta,omitempty"`

	AnchorDate int64 `json:"anchor_date"`
}
