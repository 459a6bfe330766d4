package recurrence

import (
	"log/slog"
	"time"

	"github.com/samber/mo"
)

// Engine converts recurrence rules between the picker model, the stored representation and
// RRULE text. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	config EngineConfig
	logger *slog.Logger
}

// NewEngine creates a new recurrence engine instance
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultEngineConfig)
}

var defaultEngine = NewEngine()

// ToStored encodes m with the default engine. See Engine.ToStored.
func ToStored(m Model) (mo.Option[StoredRule], error) {
	return defaultEngine.ToStored(m)
}

// ToModel decodes s with the default engine. See Engine.ToModel.
func ToModel(s StoredRule) (Model, error) {
	return defaultEngine.ToModel(s)
}

// Location returns the zone the engine reads anchor dates in.
func (e *Engine) Location() *time.Location {
	return e.config.Location
}

// ToStored encodes m into its stored form. A rule that does not repeat has no stored form
// and yields mo.None. RRuleText is filled in when the rule can be rendered.
func (e *Engine) ToStored(m Model) (mo.Option[StoredRule], error) {
	if m.Period == PeriodNone {
		return mo.None[StoredRule](), nil
	}

	unit, ok := periodUnits[m.Period]
	if !ok {
		return mo.None[StoredRule](), &Error{Op: "encode", Field: "period", Value: int64(m.Period), Err: ErrUnknownUnit}
	}
	if m.Frequency < 1 {
		return mo.None[StoredRule](), &Error{Op: "encode", Field: "frequency", Value: int64(m.Frequency), Err: ErrInvalidInterval}
	}
	if err := validateEnd(m.End, "encode"); err != nil {
		return mo.None[StoredRule](), err
	}

	s := StoredRule{
		Unit:       unit,
		Interval:   m.Frequency,
		AnchorDate: m.AnchorDate,
	}

	switch m.End.Kind {
	case EndAfterCount:
		s.Until = int64(m.End.Count)
	case EndUntilDate:
		s.Until = m.End.Until
	}

	switch m.Period {
	case PeriodWeekly:
		for d := time.Sunday; d <= time.Saturday; d++ {
			if m.Weekdays.IsSelected(d) {
				s.Meta = append(s.Meta, int(d))
			}
		}
	case PeriodMonthly:
		if !m.MonthDay.supported() {
			return mo.None[StoredRule](), &Error{Op: "encode", Field: "month_day", Value: int64(m.MonthDay), Err: ErrUnsupportedMonthlyStrategy}
		}
		s.Meta = []int{int(m.MonthDay)}
	}

	if text, err := e.RRULE(m); err == nil {
		s.RRuleText = mo.Some(text)
	} else {
		e.logger.Debug("stored rule without rrule text", "period", m.Period.String(), "error", err)
	}

	return mo.Some(s), nil
}

// Reencode encodes an edited model while keeping the exception metadata of the stored rule
// it was loaded from.
func (e *Engine) Reencode(prev StoredRule, m Model) (mo.Option[StoredRule], error) {
	res, err := e.ToStored(m)
	if err != nil {
		return res, err
	}
	return res.Map(func(s StoredRule) (StoredRule, bool) {
		s.OccurrenceID = prev.OccurrenceID
		s.IsReschedule = prev.IsReschedule
		return s, true
	}), nil
}

// ToModel decodes a stored rule. Anything that does not map onto a supported rule shape is
// reported instead of being replaced with a default. RRuleText is ignored.
func (e *Engine) ToModel(s StoredRule) (Model, error) {
	period, ok := unitPeriods[s.Unit]
	if !ok {
		return e.decodeFailure("unit", int64(s.Unit), ErrUnknownUnit)
	}
	if s.Interval < 1 {
		return e.decodeFailure("interval", int64(s.Interval), ErrInvalidInterval)
	}

	m := Model{
		Period:     period,
		Frequency:  s.Interval,
		AnchorDate: s.AnchorDate,
	}

	switch {
	case s.Until == 0:
		m.End = Never()
	case s.Until > 0 && s.Until <= MaxAllowedOccurrenceCount:
		m.End = AfterCount(int(s.Until))
	case s.Until > MaxAllowedOccurrenceCount:
		m.End = UntilDate(s.Until)
	default:
		return e.decodeFailure("until", s.Until, ErrInvalidUntil)
	}

	switch period {
	case PeriodWeekly:
		for _, idx := range s.Meta {
			var err error
			if m.Weekdays, err = m.Weekdays.Set(time.Weekday(idx), true); err != nil {
				return e.decodeFailure("meta", int64(idx), ErrInvalidDayIndex)
			}
		}
	case PeriodMonthly:
		if len(s.Meta) == 0 {
			return e.decodeFailure("meta", 0, ErrUnsupportedMonthlyStrategy)
		}
		strategy := MonthDayStrategy(s.Meta[0])
		if !strategy.supported() {
			return e.decodeFailure("meta", int64(s.Meta[0]), ErrUnsupportedMonthlyStrategy)
		}
		m.MonthDay = strategy
	}

	return m, nil
}

func (e *Engine) decodeFailure(field string, value int64, err error) (Model, error) {
	e.logger.Debug("rejected stored rule", "field", field, "value", value, "error", err)
	return Model{}, &Error{Op: "decode", Field: field, Value: value, Err: err}
}

// DecodeAll decodes every stored rule independently, so one bad rule does not hide the others.
func (e *Engine) DecodeAll(rules []StoredRule) []mo.Result[Model] {
	out := make([]mo.Result[Model], 0, len(rules))
	for _, s := range rules {
		out = append(out, mo.TupleToResult(e.ToModel(s)))
	}
	return out
}

var periodUnits = map[Period]Unit{
	PeriodDaily:   UnitDay,
	PeriodWeekly:  UnitWeek,
	PeriodMonthly: UnitMonth,
	PeriodYearly:  UnitYear,
}

var unitPeriods = map[Unit]Period{
	UnitDay:   PeriodDaily,
	UnitWeek:  PeriodWeekly,
	UnitMonth: PeriodMonthly,
	UnitYear:  PeriodYearly,
}
