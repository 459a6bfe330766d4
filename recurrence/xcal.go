package recurrence

import (
	"github.com/cyp0633/librecur/internal/xcal"
)

// XCal renders m as an xCal <recur> fragment.
func (e *Engine) XCal(m Model) (string, error) {
	r, err := e.Rule(m)
	if err != nil {
		return "", err
	}
	return r.xcal().Marshal()
}

func (r Rule) xcal() xcal.Recur {
	return xcal.Recur{
		Freq:       r.Freq,
		Until:      r.Until.OrEmpty(),
		Count:      r.Count,
		Interval:   r.Interval,
		ByDay:      r.ByDay,
		ByMonthDay: r.ByMonthDay,
		ByMonth:    r.ByMonth,
		BySetPos:   r.BySetPos,
		WeekStart:  r.WeekStart,
	}
}
