package recurrence

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultModel(t *testing.T) {
	wednesday := time.Date(2024, 1, 17, 9, 0, 0, 0, time.UTC)

	m := DefaultModel(PeriodWeekly, wednesday)
	assert.Equal(t, 1, m.Frequency)
	assert.Equal(t, Never(), m.End)
	assert.Equal(t, wednesday.UnixMilli(), m.AnchorDate)
	assert.Equal(t, []time.Weekday{time.Wednesday}, m.Weekdays.Days())
	require.NoError(t, m.Validate())

	daily := DefaultModel(PeriodDaily, wednesday)
	assert.True(t, daily.Weekdays.Empty())
	assert.Equal(t, SameDayOfMonth, daily.MonthDay)
}

func TestModel_Anchor(t *testing.T) {
	at := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	m := Model{AnchorDate: at.UnixMilli()}

	assert.True(t, at.Equal(m.Anchor(nil)))
	assert.Equal(t, time.UTC, m.Anchor(nil).Location())
}

func TestModel_Normalize(t *testing.T) {
	mask, _ := NewWeekdayMask(time.Tuesday)

	m := Model{
		Period:    PeriodDaily,
		Frequency: 1,
		Weekdays:  mask,
		MonthDay:  LastDayOfMonth,
		End:       EndCondition{Kind: EndAfterCount, Count: 4, Until: 5000},
	}.Normalize()

	assert.Zero(t, m.Weekdays)
	assert.Equal(t, SameDayOfMonth, m.MonthDay)
	assert.Equal(t, AfterCount(4), m.End)

	weekly := Model{Period: PeriodWeekly, Weekdays: mask, End: EndCondition{Kind: EndKind(8)}}.Normalize()
	assert.Equal(t, mask, weekly.Weekdays)
	assert.Equal(t, Never(), weekly.End)
}

func TestModel_Validate(t *testing.T) {
	mask, _ := NewWeekdayMask(time.Monday)

	tests := []struct {
		name  string
		model Model
		err   error
	}{
		{name: "valid daily", model: Model{Period: PeriodDaily, Frequency: 1}},
		{name: "valid weekly", model: Model{Period: PeriodWeekly, Frequency: 1, Weekdays: mask, End: AfterCount(999)}},
		{name: "valid until", model: Model{Period: PeriodYearly, Frequency: 1, End: UntilDate(1000)}},
		{name: "none", model: Model{Period: PeriodNone, Frequency: 1}, err: ErrNoRecurrence},
		{name: "unknown period", model: Model{Period: -1, Frequency: 1}, err: ErrUnknownUnit},
		{name: "zero frequency", model: Model{Period: PeriodDaily}, err: ErrInvalidInterval},
		{name: "empty weekly", model: Model{Period: PeriodWeekly, Frequency: 1}, err: ErrEmptyWeekdaySelection},
		{name: "reserved monthly", model: Model{Period: PeriodMonthly, Frequency: 1, MonthDay: LastWeekday}, err: ErrUnsupportedMonthlyStrategy},
		{name: "count too large", model: Model{Period: PeriodDaily, Frequency: 1, End: AfterCount(1000)}, err: ErrOutOfRangeOccurrenceCount},
		{name: "count zero", model: Model{Period: PeriodDaily, Frequency: 1, End: AfterCount(0)}, err: ErrInvalidUntil},
		{name: "until too small", model: Model{Period: PeriodDaily, Frequency: 1, End: UntilDate(10)}, err: ErrInvalidUntil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.model.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.err), "got %v", err)
		})
	}
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "WEEKLY", PeriodWeekly.String())
	assert.Equal(t, "UNKNOWN", Period(42).String())
	assert.Equal(t, "LAST_WEEKEND_DAY", LastWeekendDay.String())
	assert.Equal(t, "UNKNOWN", MonthDayStrategy(-3).String())
}

func TestError_Message(t *testing.T) {
	err := &Error{Op: "decode", Field: "unit", Value: 7, Err: ErrUnknownUnit}
	assert.Equal(t, "decode: unit=7: unknown recurrence unit", err.Error())
	assert.Equal(t, ErrUnknownUnit, errors.Unwrap(err))
}
