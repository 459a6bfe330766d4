package recurrence

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_ApplyToComponent(t *testing.T) {
	engine := NewEngine()
	mask, _ := NewWeekdayMask(time.Monday, time.Wednesday, time.Friday)
	start := time.Date(2024, 1, 17, 9, 0, 0, 0, time.UTC)

	comp := ical.NewComponent(ical.CompEvent)
	err := engine.ApplyToComponent(comp, Model{
		Period:     PeriodWeekly,
		Frequency:  1,
		AnchorDate: start.UnixMilli(),
		Weekdays:   mask,
	})
	require.NoError(t, err)

	prop := comp.Props.Get(ical.PropRecurrenceRule)
	require.NotNil(t, prop)
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=MO,WE,FR;WKST=SU", prop.Value)

	dtstart, err := comp.Props.DateTime(ical.PropDateTimeStart, time.UTC)
	require.NoError(t, err)
	assert.True(t, start.Equal(dtstart))

	// Switching the rule off removes the RRULE but keeps the start.
	require.NoError(t, engine.ApplyToComponent(comp, Model{Period: PeriodNone, AnchorDate: start.UnixMilli()}))
	assert.Nil(t, comp.Props.Get(ical.PropRecurrenceRule))
	assert.NotNil(t, comp.Props.Get(ical.PropDateTimeStart))
}

func TestEngine_ApplyToComponent_Errors(t *testing.T) {
	engine := NewEngine()

	assert.Error(t, engine.ApplyToComponent(nil, Model{Period: PeriodDaily, Frequency: 1}))

	comp := ical.NewComponent(ical.CompEvent)
	err := engine.ApplyToComponent(comp, Model{Period: PeriodWeekly, Frequency: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyWeekdaySelection)
	assert.Nil(t, comp.Props.Get(ical.PropRecurrenceRule))
}

func TestEngine_NewCalendar_Encodes(t *testing.T) {
	engine := NewEngine()
	stamp := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := Model{
		Period:     PeriodMonthly,
		Frequency:  1,
		AnchorDate: time.Date(2024, 1, 17, 9, 0, 0, 0, time.UTC).UnixMilli(),
		MonthDay:   LastDayOfMonth,
		End:        AfterCount(5),
	}

	cal, err := engine.NewCalendar("rule-1", stamp, m)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ical.NewEncoder(&buf).Encode(cal))

	body := buf.String()
	assert.Contains(t, body, "BEGIN:VEVENT")
	assert.Contains(t, body, "UID:rule-1")
	assert.Contains(t, body, "DTSTART:20240117T090000Z")
	assert.Contains(t, body, "RRULE:FREQ=MONTHLY;BYMONTHDAY=-1;COUNT=5;WKST=SU")
	assert.Contains(t, body, "PRODID:"+productID)

	// The encoded calendar parses back with the same rule.
	decoded, err := ical.NewDecoder(strings.NewReader(body)).Decode()
	require.NoError(t, err)
	events := decoded.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "FREQ=MONTHLY;BYMONTHDAY=-1;COUNT=5;WKST=SU", events[0].Props.Get(ical.PropRecurrenceRule).Value)
}

func TestEngine_NewEvent_RequiresUID(t *testing.T) {
	_, err := NewEngine().NewEvent("", time.Now(), Model{Period: PeriodDaily, Frequency: 1})
	assert.Error(t, err)
}

func TestEngine_XCal(t *testing.T) {
	mask, _ := NewWeekdayMask(time.Tuesday, time.Thursday)
	out, err := NewEngine().XCal(Model{
		Period:     PeriodWeekly,
		Frequency:  2,
		AnchorDate: time.Date(2024, 1, 17, 9, 0, 0, 0, time.UTC).UnixMilli(),
		Weekdays:   mask,
		End:        UntilDate(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC).UnixMilli()),
	})
	require.NoError(t, err)

	assert.Contains(t, out, `<recur xmlns="urn:ietf:params:xml:ns:icalendar-2.0">`)
	assert.Contains(t, out, "<freq>WEEKLY</freq>")
	assert.Contains(t, out, "<until>2024-12-31T00:00:00Z</until>")
	assert.Contains(t, out, "<interval>2</interval>")
	assert.Contains(t, out, "<byday>TU</byday>")
	assert.Contains(t, out, "<byday>TH</byday>")
	assert.Contains(t, out, "<wkst>SU</wkst>")
	assert.NotContains(t, out, "<count>")

	_, err = NewEngine().XCal(Model{Period: PeriodNone})
	assert.ErrorIs(t, err, ErrNoRecurrence)
}
