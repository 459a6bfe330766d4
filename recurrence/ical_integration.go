package recurrence

import (
	"fmt"
	"time"

	"github.com/emersion/go-ical"
)

// productID is written to exported calendars
const productID = "-//librecur//Recurrence Export//EN"

// ApplyToComponent writes the rule onto an iCal component: DTSTART from the anchor date and
// RRULE from the generated text. A rule that does not repeat removes any existing RRULE.
func (e *Engine) ApplyToComponent(comp *ical.Component, m Model) error {
	if comp == nil {
		return fmt.Errorf("apply recurrence: nil component")
	}

	comp.Props.SetDateTime(ical.PropDateTimeStart, m.Anchor(e.config.Location))

	if m.Period == PeriodNone {
		comp.Props.Del(ical.PropRecurrenceRule)
		return nil
	}

	text, err := e.RRULE(m)
	if err != nil {
		return fmt.Errorf("apply recurrence: %w", err)
	}

	// SetText would escape the ';' and ',' separators, so the value is set raw.
	prop := ical.NewProp(ical.PropRecurrenceRule)
	prop.Value = text
	comp.Props.Set(prop)
	return nil
}

// NewEvent builds a VEVENT carrying the rule, stamped at stamp.
func (e *Engine) NewEvent(uid string, stamp time.Time, m Model) (*ical.Event, error) {
	if uid == "" {
		return nil, fmt.Errorf("new event: empty uid")
	}

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, uid)
	event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	if err := e.ApplyToComponent(event.Component, m); err != nil {
		return nil, err
	}
	return event, nil
}

// NewCalendar wraps the rule's event in a VCALENDAR ready for encoding.
func (e *Engine) NewCalendar(uid string, stamp time.Time, m Model) (*ical.Calendar, error) {
	event, err := e.NewEvent(uid, stamp, m)
	if err != nil {
		return nil, err
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Children = append(cal.Children, event.Component)
	return cal, nil
}
