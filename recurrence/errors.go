package recurrence

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownUnit is returned when a stored unit code is not one of the four known units
	ErrUnknownUnit = errors.New("unknown recurrence unit")
	// ErrUnsupportedMonthlyStrategy is returned for a monthly meta code outside the supported
	// strategies, including the reserved last-weekday codes, or for missing monthly meta
	ErrUnsupportedMonthlyStrategy = errors.New("unsupported monthly strategy")
	// ErrOutOfRangeOccurrenceCount is returned when a count does not fit below MaxAllowedOccurrenceCount
	ErrOutOfRangeOccurrenceCount = errors.New("occurrence count out of range")
	// ErrInvalidDayIndex is returned for a weekday outside Sunday..Saturday
	ErrInvalidDayIndex = errors.New("invalid day index")
	// ErrNoRecurrence is returned when a rule that does not repeat reaches the generator
	ErrNoRecurrence = errors.New("rule does not repeat")
	// ErrInvalidInterval is returned for an interval below 1
	ErrInvalidInterval = errors.New("invalid interval")
	// ErrInvalidUntil is returned for an end condition that cannot be encoded
	ErrInvalidUntil = errors.New("invalid end condition")
	// ErrEmptyWeekdaySelection is returned when a weekly rule has no day selected
	ErrEmptyWeekdaySelection = errors.New("no weekday selected")
)

// Error describes which field of a rule failed and why. Err is one of the sentinels above.
type Error struct {
	Op    string
	Field string
	Value int64
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s=%d: %v", e.Op, e.Field, e.Value, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
