package recurrence

import (
	"io"
	"log/slog"
	"time"
)

// EngineConfig holds configuration options for the recurrence engine
type EngineConfig struct {
	// Location is the calendar zone used to read weekday, day of month and month
	// from the anchor date. Nil means UTC.
	Location *time.Location

	// Logger receives debug output for rejected rules. Nil disables logging.
	Logger *slog.Logger
}

// DefaultEngineConfig reads anchor dates in UTC and logs nothing
var DefaultEngineConfig = EngineConfig{
	Location: time.UTC,
}

// LocalEngineConfig reads anchor dates in the process's local zone, which is what a
// device-side picker shows the user
var LocalEngineConfig = EngineConfig{
	Location: time.Local,
}

// NewEngineWithConfig creates a new recurrence engine with custom configuration
func NewEngineWithConfig(config EngineConfig) *Engine {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Engine{
		config: config,
		logger: config.Logger,
	}
}
