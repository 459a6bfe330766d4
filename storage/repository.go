package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/samber/mo"
)

// Repository ties a Storage backend to the recurrence engine. It serves the two moments the
// application needs: saving a rule the user finished editing, and loading one for display or
// re-editing.
type Repository struct {
	store  Storage
	engine *recurrence.Engine
	logger *slog.Logger
}

// RepositoryOption represents a configuration option for the Repository
type RepositoryOption func(*Repository)

// WithEngine sets the recurrence engine. The default reads anchors in UTC.
func WithEngine(engine *recurrence.Engine) RepositoryOption {
	return func(r *Repository) {
		if engine != nil {
			r.engine = engine
		}
	}
}

// WithRepositoryLogger sets the logger for the repository
func WithRepositoryLogger(logger *slog.Logger) RepositoryOption {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRepository creates a repository over store
func NewRepository(store Storage, opts ...RepositoryOption) (*Repository, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}

	r := &Repository{
		store:  store,
		engine: recurrence.NewEngine(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Save stores the edited rule of an event. A rule that does not repeat removes whatever was
// stored. Exception metadata already stored for the event is kept.
func (r *Repository) Save(ctx context.Context, eventID string, m recurrence.Model) error {
	if eventID == "" {
		return &Error{Type: ErrInvalidInput, Message: "event id is required"}
	}

	prev, err := r.store.GetRule(ctx, eventID)
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("save recurrence: %w", err)
	}

	var encoded mo.Option[recurrence.StoredRule]
	if prev != nil {
		encoded, err = r.engine.Reencode(prev.Rule, m)
	} else {
		encoded, err = r.engine.ToStored(m)
	}
	if err != nil {
		return &Error{Type: ErrInvalidInput, Message: "cannot encode recurrence", Err: err}
	}

	rule, ok := encoded.Get()
	if !ok {
		if prev == nil {
			return nil
		}
		r.logger.Debug("recurrence removed", "event_id", eventID)
		if err := r.store.DeleteRule(ctx, eventID); err != nil && !IsNotFound(err) {
			return fmt.Errorf("save recurrence: %w", err)
		}
		return nil
	}

	rec := &Record{EventID: eventID, Rule: rule}
	if prev != nil {
		rec.ID = prev.ID
		rec.Created = prev.Created
	}
	if err := r.store.PutRule(ctx, rec); err != nil {
		return fmt.Errorf("save recurrence: %w", err)
	}

	r.logger.Debug("recurrence saved",
		"event_id", eventID,
		"unit", int(rule.Unit),
		"rrule", rule.RRuleText.OrEmpty())
	return nil
}

// Load returns the editing model of an event's rule, or mo.None if the event does not repeat.
// A stored rule that cannot be decoded is reported, never replaced with another shape.
func (r *Repository) Load(ctx context.Context, eventID string) (mo.Option[recurrence.Model], error) {
	rec, err := r.store.GetRule(ctx, eventID)
	if IsNotFound(err) {
		return mo.None[recurrence.Model](), nil
	}
	if err != nil {
		return mo.None[recurrence.Model](), fmt.Errorf("load recurrence: %w", err)
	}

	m, err := r.engine.ToModel(rec.Rule)
	if err != nil {
		r.logger.Warn("stored recurrence cannot be edited", "event_id", eventID, "error", err)
		return mo.None[recurrence.Model](), fmt.Errorf("load recurrence of %s: %w", eventID, err)
	}
	return mo.Some(m), nil
}

// Describe returns the RRULE text of an event's rule, or "" if the event does not repeat.
// The text is generated from the decoded rule; any cached text is not trusted.
func (r *Repository) Describe(ctx context.Context, eventID string) (string, error) {
	loaded, err := r.Load(ctx, eventID)
	if err != nil {
		return "", err
	}
	m, ok := loaded.Get()
	if !ok {
		return "", nil
	}
	return r.engine.RRULE(m)
}
