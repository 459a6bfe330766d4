// memory based implementation for testing purposes
package memory

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cyp0633/librecur/storage"
	"github.com/google/uuid"
)

// Store implements storage.Storage interface using an in-memory map
type Store struct {
	mu     sync.RWMutex
	rules  map[string]*storage.Record // key: event ID
	logger *slog.Logger
	now    func() time.Time
}

// Option represents a configuration option for the Store
type Option func(*Store)

// WithLogger sets the logger for the store
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the time source used for Created/Modified
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a new in-memory storage
func New(opts ...Option) *Store {
	s := &Store{
		rules:  make(map[string]*storage.Record),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// copyRecord keeps callers from mutating stored state through returned pointers.
func copyRecord(rec *storage.Record) *storage.Record {
	c := *rec
	c.Rule.Meta = append([]int(nil), rec.Rule.Meta...)
	return &c
}

func (s *Store) GetRule(_ context.Context, eventID string) (*storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.rules[eventID]
	if !ok {
		return nil, &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "rule not found",
		}
	}

	return copyRecord(rec), nil
}

func (s *Store) ListRules(_ context.Context, opts *storage.ListOptions) ([]*storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []*storage.Record
	for _, rec := range s.rules {
		if opts.Match(rec) {
			records = append(records, copyRecord(rec))
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].EventID < records[j].EventID
	})

	return records, nil
}

func (s *Store) PutRule(_ context.Context, rec *storage.Record) error {
	if rec == nil || rec.EventID == "" {
		return &storage.Error{
			Type:    storage.ErrInvalidInput,
			Message: "event id is required",
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if existing, ok := s.rules[rec.EventID]; ok {
		rec.ID = existing.ID
		rec.Created = existing.Created
	} else {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		rec.Created = now
	}
	rec.Modified = now
	s.rules[rec.EventID] = copyRecord(rec)

	s.logger.Debug("rule stored",
		"event_id", rec.EventID,
		"id", rec.ID)

	return nil
}

func (s *Store) DeleteRule(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rules[eventID]; !exists {
		return &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "rule not found",
		}
	}

	delete(s.rules, eventID)
	s.logger.Debug("rule deleted", "event_id", eventID)
	return nil
}
