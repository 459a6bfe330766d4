// Package sqlite stores recurrence rules in SQLite through bun.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/cyp0633/librecur/storage"
	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// ruleRow is one stored rule, keyed by event.
type ruleRow struct {
	bun.BaseModel `bun:"table:recurrence_rules"`

	ID      string `bun:"id,pk,notnull"`
	EventID string `bun:"event_id,unique,notnull"`

	RRuleText    sql.NullString `bun:"rrule_text"`
	OccurrenceID sql.NullString `bun:"occurrence_id"`
	IsReschedule sql.NullBool   `bun:"is_reschedule"`

	Unit       int   `bun:"unit,notnull"`
	Interval   int   `bun:"interval,notnull"`
	Until      int64 `bun:"until,notnull"`
	Meta       []int `bun:"meta"`
	AnchorDate int64 `bun:"anchor_date,notnull"`

	CreatedAt int64 `bun:"created_at,notnull"`
	UpdatedAt int64 `bun:"updated_at,notnull"`
}

func toRow(rec *storage.Record) *ruleRow {
	r := rec.Rule
	row := &ruleRow{
		ID:         rec.ID,
		EventID:    rec.EventID,
		Unit:       int(r.Unit),
		Interval:   r.Interval,
		Until:      r.Until,
		Meta:       r.Meta,
		AnchorDate: r.AnchorDate,
		CreatedAt:  rec.Created.UnixMilli(),
		UpdatedAt:  rec.Modified.UnixMilli(),
	}
	if v, ok := r.RRuleText.Get(); ok {
		row.RRuleText = sql.NullString{String: v, Valid: true}
	}
	if v, ok := r.OccurrenceID.Get(); ok {
		row.OccurrenceID = sql.NullString{String: v, Valid: true}
	}
	if v, ok := r.IsReschedule.Get(); ok {
		row.IsReschedule = sql.NullBool{Bool: v, Valid: true}
	}
	return row
}

func (row *ruleRow) record() *storage.Record {
	rule := recurrence.StoredRule{
		Unit:       recurrence.Unit(row.Unit),
		Interval:   row.Interval,
		Until:      row.Until,
		Meta:       row.Meta,
		AnchorDate: row.AnchorDate,
	}
	if row.RRuleText.Valid {
		rule.RRuleText = mo.Some(row.RRuleText.String)
	}
	if row.OccurrenceID.Valid {
		rule.OccurrenceID = mo.Some(row.OccurrenceID.String)
	}
	if row.IsReschedule.Valid {
		rule.IsReschedule = mo.Some(row.IsReschedule.Bool)
	}
	return &storage.Record{
		ID:       row.ID,
		EventID:  row.EventID,
		Rule:     rule,
		Created:  time.UnixMilli(row.CreatedAt),
		Modified: time.UnixMilli(row.UpdatedAt),
	}
}

// Store implements storage.Storage on a bun database
type Store struct {
	db     *bun.DB
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

// WithClock sets the time source used for created/updated stamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New wraps an existing bun database. Call CreateSchema before first use.
func New(db *bun.DB, opts ...Option) *Store {
	s := &Store{
		db:     db,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens a SQLite database at dsn and creates the schema if needed.
// Use "file::memory:?cache=shared" for a throwaway database.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: %w", err)
	}
	// SQLite allows a single writer.
	sqldb.SetMaxOpenConns(1)

	s := New(bun.NewDB(sqldb, sqlitedialect.New()), opts...)
	if err := s.CreateSchema(ctx); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return s, nil
}

// CreateSchema creates the rules table if it does not exist
func (s *Store) CreateSchema(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*ruleRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("sqlite.CreateSchema: %w", err)
	}
	return nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) GetRule(ctx context.Context, eventID string) (*storage.Record, error) {
	row := new(ruleRow)
	if err := s.db.NewSelect().
		Model(row).
		Where("event_id = ?", eventID).
		Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &storage.Error{Type: storage.ErrNotFound, Message: "rule not found"}
		}
		return nil, fmt.Errorf("sqlite.GetRule: %w", err)
	}
	return row.record(), nil
}

func (s *Store) ListRules(ctx context.Context, opts *storage.ListOptions) ([]*storage.Record, error) {
	var rows []ruleRow
	q := s.db.NewSelect().Model(&rows).Order("event_id ASC")
	if opts != nil && len(opts.Units) > 0 {
		units := make([]int, len(opts.Units))
		for i, u := range opts.Units {
			units[i] = int(u)
		}
		q = q.Where("unit IN (?)", bun.In(units))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("sqlite.ListRules: %w", err)
	}

	records := make([]*storage.Record, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].record())
	}
	return records, nil
}

func (s *Store) PutRule(ctx context.Context, rec *storage.Record) error {
	if rec == nil || rec.EventID == "" {
		return &storage.Error{Type: storage.ErrInvalidInput, Message: "event id is required"}
	}

	if err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		existing := new(ruleRow)
		err := tx.NewSelect().
			Model(existing).
			Column("id", "created_at").
			Where("event_id = ?", rec.EventID).
			Scan(ctx)
		now := s.now()
		switch {
		case err == nil:
			rec.ID = existing.ID
			rec.Created = time.UnixMilli(existing.CreatedAt)
		case errors.Is(err, sql.ErrNoRows):
			if rec.ID == "" {
				rec.ID = uuid.NewString()
			}
			rec.Created = now
		default:
			return err
		}
		rec.Modified = now

		_, err = tx.NewInsert().
			Model(toRow(rec)).
			On("CONFLICT (event_id) DO UPDATE").
			Set("rrule_text = EXCLUDED.rrule_text").
			Set("occurrence_id = EXCLUDED.occurrence_id").
			Set("is_reschedule = EXCLUDED.is_reschedule").
			Set("unit = EXCLUDED.unit").
			Set("interval = EXCLUDED.interval").
			Set("until = EXCLUDED.until").
			Set("meta = EXCLUDED.meta").
			Set("anchor_date = EXCLUDED.anchor_date").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		return err
	}); err != nil {
		return fmt.Errorf("sqlite.PutRule: %w", err)
	}

	s.logger.Debug("rule stored", "event_id", rec.EventID, "id", rec.ID)
	return nil
}

func (s *Store) DeleteRule(ctx context.Context, eventID string) error {
	res, err := s.db.NewDelete().
		Model((*ruleRow)(nil)).
		Where("event_id = ?", eventID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("sqlite.DeleteRule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite.DeleteRule: %w", err)
	}
	if n == 0 {
		return &storage.Error{Type: storage.ErrNotFound, Message: "rule not found"}
	}

	s.logger.Debug("rule deleted", "event_id", eventID)
	return nil
}
