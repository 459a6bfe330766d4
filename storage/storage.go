package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cyp0633/librecur/recurrence"
)

// Storage connects your backend (e.g. database) with the recurrence repository. One stored
// rule is kept per event. Please use the error types provided.
type Storage interface {
	// GetRule finds the stored rule of an event.
	GetRule(ctx context.Context, eventID string) (*Record, error)
	// ListRules returns stored rules, optionally filtered.
	ListRules(ctx context.Context, opts *ListOptions) ([]*Record, error)
	// PutRule creates or replaces the stored rule of rec.EventID.
	// Implementations assign rec.ID on create and keep it on replace.
	PutRule(ctx context.Context, rec *Record) error
	// DeleteRule removes the stored rule of an event.
	DeleteRule(ctx context.Context, eventID string) error
}

// Record is a stored rule together with the event it belongs to.
type Record struct {
	ID       string
	EventID  string
	Rule     recurrence.StoredRule
	Created  time.Time
	Modified time.Time
}

// ListOptions filters ListRules. A nil or empty filter matches everything.
type ListOptions struct {
	Units []recurrence.Unit
}

// Match reports whether rec passes the filter.
func (o *ListOptions) Match(rec *Record) bool {
	if o == nil || len(o.Units) == 0 {
		return true
	}
	for _, u := range o.Units {
		if rec.Rule.Unit == u {
			return true
		}
	}
	return false
}

// Error types
type ErrorType string

const (
	ErrNotFound      ErrorType = "not_found"
	ErrAlreadyExists ErrorType = "already_exists"
	ErrInvalidInput  ErrorType = "invalid_input"
)

// Error represents a storage-related error
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a storage error of type ErrNotFound.
func IsNotFound(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Type == ErrNotFound
}
