package storage

import (
	"context"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/stretchr/testify/mock"
)

// MockStorage implements the Storage interface for testing
type MockStorage struct {
	mock.Mock
}

// GetRule implements the Storage interface
func (m *MockStorage) GetRule(ctx context.Context, eventID string) (*Record, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Record), args.Error(1)
}

// ListRules implements the Storage interface
func (m *MockStorage) ListRules(ctx context.Context, opts *ListOptions) ([]*Record, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Record), args.Error(1)
}

// PutRule implements the Storage interface
func (m *MockStorage) PutRule(ctx context.Context, rec *Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// DeleteRule implements the Storage interface
func (m *MockStorage) DeleteRule(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

// --- Helper methods for creating test data ---

// NewMockRecord creates a test Record for a daily rule with the given interval
func NewMockRecord(id, eventID string, interval int) *Record {
	return &Record{
		ID:      id,
		EventID: eventID,
		Rule: recurrence.StoredRule{
			Unit:     recurrence.UnitDay,
			Interval: interval,
		},
	}
}
