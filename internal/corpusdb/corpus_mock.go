package corpusdb

import (
	"context"
	"time"

	"github.com/burstline/burstline/internal/contract"
	"github.com/burstline/burstline/schema"
	"github.com/stretchr/testify/mock"
)

// MockObservationStore is a mock implementation of ObservationStore for testing.
type MockObservationStore struct {
	mock.Mock
}

var _ contract.ObservationStore = &MockObservationStore{} // Compile-time check

// FetchObservations implements the ObservationStore interface.
func (m *MockObservationStore) FetchObservations(ctx context.Context, filter contract.ObservationFilter) ([]schema.Observation, error) {
	args := m.Called(ctx, filter)
	obs, _ := args.Get(0).([]schema.Observation)
	return obs, args.Error(1)
}

// FetchSources implements the ObservationStore interface.
func (m *MockObservationStore) FetchSources(ctx context.Context) ([]schema.SourceInfo, error) {
	args := m.Called(ctx)
	sources, _ := args.Get(0).([]schema.SourceInfo)
	return sources, args.Error(1)
}

// FetchLanguages implements the ObservationStore interface.
func (m *MockObservationStore) FetchLanguages(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	languages, _ := args.Get(0).([]string)
	return languages, args.Error(1)
}

// FetchDateRange implements the ObservationStore interface.
func (m *MockObservationStore) FetchDateRange(ctx context.Context) (time.Time, time.Time, error) {
	args := m.Called(ctx)
	return args.Get(0).(time.Time), args.Get(1).(time.Time), args.Error(2)
}

// Close implements the ObservationStore interface.
func (m *MockObservationStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
