package iocache

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/measuresoftgram/msgram/internal/contract"
	"github.com/measuresoftgram/msgram/schema"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetReportStore implements the CacheManager interface.
func (m *MockCacheManager) GetReportStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetAnalysisStore implements the CacheManager interface.
func (m *MockCacheManager) GetAnalysisStore() contract.AnalysisStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.AnalysisStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// MockAnalysisStore is a mock implementation of AnalysisStore for testing.
type MockAnalysisStore struct {
	mock.Mock
}

var _ contract.AnalysisStore = &MockAnalysisStore{} // Compile-time check

// BeginRun implements the AnalysisStore interface.
func (m *MockAnalysisStore) BeginRun(source string, startTime time.Time, configParams map[string]any) (int64, string, error) {
	args := m.Called(source, startTime, configParams)
	return args.Get(0).(int64), args.String(1), args.Error(2)
}

// RecordValue implements the AnalysisStore interface.
func (m *MockAnalysisStore) RecordValue(runID int64, value schema.MeasureValueRecord) error {
	args := m.Called(runID, value)
	return args.Error(0)
}

// EndRun implements the AnalysisStore interface.
func (m *MockAnalysisStore) EndRun(runID int64, endTime time.Time, totalFiles int) error {
	args := m.Called(runID, endTime, totalFiles)
	return args.Error(0)
}

// GetHistory implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetHistory(source string, key string, since time.Time, limit int) ([]schema.HistoryPoint, error) {
	args := m.Called(source, key, since, limit)
	points, _ := args.Get(0).([]schema.HistoryPoint)
	return points, args.Error(1)
}

// GetAllRuns implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetAllRuns() ([]schema.MeasureRunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.MeasureRunRecord)
	return runs, args.Error(1)
}

// GetAllValues implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetAllValues() ([]schema.MeasureValueRecord, error) {
	args := m.Called()
	values, _ := args.Get(0).([]schema.MeasureValueRecord)
	return values, args.Error(1)
}

// Close implements the AnalysisStore interface.
func (m *MockAnalysisStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetStatus() (schema.AnalysisStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.AnalysisStatus), args.Error(1)
}
