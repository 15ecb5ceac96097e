// Package contract provides interfaces and shared utilities for msgram's internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/measuresoftgram/msgram/schema"
)

// GitClient resolves the revision a metric table was extracted from.
// This allows the core logic to be tested without needing a real git executable.
type GitClient interface {
	// Run executes a git command and returns its output.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)

	// GetCommitTime returns the time of the specified Git reference.
	GetCommitTime(ctx context.Context, repoPath string, ref string) (time.Time, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetReportStore() CacheStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore defines the interface for cached report storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// AnalysisStore defines the interface for tracking measure runs and their values.
type AnalysisStore interface {
	// BeginRun creates a new run for a source and returns its ID and UUID
	BeginRun(source string, startTime time.Time, configParams map[string]any) (int64, string, error)

	// RecordValue stores one measure, subcharacteristic or characteristic value
	RecordValue(runID int64, value schema.MeasureValueRecord) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalFiles int) error

	// GetHistory returns stored values for a source, newest first
	GetHistory(source string, key string, since time.Time, limit int) ([]schema.HistoryPoint, error)

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// GetAllRuns retrieves all measure runs, oldest first
	GetAllRuns() ([]schema.MeasureRunRecord, error)

	// GetAllValues retrieves all stored values, ordered by run
	GetAllValues() ([]schema.MeasureValueRecord, error)

	// Close closes the underlying connection
	Close() error
}
