package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/measuresoftgram/msgram/core/measure"
	"github.com/measuresoftgram/msgram/internal/contract"
	"github.com/measuresoftgram/msgram/internal/iocache"
	"github.com/measuresoftgram/msgram/schema"
)

func TestGetMeasureResults_NoStores(t *testing.T) {
	ctx := withSuppressHeader(context.Background())
	path := writeTable(t, "tests.json", testsTable)

	report, err := GetMeasureResults(ctx, testConfig(path), &contract.MockGitClient{}, noStores(), path)
	require.NoError(t, err)

	assert.Equal(t, path, report.Source)
	assert.Equal(t, 2, report.Files)
	assert.False(t, report.Cached)
	assert.Empty(t, report.RunID)

	require.Len(t, report.Measures, 1)
	assert.Equal(t, "passed_tests", report.Measures[0].Key)
	assert.InDelta(t, 0.8, report.Measures[0].Value, 1e-9)
	assert.Equal(t, "testing_status", report.Measures[0].Subcharacteristic)
	assert.Len(t, report.Skipped, len(measure.AllKeys())-1)

	value, level, ok := report.Score("testing_status")
	require.True(t, ok)
	assert.Equal(t, schema.SubcharacteristicLevel, level)
	assert.InDelta(t, 0.8, value, 1e-9)

	value, level, ok = report.Score("reliability")
	require.True(t, ok)
	assert.Equal(t, schema.CharacteristicLevel, level)
	assert.InDelta(t, 0.8, value, 1e-9)

	_, _, ok = report.Score("maintainability")
	assert.False(t, ok)
}

func TestGetMeasureResults_Errors(t *testing.T) {
	ctx := withSuppressHeader(context.Background())

	tests := []struct {
		name    string
		content string
		setup   func(cfg *contract.Config)
		want    string
		kind    error
	}{
		{
			name:    "not a table",
			content: `{"unexpected": true}`,
			want:    measure.MsgNotATable,
			kind:    measure.ErrInvalidArgument,
		},
		{
			name:    "explicit measure without metrics",
			content: testsTable,
			setup: func(cfg *contract.Config) {
				cfg.Measures = []measure.Key{measure.KeyTestCoverage}
				cfg.ExplicitMeasures = true
			},
			want: "measure test_coverage failed",
		},
		{
			name:    "nothing computable",
			content: `[{"path": "a.go", "coverage": 50}]`,
			setup: func(cfg *contract.Config) {
				cfg.Measures = []measure.Key{measure.KeyPassedTests, measure.KeyTeamThroughput}
			},
			want: "no measure could be computed",
		},
		{
			name:    "everything excluded",
			content: testsTable,
			setup: func(cfg *contract.Config) {
				cfg.Excludes = []string{"src/**"}
			},
			want: "after applying excludes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTable(t, "table.json", tt.content)
			cfg := testConfig(path)
			if tt.setup != nil {
				tt.setup(cfg)
			}
			_, err := GetMeasureResults(ctx, cfg, &contract.MockGitClient{}, noStores(), path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			if tt.kind != nil {
				assert.ErrorIs(t, err, tt.kind)
			}
		})
	}
}

func TestGetMeasureResults_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := writeTable(t, "tests.json", testsTable)
	_, err := GetMeasureResults(ctx, testConfig(path), &contract.MockGitClient{}, noStores(), path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetMeasureResults_RecordsRun(t *testing.T) {
	ctx := withSuppressHeader(context.Background())
	path := writeTable(t, "tests.json", testsTable)

	store := &iocache.MockAnalysisStore{}
	store.On("BeginRun", path, mock.AnythingOfType("time.Time"), mock.MatchedBy(func(params map[string]any) bool {
		_, hasRevision := params["revision"]
		return params["complexity_mode"] == "density" && !hasRevision
	})).Return(int64(7), "run-uuid", nil)
	store.On("RecordValue", int64(7), mock.MatchedBy(func(v schema.MeasureValueRecord) bool {
		return v.Level == schema.MeasureLevel && v.Key == "passed_tests" &&
			v.MinThreshold != nil && *v.MinThreshold == 0 && *v.MaxThreshold == 1
	})).Return(nil).Once()
	store.On("RecordValue", int64(7), mock.MatchedBy(func(v schema.MeasureValueRecord) bool {
		return v.Level == schema.SubcharacteristicLevel && v.Key == "testing_status" && v.MinThreshold == nil
	})).Return(nil).Once()
	store.On("RecordValue", int64(7), mock.MatchedBy(func(v schema.MeasureValueRecord) bool {
		return v.Level == schema.CharacteristicLevel && v.Key == "reliability"
	})).Return(nil).Once()
	store.On("EndRun", int64(7), mock.AnythingOfType("time.Time"), 2).Return(nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetReportStore").Return(nil)
	mgr.On("GetAnalysisStore").Return(store)

	report, err := GetMeasureResults(ctx, testConfig(path), &contract.MockGitClient{}, mgr, path)
	require.NoError(t, err)
	assert.Equal(t, "run-uuid", report.RunID)
	store.AssertExpectations(t)
}

func TestGetMeasureResults_TrackingFailureDoesNotFail(t *testing.T) {
	ctx := withSuppressHeader(context.Background())
	path := writeTable(t, "tests.json", testsTable)

	store := &iocache.MockAnalysisStore{}
	store.On("BeginRun", path, mock.Anything, mock.Anything).Return(int64(0), "", errors.New("db down"))

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetReportStore").Return(nil)
	mgr.On("GetAnalysisStore").Return(store)

	report, err := GetMeasureResults(ctx, testConfig(path), &contract.MockGitClient{}, mgr, path)
	require.NoError(t, err)
	assert.Empty(t, report.RunID)
	store.AssertNotCalled(t, "RecordValue", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetMeasureResults_Revision(t *testing.T) {
	ctx := withSuppressHeader(context.Background())
	path := writeTable(t, "tests.json", testsTable)

	client := &contract.MockGitClient{}
	client.On("GetRepoRoot", mock.Anything, mock.Anything).Return("/repo", nil)
	client.On("GetRepoHash", mock.Anything, "/repo").Return("abc123", nil)
	client.On("GetCommitTime", mock.Anything, "/repo", "abc123").Return(time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC), nil)

	store := &iocache.MockAnalysisStore{}
	store.On("BeginRun", path, mock.Anything, mock.MatchedBy(func(params map[string]any) bool {
		return params["revision"] == "abc123" && params["revision_time"] == "2026-02-01T09:30:00Z"
	})).Return(int64(1), "run-uuid", nil)
	store.On("RecordValue", int64(1), mock.Anything).Return(nil)
	store.On("EndRun", int64(1), mock.Anything, 2).Return(nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetReportStore").Return(nil)
	mgr.On("GetAnalysisStore").Return(store)

	cfg := testConfig(path)
	cfg.Revision = true
	_, err := GetMeasureResults(ctx, cfg, client, mgr, path)
	require.NoError(t, err)
	client.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestValueRecords(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	report := &schema.QualityReport{
		Measures: []schema.MeasureResult{
			{Key: "team_throughput", Value: 0.5},
			{Key: "test_coverage", Value: 0.7, Thresholds: &schema.Thresholds{Min: 60, Max: 90}},
		},
		Subcharacteristics: []schema.QualityScore{{Key: "issues_velocity", Level: schema.SubcharacteristicLevel, Value: 0.5}},
		Characteristics:    []schema.QualityScore{{Key: "productivity", Level: schema.CharacteristicLevel, Value: 0.5}},
	}

	records := valueRecords(3, report, at)
	require.Len(t, records, 4)

	assert.Nil(t, records[0].MinThreshold)
	require.NotNil(t, records[1].MinThreshold)
	assert.Equal(t, 60.0, *records[1].MinThreshold)
	assert.Equal(t, 90.0, *records[1].MaxThreshold)

	levels := make([]schema.ResultLevel, len(records))
	for i, r := range records {
		levels[i] = r.Level
		assert.Equal(t, int64(3), r.RunID)
		assert.Equal(t, at, r.RecordedAt)
	}
	assert.Equal(t, []schema.ResultLevel{
		schema.MeasureLevel, schema.MeasureLevel, schema.SubcharacteristicLevel, schema.CharacteristicLevel,
	}, levels)
}
