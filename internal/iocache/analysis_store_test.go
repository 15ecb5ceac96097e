package iocache

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/measuresoftgram/msgram/schema"
)

func newSQLiteAnalysisStore(t *testing.T) *AnalysisStoreImpl {
	t.Helper()
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*AnalysisStoreImpl)
}

func recordRun(t *testing.T, store *AnalysisStoreImpl, source string, start time.Time, values map[string]float64) int64 {
	t.Helper()
	runID, _, err := store.BeginRun(source, start, map[string]any{"measures": "all"})
	require.NoError(t, err)
	for key, v := range values {
		require.NoError(t, store.RecordValue(runID, schema.MeasureValueRecord{
			Level:      schema.MeasureLevel,
			Key:        key,
			Value:      v,
			RecordedAt: start,
		}))
	}
	require.NoError(t, store.EndRun(runID, start.Add(250*time.Millisecond), 3))
	return runID
}

func TestAnalysisStore_NoneBackend(t *testing.T) {
	store, err := NewAnalysisStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, runUUID, err := store.BeginRun("a.json", time.Now(), nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), runID)
	_, err = uuid.Parse(runUUID)
	assert.NoError(t, err, "runs get a UUID even when tracking is disabled")

	assert.NoError(t, store.RecordValue(1, schema.MeasureValueRecord{Key: "passed_tests"}))
	assert.NoError(t, store.EndRun(1, time.Now(), 10))

	history, err := store.GetHistory("a.json", "", time.Time{}, 0)
	assert.NoError(t, err)
	assert.Empty(t, history)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestAnalysisStore_SQLiteRun(t *testing.T) {
	store := newSQLiteAnalysisStore(t)
	start := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

	runID, runUUID, err := store.BeginRun("sonar.json", start, map[string]any{"complexity_mode": "density"})
	require.NoError(t, err)
	assert.Positive(t, runID)
	_, err = uuid.Parse(runUUID)
	require.NoError(t, err)

	minValue, maxValue := 0.0, 10.0
	require.NoError(t, store.RecordValue(runID, schema.MeasureValueRecord{
		Level: schema.MeasureLevel, Key: "non_complex_files_density", Value: 1,
		MinThreshold: &minValue, MaxThreshold: &maxValue, RecordedAt: start,
	}))
	require.NoError(t, store.RecordValue(runID, schema.MeasureValueRecord{
		Level: schema.CharacteristicLevel, Key: "maintainability", Value: 0.5, RecordedAt: start,
	}))
	require.NoError(t, store.EndRun(runID, start.Add(1500*time.Millisecond), 7))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runUUID, runs[0].RunUUID)
	assert.Equal(t, "sonar.json", runs[0].Source)
	assert.True(t, start.Equal(runs[0].StartTime))
	require.NotNil(t, runs[0].EndTime)
	require.NotNil(t, runs[0].RunDurationMs)
	assert.Equal(t, int32(1500), *runs[0].RunDurationMs)
	assert.Equal(t, int32(7), runs[0].TotalFiles)
	require.NotNil(t, runs[0].ConfigParams)
	assert.Contains(t, *runs[0].ConfigParams, "density")

	values, err := store.GetAllValues()
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, schema.CharacteristicLevel, values[0].Level)
	assert.Nil(t, values[0].MinThreshold)
	assert.Equal(t, schema.MeasureLevel, values[1].Level)
	require.NotNil(t, values[1].MaxThreshold)
	assert.Equal(t, 10.0, *values[1].MaxThreshold)
}

func TestAnalysisStore_DuplicateValue(t *testing.T) {
	store := newSQLiteAnalysisStore(t)
	runID, _, err := store.BeginRun("a.json", time.Now(), nil)
	require.NoError(t, err)

	value := schema.MeasureValueRecord{Level: schema.MeasureLevel, Key: "passed_tests", Value: 1, RecordedAt: time.Now()}
	require.NoError(t, store.RecordValue(runID, value))
	assert.Error(t, store.RecordValue(runID, value), "a run stores each key once per level")
}

func TestAnalysisStore_EndRunUnknown(t *testing.T) {
	store := newSQLiteAnalysisStore(t)
	err := store.EndRun(99, time.Now(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run 99")
}

func TestAnalysisStore_GetHistory(t *testing.T) {
	store := newSQLiteAnalysisStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	first := recordRun(t, store, "app.json", base, map[string]float64{"passed_tests": 0.7, "test_coverage": 0.4})
	second := recordRun(t, store, "app.json", base.Add(48*time.Hour), map[string]float64{"passed_tests": 0.9})
	recordRun(t, store, "other.json", base.Add(72*time.Hour), map[string]float64{"passed_tests": 0.1})

	tests := []struct {
		name    string
		key     string
		since   time.Time
		limit   int
		wantIDs []int64
	}{
		{"all values newest first", "", time.Time{}, 0, []int64{second, first, first}},
		{"single key", "passed_tests", time.Time{}, 0, []int64{second, first}},
		{"since filter", "", base.Add(24 * time.Hour), 0, []int64{second}},
		{"limit", "", time.Time{}, 1, []int64{second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := store.GetHistory("app.json", tt.key, tt.since, tt.limit)
			require.NoError(t, err)
			ids := make([]int64, 0, len(points))
			for _, p := range points {
				ids = append(ids, p.RunID)
				assert.Equal(t, "app.json", p.Source)
				assert.NotEmpty(t, p.RunUUID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	points, err := store.GetHistory("app.json", "passed_tests", time.Time{}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, points[0].Value, 1e-12)
	assert.True(t, base.Add(48*time.Hour).Equal(points[0].RecordedAt))
}

func TestAnalysisStore_GetStatus(t *testing.T) {
	store := newSQLiteAnalysisStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalRuns)
	assert.Equal(t, int64(0), status.TableSizes[measureRunsTable])

	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	recordRun(t, store, "a.json", base, map[string]float64{"passed_tests": 1})
	last := recordRun(t, store, "a.json", base.Add(time.Hour), map[string]float64{"passed_tests": 1, "test_coverage": 0.5})

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, last, status.LastRunID)
	assert.True(t, base.Equal(status.OldestRunTime))
	assert.True(t, base.Add(time.Hour).Equal(status.LastRunTime))
	assert.Equal(t, 6, status.TotalFilesEvaluated)
	assert.Equal(t, 1, status.TrackedSources)
	assert.Equal(t, int64(3), status.TableSizes[measureValuesTable])

	var b strings.Builder
	PrintAnalysisStatus(&b, status)
	out := b.String()
	assert.Contains(t, out, "Total Runs: 2")
	assert.Less(t, strings.Index(out, measureRunsTable), strings.Index(out, measureValuesTable))
}

func TestAnalysisStore_PersistsToFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "analysis.db")
	store, err := NewAnalysisStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	_, _, err = store.BeginRun("a.json", time.Now(), nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewAnalysisStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	runs, err := reopened.GetAllRuns()
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestSQLiteTimeFormatSortsLexically(t *testing.T) {
	early := time.Date(2026, 1, 1, 0, 0, 5, 0, time.UTC)
	late := early.Add(500 * time.Millisecond)
	a := formatTime(early, schema.SQLiteBackend).(string)
	b := formatTime(late, schema.SQLiteBackend).(string)
	assert.Less(t, a, b)
	assert.Len(t, a, len(b))
}
