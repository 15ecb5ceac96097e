package parquet

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/measuresoftgram/msgram/schema"
)

func ptr[T any](v T) *T { return &v }

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{
			name:    "measure run",
			model:   new(MeasureRun),
			columns: []string{"run_id", "run_uuid", "source", "start_time", "end_time", "run_duration_ms", "total_files", "config_params"},
		},
		{
			name:    "measure value",
			model:   new(MeasureValue),
			columns: []string{"run_id", "level", "key", "value", "min_threshold", "max_threshold", "recorded_at"},
		},
		{
			name:    "report row",
			model:   new(ReportRow),
			columns: []string{"source", "level", "key", "name", "value", "label", "min_threshold", "max_threshold", "files"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			require.NotNil(t, s)
			for _, colName := range tt.columns {
				_, ok := s.Lookup(colName)
				assert.True(t, ok, "Column %s should exist in schema", colName)
			}
		})
	}
}

func TestMetricRowColumnsMatchMetricKeys(t *testing.T) {
	s := parquet.SchemaOf(new(MetricRow))
	_, ok := s.Lookup("path")
	require.True(t, ok)
	for _, key := range schema.AllMetricKeys {
		_, ok := s.Lookup(string(key))
		assert.True(t, ok, "metric %s should have a column", key)
	}
}

func TestMetricRowsRoundTrip(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "metrics.parquet")
	table := schema.NewMetricTable(
		schema.FileRow{Path: "src/a.go", Metrics: map[schema.MetricKey]float64{
			schema.MetricComplexity: 12,
			schema.MetricFunctions:  3,
			schema.MetricCoverage:   81.5,
		}},
		schema.FileRow{Path: "src/b.go", Metrics: map[schema.MetricKey]float64{
			schema.MetricComplexity: 0,
			schema.MetricFunctions:  0,
		}},
	)

	require.NoError(t, WriteMetricRowsParquet(TableToMetricRows(table), outputPath))

	rows, err := ReadMetricRowsFile(outputPath)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	got := MetricRowsToTable(rows)
	assert.Equal(t, table.Rows, got.Rows)

	// Absent metrics stay absent instead of turning into zeros
	_, ok := got.Rows[1].Value(schema.MetricCoverage)
	assert.False(t, ok)
	v, ok := got.Rows[1].Value(schema.MetricComplexity)
	assert.True(t, ok)
	assert.Zero(t, v)
}

func TestReadMetricRowsFile_Missing(t *testing.T) {
	_, err := ReadMetricRowsFile(filepath.Join(t.TempDir(), "missing.parquet"))
	assert.Error(t, err)
}

func TestWriteMeasureRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "measure_runs.parquet")
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	records := []schema.MeasureRunRecord{
		{
			RunID:         1,
			RunUUID:       "5f0e3c9a-7d1b-4f4e-9a3a-0b8f7f4f2a10",
			Source:        "metrics/sonar.json",
			StartTime:     start,
			EndTime:       &end,
			RunDurationMs: ptr(int32(1500)),
			TotalFiles:    42,
			ConfigParams:  ptr(`{"measures":["passed_tests"]}`),
		},
		{
			RunID:      2,
			RunUUID:    "b8c1f5aa-33d4-4d7e-8a6c-14a4b7f7c9d2",
			Source:     "metrics/sonar.json",
			StartTime:  start.Add(time.Hour),
			TotalFiles: 42,
		},
	}

	data := ConvertMeasureRunRecords(records)
	require.NoError(t, WriteMeasureRunsParquet(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[MeasureRun](file)
	defer func() { _ = reader.Close() }()
	assert.Equal(t, int64(len(data)), reader.NumRows())

	rows := make([]MeasureRun, len(data))
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		require.NoError(t, err)
	}
	require.Equal(t, len(data), n)

	assert.Equal(t, records[0].RunUUID, rows[0].RunUUID)
	assert.Equal(t, "metrics/sonar.json", rows[0].Source)
	require.NotNil(t, rows[0].RunDurationMs)
	assert.Equal(t, int32(1500), *rows[0].RunDurationMs)
	require.NotNil(t, rows[0].ConfigParams)
	assert.Nil(t, rows[1].EndTime)
	assert.Nil(t, rows[1].ConfigParams)
	assert.True(t, start.Equal(rows[0].StartTime.UTC()))
}

func TestWriteMeasureValuesParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "measure_values.parquet")
	recorded := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	records := []schema.MeasureValueRecord{
		{RunID: 1, Level: schema.MeasureLevel, Key: "passed_tests", Value: 0.9, MinThreshold: ptr(0.0), MaxThreshold: ptr(1.0), RecordedAt: recorded},
		{RunID: 1, Level: schema.CharacteristicLevel, Key: "reliability", Value: 0.75, RecordedAt: recorded},
	}

	require.NoError(t, WriteMeasureValuesParquet(ConvertMeasureValueRecords(records), outputPath))

	rows, err := parquet.ReadFile[MeasureValue](outputPath)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "measure", rows[0].Level)
	assert.InDelta(t, 0.9, rows[0].Value, 1e-12)
	require.NotNil(t, rows[0].MaxThreshold)
	assert.Equal(t, 1.0, *rows[0].MaxThreshold)
	assert.Equal(t, "characteristic", rows[1].Level)
	assert.Nil(t, rows[1].MinThreshold)
}

func TestConvertReport(t *testing.T) {
	report := &schema.QualityReport{
		Source: "sonar.json",
		Files:  5,
		Measures: []schema.MeasureResult{
			{Key: "passed_tests", Name: "Passed Tests", Value: 0.95, Files: 5, Thresholds: &schema.Thresholds{Min: 0, Max: 1}},
			{Key: "team_throughput", Name: "Team Throughput", Value: 0.3, Files: 1},
		},
		Subcharacteristics: []schema.QualityScore{{Key: "testing_status", Name: "Testing Status", Level: schema.SubcharacteristicLevel, Value: 0.95}},
		Characteristics:    []schema.QualityScore{{Key: "reliability", Name: "Reliability", Level: schema.CharacteristicLevel, Value: 0.95}},
	}

	rows := ConvertReport(report)
	require.Len(t, rows, 4)

	assert.Equal(t, "measure", rows[0].Level)
	assert.Equal(t, schema.ExcellentValue, rows[0].Label)
	require.NotNil(t, rows[0].MaxThreshold)
	assert.Equal(t, 1.0, *rows[0].MaxThreshold)

	assert.Equal(t, schema.PoorValue, rows[1].Label)
	assert.Nil(t, rows[1].MinThreshold)

	assert.Equal(t, "subcharacteristic", rows[2].Level)
	assert.Equal(t, "characteristic", rows[3].Level)
	assert.Equal(t, int32(5), rows[3].Files)

	outputPath := filepath.Join(t.TempDir(), "report.parquet")
	require.NoError(t, WriteReportRowsParquet(rows, outputPath))
	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestWriteParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteMeasureRunsParquet([]MeasureRun{}, outputPath))

	rows, err := parquet.ReadFile[MeasureRun](outputPath)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWriteParquet_InvalidPath(t *testing.T) {
	err := WriteMeasureValuesParquet(nil, "/nonexistent/directory/values.parquet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}
