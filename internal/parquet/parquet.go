// Package parquet provides data structures and functions for reading metric tables
// from and exporting msgram data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/measuresoftgram/msgram/schema"
)

// MeasureRun represents a single measure run with metadata.
// This struct maps to the msgram_measure_runs database table.
type MeasureRun struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// RunUUID is the globally unique identifier for this run
	RunUUID string `parquet:"run_uuid,snappy"`

	// Source is the metric table the run evaluated
	Source string `parquet:"source,snappy"`

	// StartTime is when the run began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalFiles is the number of rows in the evaluated table
	TotalFiles int32 `parquet:"total_files,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// MeasureValue is one stored value of a run.
// This struct maps to the msgram_measure_values database table.
type MeasureValue struct {
	RunID        int64     `parquet:"run_id,snappy"`
	Level        string    `parquet:"level,snappy"`
	Key          string    `parquet:"key,snappy"`
	Value        float64   `parquet:"value,snappy"`
	MinThreshold *float64  `parquet:"min_threshold,optional,snappy"`
	MaxThreshold *float64  `parquet:"max_threshold,optional,snappy"`
	RecordedAt   time.Time `parquet:"recorded_at,snappy"`
}

// MetricRow is one file of a metric table. Absent metrics are null.
type MetricRow struct {
	Path                   string   `parquet:"path,snappy"`
	Complexity             *float64 `parquet:"complexity,optional,snappy"`
	Functions              *float64 `parquet:"functions,optional,snappy"`
	CommentLinesDensity    *float64 `parquet:"comment_lines_density,optional,snappy"`
	DuplicatedLinesDensity *float64 `parquet:"duplicated_lines_density,optional,snappy"`
	Coverage               *float64 `parquet:"coverage,optional,snappy"`
	Tests                  *float64 `parquet:"tests,optional,snappy"`
	TestErrors             *float64 `parquet:"test_errors,optional,snappy"`
	TestFailures           *float64 `parquet:"test_failures,optional,snappy"`
	TestExecutionTime      *float64 `parquet:"test_execution_time,optional,snappy"`
	ResolvedIssues         *float64 `parquet:"resolved_issues,optional,snappy"`
	TotalIssues            *float64 `parquet:"total_issues,optional,snappy"`
	BuildPipelines         *float64 `parquet:"build_pipelines,optional,snappy"`
	BuildRuntimeSum        *float64 `parquet:"build_runtime_sum,optional,snappy"`
}

// ReportRow is one value of a quality report, flattened for export.
type ReportRow struct {
	Source       string   `parquet:"source,snappy"`
	Level        string   `parquet:"level,snappy"`
	Key          string   `parquet:"key,snappy"`
	Name         string   `parquet:"name,snappy"`
	Value        float64  `parquet:"value,snappy"`
	Label        string   `parquet:"label,snappy"`
	MinThreshold *float64 `parquet:"min_threshold,optional,snappy"`
	MaxThreshold *float64 `parquet:"max_threshold,optional,snappy"`
	Files        int32    `parquet:"files,snappy"`
}

// writeParquet writes rows of any tagged struct type to a new Parquet file.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteMeasureRunsParquet writes a slice of MeasureRun structs to a Parquet file.
func WriteMeasureRunsParquet(data []MeasureRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteMeasureValuesParquet writes a slice of MeasureValue structs to a Parquet file.
func WriteMeasureValuesParquet(data []MeasureValue, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteMetricRowsParquet writes a metric table to a Parquet file.
func WriteMetricRowsParquet(data []MetricRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteReportRowsParquet writes flattened report rows to a Parquet file.
func WriteReportRowsParquet(data []ReportRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ReadMetricRows reads every MetricRow from r.
func ReadMetricRows(r io.ReaderAt) ([]MetricRow, error) {
	reader := parquet.NewGenericReader[MetricRow](r)
	defer func() { _ = reader.Close() }()

	rows := make([]MetricRow, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read parquet rows: %w", err)
	}
	return rows[:n], nil
}

// ReadMetricRowsFile opens path and reads its metric rows.
func ReadMetricRowsFile(path string) ([]MetricRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	return ReadMetricRows(file)
}

// metricFields pairs each metric key with its MetricRow field.
func metricFields(r *MetricRow) map[schema.MetricKey]**float64 {
	return map[schema.MetricKey]**float64{
		schema.MetricComplexity:          &r.Complexity,
		schema.MetricFunctions:           &r.Functions,
		schema.MetricCommentLinesDensity: &r.CommentLinesDensity,
		schema.MetricDuplicatedDensity:   &r.DuplicatedLinesDensity,
		schema.MetricCoverage:            &r.Coverage,
		schema.MetricTests:               &r.Tests,
		schema.MetricTestErrors:          &r.TestErrors,
		schema.MetricTestFailures:        &r.TestFailures,
		schema.MetricTestExecutionTime:   &r.TestExecutionTime,
		schema.MetricResolvedIssues:      &r.ResolvedIssues,
		schema.MetricTotalIssues:         &r.TotalIssues,
		schema.MetricBuildPipelines:      &r.BuildPipelines,
		schema.MetricBuildRuntimeSum:     &r.BuildRuntimeSum,
	}
}

// MetricRowsToTable converts Parquet rows into a metric table, skipping null metrics.
func MetricRowsToTable(rows []MetricRow) *schema.MetricTable {
	table := &schema.MetricTable{Rows: make([]schema.FileRow, 0, len(rows))}
	for i := range rows {
		fileRow := schema.FileRow{Path: rows[i].Path, Metrics: make(map[schema.MetricKey]float64)}
		for key, field := range metricFields(&rows[i]) {
			if *field != nil {
				fileRow.Metrics[key] = **field
			}
		}
		table.Rows = append(table.Rows, fileRow)
	}
	return table
}

// TableToMetricRows converts a metric table into Parquet rows.
func TableToMetricRows(table *schema.MetricTable) []MetricRow {
	rows := make([]MetricRow, table.Len())
	for i, fileRow := range table.Rows {
		rows[i].Path = fileRow.Path
		for key, field := range metricFields(&rows[i]) {
			if v, ok := fileRow.Value(key); ok {
				*field = &v
			}
		}
	}
	return rows
}

// ConvertMeasureRunRecords converts schema.MeasureRunRecord to MeasureRun for Parquet export.
func ConvertMeasureRunRecords(records []schema.MeasureRunRecord) []MeasureRun {
	result := make([]MeasureRun, len(records))
	for i, record := range records {
		result[i] = MeasureRun{
			RunID:         record.RunID,
			RunUUID:       record.RunUUID,
			Source:        record.Source,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalFiles:    record.TotalFiles,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertMeasureValueRecords converts schema.MeasureValueRecord to MeasureValue for Parquet export.
func ConvertMeasureValueRecords(records []schema.MeasureValueRecord) []MeasureValue {
	result := make([]MeasureValue, len(records))
	for i, record := range records {
		result[i] = MeasureValue{
			RunID:        record.RunID,
			Level:        string(record.Level),
			Key:          record.Key,
			Value:        record.Value,
			MinThreshold: record.MinThreshold,
			MaxThreshold: record.MaxThreshold,
			RecordedAt:   record.RecordedAt,
		}
	}
	return result
}

// ConvertReport flattens a quality report into export rows, measures first.
func ConvertReport(report *schema.QualityReport) []ReportRow {
	rows := make([]ReportRow, 0, len(report.Measures)+len(report.Subcharacteristics)+len(report.Characteristics))
	for _, m := range report.Measures {
		row := ReportRow{
			Source: report.Source,
			Level:  string(schema.MeasureLevel),
			Key:    m.Key,
			Name:   m.Name,
			Value:  m.Value,
			Label:  schema.GetPlainLabel(m.Value),
			Files:  int32(m.Files),
		}
		if m.Thresholds != nil {
			minValue, maxValue := m.Thresholds.Min, m.Thresholds.Max
			row.MinThreshold = &minValue
			row.MaxThreshold = &maxValue
		}
		rows = append(rows, row)
	}
	for _, scores := range [][]schema.QualityScore{report.Subcharacteristics, report.Characteristics} {
		for _, s := range scores {
			rows = append(rows, ReportRow{
				Source: report.Source,
				Level:  string(s.Level),
				Key:    s.Key,
				Name:   s.Name,
				Value:  s.Value,
				Label:  schema.GetPlainLabel(s.Value),
				Files:  int32(report.Files),
			})
		}
	}
	return rows
}
