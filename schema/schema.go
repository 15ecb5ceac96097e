// Package schema has configs, models and global variables for all parts of msgram.
package schema

import (
	"math"
	"slices"
)

// MetricKey names a raw metric column in a metric table.
type MetricKey string

// Raw metric keys understood by the measure engine.
const (
	MetricComplexity          MetricKey = "complexity"
	MetricFunctions           MetricKey = "functions"
	MetricCommentLinesDensity MetricKey = "comment_lines_density"
	MetricDuplicatedDensity   MetricKey = "duplicated_lines_density"
	MetricCoverage            MetricKey = "coverage"
	MetricTests               MetricKey = "tests"
	MetricTestErrors          MetricKey = "test_errors"
	MetricTestFailures        MetricKey = "test_failures"
	MetricTestExecutionTime   MetricKey = "test_execution_time"
	MetricResolvedIssues      MetricKey = "resolved_issues"
	MetricTotalIssues         MetricKey = "total_issues"
	MetricBuildPipelines      MetricKey = "build_pipelines"
	MetricBuildRuntimeSum     MetricKey = "build_runtime_sum"
)

// AllMetricKeys lists every metric key in a stable order.
var AllMetricKeys = []MetricKey{
	MetricComplexity,
	MetricFunctions,
	MetricCommentLinesDensity,
	MetricDuplicatedDensity,
	MetricCoverage,
	MetricTests,
	MetricTestErrors,
	MetricTestFailures,
	MetricTestExecutionTime,
	MetricResolvedIssues,
	MetricTotalIssues,
	MetricBuildPipelines,
	MetricBuildRuntimeSum,
}

// metricAliases maps names used by upstream exporters onto metric keys.
var metricAliases = map[string]MetricKey{
	"number_of_resolved_issues_with_US_label_in_the_last_x_days": MetricResolvedIssues,
	"total_number_of_issues_with_US_label_in_the_last_x_days":    MetricTotalIssues,
	"number_of_build_pipelines_in_the_last_x_days":               MetricBuildPipelines,
	"runtime_sum_of_build_pipelines_in_the_last_x_days":          MetricBuildRuntimeSum,
}

// ParseMetricKey resolves a column name to a known metric key.
func ParseMetricKey(name string) (MetricKey, bool) {
	if key, ok := metricAliases[name]; ok {
		return key, true
	}
	key := MetricKey(name)
	if slices.Contains(AllMetricKeys, key) {
		return key, true
	}
	return "", false
}

// FileRow holds the metrics of a single file (or a single aggregate record).
type FileRow struct {
	Path    string                `json:"path"`
	Metrics map[MetricKey]float64 `json:"metrics"`
}

// Value returns the metric value for key and whether it is present.
func (r FileRow) Value(key MetricKey) (float64, bool) {
	v, ok := r.Metrics[key]
	return v, ok
}

// MetricTable is an ordered collection of file rows.
type MetricTable struct {
	Rows []FileRow `json:"rows"`
}

// NewMetricTable builds a table from rows, keeping their order.
func NewMetricTable(rows ...FileRow) *MetricTable {
	return &MetricTable{Rows: rows}
}

// Len returns the number of rows.
func (t *MetricTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Column returns the values of key in row order.
// The second result is false when any row lacks the key.
func (t *MetricTable) Column(key MetricKey) ([]float64, bool) {
	values := make([]float64, 0, t.Len())
	for _, row := range t.Rows {
		v, ok := row.Value(key)
		if !ok {
			return nil, false
		}
		values = append(values, v)
	}
	return values, true
}

// Sum adds up a column, skipping rows that lack the key.
func (t *MetricTable) Sum(key MetricKey) float64 {
	total := 0.0
	for _, row := range t.Rows {
		if v, ok := row.Value(key); ok {
			total += v
		}
	}
	return total
}

// HasColumn reports whether every row carries key.
func (t *MetricTable) HasColumn(key MetricKey) bool {
	if t.Len() == 0 {
		return false
	}
	for _, row := range t.Rows {
		if _, ok := row.Value(key); !ok {
			return false
		}
	}
	return true
}

// Keys returns the metric keys present in at least one row, in canonical order.
func (t *MetricTable) Keys() []MetricKey {
	var keys []MetricKey
	for _, key := range AllMetricKeys {
		for _, row := range t.Rows {
			if _, ok := row.Value(key); ok {
				keys = append(keys, key)
				break
			}
		}
	}
	return keys
}

// Filter returns a new table containing the rows for which keep returns true.
func (t *MetricTable) Filter(keep func(FileRow) bool) *MetricTable {
	out := &MetricTable{Rows: make([]FileRow, 0, t.Len())}
	for _, row := range t.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
