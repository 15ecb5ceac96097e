// Package loader reads metric tables from JSON, CSV, YAML and Parquet files.
package loader

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/measuresoftgram/msgram/core/measure"
	"github.com/measuresoftgram/msgram/internal/contract"
	"github.com/measuresoftgram/msgram/internal/parquet"
	"github.com/measuresoftgram/msgram/schema"
)

// pathColumn is the column holding the file path in flat row formats.
const pathColumn = "path"

// Sonar component qualifiers that describe files.
var fileQualifiers = map[string]bool{
	"":    true,
	"FIL": true,
	"UTS": true,
}

// Input is a metric table together with the raw bytes it was decoded from.
type Input struct {
	Path   string
	Format schema.InputFormat
	Data   []byte
	Table  *schema.MetricTable
}

// DetectFormat resolves the auto format from the file extension.
func DetectFormat(path string, format schema.InputFormat) (schema.InputFormat, error) {
	if format != "" && format != schema.AutoFormat {
		return format, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return schema.JSONFormat, nil
	case ".csv":
		return schema.CSVFormat, nil
	case ".yaml", ".yml":
		return schema.YAMLFormat, nil
	case ".parquet":
		return schema.ParquetFormat, nil
	default:
		return "", fmt.Errorf("cannot detect input format of %s, use --input-format", path)
	}
}

// Load reads and decodes the metric table at path.
func Load(path string, format schema.InputFormat) (*Input, error) {
	format, err := DetectFormat(path, format)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input %s: %w", path, err)
	}
	table, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &Input{Path: path, Format: format, Data: data, Table: table}, nil
}

// Parse decodes data in the given format.
func Parse(data []byte, format schema.InputFormat) (*schema.MetricTable, error) {
	switch format {
	case schema.JSONFormat:
		return parseJSON(data)
	case schema.CSVFormat:
		return parseCSV(bytes.NewReader(data))
	case schema.YAMLFormat:
		return parseYAML(data)
	case schema.ParquetFormat:
		rows, err := parquet.ReadMetricRows(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return parquet.MetricRowsToTable(rows), nil
	default:
		return nil, fmt.Errorf("unsupported input format: %s", format)
	}
}

// Filter drops every row whose path matches one of the exclude globs.
func Filter(table *schema.MetricTable, excludes []string) *schema.MetricTable {
	if len(excludes) == 0 {
		return table
	}
	return table.Filter(func(row schema.FileRow) bool {
		return !contract.ShouldIgnore(row.Path, excludes)
	})
}

type sonarMeasure struct {
	Metric string `json:"metric"`
	Value  any    `json:"value"`
}

type sonarComponent struct {
	Key       string         `json:"key"`
	Path      string         `json:"path"`
	Qualifier string         `json:"qualifier"`
	Measures  []sonarMeasure `json:"measures"`
}

type sonarPayload struct {
	Components []sonarComponent `json:"components"`
}

func parseJSON(data []byte) (*schema.MetricTable, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, notATable("empty document")
	}

	switch trimmed[0] {
	case '[':
		var rows []map[string]any
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, notATable(err.Error())
		}
		return flatRows(rows)
	case '{':
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return nil, notATable(err.Error())
		}
		if _, ok := probe["components"]; !ok {
			return nil, notATable("object without components")
		}
		var payload sonarPayload
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			return nil, notATable(err.Error())
		}
		return sonarTable(payload)
	default:
		return nil, notATable("scalar document")
	}
}

func sonarTable(payload sonarPayload) (*schema.MetricTable, error) {
	table := &schema.MetricTable{}
	for _, c := range payload.Components {
		if !fileQualifiers[c.Qualifier] {
			continue
		}
		path := c.Path
		if path == "" {
			path = c.Key
		}
		row := schema.FileRow{Path: path, Metrics: make(map[schema.MetricKey]float64)}
		for _, m := range c.Measures {
			key, ok := schema.ParseMetricKey(m.Metric)
			if !ok {
				continue
			}
			v, err := toFloat(m.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: metric %s: %w", path, m.Metric, err)
			}
			row.Metrics[key] = v
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func parseYAML(data []byte) (*schema.MetricTable, error) {
	var rows []map[string]any
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, notATable(err.Error())
	}
	return flatRows(rows)
}

// flatRows converts path-keyed row objects into a table. Unknown columns are ignored.
func flatRows(rows []map[string]any) (*schema.MetricTable, error) {
	table := &schema.MetricTable{Rows: make([]schema.FileRow, 0, len(rows))}
	for i, raw := range rows {
		row := schema.FileRow{Metrics: make(map[schema.MetricKey]float64)}
		if p, ok := raw[pathColumn]; ok {
			row.Path = fmt.Sprint(p)
		} else {
			row.Path = strconv.Itoa(i)
		}

		// Sorted for deterministic error reporting
		names := make([]string, 0, len(raw))
		for name := range raw {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			key, ok := schema.ParseMetricKey(name)
			if !ok || raw[name] == nil {
				continue
			}
			v, err := toFloat(raw[name])
			if err != nil {
				return nil, fmt.Errorf("row %d: metric %s: %w", i, name, err)
			}
			row.Metrics[key] = v
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func parseCSV(r io.Reader) (*schema.MetricTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, notATable("missing header")
	}
	if err != nil {
		return nil, err
	}

	pathIdx := -1
	keys := make([]schema.MetricKey, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == pathColumn {
			pathIdx = i
			continue
		}
		if key, ok := schema.ParseMetricKey(name); ok {
			keys[i] = key
		}
	}

	table := &schema.MetricTable{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := schema.FileRow{Path: strconv.Itoa(line - 2), Metrics: make(map[schema.MetricKey]float64)}
		if pathIdx >= 0 {
			row.Path = record[pathIdx]
		}
		for i, cell := range record {
			cell = strings.TrimSpace(cell)
			if keys[i] == "" || cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: metric %s: %w", line, keys[i], measure.ErrInvalidMetricValue)
			}
			row.Metrics[keys[i]] = v
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// toFloat accepts JSON/YAML numbers and numeric strings.
func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number: %w", x, measure.ErrInvalidMetricValue)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%v is not a number: %w", v, measure.ErrInvalidMetricValue)
	}
}

func notATable(detail string) error {
	return fmt.Errorf("%s (%s): %w", measure.MsgNotATable, detail, measure.ErrInvalidArgument)
}
