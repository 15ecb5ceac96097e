package outwriter

import (
	"bytes"
	"testing"
	"time"

	"github.com/measuresoftgram/msgram/internal/contract"
	"github.com/measuresoftgram/msgram/schema"
)

// sampleReport returns a report with one measure and its roll-ups.
func sampleReport() *schema.QualityReport {
	return &schema.QualityReport{
		Source: "sonar.json",
		Files:  2,
		Measures: []schema.MeasureResult{
			{
				Key:               "test_coverage",
				Name:              "Test Coverage",
				Value:             0.75,
				Thresholds:        &schema.Thresholds{Min: 60, Max: 90},
				Files:             2,
				Subcharacteristic: "testing_status",
			},
		},
		Skipped: []schema.SkippedMeasure{
			{Key: "team_throughput", Reason: "missing metrics: resolved_issues, total_issues"},
		},
		Subcharacteristics: []schema.QualityScore{
			{Key: "testing_status", Name: "Testing Status", Level: schema.SubcharacteristicLevel, Value: 0.75,
				Weights: map[string]float64{"test_coverage": 1}},
		},
		Characteristics: []schema.QualityScore{
			{Key: "reliability", Name: "Reliability", Level: schema.CharacteristicLevel, Value: 0.75,
				Weights: map[string]float64{"testing_status": 1}},
		},
		RunID:        "run-1",
		AnalysisTime: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// textConfig returns a plain text config with a fixed width.
func textConfig(output schema.OutputMode) *contract.Config {
	return &contract.Config{
		Output:    output,
		Precision: 2,
		Width:     120,
		Workers:   1,
	}
}

// silenceStatus discards the status notices for the duration of a test.
func silenceStatus(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := statusWriter
	statusWriter = &buf
	t.Cleanup(func() { statusWriter = prev })
	return &buf
}
