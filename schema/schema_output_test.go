package schema_test

import (
	"testing"

	"github.com/measuresoftgram/msgram/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		expected string
	}{
		{"Excellent Upper", 1.0, "Excellent"},
		{"Excellent Lower", 0.8, "Excellent"},
		{"Good Upper", 0.79, "Good"},
		{"Good Lower", 0.6, "Good"},
		{"Fair Upper", 0.59, "Fair"},
		{"Fair Lower", 0.4, "Fair"},
		{"Poor Upper", 0.39, "Poor"},
		{"Poor Lower", 0.0, "Poor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, schema.GetPlainLabel(tt.score))
		})
	}
}

func TestEnrichReport(t *testing.T) {
	report := &schema.QualityReport{
		Source: "sonar.json",
		Files:  3,
		Measures: []schema.MeasureResult{
			{Key: "passed_tests", Value: 0.8},
			{Key: "test_coverage", Value: 0.2},
		},
		Subcharacteristics: []schema.QualityScore{{Key: "testing_status", Value: 0.5}},
		Characteristics:    []schema.QualityScore{{Key: "reliability", Value: 0.5}},
	}

	enriched := schema.EnrichReport(report)
	require.Len(t, enriched.Measures, 2)
	assert.Equal(t, "Excellent", enriched.Measures[0].Label)
	assert.Equal(t, "Poor", enriched.Measures[1].Label)
	assert.Equal(t, "Fair", enriched.Subcharacteristics[0].Label)
	assert.Equal(t, "Fair", enriched.Characteristics[0].Label)
	assert.Equal(t, "sonar.json", enriched.Source)
}
