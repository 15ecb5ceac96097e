package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/measuresoftgram/msgram/internal/contract"
	"github.com/measuresoftgram/msgram/schema"
)

func checkReport(source string, passedTests, reliability float64) *schema.QualityReport {
	return &schema.QualityReport{
		Source:             source,
		Measures:           []schema.MeasureResult{{Key: "passed_tests", Value: passedTests}},
		Subcharacteristics: []schema.QualityScore{{Key: "testing_status", Level: schema.SubcharacteristicLevel, Value: passedTests}},
		Characteristics:    []schema.QualityScore{{Key: "reliability", Level: schema.CharacteristicLevel, Value: reliability}},
	}
}

func TestCheckReports(t *testing.T) {
	tests := []struct {
		name      string
		minimums  map[string]float64
		reports   []*schema.QualityReport
		passed    bool
		failures  []string
		missing   []string
		evaluated int
	}{
		{
			name:      "all above minimum",
			minimums:  map[string]float64{"reliability": 0.5, "passed_tests": 0.7},
			reports:   []*schema.QualityReport{checkReport("a.json", 0.8, 0.8)},
			passed:    true,
			evaluated: 2,
		},
		{
			name:      "equal to minimum passes",
			minimums:  map[string]float64{"reliability": 0.8},
			reports:   []*schema.QualityReport{checkReport("a.json", 0.8, 0.8)},
			passed:    true,
			evaluated: 1,
		},
		{
			name:     "below minimum fails, worst first",
			minimums: map[string]float64{"reliability": 0.9, "passed_tests": 0.7},
			reports: []*schema.QualityReport{
				checkReport("a.json", 0.6, 0.85),
				checkReport("b.json", 0.9, 0.3),
			},
			passed:    false,
			failures:  []string{"b.json:reliability", "a.json:passed_tests", "a.json:reliability"},
			evaluated: 4,
		},
		{
			name:      "missing score is reported but does not fail",
			minimums:  map[string]float64{"maintainability": 0.5},
			reports:   []*schema.QualityReport{checkReport("a.json", 0.8, 0.8)},
			passed:    true,
			missing:   []string{"a.json:maintainability"},
			evaluated: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &contract.Config{MinScores: tt.minimums}
			result := CheckReports(cfg, tt.reports)

			assert.Equal(t, tt.passed, result.Passed)
			assert.Equal(t, tt.evaluated, result.Evaluated)
			assert.Equal(t, tt.minimums, result.Minimums)
			assert.Len(t, result.Sources, len(tt.reports))

			got := make([]string, len(result.Failures))
			for i, f := range result.Failures {
				got[i] = f.Source + ":" + f.Key
			}
			if tt.failures == nil {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tt.failures, got)
			}
			if tt.missing == nil {
				assert.Empty(t, result.Missing)
			} else {
				assert.Equal(t, tt.missing, result.Missing)
			}
		})
	}
}

func TestCheckFailureCarriesLevel(t *testing.T) {
	cfg := &contract.Config{MinScores: map[string]float64{"testing_status": 0.9}}
	result := CheckReports(cfg, []*schema.QualityReport{checkReport("a.json", 0.5, 0.5)})

	require.Len(t, result.Failures, 1)
	assert.Equal(t, schema.SubcharacteristicLevel, result.Failures[0].Level)
	assert.Equal(t, 0.5, result.Failures[0].Value)
	assert.Equal(t, 0.9, result.Failures[0].Minimum)
}

func TestPrintCheckResult(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		result := &schema.CheckResult{
			Passed:    true,
			Sources:   []string{"a.json"},
			Minimums:  map[string]float64{"reliability": 0.5, "passed_tests": 0.7},
			Evaluated: 2,
		}
		var b strings.Builder
		printCheckResult(&b, result, true, 1500*time.Microsecond)

		out := b.String()
		assert.Contains(t, out, "Minimums: passed_tests=0.70, reliability=0.50")
		assert.Contains(t, out, "Checked 2 scores")
		assert.Contains(t, out, "✅ All scores met their minimums")
	})

	t.Run("failure truncates the list", func(t *testing.T) {
		result := &schema.CheckResult{Minimums: map[string]float64{"reliability": 0.9}}
		for range maxFailuresShown + 2 {
			result.Failures = append(result.Failures, schema.CheckFailure{
				Source: "a.json", Key: "reliability", Level: schema.CharacteristicLevel, Value: 0.1, Minimum: 0.9,
			})
		}
		result.Missing = []string{"a.json:maintainability"}

		var b strings.Builder
		printCheckResult(&b, result, false, time.Second)

		out := b.String()
		assert.Contains(t, out, "Quality check failed: 7 violation(s) found")
		assert.NotContains(t, out, "❌")
		assert.Contains(t, out, "(score: 0.10 < minimum: 0.90)")
		assert.Contains(t, out, "... and 2 more")
		assert.Contains(t, out, "Not computed: 1 score(s)")
	})
}

func TestExecuteCheck(t *testing.T) {
	ctx := withSuppressHeader(context.Background())

	t.Run("requires minimums", func(t *testing.T) {
		err := ExecuteCheck(ctx, testConfig("a.json"), noStores())
		assert.ErrorContains(t, err, "minimum scores")
	})

	t.Run("fails below minimum", func(t *testing.T) {
		path := writeTable(t, "tests.json", testsTable)
		cfg := testConfig(path)
		cfg.Output = schema.JSONOut
		cfg.OutputFile = t.TempDir() + "/check.json"
		cfg.MinScores = map[string]float64{"passed_tests": 0.9}

		err := ExecuteCheck(ctx, cfg, noStores())
		assert.ErrorIs(t, err, ErrCheckFailed)
	})

	t.Run("passes above minimum", func(t *testing.T) {
		path := writeTable(t, "tests.json", testsTable)
		cfg := testConfig(path)
		cfg.Output = schema.JSONOut
		cfg.OutputFile = t.TempDir() + "/check.json"
		cfg.MinScores = map[string]float64{"reliability": 0.75}

		assert.NoError(t, ExecuteCheck(ctx, cfg, noStores()))
	})
}
