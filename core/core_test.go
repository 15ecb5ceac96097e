package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
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

// testsTable yields passed_tests = 0.8 and nothing else.
const testsTable = `[
  {"path": "src/a.go", "tests": 6, "test_errors": 1, "test_failures": 0},
  {"path": "src/b.go", "tests": 4, "test_errors": 0, "test_failures": 1}
]`

// writeTable writes content into a temp file and returns its path.
func writeTable(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// testConfig returns a validated-looking config over every measure.
func testConfig(inputs ...string) *contract.Config {
	return &contract.Config{
		Inputs:         inputs,
		InputFormat:    schema.AutoFormat,
		Measures:       measure.AllKeys(),
		ComplexityMode: schema.DensityComplexity,
		Workers:        2,
		Precision:      contract.DefaultPrecision,
		Output:         schema.TextOut,
	}
}

// noStores returns a manager without report cache or analysis store.
func noStores() *iocache.MockCacheManager {
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetReportStore").Return(nil)
	mgr.On("GetAnalysisStore").Return(nil)
	return mgr
}

func TestEvaluateInputs(t *testing.T) {
	ctx := withSuppressHeader(context.Background())

	t.Run("keeps input order", func(t *testing.T) {
		first := writeTable(t, "first.json", testsTable)
		second := writeTable(t, "second.json", `[{"path": "x.go", "tests": 4, "test_errors": 0, "test_failures": 0}]`)
		cfg := testConfig(first, second)

		reports, err := evaluateInputs(ctx, cfg, &contract.MockGitClient{}, noStores())
		require.NoError(t, err)
		require.Len(t, reports, 2)
		assert.Equal(t, first, reports[0].Source)
		assert.Equal(t, second, reports[1].Source)
		assert.Equal(t, 2, reports[0].Files)
		assert.Equal(t, 1, reports[1].Files)
	})

	t.Run("no inputs", func(t *testing.T) {
		_, err := evaluateInputs(ctx, testConfig(), &contract.MockGitClient{}, noStores())
		assert.Error(t, err)
	})

	t.Run("one failing input fails the run", func(t *testing.T) {
		good := writeTable(t, "good.json", testsTable)
		bad := writeTable(t, "bad.json", `42`)
		_, err := evaluateInputs(ctx, testConfig(good, bad), &contract.MockGitClient{}, noStores())
		require.Error(t, err)
		assert.True(t, errors.Is(err, measure.ErrInvalidArgument))
	})
}

func TestBuildDefinitions(t *testing.T) {
	cfg := testConfig()
	cfg.Thresholds = map[measure.Key]schema.Thresholds{
		measure.KeyTestCoverage: {Min: 50, Max: 80},
	}

	defs := BuildDefinitions(cfg)
	require.Len(t, defs, len(measure.AllKeys()))

	byKey := make(map[string]schema.MeasureDefinition, len(defs))
	for _, d := range defs {
		byKey[d.Key] = d
	}

	coverage := byKey[measure.KeyTestCoverage.String()]
	require.NotNil(t, coverage.Defaults)
	require.NotNil(t, coverage.Effective)
	assert.Equal(t, schema.Thresholds{Min: 60, Max: 90}, *coverage.Defaults)
	assert.Equal(t, schema.Thresholds{Min: 50, Max: 80}, *coverage.Effective)
	assert.Equal(t, []string{"coverage"}, coverage.Metrics)
	assert.Equal(t, "testing_status", coverage.Subcharacteristic)
	assert.Equal(t, "reliability", coverage.Characteristic)

	throughput := byKey[measure.KeyTeamThroughput.String()]
	assert.Nil(t, throughput.Defaults)
	assert.Nil(t, throughput.Effective)
	assert.Equal(t, "issues_velocity", throughput.Subcharacteristic)

	complexity := byKey[measure.KeyNonComplexFilesDensity.String()]
	assert.Equal(t, *complexity.Defaults, *complexity.Effective)
	assert.Equal(t, []string{"complexity", "functions"}, complexity.Metrics)
}

func TestGetHistory(t *testing.T) {
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("requires analysis store", func(t *testing.T) {
		cfg := testConfig()
		cfg.HistorySource = "sonar.json"
		_, err := GetHistory(cfg, noStores())
		assert.ErrorContains(t, err, "analysis backend")
	})

	t.Run("requires source", func(t *testing.T) {
		store := &iocache.MockAnalysisStore{}
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetAnalysisStore").Return(store)
		_, err := GetHistory(testConfig(), mgr)
		assert.ErrorContains(t, err, "source is required")
	})

	t.Run("queries the store", func(t *testing.T) {
		points := []schema.HistoryPoint{
			{RunID: 2, Source: "sonar.json", Level: schema.MeasureLevel, Key: "passed_tests", Value: 0.9},
			{RunID: 1, Source: "sonar.json", Level: schema.MeasureLevel, Key: "passed_tests", Value: 0.8},
		}
		store := &iocache.MockAnalysisStore{}
		store.On("GetHistory", "sonar.json", "passed_tests", since, 10).Return(points, nil)
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetAnalysisStore").Return(store)

		cfg := testConfig()
		cfg.HistorySource = "sonar.json"
		cfg.HistoryKey = "passed_tests"
		cfg.Since = since
		cfg.Limit = 10

		got, err := GetHistory(cfg, mgr)
		require.NoError(t, err)
		assert.Equal(t, points, got)
		store.AssertExpectations(t)
	})

	t.Run("wraps store errors", func(t *testing.T) {
		store := &iocache.MockAnalysisStore{}
		store.On("GetHistory", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]schema.HistoryPoint(nil), errors.New("boom"))
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetAnalysisStore").Return(store)

		cfg := testConfig()
		cfg.HistorySource = "sonar.json"
		_, err := GetHistory(cfg, mgr)
		assert.ErrorContains(t, err, "boom")
	})
}

func TestLogAnalysisHeader(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *contract.Config
		contains []string
	}{
		{
			name:     "all measures with emojis",
			cfg:      func() *contract.Config { c := testConfig("/tmp/sonar.json"); c.UseEmojis = true; return c }(),
			contains: []string{"🔎 Inputs: sonar.json", "📏 Measures: all", "Complexity: density"},
		},
		{
			name: "explicit measures plain",
			cfg: func() *contract.Config {
				c := testConfig("a.csv", "b.csv")
				c.Measures = []measure.Key{measure.KeyPassedTests, measure.KeyTestCoverage}
				c.ExplicitMeasures = true
				return c
			}(),
			contains: []string{"Inputs: a.csv, b.csv", "Measures: passed_tests, test_coverage"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			logAnalysisHeader(&b, tt.cfg)
			for _, want := range tt.contains {
				assert.Contains(t, b.String(), want)
			}
		})
	}
}
