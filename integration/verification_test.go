//go:build basic

// Package integration contains end-to-end tests for the msgram binary.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
// Database backends: go test -tags database ./integration
package integration

import (
	"encoding/json"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verifiedReport struct {
	Source   string `json:"source"`
	Files    int    `json:"files"`
	Measures []struct {
		Key   string  `json:"key"`
		Value float64 `json:"value"`
	} `json:"measures"`
	Skipped []struct {
		Key string `json:"key"`
	} `json:"skipped"`
	Characteristics []struct {
		Key   string  `json:"key"`
		Value float64 `json:"value"`
	} `json:"characteristics"`
}

// TestMeasuresVerification checks the JSON report of the fixture against hand-computed values.
func TestMeasuresVerification(t *testing.T) {
	home := t.TempDir()
	input := writeFixture(t, home)

	stdout, err := runMsgram(t, home, nil, "measures", "--cache-backend", "none", "--output", "json", input)
	require.NoError(t, err)

	var reports []verifiedReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &reports))
	require.Len(t, reports, 1)
	report := reports[0]
	assert.Equal(t, input, report.Source)
	assert.Equal(t, 2, report.Files)

	values := make(map[string]float64)
	for _, m := range report.Measures {
		values[m.Key] = m.Value
		assert.GreaterOrEqual(t, m.Value, 0.0, m.Key)
		assert.LessOrEqual(t, m.Value, 1.0, m.Key)
	}
	assert.Len(t, values, 6)
	assert.InDelta(t, 0.8, values["passed_tests"], 1e-9, "(10 tests - 1 error - 1 failure) / 10")

	var skipped []string
	for _, s := range report.Skipped {
		skipped = append(skipped, s.Key)
	}
	assert.ElementsMatch(t, []string{"team_throughput", "ci_feedback_time"}, skipped)

	var characteristics []string
	for _, c := range report.Characteristics {
		characteristics = append(characteristics, c.Key)
	}
	assert.ElementsMatch(t, []string{"reliability", "maintainability"}, characteristics)
}

// TestExplicitMeasureWithoutMetricsFails requests a measure the fixture cannot support.
func TestExplicitMeasureWithoutMetricsFails(t *testing.T) {
	home := t.TempDir()
	input := writeFixture(t, home)

	_, err := runMsgram(t, home, nil, "measures", "--cache-backend", "none", "--measures", "team_throughput", input)
	require.Error(t, err)
}

// TestCheckExitCodes verifies the CI contract of the check command.
func TestCheckExitCodes(t *testing.T) {
	home := t.TempDir()
	input := writeFixture(t, home)

	_, err := runMsgram(t, home, nil, "check", "--cache-backend", "none", "--min-scores", "passed_tests:0.7", input)
	require.NoError(t, err)

	_, err = runMsgram(t, home, nil, "check", "--cache-backend", "none", "--min-scores", "passed_tests:0.9", input)
	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.ExitCode())
}

// TestHistoryWithSQLite tracks two runs and reads them back.
func TestHistoryWithSQLite(t *testing.T) {
	home := t.TempDir()
	input := writeFixture(t, home)
	env := []string{"MSGRAM_ANALYSIS_BACKEND=sqlite"}

	for range 2 {
		_, err := runMsgram(t, home, env, "measures", input)
		require.NoError(t, err)
	}

	stdout, err := runMsgram(t, home, env, "history", "--key", "passed_tests", "--output", "json", input)
	require.NoError(t, err)

	var points []struct {
		RunID int64   `json:"run_id"`
		Key   string  `json:"key"`
		Value float64 `json:"value"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &points))
	require.Len(t, points, 2)
	assert.Greater(t, points[0].RunID, points[1].RunID, "latest run first")
	for _, p := range points {
		assert.Equal(t, "passed_tests", p.Key)
		assert.InDelta(t, 0.8, p.Value, 1e-9)
	}
}

// TestDefinitionsJSON lists the registry.
func TestDefinitionsJSON(t *testing.T) {
	home := t.TempDir()
	stdout, err := runMsgram(t, home, nil, "definitions", "--cache-backend", "none", "--output", "json")
	require.NoError(t, err)

	var defs []struct {
		Key string `json:"key"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &defs))
	assert.Len(t, defs, 8)
}
