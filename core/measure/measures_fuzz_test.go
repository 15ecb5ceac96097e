package measure

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/measuresoftgram/msgram/schema"
)

// randomTable builds a table of non-negative metrics where every row carries every metric.
func randomTable(seed uint64, rows int) *schema.MetricTable {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	table := schema.NewMetricTable()
	for i := range rows {
		tests := float64(rng.IntN(20))
		table.Rows = append(table.Rows, schema.FileRow{
			Path: fmt.Sprintf("src/f%d.go", i),
			Metrics: map[schema.MetricKey]float64{
				schema.MetricComplexity:          float64(rng.IntN(60)),
				schema.MetricFunctions:           float64(rng.IntN(8)),
				schema.MetricCommentLinesDensity: rng.Float64() * 100,
				schema.MetricDuplicatedDensity:   rng.Float64() * 100,
				schema.MetricCoverage:            rng.Float64() * 100,
				schema.MetricTests:               tests,
				schema.MetricTestErrors:          float64(rng.IntN(int(tests) + 1)),
				schema.MetricTestFailures:        float64(rng.IntN(int(tests) + 1)),
				schema.MetricTestExecutionTime:   rng.Float64() * 600000,
				schema.MetricResolvedIssues:      float64(rng.IntN(30)),
				schema.MetricTotalIssues:         float64(rng.IntN(30)),
				schema.MetricBuildPipelines:      float64(rng.IntN(5)),
				schema.MetricBuildRuntimeSum:     rng.Float64() * 5000,
			},
		})
	}
	return table
}

// FuzzMeasuresUnitRange checks every measure in both complexity modes over random tables.
func FuzzMeasuresUnitRange(f *testing.F) {
	f.Add(uint64(1), uint8(1))
	f.Add(uint64(42), uint8(3))
	f.Add(uint64(7), uint8(16))
	f.Add(uint64(0), uint8(0))

	f.Fuzz(func(t *testing.T, seed uint64, rows uint8) {
		table := randomTable(seed, int(rows%32))
		for _, mode := range []schema.ComplexityMode{schema.DensityComplexity, schema.MedianComplexity} {
			for _, def := range Definitions() {
				opts := Options{ComplexityMode: mode}
				first, err := def.Compute(table, opts)
				if err != nil {
					// zero sums and empty tables are rejected by validation
					if !errors.Is(err, ErrInvalidMetricValue) {
						t.Fatalf("%s/%s: unexpected error kind: %v", mode, def.Key, err)
					}
					continue
				}
				if first < 0 || first > 1 || math.IsNaN(first) {
					t.Fatalf("%s/%s = %v, outside [0, 1]", mode, def.Key, first)
				}
				second, err := def.Compute(table, opts)
				if err != nil || math.Float64bits(first) != math.Float64bits(second) {
					t.Fatalf("%s/%s not repeatable: %v then %v (%v)", mode, def.Key, first, second, err)
				}
			}
		}
	})
}
