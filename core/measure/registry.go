package measure

import (
	"fmt"

	"github.com/measuresoftgram/msgram/core/algo"
	"github.com/measuresoftgram/msgram/schema"
)

// Key identifies a registered measure.
type Key int

// Registered measures.
const (
	KeyNonComplexFilesDensity Key = iota
	KeyCommentedFilesDensity
	KeyAbsenceOfDuplications
	KeyPassedTests
	KeyFastTestBuilds
	KeyTestCoverage
	KeyTeamThroughput
	KeyCIFeedbackTime
	keyCount
)

var keyNames = [keyCount]string{
	KeyNonComplexFilesDensity: "non_complex_files_density",
	KeyCommentedFilesDensity:  "commented_files_density",
	KeyAbsenceOfDuplications:  "absence_of_duplications",
	KeyPassedTests:            "passed_tests",
	KeyFastTestBuilds:         "fast_test_builds",
	KeyTestCoverage:           "test_coverage",
	KeyTeamThroughput:         "team_throughput",
	KeyCIFeedbackTime:         "ci_feedback_time",
}

// legacyKeys are older spellings still found in stored requests.
var legacyKeys = map[string]Key{
	"non_complex_file_density": KeyNonComplexFilesDensity,
	"commented_file_density":   KeyCommentedFilesDensity,
	"duplication_absense":      KeyAbsenceOfDuplications,
	"test_builds":              KeyFastTestBuilds,
}

// String returns the canonical measure name.
func (k Key) String() string {
	if !k.Valid() {
		return fmt.Sprintf("measure(%d)", int(k))
	}
	return keyNames[k]
}

// Valid reports whether k names a registered measure.
func (k Key) Valid() bool {
	return k >= 0 && k < keyCount
}

// ParseKey resolves a canonical or legacy measure name.
func ParseKey(name string) (Key, error) {
	for k, n := range keyNames {
		if n == name {
			return Key(k), nil
		}
	}
	if k, ok := legacyKeys[name]; ok {
		return k, nil
	}
	return 0, invalidArgument("Unknown measure %q", name)
}

// AllKeys returns every registered measure in registry order.
func AllKeys() []Key {
	keys := make([]Key, keyCount)
	for i := range keys {
		keys[i] = Key(i)
	}
	return keys
}

// Options tune a single computation. Zero values select the defaults.
type Options struct {
	Thresholds     *schema.Thresholds
	ComplexityMode schema.ComplexityMode
}

// Definition is the static description of a measure and how to compute it.
type Definition struct {
	Key           Key
	Name          string
	Description   string
	Rules         []ColumnRule
	Defaults      schema.Thresholds
	HasThresholds bool
	Bounds        Bounds
	Gain          algo.Gain
	compute       func(*schema.MetricTable, schema.Thresholds, Options) (float64, error)
}

var definitions = [keyCount]Definition{
	KeyNonComplexFilesDensity: {
		Name:          "Non complex files density",
		Description:   "Share of files whose cyclomatic complexity per function is below the threshold",
		Rules:         complexityRules,
		Defaults:      DefaultComplexityThresholds,
		HasThresholds: true,
		Bounds:        PositiveBounds,
		Gain:          algo.LowerIsBetter,
		compute: func(t *schema.MetricTable, th schema.Thresholds, opts Options) (float64, error) {
			if opts.ComplexityMode == schema.MedianComplexity {
				return NonComplexFilesDensityMedian(t, th)
			}
			return NonComplexFilesDensity(t, th)
		},
	},
	KeyCommentedFilesDensity: {
		Name:          "Commented files density",
		Description:   "Share of files whose comment line density falls inside the window",
		Rules:         commentRules,
		Defaults:      DefaultCommentThresholds,
		HasThresholds: true,
		Bounds:        PercentBounds,
		Gain:          algo.HigherIsBetter,
		compute: func(t *schema.MetricTable, th schema.Thresholds, _ Options) (float64, error) {
			return CommentedFilesDensity(t, th)
		},
	},
	KeyAbsenceOfDuplications: {
		Name:          "Absence of duplications",
		Description:   "Share of files with little duplicated code, weighted by how little",
		Rules:         duplicationRules,
		Defaults:      DefaultDuplicationThresholds,
		HasThresholds: true,
		Bounds:        PercentBounds,
		Gain:          algo.LowerIsBetter,
		compute: func(t *schema.MetricTable, th schema.Thresholds, _ Options) (float64, error) {
			return AbsenceOfDuplications(t, th)
		},
	},
	KeyPassedTests: {
		Name:          "Passed tests",
		Description:   "Share of unit tests that neither errored nor failed",
		Rules:         passedTestsRules,
		Defaults:      DefaultPassedTestsThresholds,
		HasThresholds: true,
		Bounds:        RatioBounds,
		Gain:          algo.HigherIsBetter,
		compute: func(t *schema.MetricTable, th schema.Thresholds, _ Options) (float64, error) {
			return PassedTests(t, th)
		},
	},
	KeyFastTestBuilds: {
		Name:          "Fast test builds",
		Description:   "Average test execution time per test in milliseconds",
		Rules:         fastBuildRules,
		Defaults:      DefaultFastBuildThresholds,
		HasThresholds: true,
		Bounds:        PositiveBounds,
		Gain:          algo.LowerIsBetter,
		compute: func(t *schema.MetricTable, th schema.Thresholds, _ Options) (float64, error) {
			return FastTestBuilds(t, th)
		},
	},
	KeyTestCoverage: {
		Name:          "Test coverage",
		Description:   "Mean line coverage across files",
		Rules:         coverageRules,
		Defaults:      DefaultCoverageThresholds,
		HasThresholds: true,
		Bounds:        PercentBounds,
		Gain:          algo.HigherIsBetter,
		compute: func(t *schema.MetricTable, th schema.Thresholds, _ Options) (float64, error) {
			return TestCoverage(t, th)
		},
	},
	KeyTeamThroughput: {
		Name:        "Team throughput",
		Description: "Share of issues resolved in the trailing window",
		Rules:       throughputRules,
		Gain:        algo.HigherIsBetter,
		compute: func(t *schema.MetricTable, _ schema.Thresholds, _ Options) (float64, error) {
			return TeamThroughput(t)
		},
	},
	KeyCIFeedbackTime: {
		Name:          "CI feedback time",
		Description:   "Average build pipeline runtime in seconds",
		Rules:         ciFeedbackRules,
		Defaults:      DefaultCIFeedbackThresholds,
		HasThresholds: true,
		Bounds:        PositiveBounds,
		Gain:          algo.LowerIsBetter,
		compute: func(t *schema.MetricTable, th schema.Thresholds, _ Options) (float64, error) {
			return CIFeedbackTime(t, th)
		},
	},
}

func init() {
	for i := range definitions {
		definitions[i].Key = Key(i)
	}
}

// Get returns the definition of k. It panics on an unregistered key.
func Get(k Key) Definition {
	if !k.Valid() {
		panic(fmt.Sprintf("measure: unregistered key %d", int(k)))
	}
	return definitions[k]
}

// Definitions returns all definitions in registry order.
func Definitions() []Definition {
	out := make([]Definition, keyCount)
	copy(out, definitions[:])
	return out
}

// RequiredMetrics lists the metric columns the measure reads.
func (d Definition) RequiredMetrics() []schema.MetricKey {
	keys := make([]schema.MetricKey, len(d.Rules))
	for i, r := range d.Rules {
		keys[i] = r.Key
	}
	return keys
}

// Supports reports whether table carries every metric the measure needs.
func (d Definition) Supports(table *schema.MetricTable) bool {
	for _, key := range d.RequiredMetrics() {
		if !table.HasColumn(key) {
			return false
		}
	}
	return true
}

// Effective returns the thresholds a computation would use given opts.
func (d Definition) Effective(opts Options) (schema.Thresholds, bool) {
	if !d.HasThresholds {
		return schema.Thresholds{}, false
	}
	if opts.Thresholds != nil {
		return *opts.Thresholds, true
	}
	return d.Defaults, true
}

// Compute runs the measure over table.
func (d Definition) Compute(table *schema.MetricTable, opts Options) (float64, error) {
	th, _ := d.Effective(opts)
	return d.compute(table, th, opts)
}

// Evaluate computes measure k and packages the value with the inputs that produced it.
func Evaluate(k Key, table *schema.MetricTable, opts Options) (schema.MeasureResult, error) {
	if !k.Valid() {
		return schema.MeasureResult{}, invalidArgument("Unknown measure %s", k)
	}
	def := definitions[k]
	value, err := def.Compute(table, opts)
	if err != nil {
		return schema.MeasureResult{}, err
	}

	result := schema.MeasureResult{
		Key:   def.Key.String(),
		Name:  def.Name,
		Value: value,
		Files: table.Len(),
	}
	if th, ok := def.Effective(opts); ok {
		result.Thresholds = &th
	}
	if k == KeyNonComplexFilesDensity {
		mode := opts.ComplexityMode
		if mode == "" {
			mode = schema.DensityComplexity
		}
		result.Mode = string(mode)
	}
	return result, nil
}
