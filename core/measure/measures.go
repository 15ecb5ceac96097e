package measure

import (
	"github.com/measuresoftgram/msgram/core/algo"
	"github.com/measuresoftgram/msgram/schema"
)

// Column rules shared by the measure functions.
var (
	complexityRules = []ColumnRule{
		{Key: schema.MetricComplexity, Policy: PositiveSum},
		{Key: schema.MetricFunctions, Policy: PositiveSum},
	}
	commentRules = []ColumnRule{
		{Key: schema.MetricCommentLinesDensity, Policy: NonNegativeSum, Percentage: true},
	}
	duplicationRules = []ColumnRule{
		{Key: schema.MetricDuplicatedDensity, Policy: NonNegativeSum, Percentage: true},
	}
	passedTestsRules = []ColumnRule{
		{Key: schema.MetricTests, Policy: PositiveSum},
		{Key: schema.MetricTestErrors, Policy: NonNegativeSum},
		{Key: schema.MetricTestFailures, Policy: NonNegativeSum},
	}
	fastBuildRules = []ColumnRule{
		{Key: schema.MetricTests, Policy: PositiveSum},
		{Key: schema.MetricTestExecutionTime, Policy: NonNegativeSum},
	}
	coverageRules = []ColumnRule{
		{Key: schema.MetricCoverage, Policy: NonNegativeSum, Percentage: true},
	}
	throughputRules = []ColumnRule{
		{Key: schema.MetricTotalIssues, Policy: PositiveSum},
		{Key: schema.MetricResolvedIssues, Policy: NonNegativeSum},
	}
	ciFeedbackRules = []ColumnRule{
		{Key: schema.MetricBuildPipelines, Policy: PositiveSum},
		{Key: schema.MetricBuildRuntimeSum, Policy: NonNegativeSum},
	}
)

// complexityRatios returns complexity/functions for every file with at least one function.
func complexityRatios(table *schema.MetricTable) []float64 {
	ratios := make([]float64, 0, table.Len())
	for _, row := range table.Rows {
		functions := row.Metrics[schema.MetricFunctions]
		if functions <= 0 {
			continue
		}
		ratios = append(ratios, row.Metrics[schema.MetricComplexity]/functions)
	}
	return ratios
}

// NonComplexFilesDensity counts files whose complexity per function is strictly
// below th.Max, over the whole population.
func NonComplexFilesDensity(table *schema.MetricTable, th schema.Thresholds) (float64, error) {
	if _, err := Validate(table, complexityRules...); err != nil {
		return 0, err
	}
	if err := ValidateThresholds(KeyNonComplexFilesDensity.String(), th, PositiveBounds); err != nil {
		return 0, err
	}

	coords := algo.WindowCoordinates(th.Min, th.Max, false)
	var series []float64
	for _, ratio := range complexityRatios(table) {
		if ratio < th.Max {
			series = append(series, algo.InterpolateOne(ratio, coords))
		}
	}
	return algo.Aggregate(series, table.Len())
}

// NonComplexFilesDensityMedian interpolates each eligible ratio against
// [th.Min, median of eligible ratios] with lower-is-better gain.
// Files with a ratio above th.Max are excluded.
func NonComplexFilesDensityMedian(table *schema.MetricTable, th schema.Thresholds) (float64, error) {
	if _, err := Validate(table, complexityRules...); err != nil {
		return 0, err
	}
	if err := ValidateThresholds(KeyNonComplexFilesDensity.String(), th, PositiveBounds); err != nil {
		return 0, err
	}

	var eligible []float64
	for _, ratio := range complexityRatios(table) {
		if ratio <= th.Max {
			eligible = append(eligible, ratio)
		}
	}
	if len(eligible) == 0 {
		return 0, nil
	}

	upper := max(algo.Median(eligible), th.Min)
	coords := algo.BuildCoordinates(th.Min, upper, algo.LowerIsBetter, false)
	return algo.Aggregate(algo.Interpolate(eligible, coords), table.Len())
}

// CommentedFilesDensity is the share of files whose comment density lies in the inclusive window.
func CommentedFilesDensity(table *schema.MetricTable, th schema.Thresholds) (float64, error) {
	if _, err := Validate(table, commentRules...); err != nil {
		return 0, err
	}
	if err := ValidateThresholds(KeyCommentedFilesDensity.String(), th, PercentBounds); err != nil {
		return 0, err
	}

	coords := algo.WindowCoordinates(th.Min, th.Max, true)
	var series []float64
	for _, row := range table.Rows {
		v := row.Metrics[schema.MetricCommentLinesDensity]
		if v < th.Min || v > th.Max {
			continue
		}
		series = append(series, algo.InterpolateOne(v, coords))
	}
	return algo.Aggregate(series, table.Len())
}

// AbsenceOfDuplications rewards files with little duplicated code.
// Files above th.Max are excluded rather than clamped.
func AbsenceOfDuplications(table *schema.MetricTable, th schema.Thresholds) (float64, error) {
	if _, err := Validate(table, duplicationRules...); err != nil {
		return 0, err
	}
	if err := ValidateThresholds(KeyAbsenceOfDuplications.String(), th, PercentBounds); err != nil {
		return 0, err
	}

	coords := algo.BuildCoordinates(th.Min, th.Max, algo.LowerIsBetter, true)
	var series []float64
	for _, row := range table.Rows {
		v := row.Metrics[schema.MetricDuplicatedDensity]
		if v > th.Max {
			continue
		}
		series = append(series, algo.InterpolateOne(v, coords))
	}
	return algo.Aggregate(series, table.Len())
}

// PassedTests is the share of tests that neither errored nor failed.
func PassedTests(table *schema.MetricTable, th schema.Thresholds) (float64, error) {
	if _, err := Validate(table, passedTestsRules...); err != nil {
		return 0, err
	}
	if err := ValidateThresholds(KeyPassedTests.String(), th, RatioBounds); err != nil {
		return 0, err
	}

	tests := table.Sum(schema.MetricTests)
	passed := tests - table.Sum(schema.MetricTestErrors) - table.Sum(schema.MetricTestFailures)
	ratio := algo.Clamp(passed/tests, th.Min, th.Max)
	coords := algo.BuildCoordinates(th.Min, th.Max, algo.HigherIsBetter, false)
	return algo.AggregateScalar(algo.InterpolateOne(ratio, coords)), nil
}

// FastTestBuilds scores the average execution time per test, in milliseconds.
func FastTestBuilds(table *schema.MetricTable, th schema.Thresholds) (float64, error) {
	if _, err := Validate(table, fastBuildRules...); err != nil {
		return 0, err
	}
	if err := ValidateThresholds(KeyFastTestBuilds.String(), th, PositiveBounds); err != nil {
		return 0, err
	}

	average := table.Sum(schema.MetricTestExecutionTime) / table.Sum(schema.MetricTests)
	coords := algo.BuildCoordinates(th.Min, th.Max, algo.LowerIsBetter, false)
	return algo.AggregateScalar(algo.InterpolateOne(average, coords)), nil
}

// TestCoverage scores the mean line coverage of the table.
func TestCoverage(table *schema.MetricTable, th schema.Thresholds) (float64, error) {
	if _, err := Validate(table, coverageRules...); err != nil {
		return 0, err
	}
	if err := ValidateThresholds(KeyTestCoverage.String(), th, PercentBounds); err != nil {
		return 0, err
	}

	values, _ := table.Column(schema.MetricCoverage)
	coords := algo.BuildCoordinates(th.Min, th.Max, algo.HigherIsBetter, true)
	return algo.AggregateScalar(algo.InterpolateOne(algo.Mean(values), coords)), nil
}

// TeamThroughput is the share of issues resolved in the window. It takes no thresholds.
func TeamThroughput(table *schema.MetricTable) (float64, error) {
	if _, err := Validate(table, throughputRules...); err != nil {
		return 0, err
	}
	return algo.AggregateScalar(table.Sum(schema.MetricResolvedIssues) / table.Sum(schema.MetricTotalIssues)), nil
}

// CIFeedbackTime scores the average runtime of a build pipeline, in seconds.
func CIFeedbackTime(table *schema.MetricTable, th schema.Thresholds) (float64, error) {
	if _, err := Validate(table, ciFeedbackRules...); err != nil {
		return 0, err
	}
	if err := ValidateThresholds(KeyCIFeedbackTime.String(), th, PositiveBounds); err != nil {
		return 0, err
	}

	average := table.Sum(schema.MetricBuildRuntimeSum) / table.Sum(schema.MetricBuildPipelines)
	coords := algo.BuildCoordinates(th.Min, th.Max, algo.LowerIsBetter, false)
	return algo.AggregateScalar(algo.InterpolateOne(average, coords)), nil
}
