package measure

import (
	"math"

	"github.com/measuresoftgram/msgram/schema"
)

// Bounds is the admissible range for a measure's thresholds.
type Bounds struct {
	Lo, Hi float64
}

// Common threshold bounds.
var (
	PercentBounds  = Bounds{Lo: 0, Hi: 100}
	RatioBounds    = Bounds{Lo: 0, Hi: 1}
	PositiveBounds = Bounds{Lo: 0, Hi: math.Inf(1)}
)

// Default thresholds of each measure.
var (
	DefaultComplexityThresholds  = schema.Thresholds{Min: 0, Max: 10}
	DefaultCommentThresholds     = schema.Thresholds{Min: 10, Max: 30}
	DefaultDuplicationThresholds = schema.Thresholds{Min: 0, Max: 5}
	DefaultPassedTestsThresholds = schema.Thresholds{Min: 0, Max: 1}
	DefaultFastBuildThresholds   = schema.Thresholds{Min: 0, Max: 300000}
	DefaultCoverageThresholds    = schema.Thresholds{Min: 60, Max: 90}
	DefaultCIFeedbackThresholds  = schema.Thresholds{Min: 0, Max: 900}
)

// ValidateThresholds rejects non-finite pairs, inverted pairs and pairs outside bounds.
func ValidateThresholds(name string, th schema.Thresholds, bounds Bounds) error {
	if !schema.IsFinite(th.Min) || !schema.IsFinite(th.Max) {
		return invalidThreshold("The thresholds of %s must be finite numbers", name)
	}
	if th.Min > th.Max {
		return invalidThreshold("The min threshold (%g) of %s is greater than the max threshold (%g)", th.Min, name, th.Max)
	}
	if th.Min < bounds.Lo || th.Max > bounds.Hi {
		return invalidThreshold("The thresholds of %s must be between %g and %g", name, bounds.Lo, bounds.Hi)
	}
	return nil
}
