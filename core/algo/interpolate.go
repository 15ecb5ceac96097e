// Package algo holds the pure numeric building blocks of the measure engine:
// threshold interpolation, aggregation and small statistics helpers.
package algo

// Gain states which direction of a raw value is desirable.
type Gain int

// Gain directions.
const (
	HigherIsBetter Gain = iota
	LowerIsBetter
)

// String returns the display name of the gain direction.
func (g Gain) String() string {
	switch g {
	case HigherIsBetter:
		return "higher_is_better"
	case LowerIsBetter:
		return "lower_is_better"
	default:
		return "unknown"
	}
}

// Coordinates are the two breakpoints of a piecewise-linear interpretation curve.
// Raw values are divided by Scale before being placed on the X axis.
type Coordinates struct {
	X     [2]float64
	Y     [2]float64
	Scale float64
}

// BuildCoordinates maps a threshold pair and gain direction to curve breakpoints.
// Percentage thresholds are expressed on [0,1] and raw values are scaled the same way.
func BuildCoordinates(minThreshold, maxThreshold float64, gain Gain, percentage bool) Coordinates {
	c := Coordinates{
		X:     [2]float64{minThreshold, maxThreshold},
		Scale: 1,
	}
	if percentage {
		c.X = [2]float64{minThreshold / 100, maxThreshold / 100}
		c.Scale = 100
	}
	if gain == LowerIsBetter {
		c.Y = [2]float64{1, 0}
	} else {
		c.Y = [2]float64{0, 1}
	}
	return c
}

// WindowCoordinates builds a flat curve at 1 over [min,max]. It is used by window
// measures where eligibility alone decides compliance.
func WindowCoordinates(minThreshold, maxThreshold float64, percentage bool) Coordinates {
	c := BuildCoordinates(minThreshold, maxThreshold, HigherIsBetter, percentage)
	c.Y = [2]float64{1, 1}
	return c
}

// InterpolateOne places a single raw value on the curve.
// Values at or below X[0] map to Y[0], values at or above X[1] map to Y[1].
// When X[0] == X[1] a value exactly at the breakpoint maps to Y[0].
func InterpolateOne(v float64, c Coordinates) float64 {
	if c.Scale != 0 && c.Scale != 1 {
		v /= c.Scale
	}
	switch {
	case v <= c.X[0]:
		return c.Y[0]
	case v >= c.X[1]:
		return c.Y[1]
	}
	t := (v - c.X[0]) / (c.X[1] - c.X[0])
	return c.Y[0] + t*(c.Y[1]-c.Y[0])
}

// Interpolate places every raw value on the curve, preserving order.
func Interpolate(values []float64, c Coordinates) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = InterpolateOne(v, c)
	}
	return out
}
