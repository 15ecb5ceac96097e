package algo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildCoordinates(t *testing.T) {
	tests := []struct {
		name       string
		min, max   float64
		gain       Gain
		percentage bool
		wantX      [2]float64
		wantY      [2]float64
		wantScale  float64
	}{
		{"lower is better", 0, 10, LowerIsBetter, false, [2]float64{0, 10}, [2]float64{1, 0}, 1},
		{"higher is better", 60, 90, HigherIsBetter, false, [2]float64{60, 90}, [2]float64{0, 1}, 1},
		{"percentage", 60, 90, HigherIsBetter, true, [2]float64{0.6, 0.9}, [2]float64{0, 1}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := BuildCoordinates(tt.min, tt.max, tt.gain, tt.percentage)
			assert.InDeltaSlice(t, tt.wantX[:], c.X[:], 1e-12)
			assert.Equal(t, tt.wantY, c.Y)
			assert.Equal(t, tt.wantScale, c.Scale)
		})
	}
}

func TestInterpolateOne(t *testing.T) {
	lower := BuildCoordinates(0, 10, LowerIsBetter, false)
	higher := BuildCoordinates(60, 90, HigherIsBetter, true)

	tests := []struct {
		name     string
		value    float64
		coords   Coordinates
		expected float64
	}{
		{"below lower breakpoint", -5, lower, 1},
		{"at lower breakpoint", 0, lower, 1},
		{"midpoint", 5, lower, 0.5},
		{"at upper breakpoint", 10, lower, 0},
		{"above upper breakpoint", 50, lower, 0},
		{"percentage below", 30, higher, 0},
		{"percentage midpoint", 75, higher, 0.5},
		{"percentage above", 100, higher, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, InterpolateOne(tt.value, tt.coords), 1e-9)
		})
	}
}

func TestInterpolateDegenerateBreakpoint(t *testing.T) {
	lower := BuildCoordinates(5, 5, LowerIsBetter, false)
	assert.Equal(t, 1.0, InterpolateOne(5, lower), "value at the breakpoint maps to Y[0]")
	assert.Equal(t, 1.0, InterpolateOne(4, lower))
	assert.Equal(t, 0.0, InterpolateOne(6, lower))

	higher := BuildCoordinates(5, 5, HigherIsBetter, false)
	assert.Equal(t, 0.0, InterpolateOne(5, higher), "value at the breakpoint maps to Y[0]")
	assert.Equal(t, 1.0, InterpolateOne(5.0001, higher))
}

func TestInterpolatePreservesOrder(t *testing.T) {
	c := BuildCoordinates(0, 4, LowerIsBetter, false)
	got := Interpolate([]float64{0, 1, 2, 3, 4}, c)
	assert.InDeltaSlice(t, []float64{1, 0.75, 0.5, 0.25, 0}, got, 1e-9)
	assert.Empty(t, Interpolate(nil, c))
}

func TestWindowCoordinates(t *testing.T) {
	c := WindowCoordinates(10, 30, true)
	for _, v := range []float64{0, 10, 15, 30, 50} {
		assert.Equal(t, 1.0, InterpolateOne(v, c))
	}
}

func TestGainString(t *testing.T) {
	assert.Equal(t, "higher_is_better", HigherIsBetter.String())
	assert.Equal(t, "lower_is_better", LowerIsBetter.String())
	assert.Equal(t, "unknown", Gain(42).String())
}
