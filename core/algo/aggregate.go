package algo

import (
	"errors"
	"math"
	"slices"
)

// ErrEmptyPopulation is returned when aggregating over zero files.
var ErrEmptyPopulation = errors.New("population must be greater than 0")

// Aggregate sums an interpretation series and divides by the original population.
// Files excluded from the series still count in the population.
func Aggregate(series []float64, population int) (float64, error) {
	if population <= 0 {
		return 0, ErrEmptyPopulation
	}
	total := 0.0
	for _, v := range series {
		total += v
	}
	return Clamp01(total / float64(population)), nil
}

// AggregateScalar passes an aggregate-level value through, bounded to [0,1].
func AggregateScalar(v float64) float64 {
	return Clamp01(v)
}

// Clamp01 bounds v to [0,1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return Clamp(v, 0, 1)
}

// Clamp bounds v to [lo,hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Median returns the median of values, or 0 for an empty slice.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// WeightedAverage averages values by weight, renormalizing over the weights present.
// It returns false when the total weight is zero.
func WeightedAverage(values, weights map[string]float64) (float64, bool) {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	var num, den float64
	for _, key := range keys {
		v := values[key]
		w, ok := weights[key]
		if !ok || w <= 0 {
			continue
		}
		num += v * w
		den += w
	}
	if den == 0 {
		return 0, false
	}
	return Clamp01(num / den), true
}
