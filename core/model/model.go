// Package model holds the quality model that groups measures into
// subcharacteristics and subcharacteristics into characteristics.
package model

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/measuresoftgram/msgram/core/algo"
	"github.com/measuresoftgram/msgram/core/measure"
	"github.com/measuresoftgram/msgram/schema"
)

// ErrInvalidWeights is returned when a weight group is malformed.
var ErrInvalidWeights = errors.New("invalid weights")

// Subcharacteristic groups related measures.
type Subcharacteristic struct {
	Key            string
	Name           string
	Characteristic string
	Measures       []measure.Key
}

// Characteristic groups related subcharacteristics.
type Characteristic struct {
	Key                string
	Name               string
	Subcharacteristics []string
}

// Subcharacteristic keys.
const (
	TestingStatus  = "testing_status"
	Modifiability  = "modifiability"
	IssuesVelocity = "issues_velocity"
)

// Characteristic keys.
const (
	Reliability     = "reliability"
	Maintainability = "maintainability"
	Productivity    = "productivity"
)

// Subcharacteristics is the default model, in display order.
var Subcharacteristics = []Subcharacteristic{
	{
		Key:            TestingStatus,
		Name:           "Testing status",
		Characteristic: Reliability,
		Measures: []measure.Key{
			measure.KeyPassedTests,
			measure.KeyFastTestBuilds,
			measure.KeyTestCoverage,
			measure.KeyCIFeedbackTime,
		},
	},
	{
		Key:            Modifiability,
		Name:           "Modifiability",
		Characteristic: Maintainability,
		Measures: []measure.Key{
			measure.KeyNonComplexFilesDensity,
			measure.KeyCommentedFilesDensity,
			measure.KeyAbsenceOfDuplications,
		},
	},
	{
		Key:            IssuesVelocity,
		Name:           "Issues velocity",
		Characteristic: Productivity,
		Measures:       []measure.Key{measure.KeyTeamThroughput},
	},
}

// Characteristics is the default model, in display order.
var Characteristics = []Characteristic{
	{Key: Reliability, Name: "Reliability", Subcharacteristics: []string{TestingStatus}},
	{Key: Maintainability, Name: "Maintainability", Subcharacteristics: []string{Modifiability}},
	{Key: Productivity, Name: "Productivity", Subcharacteristics: []string{IssuesVelocity}},
}

// SubcharacteristicOf returns the subcharacteristic fed by k.
func SubcharacteristicOf(k measure.Key) (Subcharacteristic, bool) {
	for _, sub := range Subcharacteristics {
		if slices.Contains(sub.Measures, k) {
			return sub, true
		}
	}
	return Subcharacteristic{}, false
}

// FindSubcharacteristic looks a subcharacteristic up by key.
func FindSubcharacteristic(key string) (Subcharacteristic, bool) {
	for _, sub := range Subcharacteristics {
		if sub.Key == key {
			return sub, true
		}
	}
	return Subcharacteristic{}, false
}

// FindCharacteristic looks a characteristic up by key.
func FindCharacteristic(key string) (Characteristic, bool) {
	for _, c := range Characteristics {
		if c.Key == key {
			return c, true
		}
	}
	return Characteristic{}, false
}

// Weights maps a group key to the weight of each of its members.
type Weights map[string]map[string]float64

// ValidateMeasureWeights checks configured subcharacteristic → measure weights.
func ValidateMeasureWeights(w Weights) error {
	for group, members := range w {
		sub, ok := FindSubcharacteristic(group)
		if !ok {
			return fmt.Errorf("%w: unknown subcharacteristic %q", ErrInvalidWeights, group)
		}
		allowed := make([]string, len(sub.Measures))
		for i, k := range sub.Measures {
			allowed[i] = k.String()
		}
		if err := validateGroup(group, members, allowed); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCharacteristicWeights checks configured characteristic → subcharacteristic weights.
func ValidateCharacteristicWeights(w Weights) error {
	for group, members := range w {
		c, ok := FindCharacteristic(group)
		if !ok {
			return fmt.Errorf("%w: unknown characteristic %q", ErrInvalidWeights, group)
		}
		if err := validateGroup(group, members, c.Subcharacteristics); err != nil {
			return err
		}
	}
	return nil
}

func validateGroup(group string, members map[string]float64, allowed []string) error {
	total := 0.0
	for member, weight := range members {
		if !slices.Contains(allowed, member) {
			return fmt.Errorf("%w: %q is not part of %q", ErrInvalidWeights, member, group)
		}
		if weight < 0 || math.IsNaN(weight) {
			return fmt.Errorf("%w: weight of %q in %q must be non-negative", ErrInvalidWeights, member, group)
		}
		total += weight
	}
	if total < 0.999 || total > 1.001 {
		return fmt.Errorf("%w: weights of %q must sum to 1.0, got %.3f", ErrInvalidWeights, group, total)
	}
	return nil
}

// equalWeights spreads 1.0 evenly over members.
func equalWeights(members []string) map[string]float64 {
	out := make(map[string]float64, len(members))
	for _, m := range members {
		out[m] = 1 / float64(len(members))
	}
	return out
}

// Evaluate rolls measure results up into subcharacteristic and characteristic scores.
// Groups without any computed member are omitted. Weights of a group are renormalized
// over the members that are present; missing groups in w use equal weights.
func Evaluate(results []schema.MeasureResult, measureWeights, characteristicWeights Weights) ([]schema.QualityScore, []schema.QualityScore) {
	values := make(map[string]float64, len(results))
	for _, r := range results {
		values[r.Key] = r.Value
	}

	var subs []schema.QualityScore
	subValues := make(map[string]float64)
	for _, sub := range Subcharacteristics {
		members := make([]string, len(sub.Measures))
		for i, k := range sub.Measures {
			members[i] = k.String()
		}
		weights := measureWeights[sub.Key]
		if weights == nil {
			weights = equalWeights(members)
		}
		v, ok := algo.WeightedAverage(pick(values, members), weights)
		if !ok {
			continue
		}
		v = algo.Clamp01(v)
		subValues[sub.Key] = v
		subs = append(subs, schema.QualityScore{
			Key:     sub.Key,
			Name:    sub.Name,
			Level:   schema.SubcharacteristicLevel,
			Value:   v,
			Weights: weights,
		})
	}

	var chars []schema.QualityScore
	for _, c := range Characteristics {
		weights := characteristicWeights[c.Key]
		if weights == nil {
			weights = equalWeights(c.Subcharacteristics)
		}
		v, ok := algo.WeightedAverage(pick(subValues, c.Subcharacteristics), weights)
		if !ok {
			continue
		}
		chars = append(chars, schema.QualityScore{
			Key:     c.Key,
			Name:    c.Name,
			Level:   schema.CharacteristicLevel,
			Value:   algo.Clamp01(v),
			Weights: weights,
		})
	}
	return subs, chars
}

func pick(values map[string]float64, keys []string) map[string]float64 {
	out := make(map[string]float64, len(keys))
	for _, k := range keys {
		if v, ok := values[k]; ok {
			out[k] = v
		}
	}
	return out
}
