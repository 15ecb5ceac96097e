package schema

import "time"

// Thresholds is the lower/upper breakpoint pair of a measure. Min must not exceed Max.
type Thresholds struct {
	Min float64 `json:"min" yaml:"min" mapstructure:"min"`
	Max float64 `json:"max" yaml:"max" mapstructure:"max"`
}

// MeasureResult is the outcome of one measure computation over a table.
type MeasureResult struct {
	Key               string      `json:"key"`
	Name              string      `json:"name"`
	Value             float64     `json:"value"`
	Thresholds        *Thresholds `json:"thresholds,omitempty"`
	Mode              string      `json:"mode,omitempty"`
	Files             int         `json:"files"`
	Subcharacteristic string      `json:"subcharacteristic"`
}

// SkippedMeasure records a measure that could not be computed from the table.
type SkippedMeasure struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// QualityScore is a weighted roll-up value for a subcharacteristic or characteristic.
type QualityScore struct {
	Key     string             `json:"key"`
	Name    string             `json:"name"`
	Level   ResultLevel        `json:"level"`
	Value   float64            `json:"value"`
	Weights map[string]float64 `json:"weights"`
}

// QualityReport gathers all measure values and roll-ups computed for one source.
type QualityReport struct {
	Source             string           `json:"source"`
	Files              int              `json:"files"`
	Measures           []MeasureResult  `json:"measures"`
	Skipped            []SkippedMeasure `json:"skipped,omitempty"`
	Subcharacteristics []QualityScore   `json:"subcharacteristics"`
	Characteristics    []QualityScore   `json:"characteristics"`
	Cached             bool             `json:"cached"`
	RunID              string           `json:"run_id,omitempty"`
	AnalysisTime       time.Time        `json:"analysis_time"`
}

// Score returns the value of a measure, subcharacteristic or characteristic by key.
func (r *QualityReport) Score(key string) (float64, ResultLevel, bool) {
	for _, m := range r.Measures {
		if m.Key == key {
			return m.Value, MeasureLevel, true
		}
	}
	for _, s := range r.Subcharacteristics {
		if s.Key == key {
			return s.Value, SubcharacteristicLevel, true
		}
	}
	for _, c := range r.Characteristics {
		if c.Key == key {
			return c.Value, CharacteristicLevel, true
		}
	}
	return 0, "", false
}

// CheckFailure is a score that fell below its configured minimum.
type CheckFailure struct {
	Source  string      `json:"source"`
	Key     string      `json:"key"`
	Level   ResultLevel `json:"level"`
	Value   float64     `json:"value"`
	Minimum float64     `json:"minimum"`
}

// CheckResult is the verdict of a gating run across all inputs.
type CheckResult struct {
	Passed    bool               `json:"passed"`
	Sources   []string           `json:"sources"`
	Minimums  map[string]float64 `json:"minimums"`
	Failures  []CheckFailure     `json:"failures"`
	Missing   []string           `json:"missing"`
	Evaluated int                `json:"evaluated"`
}

// MeasureDefinition describes a registered measure for display.
type MeasureDefinition struct {
	Key               string      `json:"key"`
	Name              string      `json:"name"`
	Description       string      `json:"description"`
	Metrics           []string    `json:"metrics"`
	Subcharacteristic string      `json:"subcharacteristic"`
	Characteristic    string      `json:"characteristic"`
	Defaults          *Thresholds `json:"defaults,omitempty"`
	Effective         *Thresholds `json:"effective,omitempty"`
	Gain              string      `json:"gain"`
}
