package schema

// Quality label constants.
const (
	ExcellentValue = "Excellent"
	GoodValue      = "Good"
	FairValue      = "Fair"
	PoorValue      = "Poor"
)

// EnrichedMeasureResult adds presentation data to a MeasureResult.
type EnrichedMeasureResult struct {
	Label string `json:"label"`
	MeasureResult
}

// EnrichedQualityScore adds presentation data to a QualityScore.
type EnrichedQualityScore struct {
	Label string `json:"label"`
	QualityScore
}

// EnrichedQualityReport is the presentation form of a QualityReport.
type EnrichedQualityReport struct {
	Source             string                  `json:"source"`
	Files              int                     `json:"files"`
	Measures           []EnrichedMeasureResult `json:"measures"`
	Skipped            []SkippedMeasure        `json:"skipped,omitempty"`
	Subcharacteristics []EnrichedQualityScore  `json:"subcharacteristics"`
	Characteristics    []EnrichedQualityScore  `json:"characteristics"`
	Cached             bool                    `json:"cached"`
	RunID              string                  `json:"run_id,omitempty"`
}

// GetPlainLabel returns a plain text label for a normalized [0,1] score.
func GetPlainLabel(score float64) string {
	switch {
	case score >= 0.8:
		return ExcellentValue
	case score >= 0.6:
		return GoodValue
	case score >= 0.4:
		return FairValue
	default:
		return PoorValue
	}
}

// EnrichReport adds labels to every value of a report.
func EnrichReport(r *QualityReport) EnrichedQualityReport {
	out := EnrichedQualityReport{
		Source:             r.Source,
		Files:              r.Files,
		Measures:           make([]EnrichedMeasureResult, len(r.Measures)),
		Skipped:            r.Skipped,
		Subcharacteristics: enrichScores(r.Subcharacteristics),
		Characteristics:    enrichScores(r.Characteristics),
		Cached:             r.Cached,
		RunID:              r.RunID,
	}
	for i, m := range r.Measures {
		out.Measures[i] = EnrichedMeasureResult{Label: GetPlainLabel(m.Value), MeasureResult: m}
	}
	return out
}

func enrichScores(scores []QualityScore) []EnrichedQualityScore {
	out := make([]EnrichedQualityScore, len(scores))
	for i, s := range scores {
		out[i] = EnrichedQualityScore{Label: GetPlainLabel(s.Value), QualityScore: s}
	}
	return out
}
