package algo

import (
	"sort"

	"github.com/measuresoftgram/msgram/schema"
)

// RankMeasures sorts measure results by value in ascending order so the
// weakest measures come first, and returns at most 'limit' of them.
// A limit of zero or less returns every result.
func RankMeasures(results []schema.MeasureResult, limit int) []schema.MeasureResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Value < results[j].Value
	})
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}

// RankScores sorts quality scores by value in ascending order and
// returns at most 'limit' of them.
func RankScores(scores []schema.QualityScore, limit int) []schema.QualityScore {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Value < scores[j].Value
	})
	if limit > 0 && len(scores) > limit {
		return scores[:limit]
	}
	return scores
}
