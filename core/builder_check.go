package core

import (
	"maps"
	"slices"
	"sort"

	"github.com/measuresoftgram/msgram/internal/contract"
	"github.com/measuresoftgram/msgram/schema"
)

// CheckResultBuilder builds the check result using a builder pattern.
type CheckResultBuilder struct {
	minimums map[string]float64
	keys     []string
	result   *schema.CheckResult
}

// NewCheckResultBuilder creates a new builder for check results.
func NewCheckResultBuilder(cfg *contract.Config) *CheckResultBuilder {
	keys := slices.Sorted(maps.Keys(cfg.MinScores))
	return &CheckResultBuilder{
		minimums: cfg.MinScores,
		keys:     keys,
		result: &schema.CheckResult{
			Minimums: maps.Clone(cfg.MinScores),
			Failures: []schema.CheckFailure{},
			Missing:  []string{},
		},
	}
}

// AddReport compares every configured minimum against the scores of report.
func (b *CheckResultBuilder) AddReport(report *schema.QualityReport) *CheckResultBuilder {
	b.result.Sources = append(b.result.Sources, report.Source)
	for _, key := range b.keys {
		value, level, ok := report.Score(key)
		if !ok {
			b.result.Missing = append(b.result.Missing, report.Source+":"+key)
			continue
		}
		b.result.Evaluated++
		if minimum := b.minimums[key]; value < minimum {
			b.result.Failures = append(b.result.Failures, schema.CheckFailure{
				Source:  report.Source,
				Key:     key,
				Level:   level,
				Value:   value,
				Minimum: minimum,
			})
		}
	}
	return b
}

// Build finalizes the verdict. Failures are ordered by their distance below the minimum.
func (b *CheckResultBuilder) Build() *schema.CheckResult {
	sort.SliceStable(b.result.Failures, func(i, j int) bool {
		fi, fj := b.result.Failures[i], b.result.Failures[j]
		return fi.Value-fi.Minimum < fj.Value-fj.Minimum
	})
	b.result.Passed = len(b.result.Failures) == 0
	return b.result
}
