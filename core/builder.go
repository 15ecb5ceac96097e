package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/measuresoftgram/msgram/core/measure"
	"github.com/measuresoftgram/msgram/core/model"
	"github.com/measuresoftgram/msgram/internal/contract"
	"github.com/measuresoftgram/msgram/schema"
)

// ReportBuilder builds a quality report from one metric table.
type ReportBuilder struct {
	cfg    *contract.Config
	source string
	table  *schema.MetricTable
	report *schema.QualityReport
	err    error
}

// NewReportBuilder is the starting point for building a quality report.
func NewReportBuilder(cfg *contract.Config, source string, table *schema.MetricTable) *ReportBuilder {
	return &ReportBuilder{
		cfg:    cfg,
		source: source,
		table:  table,
		report: &schema.QualityReport{
			Source:       source,
			Files:        table.Len(),
			AnalysisTime: time.Now(),
		},
	}
}

// EvaluateMeasures computes every configured measure over the table.
// Measures that were requested explicitly must succeed; the others are
// skipped when the table lacks their metrics or holds invalid values.
func (b *ReportBuilder) EvaluateMeasures() *ReportBuilder {
	if b.err != nil {
		return b
	}

	for _, k := range b.cfg.Measures {
		def := measure.Get(k)
		if !b.cfg.ExplicitMeasures && !def.Supports(b.table) {
			b.report.Skipped = append(b.report.Skipped, schema.SkippedMeasure{
				Key:    k.String(),
				Reason: "missing metrics: " + missingMetrics(def, b.table),
			})
			continue
		}

		result, err := measure.Evaluate(k, b.table, b.cfg.MeasureOptions(k))
		if err != nil {
			if b.cfg.ExplicitMeasures {
				b.err = fmt.Errorf("measure %s failed for %s: %w", k, b.source, err)
				return b
			}
			b.report.Skipped = append(b.report.Skipped, schema.SkippedMeasure{Key: k.String(), Reason: err.Error()})
			continue
		}
		if sub, ok := model.SubcharacteristicOf(k); ok {
			result.Subcharacteristic = sub.Key
		}
		b.report.Measures = append(b.report.Measures, result)
	}

	if len(b.report.Measures) == 0 {
		b.err = fmt.Errorf("no measure could be computed for %s", b.source)
	}
	return b
}

// Aggregate rolls the measures up into subcharacteristics and characteristics.
func (b *ReportBuilder) Aggregate() *ReportBuilder {
	if b.err != nil {
		return b
	}
	b.report.Subcharacteristics, b.report.Characteristics = model.Evaluate(
		b.report.Measures, b.cfg.MeasureWeights, b.cfg.CharacteristicWeights)
	return b
}

// Build returns the final report or the first error met along the way.
func (b *ReportBuilder) Build() (*schema.QualityReport, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.report, nil
}

func missingMetrics(def measure.Definition, table *schema.MetricTable) string {
	var missing []string
	for _, key := range def.RequiredMetrics() {
		if !table.HasColumn(key) {
			missing = append(missing, string(key))
		}
	}
	return strings.Join(missing, ", ")
}
