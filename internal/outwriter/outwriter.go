// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/measuresoftgram/msgram/internal/contract"
	"github.com/measuresoftgram/msgram/schema"
)

// OutWriter provides a unified interface for all output operations.
// It dispatches on cfg.Output and cfg.OutputFile so the core logic never formats anything itself.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteReports prints quality reports using the configured output format.
func (ow *OutWriter) WriteReports(reports []*schema.QualityReport, cfg *contract.Config, duration time.Duration) error {
	return PrintReports(reports, cfg, duration)
}

// WriteDefinitions prints the measure definitions using the configured output format.
func (ow *OutWriter) WriteDefinitions(defs []schema.MeasureDefinition, cfg *contract.Config) error {
	return PrintDefinitions(defs, cfg)
}

// WriteHistory prints stored measure values using the configured output format.
func (ow *OutWriter) WriteHistory(points []schema.HistoryPoint, cfg *contract.Config) error {
	return PrintHistory(points, cfg)
}

// WriteCheck prints a check verdict in a machine-readable format.
func (ow *OutWriter) WriteCheck(result *schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	return PrintCheck(result, cfg, duration)
}
