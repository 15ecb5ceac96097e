package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/measuresoftgram/msgram/internal/contract"
	"github.com/measuresoftgram/msgram/schema"
)

// PrintCheck writes a check verdict as JSON or CSV. Text verdicts are printed by the caller.
func PrintCheck(result *schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, struct {
				*schema.CheckResult
				DurationMs int64 `json:"duration_ms"`
			}{result, duration.Milliseconds()})
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCheckCSV(w, result, fmtFloat)
		}, "Wrote CSV")
	default:
		return fmt.Errorf("unsupported output format for check: %s", cfg.Output)
	}
}

// writeCheckCSV writes one row per failure and one per score that could not be computed.
func writeCheckCSV(w io.Writer, result *schema.CheckResult, fmtFloat func(float64) string) error {
	header := []string{"status", "source", "level", "key", "value", "minimum"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, f := range result.Failures {
			rec := []string{"failed", f.Source, string(f.Level), f.Key, fmtFloat(f.Value), fmtFloat(f.Minimum)}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		for _, m := range result.Missing {
			if err := cw.Write([]string{"missing", "", "", m, "", ""}); err != nil {
				return err
			}
		}
		return nil
	})
}
