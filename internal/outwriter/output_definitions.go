package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/measuresoftgram/msgram/internal/contract"
	"github.com/measuresoftgram/msgram/schema"
)

// PrintDefinitions displays every registered measure with the thresholds in effect.
// This is a static display that does not read any input.
func PrintDefinitions(defs []schema.MeasureDefinition, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, defs)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDefinitionsCSV(w, defs, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for definitions")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDefinitionsText(w, defs, cfg.UseEmojis, fmtFloat)
		}, "Wrote text")
	}
}

// writeDefinitionsText displays definitions in human-readable text format.
func writeDefinitionsText(w io.Writer, defs []schema.MeasureDefinition, emojis bool, fmtFloat func(float64) string) error {
	title := "Measure Definitions"
	if emojis {
		title = "📏 " + title
	}
	if _, err := fmt.Fprintf(w, "%s\n%s\n\n", title, strings.Repeat("=", len("Measure Definitions")+3)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "All values are normalized to [0, 1]; higher is better."); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	for _, d := range defs {
		lines := []string{
			fmt.Sprintf("%s: %s", d.Key, d.Name),
			"   " + d.Description,
			"   Metrics: " + strings.Join(d.Metrics, ", "),
			fmt.Sprintf("   Feeds: %s > %s", d.Subcharacteristic, d.Characteristic),
			fmt.Sprintf("   Gain: %s", d.Gain),
		}
		if d.Defaults != nil {
			thresholds := "   Thresholds: " + formatThresholds(d.Effective, fmtFloat)
			if d.Effective != nil && *d.Effective != *d.Defaults {
				thresholds += " (default " + formatThresholds(d.Defaults, fmtFloat) + ")"
			}
			lines = append(lines, thresholds)
		}
		if _, err := fmt.Fprintf(w, "%s\n\n", strings.Join(lines, "\n")); err != nil {
			return err
		}
	}
	return nil
}

// writeDefinitionsCSV writes one row per measure.
func writeDefinitionsCSV(w io.Writer, defs []schema.MeasureDefinition, fmtFloat func(float64) string) error {
	header := []string{"key", "name", "metrics", "subcharacteristic", "characteristic", "gain",
		"default_min", "default_max", "min_threshold", "max_threshold"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, d := range defs {
			rec := []string{
				d.Key,
				d.Name,
				strings.Join(d.Metrics, "|"),
				d.Subcharacteristic,
				d.Characteristic,
				d.Gain,
			}
			rec = append(rec, thresholdCells(d.Defaults, fmtFloat)...)
			rec = append(rec, thresholdCells(d.Effective, fmtFloat)...)
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func thresholdCells(th *schema.Thresholds, fmtFloat func(float64) string) []string {
	if th == nil {
		return []string{"", ""}
	}
	return []string{fmtFloat(th.Min), fmtFloat(th.Max)}
}
