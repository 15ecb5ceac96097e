package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/measuresoftgram/msgram/internal/contract"
	"github.com/measuresoftgram/msgram/internal/parquet"
	"github.com/measuresoftgram/msgram/schema"
)

// reportFixedWidth is the room taken by every report column except the source header.
const reportFixedWidth = 30

// PrintReports outputs the quality reports, dispatching based on the output format configured.
func PrintReports(reports []*schema.QualityReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportsJSON(w, reports)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportsCSV(w, reports, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeReportsParquet(reports, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportsText(w, reports, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// writeReportsText renders one table per report followed by a run summary.
func writeReportsText(w io.Writer, reports []*schema.QualityReport, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	label := schema.GetPlainLabel
	if cfg.UseColors {
		label = contract.GetColorLabel
	}
	sourceWidth := GetMaxTableSourceWidth(cfg, reportFixedWidth)

	for i, r := range reports {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := writeReportHeader(w, r, cfg.UseEmojis, sourceWidth); err != nil {
			return err
		}

		table := tablewriter.NewWriter(w)
		table.Header([]string{"Level", "Key", "Value", "Label", "Thresholds", "Detail"})
		table.Configure(func(c *tablewriter.Config) {
			c.Row.Alignment.Global = tw.AlignLeft
		})

		var data [][]string
		for _, m := range r.Measures {
			detail := m.Subcharacteristic
			if m.Mode != "" {
				detail += " (" + m.Mode + ")"
			}
			data = append(data, []string{
				string(schema.MeasureLevel),
				m.Key,
				fmtFloat(m.Value),
				label(m.Value),
				formatThresholds(m.Thresholds, fmtFloat),
				detail,
			})
		}
		for _, scores := range [][]schema.QualityScore{r.Subcharacteristics, r.Characteristics} {
			for _, s := range scores {
				data = append(data, []string{
					string(s.Level),
					s.Key,
					fmtFloat(s.Value),
					label(s.Value),
					"-",
					formatWeights(s.Weights),
				})
			}
		}

		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}

		for _, s := range r.Skipped {
			if _, err := fmt.Fprintf(w, "Skipped %s: %s\n", s.Key, s.Reason); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintf(w, "Evaluated %d source(s) in %v with %d workers. Cache backend: %s\n",
		len(reports), duration.Round(time.Millisecond), cfg.Workers, cacheBackendName(cfg))
	return err
}

// writeReportHeader prints the source line above a report table.
func writeReportHeader(w io.Writer, r *schema.QualityReport, emojis bool, sourceWidth int) error {
	var details []string
	details = append(details, strconv.Itoa(r.Files)+" files")
	if r.Cached {
		details = append(details, "cached")
	}
	if r.RunID != "" {
		details = append(details, "run "+r.RunID)
	}

	prefix := "Source:"
	if emojis {
		prefix = "📄 Source:"
	}
	_, err := fmt.Fprintf(w, "%s %s (%s)\n", prefix, contract.TruncatePath(r.Source, sourceWidth), strings.Join(details, ", "))
	return err
}

// writeReportsCSV writes one row per value, the same layout as the Parquet export.
func writeReportsCSV(w io.Writer, reports []*schema.QualityReport, fmtFloat func(float64) string) error {
	header := []string{"source", "level", "key", "name", "value", "label", "min_threshold", "max_threshold", "files"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range reports {
			for _, row := range parquet.ConvertReport(r) {
				rec := []string{
					row.Source,
					row.Level,
					row.Key,
					row.Name,
					fmtFloat(row.Value),
					row.Label,
					formatOptional(row.MinThreshold, fmtFloat),
					formatOptional(row.MaxThreshold, fmtFloat),
					strconv.Itoa(int(row.Files)),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// writeReportsJSON writes the labeled reports as a JSON array.
func writeReportsJSON(w io.Writer, reports []*schema.QualityReport) error {
	output := make([]schema.EnrichedQualityReport, len(reports))
	for i, r := range reports {
		output[i] = schema.EnrichReport(r)
	}
	return writeJSON(w, output)
}

// writeReportsParquet writes every report value to a single Parquet file.
func writeReportsParquet(reports []*schema.QualityReport, outputFile string) error {
	if outputFile == "" {
		return errors.New("parquet output requires --output-file")
	}
	var rows []parquet.ReportRow
	for _, r := range reports {
		rows = append(rows, parquet.ConvertReport(r)...)
	}
	if err := parquet.WriteReportRowsParquet(rows, outputFile); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(statusWriter, "💾 Wrote Parquet to %s\n", outputFile)
	return nil
}

func cacheBackendName(cfg *contract.Config) schema.DatabaseBackend {
	if cfg.NoCache || cfg.CacheBackend == "" {
		return schema.NoneBackend
	}
	return cfg.CacheBackend
}
