package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/measuresoftgram/msgram/internal/contract"
	"github.com/measuresoftgram/msgram/schema"
)

// historyFixedWidth is the room taken by every history column except the source.
const historyFixedWidth = 70

// PrintHistory outputs stored values, dispatching based on the output format configured.
func PrintHistory(points []schema.HistoryPoint, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if points == nil {
				points = []schema.HistoryPoint{}
			}
			return writeJSON(w, points)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHistoryCSV(w, points, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for history, use 'msgram analysis export'")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHistoryTable(w, points, cfg, fmtFloat)
		}, "Wrote table")
	}
}

// writeHistoryTable generates and writes the human-readable history table.
func writeHistoryTable(w io.Writer, points []schema.HistoryPoint, cfg *contract.Config, fmtFloat func(float64) string) error {
	if len(points) == 0 {
		_, err := fmt.Fprintf(w, "No stored values for %s\n", cfg.HistorySource)
		return err
	}

	label := schema.GetPlainLabel
	if cfg.UseColors {
		label = contract.GetColorLabel
	}
	sourceWidth := GetMaxTableSourceWidth(cfg, historyFixedWidth)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Run", "Recorded", "Source", "Level", "Key", "Value", "Label"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(points))
	for _, p := range points {
		data = append(data, []string{
			strconv.FormatInt(p.RunID, 10),
			p.RecordedAt.Local().Format(contract.DateTimeFormat),
			contract.TruncatePath(p.Source, sourceWidth),
			string(p.Level),
			p.Key,
			fmtFloat(p.Value),
			label(p.Value),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d stored value(s), latest run first\n", len(points))
	return err
}

// writeHistoryCSV writes the stored values in CSV format.
func writeHistoryCSV(w io.Writer, points []schema.HistoryPoint, fmtFloat func(float64) string) error {
	header := []string{"run_id", "run_uuid", "source", "level", "key", "value", "label", "recorded_at"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, p := range points {
			rec := []string{
				strconv.FormatInt(p.RunID, 10),
				p.RunUUID,
				p.Source,
				string(p.Level),
				p.Key,
				fmtFloat(p.Value),
				schema.GetPlainLabel(p.Value),
				p.RecordedAt.UTC().Format(contract.DateTimeFormat),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
