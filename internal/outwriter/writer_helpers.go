package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/measuresoftgram/msgram/internal/contract"
	"github.com/measuresoftgram/msgram/schema"
)

// statusWriter receives the "wrote to file" notices so stdout only carries data.
var statusWriter io.Writer = os.Stderr

// writeWithFile opens the output target, hands it to writer and reports where the data went.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		_, _ = fmt.Fprintf(statusWriter, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON encodes data with the indentation used by every JSON output.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader writes header and then lets writeRows fill the body.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	return writeRows(csvWriter)
}

// createFormatter returns a float formatter honoring the configured precision.
func createFormatter(precision int) func(float64) string {
	return func(v float64) string {
		return fmt.Sprintf("%.*f", precision, v)
	}
}

// formatThresholds renders a threshold pair, or "-" when the value has none.
func formatThresholds(th *schema.Thresholds, fmtFloat func(float64) string) string {
	if th == nil {
		return "-"
	}
	return fmt.Sprintf("[%s, %s]", fmtFloat(th.Min), fmtFloat(th.Max))
}

// formatOptional renders a nullable float for CSV cells.
func formatOptional(v *float64, fmtFloat func(float64) string) string {
	if v == nil {
		return ""
	}
	return fmtFloat(*v)
}

// formatWeights renders a weight map as a formula such as "0.50*passed_tests+0.50*test_coverage".
func formatWeights(weights map[string]float64) string {
	var parts []string
	for _, key := range slices.Sorted(maps.Keys(weights)) {
		if w := weights[key]; w > 0 {
			parts = append(parts, fmt.Sprintf("%.2f*%s", w, key))
		}
	}
	return strings.Join(parts, "+")
}
