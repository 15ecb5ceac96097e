package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/measuresoftgram/msgram/internal/contract"
	"github.com/measuresoftgram/msgram/internal/parquet"
)

// ExecuteAnalysisExport exports the global analysis store to Parquet files.
func ExecuteAnalysisExport(w io.Writer, outputFile string) error {
	store := Manager.GetAnalysisStore()
	if store == nil {
		return errors.New("analysis store is not initialized")
	}
	return ExportAnalysis(w, store, outputFile)
}

// ExportAnalysis writes all runs and values of store next to outputFile as
// <outputFile>.measure_runs.parquet and <outputFile>.measure_values.parquet.
func ExportAnalysis(w io.Writer, store contract.AnalysisStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total measure runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total measure values: %d\n", status.TableSizes[measureValuesTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve measure runs: %w", err)
	}
	values, err := store.GetAllValues()
	if err != nil {
		return fmt.Errorf("failed to retrieve measure values: %w", err)
	}

	runsFile := outputFile + ".measure_runs.parquet"
	parquetRuns := parquet.ConvertMeasureRunRecords(runs)
	if err := parquet.WriteMeasureRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write measure runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d measure runs to: %s\n", len(parquetRuns), runsFile)

	valuesFile := outputFile + ".measure_values.parquet"
	parquetValues := parquet.ConvertMeasureValueRecords(values)
	if err := parquet.WriteMeasureValuesParquet(parquetValues, valuesFile); err != nil {
		return fmt.Errorf("failed to write measure values: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d measure values to: %s\n", len(parquetValues), valuesFile)

	return nil
}
