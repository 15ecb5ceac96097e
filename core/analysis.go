package core

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/measuresoftgram/msgram/internal/contract"
	"github.com/measuresoftgram/msgram/internal/loader"
	"github.com/measuresoftgram/msgram/schema"
)

// GetMeasureResults loads one metric table and returns its quality report.
// It is shared by the CLI commands and the MCP server.
func GetMeasureResults(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager, path string) (*schema.QualityReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// --- 1. Load and filter ---
	input, err := loader.Load(path, cfg.InputFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	table := loader.Filter(input.Table, cfg.Excludes)
	if table.Len() == 0 {
		return nil, fmt.Errorf("no files left in %s after applying excludes", path)
	}

	// --- 2. Begin run tracking (if configured) ---
	start := time.Now()
	ctx, runUUID := beginRun(ctx, cfg, client, mgr, path, start)

	// --- 3. Cached report or fresh evaluation ---
	var reportStore contract.CacheStore
	if !cfg.NoCache {
		reportStore = mgr.GetReportStore()
	}
	key := generateCacheKey(cfg, input.Data)

	report := cachedReport(reportStore, key)
	if report == nil {
		report, err = NewReportBuilder(cfg, path, table).
			EvaluateMeasures().
			Aggregate().
			Build()
		if err != nil {
			return nil, err
		}
		storeReport(reportStore, key, report)
	}
	report.Source = path
	report.RunID = runUUID

	// --- 4. Record values and end run tracking ---
	recordRun(ctx, mgr, report, time.Now())
	return report, nil
}

// beginRun opens an analysis run for source. Tracking failures never stop the evaluation.
func beginRun(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager, source string, start time.Time) (context.Context, string) {
	store := mgr.GetAnalysisStore()
	if store == nil {
		return ctx, ""
	}

	configParams := map[string]any{
		"measures":        measureNames(cfg),
		"complexity_mode": string(cfg.ComplexityMode),
		"input_format":    string(cfg.InputFormat),
		"excludes":        cfg.Excludes,
		"thresholds":      cfg.Thresholds,
	}
	if cfg.Revision && client != nil {
		if revision, committed, err := resolveRevision(ctx, client, source); err != nil {
			contract.LogWarn("Failed to resolve input revision", err)
		} else {
			configParams["revision"] = revision
			configParams["revision_time"] = committed.UTC().Format(contract.DateTimeFormat)
		}
	}

	runID, runUUID, err := store.BeginRun(source, start, configParams)
	if err != nil {
		contract.LogWarn("Analysis tracking initialization failed", err)
		return ctx, ""
	}
	if runID > 0 {
		ctx = withRunID(ctx, runID)
	}
	return ctx, runUUID
}

// recordRun stores every value of report under the run held by ctx and closes the run.
func recordRun(ctx context.Context, mgr contract.CacheManager, report *schema.QualityReport, end time.Time) {
	runID, ok := getRunID(ctx)
	if !ok || runID <= 0 {
		return
	}
	store := mgr.GetAnalysisStore()
	if store == nil {
		return
	}

	for _, record := range valueRecords(runID, report, end) {
		if err := store.RecordValue(runID, record); err != nil {
			logTrackingError("RecordValue", record.Key, err)
		}
	}
	if err := store.EndRun(runID, end, report.Files); err != nil {
		contract.LogWarn("Failed to finalize analysis tracking", err)
	}
}

// valueRecords flattens a report into stored values, measures first.
func valueRecords(runID int64, report *schema.QualityReport, at time.Time) []schema.MeasureValueRecord {
	records := make([]schema.MeasureValueRecord, 0,
		len(report.Measures)+len(report.Subcharacteristics)+len(report.Characteristics))
	for _, m := range report.Measures {
		record := schema.MeasureValueRecord{
			RunID:      runID,
			Level:      schema.MeasureLevel,
			Key:        m.Key,
			Value:      m.Value,
			RecordedAt: at,
		}
		if m.Thresholds != nil {
			minValue, maxValue := m.Thresholds.Min, m.Thresholds.Max
			record.MinThreshold = &minValue
			record.MaxThreshold = &maxValue
		}
		records = append(records, record)
	}
	for _, group := range [][]schema.QualityScore{report.Subcharacteristics, report.Characteristics} {
		for _, s := range group {
			records = append(records, schema.MeasureValueRecord{
				RunID:      runID,
				Level:      s.Level,
				Key:        s.Key,
				Value:      s.Value,
				RecordedAt: at,
			})
		}
	}
	return records
}

// resolveRevision returns the HEAD commit of the repository holding source and its commit time.
func resolveRevision(ctx context.Context, client contract.GitClient, source string) (string, time.Time, error) {
	abs, err := filepath.Abs(source)
	if err != nil {
		return "", time.Time{}, err
	}
	root, err := client.GetRepoRoot(ctx, filepath.Dir(abs))
	if err != nil {
		return "", time.Time{}, err
	}
	hash, err := client.GetRepoHash(ctx, root)
	if err != nil {
		return "", time.Time{}, err
	}
	committed, err := client.GetCommitTime(ctx, root, hash)
	if err != nil {
		return "", time.Time{}, err
	}
	return hash, committed, nil
}

func measureNames(cfg *contract.Config) []string {
	names := make([]string, len(cfg.Measures))
	for i, k := range cfg.Measures {
		names[i] = k.String()
	}
	return names
}

// logTrackingError logs database tracking errors to stderr without disrupting analysis.
func logTrackingError(operation, key string, err error) {
	contract.LogWarn(fmt.Sprintf("Analysis tracking failed for %s on %s", operation, key), err)
}
