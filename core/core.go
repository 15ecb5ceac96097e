// Package core has core logic for evaluating, gating and tracking quality measures.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/measuresoftgram/msgram/core/measure"
	"github.com/measuresoftgram/msgram/core/model"
	"github.com/measuresoftgram/msgram/internal/contract"
	"github.com/measuresoftgram/msgram/internal/outwriter"
	"github.com/measuresoftgram/msgram/schema"
)

// ExecutorFunc defines the function signature for executing the different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteMeasures evaluates every input and prints the reports.
// It serves as the main entry point for the 'measures' command.
func ExecuteMeasures(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	reports, err := evaluateInputs(ctx, cfg, contract.NewLocalGitClient(), mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteReports(reports, cfg, time.Since(start))
}

// ExecuteDefinitions prints the measure registry with the thresholds the
// current configuration would use.
func ExecuteDefinitions(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	return outwriter.NewOutWriter().WriteDefinitions(BuildDefinitions(cfg), cfg)
}

// ExecuteHistory lists stored values of a source, latest run first.
func ExecuteHistory(_ context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	points, err := GetHistory(cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteHistory(points, cfg)
}

// GetHistory queries the analysis store for the history settings of cfg.
func GetHistory(cfg *contract.Config, mgr contract.CacheManager) ([]schema.HistoryPoint, error) {
	store := mgr.GetAnalysisStore()
	if store == nil {
		return nil, errors.New("history requires an analysis backend. Use --analysis-backend sqlite")
	}
	if cfg.HistorySource == "" {
		return nil, errors.New("a source is required. Example: msgram history sonar.json")
	}
	points, err := store.GetHistory(cfg.HistorySource, cfg.HistoryKey, cfg.Since, cfg.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for %s: %w", cfg.HistorySource, err)
	}
	return points, nil
}

// BuildDefinitions describes every registered measure under cfg.
func BuildDefinitions(cfg *contract.Config) []schema.MeasureDefinition {
	defs := measure.Definitions()
	out := make([]schema.MeasureDefinition, 0, len(defs))
	for _, def := range defs {
		metrics := make([]string, 0, len(def.Rules))
		for _, key := range def.RequiredMetrics() {
			metrics = append(metrics, string(key))
		}
		md := schema.MeasureDefinition{
			Key:         def.Key.String(),
			Name:        def.Name,
			Description: def.Description,
			Metrics:     metrics,
			Gain:        def.Gain.String(),
		}
		if sub, ok := model.SubcharacteristicOf(def.Key); ok {
			md.Subcharacteristic = sub.Key
			md.Characteristic = sub.Characteristic
		}
		if def.HasThresholds {
			defaults := def.Defaults
			md.Defaults = &defaults
			if effective, ok := def.Effective(cfg.MeasureOptions(def.Key)); ok {
				md.Effective = &effective
			}
		}
		out = append(out, md)
	}
	return out
}

// evaluateInputs computes the report of every input concurrently, bounded by cfg.Workers.
// Reports keep the order of cfg.Inputs.
func evaluateInputs(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) ([]*schema.QualityReport, error) {
	if len(cfg.Inputs) == 0 {
		return nil, errors.New("at least one input file is required")
	}
	if !shouldSuppressHeader(ctx) {
		logAnalysisHeader(os.Stderr, cfg)
	}

	reports := make([]*schema.QualityReport, len(cfg.Inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for i, path := range cfg.Inputs {
		g.Go(func() error {
			report, err := GetMeasureResults(gctx, cfg, client, mgr, path)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
