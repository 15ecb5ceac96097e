package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/measuresoftgram/msgram/internal/contract"
	"github.com/measuresoftgram/msgram/internal/outwriter"
	"github.com/measuresoftgram/msgram/schema"
)

// ErrCheckFailed is returned when at least one score is below its minimum.
var ErrCheckFailed = errors.New("quality check failed")

// maxFailuresShown caps the violations listed in text output.
const maxFailuresShown = 5

// ExecuteCheck runs the check command for CI/CD gating.
// It evaluates every input, compares the scores against the configured minimums,
// and returns ErrCheckFailed if any score falls short.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	if len(cfg.MinScores) == 0 {
		return errors.New("check requires minimum scores. Example: msgram check --min-scores maintainability:0.6 sonar.json")
	}

	reports, err := evaluateInputs(ctx, cfg, contract.NewLocalGitClient(), mgr)
	if err != nil {
		return err
	}
	result := CheckReports(cfg, reports)

	if cfg.Output == schema.TextOut {
		printCheckResult(os.Stdout, result, cfg.UseEmojis, time.Since(start))
	} else if err := outwriter.NewOutWriter().WriteCheck(result, cfg, time.Since(start)); err != nil {
		return err
	}

	if !result.Passed {
		return fmt.Errorf("%w: %d violation(s) found", ErrCheckFailed, len(result.Failures))
	}
	return nil
}

// CheckReports compares the reports against cfg.MinScores.
func CheckReports(cfg *contract.Config, reports []*schema.QualityReport) *schema.CheckResult {
	builder := NewCheckResultBuilder(cfg)
	for _, r := range reports {
		builder.AddReport(r)
	}
	return builder.Build()
}

// printCheckResult prints the check result in a concise format suitable for CI/CD.
func printCheckResult(w io.Writer, result *schema.CheckResult, emojis bool, duration time.Duration) {
	_, _ = fmt.Fprintln(w, "Quality Check Results:")
	_, _ = fmt.Fprintf(w, "  Sources:  %d\n", len(result.Sources))
	_, _ = fmt.Fprintf(w, "  Minimums: %s\n", formatMinimums(result.Minimums))
	_, _ = fmt.Fprintf(w, "\nChecked %d scores in %v\n\n", result.Evaluated, duration.Round(time.Millisecond))

	if result.Passed {
		_, _ = fmt.Fprintf(w, "%sAll scores met their minimums\n", verdictPrefix(emojis, "✅ "))
	} else {
		_, _ = fmt.Fprintf(w, "%sQuality check failed: %d violation(s) found\n\n", verdictPrefix(emojis, "❌ "), len(result.Failures))
		for i, f := range result.Failures {
			if i == maxFailuresShown {
				_, _ = fmt.Fprintf(w, "  ... and %d more\n", len(result.Failures)-maxFailuresShown)
				break
			}
			_, _ = fmt.Fprintf(w, "  - %s %s %s (score: %.2f < minimum: %.2f)\n", f.Source, f.Level, f.Key, f.Value, f.Minimum)
		}
	}

	if len(result.Missing) > 0 {
		_, _ = fmt.Fprintf(w, "\n%sNot computed: %d score(s)\n", verdictPrefix(emojis, "⚠️  "), len(result.Missing))
		for _, m := range result.Missing {
			_, _ = fmt.Fprintf(w, "  - %s\n", m)
		}
	}
}

func verdictPrefix(emojis bool, emoji string) string {
	if emojis {
		return emoji
	}
	return ""
}

func formatMinimums(minimums map[string]float64) string {
	parts := make([]string, 0, len(minimums))
	for _, key := range slices.Sorted(maps.Keys(minimums)) {
		parts = append(parts, fmt.Sprintf("%s=%.2f", key, minimums[key]))
	}
	return strings.Join(parts, ", ")
}
