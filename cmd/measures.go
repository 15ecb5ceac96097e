package cmd

import (
	"github.com/spf13/cobra"

	"github.com/measuresoftgram/msgram/core"
	"github.com/measuresoftgram/msgram/internal/contract"
)

// measuresCmd evaluates metric tables into quality measures.
var measuresCmd = &cobra.Command{
	Use:   "measures <input>...",
	Short: "Compute quality measures and their roll-ups for metric tables.",
	Long: `Interpret per-file metric tables as normalized quality measures.

Every measure is a value in [0, 1] where higher is better. Measures feed
subcharacteristics (testing_status, modifiability, issues_velocity), which in turn
feed characteristics (reliability, maintainability, productivity).

Measures whose metrics are absent from a table are skipped unless they were
requested explicitly with --measures, in which case the run fails.

Examples:
  # Evaluate a SonarQube component tree export
  msgram measures sonar.json

  # Only the testing measures, with a stricter coverage window
  msgram measures --measures passed_tests,test_coverage --thresholds-override "test_coverage:70:95" sonar.json

  # Use the median complexity interpretation
  msgram measures --complexity-mode median metrics.csv

  # Export every value to Parquet for a dashboard
  msgram measures --output parquet --output-file report.parquet sonar.json other.yaml`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMeasures(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot compute measures", err)
		}
	},
}
