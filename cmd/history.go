package cmd

import (
	"github.com/spf13/cobra"

	"github.com/measuresoftgram/msgram/core"
	"github.com/measuresoftgram/msgram/internal/contract"
)

// historyCmd lists tracked values of a source.
var historyCmd = &cobra.Command{
	Use:   "history <source>",
	Short: "Show stored measure values of a metric table over time.",
	Long: `List the values recorded by previous runs for one source, latest run first.

Requires an analysis backend. Runs are only tracked while --analysis-backend is set.

Examples:
  # Every stored value of a source
  msgram history --analysis-backend sqlite sonar.json

  # How maintainability moved over the last month
  msgram history --analysis-backend sqlite --key maintainability --since "30 days ago" sonar.json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteHistory(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot show history", err)
		}
	},
}
