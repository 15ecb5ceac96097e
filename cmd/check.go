package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/measuresoftgram/msgram/core"
	"github.com/measuresoftgram/msgram/internal/contract"
)

// checkCmd focused on CI/CD policy enforcement.
var checkCmd = &cobra.Command{
	Use:   "check <input>...",
	Short: "Enforce minimum quality scores for CI/CD pipelines (fails build on violations)",
	Long: `Evaluate metric tables and compare scores against configured minimums.

Designed for CI/CD integration - exits with a non-zero code when any measure,
subcharacteristic or characteristic is below its minimum. Scores that could not
be computed are listed but do not fail the check.

Minimums come from --min-scores or the 'minimums' section of .msgram.yaml.

Examples:
  # Gate a pull request on maintainability
  msgram check --min-scores maintainability:0.6 sonar.json

  # Several minimums, mixing levels
  msgram check --min-scores "reliability:0.7,test_coverage:0.5" sonar.json

  # Machine-readable verdict
  msgram check --min-scores reliability:0.7 --output json sonar.json`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		err := core.ExecuteCheck(rootCtx, cfg, cacheManager)
		if errors.Is(err, core.ErrCheckFailed) {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err != nil {
			contract.LogFatal("Quality check failed", err)
		}
	},
}
