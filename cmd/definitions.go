package cmd

import (
	"github.com/spf13/cobra"

	"github.com/measuresoftgram/msgram/core"
	"github.com/measuresoftgram/msgram/internal/contract"
)

// definitionsCmd prints the measure registry.
var definitionsCmd = &cobra.Command{
	Use:   "definitions",
	Short: "List every measure with its metrics and thresholds.",
	Long: `Show the registered measures, the metrics each one needs, where it sits in the
quality model, and the thresholds it would use with the current configuration.

Examples:
  # Show definitions with overrides from .msgram.yaml applied
  msgram definitions

  # Preview an override
  msgram definitions --thresholds-override "test_coverage:70:95"`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDefinitions(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot list definitions", err)
		}
	},
}
