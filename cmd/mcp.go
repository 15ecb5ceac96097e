package cmd

import (
	"github.com/spf13/cobra"

	"github.com/measuresoftgram/msgram/internal/contract"
	"github.com/measuresoftgram/msgram/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the msgram MCP server",
	Long:  `Launch an MCP server that allows AI agents to compute and gate quality measures via standard tools.`,
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Headers are suppressed per request so stdio only carries the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, contract.NewLocalGitClient(), cacheManager)
	},
}
