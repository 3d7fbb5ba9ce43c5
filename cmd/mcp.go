package cmd

import (
	"github.com/huangsam/tschart/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the tschart MCP server",
	Long: `Launch an MCP server on stdio that allows AI agents to evaluate charts,
evaluate single series functions, reconcile point arrays and validate chart
definitions via standard tools.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		sources, err := buildSources(cfg, storeManager)
		if err != nil {
			return err
		}
		return mcp.StartMCPServer(rootCtx, cfg, sources)
	},
}
