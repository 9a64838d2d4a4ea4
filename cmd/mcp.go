package cmd

import (
	"github.com/burstline/burstline/internal/iocache"
	"github.com/burstline/burstline/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Burstline MCP server",
	Long:  `Launch an MCP server that allows AI agents to run burst detection via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// All diagnostic logging goes to stderr already, keeping stdio
		// clean for the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, iocache.Manager)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
