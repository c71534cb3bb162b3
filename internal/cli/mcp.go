// internal/cli/mcp.go
package grounded

import (
	"github.com/spf13/cobra"

	"github.com/mwiater/grounded/internal/mcpserver"
)

var serveMCP = mcpserver.ServeStdio

// mcpCmd serves the retrieval tools to MCP clients over stdio.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve search and rag_answer as MCP tools over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		pipeline, err := newPipeline(cfg)
		if err != nil {
			return err
		}
		return serveMCP(mcpserver.New(pipeline, cfg.TopK, appVersion))
	},
}

func init() {
	addQueryFlags(mcpCmd, "")
	rootCmd.AddCommand(mcpCmd)
}
