package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deckmend/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can repair
and score presentation packages.

By default, the server communicates over stdio using JSON-RPC. Use --port
to start an HTTP server instead.

Tools:
  repair_package   repair a base64 package or a file path
  score_package    score a base64 package or a file path

Resources:
  deckmend://reports             recent repair reports
  deckmend://reports/{reportId}  one repair report

Examples:
  # Stdio mode (default)
  deckmend mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  deckmend mcp serve --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Repair:  repairService,
		Quality: qualityService,
		Reports: reportService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
