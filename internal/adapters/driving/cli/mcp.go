package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quizbolt/quizbolt/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask
questions about, retrieve from and study your documents.

By default, the server communicates over stdio using JSON-RPC. All tool
calls act as the user given by --user (or user.id in the config file).

Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default, for desktop assistants)
  quizbolt mcp serve --user alice

  # HTTP mode (for MCP Inspector, remote access)
  quizbolt mcp serve --port 8090

Desktop assistant configuration:
  {
    "mcpServers": {
      "quizbolt": {
        "command": "/path/to/quizbolt",
        "args": ["mcp", "serve", "--user", "alice"]
      }
    }
  }`,
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

	server, err := newMCPServer()
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

// newMCPServer builds an MCP server acting for the current user.
func newMCPServer() (*mcp.Server, error) {
	owner, err := currentOwner()
	if err != nil {
		return nil, err
	}
	return mcp.NewServer(&mcp.Ports{
		Owner:   owner,
		RAG:     ragService,
		Ingest:  ingestService,
		Library: libraryService,
		Study:   studyService,
	})
}
