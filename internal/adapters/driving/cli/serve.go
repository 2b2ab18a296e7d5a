package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quizbolt/quizbolt/internal/adapters/driving/httpapi"
)

var (
	serveAddr string
	serveMCP  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the JSON API under /api/v1. Every request names its user in
the X-User-ID header.

Prometheus metrics are exposed on /metrics. With --mcp, the MCP
streamable HTTP transport is mounted on /mcp, acting as --user.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings)")
	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "also serve MCP on /mcp for the current user")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr := serveAddr
	if addr == "" {
		if settingsService == nil {
			return errors.New("settings service not configured")
		}
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		addr = settings.ServerAddr
	}

	svc := httpapi.Services{
		Ingest:  ingestService,
		Library: libraryService,
		Notes:   noteRenderer,
		RAG:     ragService,
		Study:   studyService,
		Metrics: metricsHandler,
	}
	if serveMCP {
		server, err := newMCPServer()
		if err != nil {
			return err
		}
		svc.MCP = server.Handler()
	}

	server, err := httpapi.NewServer(addr, svc)
	if err != nil {
		return err
	}
	cmd.Printf("Serving on %s\n", addr)
	return server.Run(cmd.Context())
}
