package cli

import (
	"context"
	"time"

	"resumepdf/internal/config"
	"resumepdf/internal/observability"
	"resumepdf/internal/server"

	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP rendering service",
		Long: `Start an HTTP server that renders resumes on request.

Available endpoints:
- POST /render: Render a resume document to PDF
- POST /plan: Show the layout plan for a resume
- POST /validate: Check a resume against the schema
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info
- GET /metrics: Prometheus metrics, when enabled

API keys, TLS, rate limiting and telemetry come from the server, vault and
observability sections of the configuration.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	cmd.Flags().String("host", "", "Host to bind to (default from config)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	if err := config.ApplyVaultSecrets(ctx, cfg, logger); err != nil {
		return err
	}

	renderer, err := newRenderer(cfg, logger)
	if err != nil {
		return err
	}

	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version))
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := om.Shutdown(shutdownCtx); err != nil {
			logger.LogError(err, "Failed to shut down telemetry")
		}
	}()

	srv := server.NewServer(cfg, server.ConfigFromApp(cfg, Version, renderer), logger)
	return srv.Start(ctx, om)
}
