package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rezonia/tally-connector/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for converting invoices.

The API provides endpoints for:
  - POST /api/v1/parse     - Salvage records from raw model output
  - POST /api/v1/convert   - Build Tally vouchers from raw model output
  - POST /api/v1/validate  - Check that records balance
  - POST /api/v1/process   - Extract and convert a base64 invoice image
  - GET  /health           - Health check

Examples:
  # Start server on default port
  tally-connector serve

  # Start on custom address with API key
  tally-connector serve --address :9000 --api-key <key>

  # Start in debug mode
  tally-connector serve --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("address", "", "Server listen address (default :8080)")
	serveCmd.Flags().Bool("debug", false, "Enable debug mode")
	serveCmd.Flags().Duration("read-timeout", 0, "HTTP read timeout (default 30s)")
	serveCmd.Flags().Duration("write-timeout", 0, "HTTP write timeout (default 3m)")
}

func runServe(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("address") {
		cfg.Server.Address, _ = flags.GetString("address")
	}
	if flags.Changed("debug") {
		cfg.Server.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("read-timeout") {
		cfg.Server.ReadTimeout, _ = flags.GetDuration("read-timeout")
	}
	if flags.Changed("write-timeout") {
		cfg.Server.WriteTimeout, _ = flags.GetDuration("write-timeout")
	}

	srv := server.NewServer(&server.Config{
		Address:        cfg.Server.Address,
		APIKey:         cfg.LLM.APIKey,
		LLMBaseURL:     cfg.LLM.BaseURL,
		LLMVisionModel: cfg.LLM.VisionModel,
		LLMTimeout:     cfg.LLM.Timeout,
		LLMMaxTokens:   cfg.LLM.MaxTokens,
		OutputDir:      cfg.Output.Dir,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		Debug:          cfg.Server.Debug,
	}, server.WithLogger(log))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Starting server on %s\n", cfg.Server.Address)
	if cfg.LLM.Enabled() {
		fmt.Fprintln(out, "Vision extraction enabled")
	} else {
		fmt.Fprintln(out, "Vision extraction disabled (no API key)")
	}

	return srv.Run(ctx)
}
