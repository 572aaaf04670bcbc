package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/claudemd/internal/apikey"
	"github.com/mark3labs/claudemd/internal/logger"
	"github.com/mark3labs/claudemd/internal/mcpserver"
	"github.com/spf13/cobra"
)

var serveFlags struct {
	addr string
	mcp  bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the claudemd HTTP API",
	Long: `Run the claudemd HTTP API.

Endpoints:
  GET  /health
  POST /api/generate-claude-md
  POST /api/test-key
  POST /api/generate-persona

Every request carries its own API key. With --mcp the build-prompt,
validate-claude-md and generate-claude-md tools are also served at /mcp;
generate-claude-md falls back to CLAUDEMD_API_KEY or ANTHROPIC_API_KEY
when the caller passes no key.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "Listen address (default: from config, 127.0.0.1:8787)")
	serveCmd.Flags().BoolVar(&serveFlags.mcp, "mcp", false, "Also serve MCP tools at /mcp")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := newAPIServer()

	if serveFlags.mcp {
		storage, closeStorage, err := openStorage(ctx)
		if err != nil {
			return err
		}
		defer closeStorage()

		keys := apikey.NewManager(storage, nil)
		if key := envAPIKey(); key != "" {
			if err := keys.SetAPIKey(key); err != nil {
				return fmt.Errorf("API key from environment: %w", err)
			}
		}
		tools := mcpserver.New(srv, mcpserver.WithKeySource(keys), mcpserver.WithTemplate(cfg.Template))
		srv.Mount("/mcp", tools.Handler())
	}

	addr := serveFlags.addr
	if addr == "" {
		addr = cfg.ServerAddr
	}
	port, err := srv.Start(ctx, addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	fmt.Printf("claudemd API listening on %s (port %d)\n", addr, port)
	if serveFlags.mcp {
		fmt.Println("MCP tools served at /mcp")
	}

	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")
	logger.Info("Shutting down API server")
	return srv.Stop()
}
