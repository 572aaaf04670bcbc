package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/claudemd/internal/anthropic"
	"github.com/mark3labs/claudemd/internal/config"
	"github.com/mark3labs/claudemd/internal/gateway"
	"github.com/mark3labs/claudemd/internal/hooks"
	"github.com/mark3labs/claudemd/internal/logger"
	"github.com/mark3labs/claudemd/internal/nats"
	"github.com/mark3labs/claudemd/internal/server"
	"github.com/mark3labs/claudemd/internal/state"
	"github.com/spf13/cobra"
)

// cfg is loaded once per invocation by loadConfig.
var cfg *config.Config

// loadConfig loads configuration and applies the logging settings.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Configure(c.LogLevel, c.LogFile); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	cfg = c
	return nil
}

// openStorage opens the API key metadata store selected by cfg.Storage.
// The returned func releases it.
func openStorage(ctx context.Context) (state.Storage, func(), error) {
	if cfg.Storage == config.StorageFile {
		return state.NewFileStorage(cfg.DataDir), func() {}, nil
	}

	kv, err := nats.OpenKVStorage(ctx, filepath.Join(cfg.DataDir, "nats"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open state store: %w", err)
	}
	closeFn := func() {
		if err := kv.Close(); err != nil {
			logger.Warn("Failed to close state store: %v", err)
		}
	}
	return kv, closeFn, nil
}

// newAPIServer builds the HTTP API around the configured upstream.
func newAPIServer() *server.Server {
	upstream := anthropic.NewClient(cfg.AnthropicBaseURL)
	return server.New(upstream, server.Options{Model: cfg.Model, MaxTokens: cfg.MaxTokens})
}

// startBackend returns a gateway client for endpoint. With no endpoint it
// starts a local API server on a loopback port; the returned func stops it.
func startBackend(ctx context.Context, endpoint string) (*gateway.Client, func(), error) {
	if endpoint != "" {
		logger.Info("Using claudemd server at %s", endpoint)
		return gateway.New(endpoint), func() {}, nil
	}

	srv := newAPIServer()
	port, err := srv.Start(ctx, "127.0.0.1:0")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start local API server: %w", err)
	}
	logger.Debug("Local API server on port %d", port)

	stop := func() {
		if err := srv.Stop(); err != nil {
			logger.Warn("Failed to stop local API server: %v", err)
		}
	}
	return gateway.New(srv.URL()), stop, nil
}

// envAPIKey returns the key from CLAUDEMD_API_KEY or ANTHROPIC_API_KEY.
func envAPIKey() string {
	if key := os.Getenv("CLAUDEMD_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("ANTHROPIC_API_KEY")
}

// runPostSaveHooks runs the post_save hooks from .claudemd.hooks.yml in
// the working directory and prints their output.
func runPostSaveHooks(ctx context.Context, vars hooks.Variables) {
	out, err := hooks.RunPostSave(ctx, ".", vars)
	if err != nil {
		fmt.Fprintf(os.Stderr, "post_save hooks: %v\n", err)
		return
	}
	if out != "" {
		fmt.Print(out)
	}
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
