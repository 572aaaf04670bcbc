package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/claudemd/internal/apikey"
	"github.com/mark3labs/claudemd/internal/generator"
	"github.com/mark3labs/claudemd/internal/hooks"
	"github.com/mark3labs/claudemd/internal/logger"
	"github.com/mark3labs/claudemd/internal/tui/configwizard"
	"github.com/mark3labs/claudemd/internal/wizard"
	"github.com/spf13/cobra"
)

var wizardFlags struct {
	output   string
	endpoint string
}

func runWizard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	storage, closeStorage, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage()

	endpoint := wizardFlags.endpoint
	if endpoint == "" {
		endpoint = cfg.Endpoint
	}
	client, stop, err := startBackend(ctx, endpoint)
	if err != nil {
		return err
	}
	defer stop()

	keys := apikey.NewManager(storage, client)
	if key := envAPIKey(); key != "" {
		if err := keys.SetAPIKey(key); err != nil {
			logger.Warn("Ignoring API key from environment: %v", err)
		}
	}

	output := wizardFlags.output
	if output == "" {
		output = cfg.Output
	}

	res, err := configwizard.Run(ctx, configwizard.Deps{
		Store:      wizard.NewStore(),
		Keys:       keys,
		Generator:  generator.New(client, keys, generator.WithTemplate(cfg.Template)),
		OutputPath: output,
		HistoryDir: filepath.Join(cfg.DataDir, "history"),
	})
	if errors.Is(err, configwizard.ErrCancelled) {
		fmt.Println("Cancelled, nothing was saved.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("CLAUDE.md written to: %s\n", res.SavedPath)
	if res.HistoryPath != "" {
		fmt.Printf("History copy: %s\n", res.HistoryPath)
	}
	runPostSaveHooks(ctx, hooks.Variables{
		Path:    res.SavedPath,
		History: res.HistoryPath,
		Lines:   res.Lines,
	})
	return nil
}
