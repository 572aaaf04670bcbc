package main

import (
	"fmt"
	"time"

	"github.com/mark3labs/claudemd/internal/apikey"
	"github.com/spf13/cobra"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Inspect, test or clear API key metadata",
	Long: `Inspect, test or clear API key metadata.

The API key itself is never stored. claudemd keeps a fingerprint and the
last-used time so it can tell you a key was set before and whether it has
gone unused for more than 30 days.`,
}

var keyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored key metadata and the security policy",
	RunE: func(cmd *cobra.Command, args []string) error {
		storage, closeStorage, err := openStorage(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStorage()

		keys := apikey.NewManager(storage, nil)
		meta := keys.Metadata()
		if !meta.HasKey {
			fmt.Println("No API key has been set.")
		} else {
			fmt.Printf("Fingerprint: %s\n", meta.KeyHash)
			if meta.LastUsed != nil {
				fmt.Printf("Last set:    %s\n", meta.LastUsed.Local().Format(time.RFC1123))
			}
			if keys.IsAPIKeyExpired() {
				fmt.Println("⚠ Not used for over 30 days, consider rotating it.")
			}
		}

		info := keys.SecurityInfo()
		fmt.Printf("\nStorage: %s\nStored:  %s\n", info.StorageMethod, info.DataStored)
		for _, r := range info.Recommendations {
			fmt.Printf("  • %s\n", r)
		}
		return nil
	},
}

var keyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Verify the key from CLAUDEMD_API_KEY or ANTHROPIC_API_KEY",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		key := envAPIKey()
		if key == "" {
			return fmt.Errorf("no API key found\n\nSet CLAUDEMD_API_KEY or ANTHROPIC_API_KEY")
		}

		storage, closeStorage, err := openStorage(ctx)
		if err != nil {
			return err
		}
		defer closeStorage()

		client, stop, err := startBackend(ctx, cfg.Endpoint)
		if err != nil {
			return err
		}
		defer stop()

		keys := apikey.NewManager(storage, client)
		if err := keys.SetAPIKey(key); err != nil {
			return err
		}
		fmt.Printf("Testing %s...\n", apikey.Mask(key))
		if !keys.TestAPIKey(ctx) {
			return fmt.Errorf("API key test failed")
		}
		fmt.Println("✅ API key is valid")
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove stored key metadata",
	RunE: func(cmd *cobra.Command, args []string) error {
		storage, closeStorage, err := openStorage(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStorage()

		apikey.NewManager(storage, nil).ClearAPIKey()
		fmt.Println("API key metadata cleared.")
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keyStatusCmd)
	keyCmd.AddCommand(keyTestCmd)
	keyCmd.AddCommand(keyClearCmd)
}
