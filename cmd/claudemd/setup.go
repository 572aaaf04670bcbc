package main

import (
	"fmt"

	"github.com/mark3labs/claudemd/internal/config"
	"github.com/spf13/cobra"
)

var setupFlags struct {
	project bool
	force   bool
	storage string
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create claudemd configuration file",
	Long: `Create a claudemd configuration file with sensible defaults.

By default, creates a global config at ~/.config/claudemd/claudemd.yml.
Use --project to create a project-local config in the current directory.`,
	// A broken existing config must not block rewriting it.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE:              runSetup,
}

func init() {
	setupCmd.Flags().BoolVarP(&setupFlags.project, "project", "p", false, "Create config in current directory instead of global location")
	setupCmd.Flags().BoolVarP(&setupFlags.force, "force", "f", false, "Overwrite existing config file")
	setupCmd.Flags().StringVar(&setupFlags.storage, "storage", config.StorageNATS, "Key metadata storage: nats or file")
}

func runSetup(cmd *cobra.Command, args []string) error {
	// Determine target path
	targetPath := config.GlobalPath()
	if setupFlags.project {
		targetPath = config.ProjectPath()
	}

	if !setupFlags.force && fileExists(targetPath) {
		return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", targetPath)
	}

	c := config.Default()
	c.Storage = setupFlags.storage
	if err := c.Validate(); err != nil {
		return err
	}

	var err error
	if setupFlags.project {
		err = config.WriteProject(c)
	} else {
		err = config.WriteGlobal(c)
	}
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Config written to: %s\n\n", targetPath)
	fmt.Println("Run 'claudemd' to start the wizard.")
	return nil
}
