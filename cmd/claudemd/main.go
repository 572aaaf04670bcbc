package main

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/mark3labs/claudemd/internal/logger"
	"github.com/mark3labs/claudemd/internal/tui/theme"
	"github.com/spf13/cobra"
)

const (
	logoText1 = "█▀▀ █   ▄▀█ █ █ █▀▄ █▀▀ █▀▄▀█ █▀▄"
	logoText2 = "█▄▄ █▄▄ █▀█ █▄█ █▄▀ ██▄ █ ▀ █ █▄▀"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "claudemd",
	Short:             "Build a persona-based CLAUDE.md with a guided wizard",
	PersistentPreRunE: loadConfig,
	RunE:              runWizard,
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	// Set Long description with logo
	rootCmd.Long = renderLogo() + `

claudemd walks you through universal principles, expert personas, project
context and activation rules, then asks Claude to write a CLAUDE.md that
ties them together. The API key is held in memory only; a fingerprint and
last-used date are kept in the local state store.

Configuration is loaded from multiple sources with the following precedence:
  Environment variables > Project config > Global config > Defaults

Project config: ./claudemd.yml
Global config: ~/.config/claudemd/claudemd.yml`

	rootCmd.Flags().StringVarP(&wizardFlags.output, "output", "o", "", "Output file (default: from config, CLAUDE.md)")
	rootCmd.Flags().StringVar(&wizardFlags.endpoint, "endpoint", "", "Use a running claudemd server instead of starting one")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(personasCmd)
	rootCmd.AddCommand(scaffoldCmd)
	rootCmd.AddCommand(setupCmd)
}
