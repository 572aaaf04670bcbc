package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/claudemd/internal/generator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a CLAUDE.md for length and expected sections",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	v := generator.ValidateGeneratedContent(string(data))
	fmt.Printf("%s: %d lines\n", args[0], v.LineCount)
	if v.IsValid {
		fmt.Println("✓ Looks complete")
		return nil
	}
	for _, w := range v.Warnings {
		fmt.Printf("⚠ %s\n", w)
	}
	return fmt.Errorf("%d validation warning(s)", len(v.Warnings))
}
