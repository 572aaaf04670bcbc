package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/claudemd/internal/template"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var scaffoldFlags struct {
	input  string
	output string
	force  bool
}

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold",
	Short: "Write a plain CLAUDE.md from a project description, no API key needed",
	Long: `Write a plain CLAUDE.md from a project description, no API key needed.

The input YAML describes the project: project_name, project_description,
tech_stack, commands, code_style.rules, project_structure, custom_sections
and restrictions. Empty sections are left out. Without --output the
document is printed.`,
	RunE: runScaffold,
}

func init() {
	scaffoldCmd.Flags().StringVarP(&scaffoldFlags.input, "input", "i", "", "Project YAML file (required)")
	scaffoldCmd.Flags().StringVarP(&scaffoldFlags.output, "output", "o", "", "Output file (default: stdout)")
	scaffoldCmd.Flags().BoolVarP(&scaffoldFlags.force, "force", "f", false, "Overwrite an existing output file")
	_ = scaffoldCmd.MarkFlagRequired("input")
}

func runScaffold(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(scaffoldFlags.input)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	var project template.ProjectConfig
	if err := yaml.Unmarshal(data, &project); err != nil {
		return fmt.Errorf("failed to parse %s: %w", scaffoldFlags.input, err)
	}
	if project.ProjectName == "" {
		return fmt.Errorf("project_name is required")
	}

	content := template.Scaffold(project)
	if scaffoldFlags.output == "" {
		fmt.Println(content)
		return nil
	}

	if !scaffoldFlags.force && fileExists(scaffoldFlags.output) {
		return fmt.Errorf("%s already exists\n\nUse --force to overwrite", scaffoldFlags.output)
	}
	if err := os.WriteFile(scaffoldFlags.output, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", scaffoldFlags.output, err)
	}
	fmt.Printf("Scaffold written to: %s\n", scaffoldFlags.output)
	return nil
}
