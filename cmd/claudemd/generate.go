package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/claudemd/internal/apikey"
	"github.com/mark3labs/claudemd/internal/generator"
	"github.com/mark3labs/claudemd/internal/hooks"
	"github.com/mark3labs/claudemd/internal/logger"
	"github.com/mark3labs/claudemd/internal/template"
	"github.com/mark3labs/claudemd/internal/wizard"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var generateFlags struct {
	input       string
	output      string
	diff        bool
	printPrompt bool
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate CLAUDE.md from a YAML answers file",
	Long: `Generate CLAUDE.md without the wizard.

The input file holds the wizard answers:

  universal_principles: |
    - Prefer clarity over cleverness
  personas:
    - name: Architect
      role: Owns system design
      expertise_level: senior
  project_context: A Go CLI for ...
  activation_rules: |
    - @architect for design questions

The API key is read from CLAUDEMD_API_KEY or ANTHROPIC_API_KEY.
Use --output - to print the document instead of writing it.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateFlags.input, "input", "i", "", "YAML answers file (required)")
	generateCmd.Flags().StringVarP(&generateFlags.output, "output", "o", "", "Output file, - for stdout (default: from config, CLAUDE.md)")
	generateCmd.Flags().BoolVar(&generateFlags.diff, "diff", false, "Show a diff against the existing output file")
	generateCmd.Flags().BoolVar(&generateFlags.printPrompt, "print-prompt", false, "Print the generation prompt and exit")
	_ = generateCmd.MarkFlagRequired("input")
}

// loadAnswers reads a wizard state from a YAML file and checks every step.
func loadAnswers(path string) (*wizard.Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	var st wizard.State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	store := wizard.NewStoreFrom(st)

	var msgs []string
	for step := range wizard.Steps {
		res := store.Validate(step)
		for i := range res.Errors {
			msgs = append(msgs, wizard.Steps[step].Title+": "+res.Errors[i].Error())
		}
	}
	if len(msgs) > 0 {
		return nil, fmt.Errorf("input is incomplete:\n  %s", strings.Join(msgs, "\n  "))
	}
	return store, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := loadAnswers(generateFlags.input)
	if err != nil {
		return err
	}

	if generateFlags.printPrompt {
		prompt, err := template.BuildPrompt(store.Get(), cfg.Template)
		if err != nil {
			return fmt.Errorf("failed to build prompt: %w", err)
		}
		fmt.Println(prompt)
		return nil
	}

	key := envAPIKey()
	if key == "" {
		return fmt.Errorf("no API key found\n\nSet CLAUDEMD_API_KEY or ANTHROPIC_API_KEY")
	}

	storage, closeStorage, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage()

	keys := apikey.NewManager(storage, nil)
	if err := keys.SetAPIKey(key); err != nil {
		return err
	}

	unsubscribe := store.Subscribe(func(st wizard.State) {
		logger.Debug("Wizard state: generating=%v content=%d bytes error=%q",
			st.IsGenerating, len(st.GeneratedContent), st.GenerationError)
	})
	defer unsubscribe()

	// Without an endpoint the API runs in process; no listener is needed.
	var client generator.Client = newAPIServer()
	if cfg.Endpoint != "" {
		remote, stop, err := startBackend(ctx, cfg.Endpoint)
		if err != nil {
			return err
		}
		defer stop()
		client = remote
	}

	fmt.Fprintln(os.Stderr, "Generating CLAUDE.md...")
	res := generator.New(client, keys, generator.WithTemplate(cfg.Template)).Generate(ctx, store)
	if !res.Success {
		return fmt.Errorf("generation failed: %s", res.Error)
	}

	v := generator.ValidateGeneratedContent(res.Content)
	for _, w := range v.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	output := generateFlags.output
	if output == "" {
		output = cfg.Output
	}
	if output == "-" {
		fmt.Println(res.Content)
		return nil
	}

	if generateFlags.diff {
		old, err := os.ReadFile(output)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to read %s: %w", output, err)
		}
		fmt.Print(renderDiff(output, string(old), res.Content, os.Stdout))
	}

	if err := os.WriteFile(output, []byte(res.Content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s (%d lines)\n", output, v.LineCount)
	runPostSaveHooks(ctx, hooks.Variables{Path: output, Lines: v.LineCount})
	return nil
}
