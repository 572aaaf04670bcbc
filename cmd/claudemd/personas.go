package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/claudemd/internal/apikey"
	"github.com/mark3labs/claudemd/internal/persona"
	"github.com/spf13/cobra"
)

var personasFlags struct {
	list         bool
	name         string
	techStack    []string
	projectType  string
	teamSize     string
	complexity   string
	requirements string
	system       string
	enhance      string
	request      string
	validate     string
	output       string
}

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "Generate, enhance or review a persona system",
	Long: `Generate, enhance or review a persona system for CLAUDE.md.

  claudemd personas --list
  claudemd personas --name shop --tech go,postgres --type api --team-size small --complexity moderate
  claudemd personas --enhance personas.md --request "add a security reviewer"
  claudemd personas --validate personas.md

The API key is read from CLAUDEMD_API_KEY or ANTHROPIC_API_KEY.`,
	RunE: runPersonas,
}

func init() {
	f := personasCmd.Flags()
	f.BoolVar(&personasFlags.list, "list", false, "List known persona system templates")
	f.StringVar(&personasFlags.name, "name", "", "Project name")
	f.StringSliceVar(&personasFlags.techStack, "tech", nil, "Tech stack, comma separated")
	f.StringVar(&personasFlags.projectType, "type", "web-app", "Project type: "+strings.Join(persona.ProjectTypes, ", "))
	f.StringVar(&personasFlags.teamSize, "team-size", "small", "Team size: "+strings.Join(persona.TeamSizes, ", "))
	f.StringVar(&personasFlags.complexity, "complexity", "moderate", "Complexity: "+strings.Join(persona.Complexities, ", "))
	f.StringVar(&personasFlags.requirements, "requirements", "", "Special requirements")
	f.StringVar(&personasFlags.system, "system", "", "Preferred persona system: "+strings.Join(persona.PersonaSystems, ", "))
	f.StringVar(&personasFlags.enhance, "enhance", "", "Enhance the persona system in this file")
	f.StringVar(&personasFlags.request, "request", "", "What to change when enhancing")
	f.StringVar(&personasFlags.validate, "validate", "", "Review the persona system in this file")
	f.StringVarP(&personasFlags.output, "output", "o", "", "Write the result to a file instead of stdout")
}

func runPersonas(cmd *cobra.Command, args []string) error {
	if personasFlags.list {
		for _, t := range persona.Templates() {
			fmt.Printf("%-14s %s (%d personas, %s)\n", t.ID, t.Name, t.PersonaCount, t.Complexity)
			fmt.Printf("%-14s %s. %s\n\n", "", t.Description, t.UseCase)
		}
		return nil
	}

	ctx := cmd.Context()
	key := envAPIKey()
	if key == "" {
		return fmt.Errorf("no API key found\n\nSet CLAUDEMD_API_KEY or ANTHROPIC_API_KEY")
	}

	client, stop, err := startBackend(ctx, cfg.Endpoint)
	if err != nil {
		return err
	}
	defer stop()

	keys := apikey.NewManager(nil, nil)
	if err := keys.SetAPIKey(key); err != nil {
		return err
	}
	svc := persona.NewService(client, keys)

	if personasFlags.validate != "" {
		data, err := os.ReadFile(personasFlags.validate)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", personasFlags.validate, err)
		}
		v := svc.Validate(ctx, string(data))
		fmt.Printf("Score: %d/100\n", v.Score)
		for _, issue := range v.Issues {
			fmt.Printf("⚠ %s\n", issue)
		}
		for _, s := range v.Suggestions {
			fmt.Printf("→ %s\n", s)
		}
		if !v.IsValid {
			return fmt.Errorf("persona system has %d issue(s)", len(v.Issues))
		}
		return nil
	}

	var res persona.Result
	if personasFlags.enhance != "" {
		if personasFlags.request == "" {
			return fmt.Errorf("--request is required with --enhance")
		}
		data, err := os.ReadFile(personasFlags.enhance)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", personasFlags.enhance, err)
		}
		res = svc.Enhance(ctx, string(data), personasFlags.request)
	} else {
		req := persona.Request{
			ProjectName:         personasFlags.name,
			TechStack:           personasFlags.techStack,
			ProjectType:         personasFlags.projectType,
			TeamSize:            personasFlags.teamSize,
			Complexity:          personasFlags.complexity,
			SpecialRequirements: personasFlags.requirements,
			PreferredSystem:     personasFlags.system,
		}
		if err := req.Validate(); err != nil {
			return err
		}
		res = svc.Generate(ctx, req)
	}
	if !res.Success {
		return fmt.Errorf("%s", res.Error)
	}

	fmt.Fprintf(os.Stderr, "%d persona(s) in %s\n", res.PersonaCount, res.Duration.Round(100*time.Millisecond))
	if personasFlags.output == "" {
		fmt.Println(res.Content)
		return nil
	}
	if err := os.WriteFile(personasFlags.output, []byte(res.Content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", personasFlags.output, err)
	}
	fmt.Printf("Persona system written to: %s\n", personasFlags.output)
	return nil
}
