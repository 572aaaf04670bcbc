package template

import (
	"fmt"
	"os"
	"strings"

	"github.com/gosimple/slug"
	"github.com/mark3labs/claudemd/internal/logger"
	"github.com/mark3labs/claudemd/internal/wizard"
)

// Variables holds the data to be injected into template placeholders.
type Variables struct {
	UniversalPrinciples string
	Personas            string // formatted persona list
	ProjectContext      string
	ActivationRules     string
}

// Render replaces {{variable}} placeholders in template with actual values.
// Supports the following variables:
// - {{universal_principles}}
// - {{personas}} - numbered persona blocks
// - {{project_context}}
// - {{activation_rules}}
func Render(template string, vars Variables) string {
	r := strings.NewReplacer(
		"{{universal_principles}}", vars.UniversalPrinciples,
		"{{personas}}", vars.Personas,
		"{{project_context}}", vars.ProjectContext,
		"{{activation_rules}}", vars.ActivationRules,
	)
	return r.Replace(template)
}

// LoadFromFile loads a template from a file.
func LoadFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template file %s: %w", path, err)
	}
	return string(data), nil
}

// GetTemplate returns the template at customPath, or DefaultTemplate when
// customPath is empty.
func GetTemplate(customPath string) (string, error) {
	if customPath == "" {
		return DefaultTemplate, nil
	}
	return LoadFromFile(customPath)
}

// Build renders tmpl with the fields of s. It is a pure function.
func Build(s wizard.State, tmpl string) string {
	return Render(tmpl, Variables{
		UniversalPrinciples: s.UniversalPrinciples,
		Personas:            FormatPersonas(s.Personas),
		ProjectContext:      s.ProjectContext,
		ActivationRules:     s.ActivationRules,
	})
}

// BuildPrompt loads the template (custom when templatePath is set) and
// renders the wizard state into it.
func BuildPrompt(s wizard.State, templatePath string) (string, error) {
	if templatePath != "" {
		logger.Debug("Using custom template: %s", templatePath)
	}
	tmpl, err := GetTemplate(templatePath)
	if err != nil {
		logger.Error("Failed to get template: %v", err)
		return "", fmt.Errorf("failed to get template: %w", err)
	}

	prompt := Build(s, tmpl)
	logger.Debug("Prompt rendered: %d characters, %d personas", len(prompt), len(s.Personas))
	return prompt, nil
}

// FormatPersonas renders personas as numbered blocks separated by blank
// lines. Each block carries an @handle derived from the persona name that
// activation rules can refer to.
func FormatPersonas(personas []wizard.Persona) string {
	blocks := make([]string, 0, len(personas))
	for i, p := range personas {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%d. %s (%s)\n", i+1, p.Name, p.Role)
		if handle := Handle(p.Name); handle != "" {
			fmt.Fprintf(&sb, "   - Activation Handle: %s\n", handle)
		}
		fmt.Fprintf(&sb, "   - Expertise Level: %s\n", p.ExpertiseLevel)
		fmt.Fprintf(&sb, "   - Core Principles: %s\n", p.CorePrinciples)
		fmt.Fprintf(&sb, "   - Technical Expertise: %s\n", p.TechExpertise)
		fmt.Fprintf(&sb, "   - Communication Style: %s\n", p.CommunicationStyle)
		fmt.Fprintf(&sb, "   - Specific Standards: %s", p.SpecificStandards)
		blocks = append(blocks, sb.String())
	}
	return strings.Join(blocks, "\n\n")
}

// Handle returns "@<slug>" for a persona name, or "" for a blank name.
func Handle(name string) string {
	s := slug.Make(name)
	if s == "" {
		return ""
	}
	return "@" + s
}
