// Package persona generates, enhances and reviews multi-agent persona
// systems for CLAUDE.md files.
package persona

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/mark3labs/claudemd/internal/gateway"
	"github.com/mark3labs/claudemd/internal/logger"
)

// Allowed Request values.
var (
	ProjectTypes   = []string{"web-app", "api", "mobile-app", "desktop-app", "library", "cli-tool"}
	TeamSizes      = []string{"solo", "small", "medium", "large"}
	Complexities   = []string{"simple", "moderate", "complex"}
	PersonaSystems = []string{"bmad", "agent-control", "superclaude", "custom"}
)

const errNoAPIKey = "No API key configured. Please set your Anthropic API key first."

// Request describes the project a persona system is generated for.
type Request struct {
	ProjectName         string   `yaml:"project_name" json:"project_name"`
	TechStack           []string `yaml:"tech_stack" json:"tech_stack"`
	ProjectType         string   `yaml:"project_type" json:"project_type"`
	TeamSize            string   `yaml:"team_size" json:"team_size"`
	Complexity          string   `yaml:"complexity" json:"complexity"`
	SpecialRequirements string   `yaml:"special_requirements" json:"special_requirements,omitempty"`
	PreferredSystem     string   `yaml:"preferred_persona_system" json:"preferred_persona_system,omitempty"`
}

// Validate checks enumerated fields.
func (r Request) Validate() error {
	if strings.TrimSpace(r.ProjectName) == "" {
		return fmt.Errorf("project name is required")
	}
	checks := []struct {
		name    string
		value   string
		allowed []string
	}{
		{"project type", r.ProjectType, ProjectTypes},
		{"team size", r.TeamSize, TeamSizes},
		{"complexity", r.Complexity, Complexities},
	}
	for _, c := range checks {
		if !slices.Contains(c.allowed, c.value) {
			return fmt.Errorf("invalid %s %q: must be one of %s", c.name, c.value, strings.Join(c.allowed, ", "))
		}
	}
	if r.PreferredSystem != "" && !slices.Contains(PersonaSystems, r.PreferredSystem) {
		return fmt.Errorf("invalid persona system %q: must be one of %s", r.PreferredSystem, strings.Join(PersonaSystems, ", "))
	}
	return nil
}

// BuildProjectContext renders the request as "Key: value" lines.
func BuildProjectContext(r Request) string {
	lines := []string{
		"Project Name: " + r.ProjectName,
		"Project Type: " + r.ProjectType,
		"Tech Stack: " + strings.Join(r.TechStack, ", "),
		"Team Size: " + r.TeamSize,
		"Complexity: " + r.Complexity,
	}
	if r.SpecialRequirements != "" {
		lines = append(lines, "Special Requirements: "+r.SpecialRequirements)
	}
	if r.PreferredSystem != "" {
		lines = append(lines, "Preferred Persona System: "+r.PreferredSystem)
	}
	return strings.Join(lines, "\n")
}

var baseRequirements = map[string][]string{
	"web-app": {
		"Frontend development expertise",
		"UI/UX design considerations",
		"Performance optimization",
		"Cross-browser compatibility",
	},
	"api": {
		"API design and development",
		"Security best practices",
		"Performance and scalability",
		"Documentation and testing",
	},
	"mobile-app": {
		"Mobile development patterns",
		"Platform-specific considerations",
		"Performance optimization",
		"User experience design",
	},
	"library": {
		"API design and documentation",
		"Backward compatibility",
		"Testing and quality assurance",
		"Community support",
	},
}

// Requirements lists what the personas must cover for r: the project type
// baseline, then extras for complex projects and for teams.
func Requirements(r Request) []string {
	reqs := slices.Clone(baseRequirements[r.ProjectType])
	if r.Complexity == "complex" {
		reqs = append(reqs,
			"Advanced architecture patterns",
			"Multi-agent coordination",
			"Sophisticated testing strategies",
			"Performance monitoring",
		)
	}
	if r.TeamSize != "solo" {
		reqs = append(reqs,
			"Team coordination and communication",
			"Code review processes",
			"Documentation standards",
			"Knowledge sharing",
		)
	}
	return reqs
}

// BuildRequirements joins Requirements as continuation bullets.
func BuildRequirements(r Request) string {
	return strings.Join(Requirements(r), "\n- ")
}

var personaHeading = regexp.MustCompile(`(?i)##\s+\w+\s+(Persona|Agent)`)

// EstimatePersonaCount counts "## <Word> Persona" or "## <Word> Agent"
// headings, reporting at least one.
func EstimatePersonaCount(content string) int {
	if n := len(personaHeading.FindAllStringIndex(content, -1)); n > 0 {
		return n
	}
	return 1
}

// ValidationScore starts at 100, takes 10 off per issue and another 15 per
// critical issue, and clamps to 0..100.
func ValidationScore(issues []string) int {
	score := 100 - 10*len(issues)
	for _, issue := range issues {
		lower := strings.ToLower(issue)
		if strings.Contains(lower, "critical") || strings.Contains(lower, "missing") || strings.Contains(lower, "invalid") {
			score -= 15
		}
	}
	return max(0, min(100, score))
}

// Template is a well-known persona system layout.
type Template struct {
	ID           string
	Name         string
	Description  string
	PersonaCount int
	Complexity   string
	UseCase      string
}

// Templates returns the catalogue of known persona systems.
func Templates() []Template {
	return []Template{
		{ID: "bmad", Name: "BMAD Method", Description: "Comprehensive 9-persona system with adaptive formality", PersonaCount: 9, Complexity: "complex", UseCase: "Full development lifecycle coverage"},
		{ID: "agent-control", Name: "Agent Control Plane", Description: "Mandatory 4-persona system with strict transitions", PersonaCount: 4, Complexity: "moderate", UseCase: "Structured development workflows"},
		{ID: "superclaude", Name: "SuperClaude Framework", Description: "Command-flag based persona activation", PersonaCount: 6, Complexity: "moderate", UseCase: "Flexible specialist coordination"},
		{ID: "simple-dev", Name: "Simple Development", Description: "Basic 3-persona system for small projects", PersonaCount: 3, Complexity: "simple", UseCase: "Small team or solo development"},
	}
}

// Client sends persona prompts.
type Client interface {
	GeneratePersona(ctx context.Context, prompt, systemPrompt, apiKey string) gateway.Result
}

// KeySource provides the in-memory API key.
type KeySource interface {
	APIKey() (string, bool)
}

// Result is the outcome of Generate or Enhance.
type Result struct {
	Success      bool
	Content      string
	Error        string
	PersonaCount int
	Duration     time.Duration
}

// Validation is the outcome of Validate.
type Validation struct {
	IsValid     bool     `json:"is_valid"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
	Score       int      `json:"score"`
}

// Service drives persona generation through the gateway.
type Service struct {
	client Client
	keys   KeySource
	now    func() time.Time
}

// NewService creates a Service.
func NewService(client Client, keys KeySource) *Service {
	return &Service{client: client, keys: keys, now: time.Now}
}

// Generate produces a persona system for r.
func (s *Service) Generate(ctx context.Context, r Request) Result {
	prompt := generationPrompt(BuildProjectContext(r), BuildRequirements(r))
	return s.run(ctx, prompt, generationSystemPrompt, "Generation failed")
}

// Enhance rewrites an existing persona system according to request.
func (s *Service) Enhance(ctx context.Context, existing, request string) Result {
	return s.run(ctx, enhancementPrompt(existing, request), enhancementSystemPrompt, "Enhancement failed")
}

func (s *Service) run(ctx context.Context, prompt, system, failure string) Result {
	key, ok := s.keys.APIKey()
	if !ok {
		return Result{Error: errNoAPIKey}
	}

	start := s.now()
	res := s.client.GeneratePersona(ctx, prompt, system, key)
	if !res.Success {
		logger.Warn("Persona request failed: %s", res.Error)
		return Result{Error: failure + ": " + res.Error}
	}

	count := EstimatePersonaCount(res.Content)
	logger.Info("Persona system ready: %d personas", count)
	return Result{Success: true, Content: res.Content, PersonaCount: count, Duration: s.now().Sub(start)}
}

// Validate asks the model to review a persona system. The model's answer
// must be the JSON document described in the validation system prompt.
func (s *Service) Validate(ctx context.Context, system string) Validation {
	key, ok := s.keys.APIKey()
	if !ok {
		return Validation{
			Issues:      []string{"No API key configured"},
			Suggestions: []string{"Please set your Anthropic API key first"},
		}
	}

	res := s.client.GeneratePersona(ctx, validationPrompt(system), validationSystemPrompt, key)
	if !res.Success {
		return Validation{
			Issues:      []string{"Validation failed: " + res.Error},
			Suggestions: []string{"Please try validation again"},
		}
	}

	var v Validation
	if err := json.Unmarshal([]byte(stripFence(res.Content)), &v); err != nil {
		logger.Warn("Unparseable validation response: %v", err)
		v = Validation{
			Issues:      []string{"Failed to parse validation response"},
			Suggestions: []string{"Please try validation again"},
		}
	}
	v.Score = ValidationScore(v.Issues)
	return v
}

// stripFence removes a surrounding ``` or ```json fence.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
