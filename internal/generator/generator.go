// Package generator turns a completed wizard into a CLAUDE.md document by
// building the prompt and sending it through the gateway.
package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/claudemd/internal/gateway"
	"github.com/mark3labs/claudemd/internal/logger"
	"github.com/mark3labs/claudemd/internal/template"
	"github.com/mark3labs/claudemd/internal/wizard"
)

const (
	// MinLines and MaxLines bound the recommended document length.
	MinLines = 25
	MaxLines = 250

	// ErrNoAPIKey is the result error when no key is held in memory.
	ErrNoAPIKey = "No API key configured. Please set your Anthropic API key first."
	// ErrInFlight is the result error for a second concurrent request.
	ErrInFlight = "Generation already in progress"
)

// RequiredKeywords must appear (case-insensitively) in a generated document.
var RequiredKeywords = []string{"persona", "universal", "activation", "project"}

// Client sends a prompt for generation.
type Client interface {
	Generate(ctx context.Context, prompt, apiKey string) gateway.Result
}

// KeySource provides the in-memory API key.
type KeySource interface {
	APIKey() (string, bool)
}

// Generator runs generation against a wizard store.
type Generator struct {
	client       Client
	keys         KeySource
	templatePath string
}

// Option configures a Generator.
type Option func(*Generator)

// WithTemplate uses a custom prompt template file.
func WithTemplate(path string) Option {
	return func(g *Generator) { g.templatePath = path }
}

// New creates a Generator.
func New(client Client, keys KeySource, opts ...Option) *Generator {
	g := &Generator{client: client, keys: keys}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Prompt builds the prompt for the current wizard state.
func (g *Generator) Prompt(store *wizard.Store) (string, error) {
	return template.BuildPrompt(store.Get(), g.templatePath)
}

// Generate builds the prompt from store, sends it and records the outcome
// in store. Only one generation may be in flight per store.
func (g *Generator) Generate(ctx context.Context, store *wizard.Store) gateway.Result {
	key, ok := g.keys.APIKey()
	if !ok {
		store.SetGenerationError(ErrNoAPIKey)
		return gateway.Result{Error: ErrNoAPIKey}
	}
	if store.Get().IsGenerating {
		return gateway.Result{Error: ErrInFlight}
	}

	prompt, err := g.Prompt(store)
	if err != nil {
		msg := fmt.Sprintf("Failed to build prompt: %v", err)
		store.SetGenerationError(msg)
		return gateway.Result{Error: msg}
	}

	store.SetGenerating()
	logger.Info("Generating CLAUDE.md (%d character prompt)", len(prompt))

	res := g.client.Generate(ctx, prompt, key)
	if !res.Success {
		logger.Warn("Generation failed: %s", res.Error)
		store.SetGenerationError(res.Error)
		return res
	}

	store.SetGenerated(res.Content)
	logger.Info("Generated CLAUDE.md: %d lines", LineCount(res.Content))
	return res
}

// Validation is the outcome of ValidateGeneratedContent. IsValid is true
// iff Warnings is empty.
type Validation struct {
	IsValid   bool     `json:"is_valid"`
	Warnings  []string `json:"warnings"`
	LineCount int      `json:"line_count"`
}

// LineCount counts newline-separated lines; the empty string has one line.
func LineCount(content string) int {
	return strings.Count(content, "\n") + 1
}

// ValidateGeneratedContent applies the length and keyword heuristics to a
// generated document.
func ValidateGeneratedContent(content string) Validation {
	lines := LineCount(content)
	warnings := []string{}

	if lines < MinLines {
		warnings = append(warnings, "Content is shorter than recommended (25+ lines)")
	}
	if lines > MaxLines {
		warnings = append(warnings, "Content is longer than recommended (250- lines)")
	}

	lower := strings.ToLower(content)
	for _, kw := range RequiredKeywords {
		if !strings.Contains(lower, kw) {
			warnings = append(warnings, "Missing expected keyword: "+kw)
		}
	}

	return Validation{IsValid: len(warnings) == 0, Warnings: warnings, LineCount: lines}
}
