package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/claudemd/internal/generator"
	"github.com/mark3labs/claudemd/internal/logger"
	"github.com/mark3labs/claudemd/internal/template"
	"github.com/mark3labs/claudemd/internal/wizard"
	"github.com/mark3labs/mcp-go/mcp"
)

var personaItems = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name":                map[string]any{"type": "string", "description": "Persona name, also used for the @handle"},
		"role":                map[string]any{"type": "string", "description": "What the persona does"},
		"expertise_level":     map[string]any{"type": "string", "enum": []string{"junior", "mid", "senior", "principal"}},
		"core_principles":     map[string]any{"type": "string"},
		"tech_expertise":      map[string]any{"type": "string"},
		"communication_style": map[string]any{"type": "string"},
		"specific_standards":  map[string]any{"type": "string"},
	},
	"required": []string{"name", "role"},
}

// wizardParams are the tool parameters shared by build-prompt and
// generate-claude-md.
func wizardParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString(wizard.FieldUniversalPrinciples, mcp.Required(),
			mcp.Description("Principles every persona follows"),
		),
		mcp.WithArray(wizard.FieldPersonas, mcp.Required(),
			mcp.Description("Expert personas"),
			mcp.Items(personaItems),
		),
		mcp.WithString(wizard.FieldProjectContext, mcp.Required(),
			mcp.Description("What the project is and how it is built"),
		),
		mcp.WithString(wizard.FieldActivationRules, mcp.Required(),
			mcp.Description("When each persona takes over"),
		),
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("build-prompt",
			append([]mcp.ToolOption{
				mcp.WithDescription("Build the CLAUDE.md generation prompt from wizard fields without calling the model"),
			}, wizardParams()...)...,
		),
		s.handleBuildPrompt,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("validate-claude-md",
			mcp.WithDescription("Check a CLAUDE.md document for length and expected sections"),
			mcp.WithString("content", mcp.Required(),
				mcp.Description("CLAUDE.md markdown"),
			),
		),
		s.handleValidate,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("generate-claude-md",
			append([]mcp.ToolOption{
				mcp.WithDescription("Generate a CLAUDE.md document from wizard fields"),
				mcp.WithString("api_key",
					mcp.Description("Anthropic API key; defaults to the key held by the running session"),
				),
			}, wizardParams()...)...,
		),
		s.handleGenerate,
	)
}

// stateFromArgs reads wizard fields out of tool arguments and checks every
// step, the same gate the terminal wizard applies before generating.
func stateFromArgs(args map[string]any) (wizard.State, error) {
	var st wizard.State
	if args == nil {
		return st, fmt.Errorf("no arguments provided")
	}

	st.UniversalPrinciples, _ = args[wizard.FieldUniversalPrinciples].(string)
	st.ProjectContext, _ = args[wizard.FieldProjectContext].(string)
	st.ActivationRules, _ = args[wizard.FieldActivationRules].(string)

	if raw, ok := args[wizard.FieldPersonas]; ok {
		// mcp-go decodes arrays as []any; round-trip through JSON to get typed personas.
		data, err := json.Marshal(raw)
		if err != nil {
			return st, fmt.Errorf("'personas': %w", err)
		}
		if err := json.Unmarshal(data, &st.Personas); err != nil {
			return st, fmt.Errorf("'personas' must be an array of persona objects")
		}
	}
	st.Normalize()

	var msgs []string
	for step := range wizard.Steps {
		for _, fe := range wizard.Validate(st, step).Errors {
			msgs = append(msgs, fe.Error())
		}
	}
	if len(msgs) > 0 {
		return st, fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return st, nil
}

// handleBuildPrompt returns the rendered generation prompt.
func (s *Server) handleBuildPrompt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := stateFromArgs(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultText("error: " + err.Error()), nil
	}

	prompt, err := template.BuildPrompt(st, s.templatePath)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error: failed to build prompt: %v", err)), nil
	}
	return mcp.NewToolResultText(prompt), nil
}

// handleValidate returns the content validation as JSON.
func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	content, ok := args["content"].(string)
	if !ok {
		return mcp.NewToolResultText("error: missing or invalid 'content' parameter"), nil
	}

	data, err := json.Marshal(generator.ValidateGeneratedContent(content))
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// handleGenerate builds the prompt and runs generation. Upstream failures
// come back as tool errors carrying the same message the HTTP API returns.
func (s *Server) handleGenerate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	st, err := stateFromArgs(args)
	if err != nil {
		return mcp.NewToolResultText("error: " + err.Error()), nil
	}

	key, _ := args["api_key"].(string)
	if key == "" && s.keys != nil {
		key, _ = s.keys.APIKey()
	}
	if key == "" {
		return mcp.NewToolResultText("error: " + generator.ErrNoAPIKey), nil
	}

	prompt, err := template.BuildPrompt(st, s.templatePath)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error: failed to build prompt: %v", err)), nil
	}

	logger.Info("MCP generate-claude-md: %d personas", len(st.Personas))
	res := s.generator.Generate(ctx, prompt, key)
	if !res.Success {
		return mcp.NewToolResultError(res.Error), nil
	}
	return mcp.NewToolResultText(res.Content), nil
}
