package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/mark3labs/claudemd/internal/gateway"
	"github.com/mark3labs/claudemd/internal/template"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	result gateway.Result
	prompt string
	apiKey string
	calls  int
}

func (g *stubGenerator) Generate(_ context.Context, prompt, apiKey string) gateway.Result {
	g.calls++
	g.prompt = prompt
	g.apiKey = apiKey
	return g.result
}

type staticKey string

func (k staticKey) APIKey() (string, bool) { return string(k), k != "" }

// extractText extracts text from CallToolResult.Content[0]
func extractText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if textContent, ok := result.Content[0].(mcp.TextContent); ok {
		return textContent.Text
	}
	return ""
}

func wizardArgs() map[string]any {
	return map[string]any{
		"universal_principles": "Be precise",
		"personas": []any{
			map[string]any{"name": "Code Reviewer", "role": "Reviews diffs", "expertise_level": "principal"},
		},
		"project_context":  "A Go CLI",
		"activation_rules": "Reviewer on PRs",
	}
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}}
}

func TestHandleBuildPrompt(t *testing.T) {
	srv := New(&stubGenerator{})

	result, err := srv.handleBuildPrompt(context.Background(), call("build-prompt", wizardArgs()))
	require.NoError(t, err)

	text := extractText(result)
	assert.Contains(t, text, "Be precise")
	assert.Contains(t, text, "1. Code Reviewer (Reviews diffs)")
	assert.Contains(t, text, "@code-reviewer")
	assert.Contains(t, text, "Expertise Level: principal")
	assert.NotContains(t, text, "{{")
}

func TestHandleBuildPrompt_CustomTemplate(t *testing.T) {
	path := t.TempDir() + "/tmpl.md"
	require.NoError(t, os.WriteFile(path, []byte("CTX={{project_context}}"), 0o644))
	srv := New(&stubGenerator{}, WithTemplate(path))

	result, err := srv.handleBuildPrompt(context.Background(), call("build-prompt", wizardArgs()))
	require.NoError(t, err)
	assert.Equal(t, "CTX=A Go CLI", extractText(result))
}

func TestHandleBuildPrompt_ValidationErrors(t *testing.T) {
	srv := New(&stubGenerator{})

	args := wizardArgs()
	args["universal_principles"] = "  "
	args["personas"] = []any{map[string]any{"name": "", "role": ""}}

	result, err := srv.handleBuildPrompt(context.Background(), call("build-prompt", args))
	require.NoError(t, err)
	text := extractText(result)
	assert.Contains(t, text, "error: ")
	assert.Contains(t, text, "Universal principles is required")
	assert.Contains(t, text, "persona 1: Name is required")
	assert.Contains(t, text, "persona 1: Role is required")

	args = wizardArgs()
	args["personas"] = "not an array"
	result, err = srv.handleBuildPrompt(context.Background(), call("build-prompt", args))
	require.NoError(t, err)
	assert.Contains(t, extractText(result), "'personas' must be an array")

	result, err = srv.handleBuildPrompt(context.Background(), call("build-prompt", nil))
	require.NoError(t, err)
	assert.Equal(t, "error: no arguments provided", extractText(result))
}

func TestHandleValidate(t *testing.T) {
	srv := New(&stubGenerator{})

	result, err := srv.handleValidate(context.Background(), call("validate-claude-md", map[string]any{"content": "# Short"}))
	require.NoError(t, err)

	var v struct {
		IsValid   bool     `json:"is_valid"`
		Warnings  []string `json:"warnings"`
		LineCount int      `json:"line_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(extractText(result)), &v))
	assert.False(t, v.IsValid)
	assert.Equal(t, 1, v.LineCount)
	assert.Contains(t, v.Warnings, "Content is shorter than recommended (25+ lines)")
	assert.Contains(t, v.Warnings, "Missing expected keyword: persona")

	result, err = srv.handleValidate(context.Background(), call("validate-claude-md", map[string]any{}))
	require.NoError(t, err)
	assert.Equal(t, "error: missing or invalid 'content' parameter", extractText(result))
}

func TestHandleGenerate(t *testing.T) {
	gen := &stubGenerator{result: gateway.Result{Success: true, Content: "# CLAUDE.md"}}
	srv := New(gen, WithKeySource(staticKey("sk-ant-session")))

	result, err := srv.handleGenerate(context.Background(), call("generate-claude-md", wizardArgs()))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "# CLAUDE.md", extractText(result))
	assert.Equal(t, "sk-ant-session", gen.apiKey)
	assert.Contains(t, gen.prompt, "A Go CLI")

	args := wizardArgs()
	args["api_key"] = "sk-ant-explicit"
	_, err = srv.handleGenerate(context.Background(), call("generate-claude-md", args))
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-explicit", gen.apiKey)
}

func TestHandleGenerate_Failures(t *testing.T) {
	gen := &stubGenerator{result: gateway.Result{Error: "Invalid API key"}}

	srv := New(gen)
	result, err := srv.handleGenerate(context.Background(), call("generate-claude-md", wizardArgs()))
	require.NoError(t, err)
	assert.Contains(t, extractText(result), "No API key configured")
	assert.Equal(t, 0, gen.calls)

	srv = New(gen, WithKeySource(staticKey("sk-ant-x")))
	result, err = srv.handleGenerate(context.Background(), call("generate-claude-md", wizardArgs()))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "Invalid API key", extractText(result))
}

func TestHandler_ListsTools(t *testing.T) {
	srv := New(&stubGenerator{})
	h := srv.Handler()

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`
	req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, name := range []string{"build-prompt", "validate-claude-md", "generate-claude-md"} {
		assert.Contains(t, rec.Body.String(), name)
	}
}

func TestBuildPromptMatchesTemplatePackage(t *testing.T) {
	st, err := stateFromArgs(wizardArgs())
	require.NoError(t, err)
	built, err := template.BuildPrompt(st, "")
	require.NoError(t, err)
	assert.Equal(t, template.Build(st, template.DefaultTemplate), built)
}
