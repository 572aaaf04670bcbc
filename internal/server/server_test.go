package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/claudemd/internal/anthropic"
	"github.com/mark3labs/claudemd/internal/gateway"
	"github.com/mark3labs/claudemd/internal/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUpstream struct {
	resp *anthropic.Response
	err  error
	reqs []anthropic.Request
}

func (s *stubUpstream) CreateMessage(_ context.Context, req anthropic.Request) (*anthropic.Response, error) {
	s.reqs = append(s.reqs, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func okUpstream(text string) *stubUpstream {
	return &stubUpstream{resp: &anthropic.Response{Text: text, Usage: anthropic.Usage{InputTokens: 3, OutputTokens: 7}}}
}

func post(t *testing.T, h http.Handler, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func TestHealth(t *testing.T) {
	srv := New(okUpstream(""), Options{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGenerate_Success(t *testing.T) {
	up := okUpstream("# CLAUDE.md")
	srv := New(up, Options{})

	code, body := post(t, srv.Handler(), gateway.PathGenerate, `{"api_key":"sk-ant-x","prompt":"build it"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "# CLAUDE.md", body["content"])
	assert.Equal(t, map[string]any{"input_tokens": float64(3), "output_tokens": float64(7)}, body["usage"])

	require.Len(t, up.reqs, 1)
	got := up.reqs[0]
	assert.Equal(t, "sk-ant-x", got.APIKey)
	assert.Equal(t, "claude-3-5-sonnet-20241022", got.Model)
	assert.Equal(t, 4000, got.MaxTokens)
	assert.Equal(t, template.SystemPrompt, got.System)
	assert.Equal(t, "build it", got.Prompt)
}

func TestGenerate_MissingFields(t *testing.T) {
	up := okUpstream("")
	srv := New(up, Options{})

	code, body := post(t, srv.Handler(), gateway.PathGenerate, `{"prompt":"x"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, map[string]any{"success": false, "error": "API key is required"}, body)

	code, body = post(t, srv.Handler(), gateway.PathGenerate, `{"api_key":"sk-ant-x"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Prompt is required", body["error"])

	code, body = post(t, srv.Handler(), gateway.PathGenerate, `not json`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid request body", body["error"])

	assert.Empty(t, up.reqs)
}

func TestGenerate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"auth", &anthropic.APIError{StatusCode: 401}, http.StatusUnauthorized, "Invalid API key"},
		{"permission", &anthropic.APIError{StatusCode: 403}, http.StatusForbidden, "API key lacks required permissions"},
		{"rate limit", &anthropic.APIError{StatusCode: 429}, http.StatusTooManyRequests, "Rate limit exceeded"},
		{"overloaded", &anthropic.APIError{StatusCode: 529, Message: "Overloaded"}, http.StatusInternalServerError, "Generation failed: API error 529: Overloaded"},
		{"non text", anthropic.ErrEmptyResponse, http.StatusInternalServerError, "Generation failed: Unexpected response type from Anthropic API"},
		{"transport", errors.New("boom"), http.StatusInternalServerError, "Generation failed: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(&stubUpstream{err: tt.err}, Options{})
			code, body := post(t, srv.Handler(), gateway.PathGenerate, `{"api_key":"k","prompt":"p"}`)
			assert.Equal(t, tt.status, code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.msg, body["error"])
		})
	}
}

func TestGeneratePersona_UsesCallerSystemPrompt(t *testing.T) {
	up := okUpstream("## Architect Persona")
	srv := New(up, Options{Model: "m", MaxTokens: 100})

	code, _ := post(t, srv.Handler(), gateway.PathGeneratePersona, `{"api_key":"k","prompt":"p","system_prompt":"be brief"}`)
	assert.Equal(t, http.StatusOK, code)
	code, _ = post(t, srv.Handler(), gateway.PathGeneratePersona, `{"api_key":"k","prompt":"p"}`)
	assert.Equal(t, http.StatusOK, code)

	require.Len(t, up.reqs, 2)
	assert.Equal(t, "be brief", up.reqs[0].System)
	assert.Equal(t, "", up.reqs[1].System)
	assert.Equal(t, "m", up.reqs[0].Model)
	assert.Equal(t, 100, up.reqs[0].MaxTokens)
}

func TestTestKey(t *testing.T) {
	up := okUpstream("hi")
	srv := New(up, Options{})

	code, body := post(t, srv.Handler(), gateway.PathTestKey, `{"api_key":"sk-ant-x"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"success": true, "valid": true}, body)

	require.Len(t, up.reqs, 1)
	assert.Equal(t, 10, up.reqs[0].MaxTokens)
	assert.Equal(t, "Test", up.reqs[0].Prompt)
	assert.Empty(t, up.reqs[0].System)

	code, body = post(t, srv.Handler(), gateway.PathTestKey, `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "API key is required", body["error"])
}

func TestTestKey_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{&anthropic.APIError{StatusCode: 401}, http.StatusUnauthorized, "Invalid API key"},
		{&anthropic.APIError{StatusCode: 403}, http.StatusForbidden, "API key lacks required permissions"},
		{&anthropic.APIError{StatusCode: 429}, http.StatusInternalServerError, "API test failed: API error 429"},
	}

	for _, tt := range tests {
		srv := New(&stubUpstream{err: tt.err}, Options{})
		code, body := post(t, srv.Handler(), gateway.PathTestKey, `{"api_key":"k"}`)
		assert.Equal(t, tt.status, code)
		assert.Equal(t, tt.msg, body["error"])
	}
}

func TestStartStop_GatewayRoundTrip(t *testing.T) {
	srv := New(okUpstream("# Generated"), Options{})
	port, err := srv.Start(context.Background(), "127.0.0.1:0")
	require.NoError(t, err)
	require.NotZero(t, port)
	defer func() { assert.NoError(t, srv.Stop()) }()

	_, err = srv.Start(context.Background(), "127.0.0.1:0")
	assert.Error(t, err, "second start")

	client := gateway.New(srv.URL())
	res := client.Generate(context.Background(), "prompt", "sk-ant-x")
	assert.Equal(t, gateway.Result{Success: true, Content: "# Generated"}, res)

	ok, err := client.TestKey(context.Background(), "sk-ant-x")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGenerate_InProcess(t *testing.T) {
	srv := New(&stubUpstream{err: &anthropic.APIError{StatusCode: 401}}, Options{})
	assert.Equal(t, gateway.Result{Error: "Invalid API key"}, srv.Generate(context.Background(), "p", "k"))
	assert.Equal(t, gateway.Result{Error: "Prompt is required"}, srv.Generate(context.Background(), "", "k"))
}

func TestMount(t *testing.T) {
	srv := New(okUpstream(""), Options{})
	srv.Mount("/mcp", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
