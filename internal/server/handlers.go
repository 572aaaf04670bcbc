package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mark3labs/claudemd/internal/anthropic"
	"github.com/mark3labs/claudemd/internal/logger"
	"github.com/mark3labs/claudemd/internal/template"
)

const (
	testKeyMaxTokens = 10
	testKeyPrompt    = "Test"
	maxRequestBody   = 1 << 20
)

// HealthResponse is the response for /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is returned by every failing API call.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// GenerateResponse is returned by the generation endpoints.
type GenerateResponse struct {
	Success bool            `json:"success"`
	Content string          `json:"content,omitempty"`
	Usage   anthropic.Usage `json:"usage"`
	Error   string          `json:"error,omitempty"`
}

// TestKeyResponse is returned by /api/test-key.
type TestKeyResponse struct {
	Success bool `json:"success"`
	Valid   bool `json:"valid"`
}

type generateRequest struct {
	APIKey       string `json:"api_key"`
	Prompt       string `json:"prompt"`
	SystemPrompt string `json:"system_prompt"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decode(w, r, &req) {
		return
	}
	status, resp := s.generate(r.Context(), req, true)
	writeGenerate(w, status, resp)
}

func (s *Server) handleGeneratePersona(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decode(w, r, &req) {
		return
	}
	status, resp := s.generate(r.Context(), req, false)
	writeGenerate(w, status, resp)
}

// generate validates req and calls upstream. CLAUDE.md generation always
// uses the built-in system prompt; persona generation uses the caller's.
func (s *Server) generate(ctx context.Context, req generateRequest, claudeMD bool) (int, GenerateResponse) {
	if req.APIKey == "" {
		return http.StatusBadRequest, GenerateResponse{Error: "API key is required"}
	}
	if req.Prompt == "" {
		return http.StatusBadRequest, GenerateResponse{Error: "Prompt is required"}
	}

	system := req.SystemPrompt
	if claudeMD {
		system = template.SystemPrompt
	}

	resp, err := s.upstream.CreateMessage(ctx, anthropic.Request{
		APIKey:    req.APIKey,
		Model:     s.opts.Model,
		MaxTokens: s.opts.MaxTokens,
		System:    system,
		Prompt:    req.Prompt,
	})
	if err != nil {
		logger.Error("Generation error: %v", err)
		status, msg := classify(err, "Generation failed: ", true)
		return status, GenerateResponse{Error: msg}
	}

	return http.StatusOK, GenerateResponse{Success: true, Content: resp.Text, Usage: resp.Usage}
}

func (s *Server) handleTestKey(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decode(w, r, &req) {
		return
	}
	if req.APIKey == "" {
		writeError(w, http.StatusBadRequest, "API key is required")
		return
	}

	_, err := s.upstream.CreateMessage(r.Context(), anthropic.Request{
		APIKey:    req.APIKey,
		Model:     s.opts.Model,
		MaxTokens: testKeyMaxTokens,
		Prompt:    testKeyPrompt,
	})
	if err != nil {
		logger.Warn("API key test error: %v", err)
		status, msg := classify(err, "API test failed: ", false)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, TestKeyResponse{Success: true, Valid: true})
}

// classify maps an upstream error to a status and message. Rate limits are
// only reported as such when rateLimit is set; otherwise they fall through
// to the generic 500 with prefix.
func classify(err error, prefix string, rateLimit bool) (int, string) {
	switch {
	case errors.Is(err, anthropic.ErrAuthentication):
		return http.StatusUnauthorized, "Invalid API key"
	case errors.Is(err, anthropic.ErrPermissionDenied):
		return http.StatusForbidden, "API key lacks required permissions"
	case rateLimit && errors.Is(err, anthropic.ErrRateLimit):
		return http.StatusTooManyRequests, "Rate limit exceeded"
	}
	return http.StatusInternalServerError, prefix + err.Error()
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func writeGenerate(w http.ResponseWriter, status int, resp GenerateResponse) {
	if status != http.StatusOK {
		writeError(w, status, resp.Error)
		return
	}
	writeJSON(w, status, resp)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Success: false, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to write response: %v", err)
	}
}
