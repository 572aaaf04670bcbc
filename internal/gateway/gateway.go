// Package gateway is the client side of the claudemd HTTP API. Every network
// outcome is folded into a Result so callers never handle transport errors.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mark3labs/claudemd/internal/logger"
)

// Endpoint paths served by internal/server.
const (
	PathGenerate        = "/api/generate-claude-md"
	PathTestKey         = "/api/test-key"
	PathGeneratePersona = "/api/generate-persona"
)

const (
	msgGenerateFailed = "Failed to generate CLAUDE.md"
	msgUnknownError   = "Unknown error occurred"

	maxResponseBody = 10 * 1024 * 1024
)

// Result is the normalized outcome of a generation call.
type Result struct {
	Success bool
	Content string
	Error   string
}

// Client posts to a claudemd server.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client. No timeout is set by default;
// requests end when their context does.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{baseURL: strings.TrimRight(baseURL, "/"), http: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

type generateRequest struct {
	Prompt       string `json:"prompt"`
	APIKey       string `json:"api_key"`
	SystemPrompt string `json:"system_prompt,omitempty"`
}

type generateResponse struct {
	Success bool   `json:"success"`
	Content string `json:"content"`
	Error   string `json:"error"`
}

// Generate asks the server to produce a CLAUDE.md for prompt.
func (c *Client) Generate(ctx context.Context, prompt, apiKey string) Result {
	return c.generate(ctx, PathGenerate, generateRequest{Prompt: prompt, APIKey: apiKey})
}

// GeneratePersona runs a free-form completion with an optional system
// prompt, used by the persona system generator.
func (c *Client) GeneratePersona(ctx context.Context, prompt, systemPrompt, apiKey string) Result {
	return c.generate(ctx, PathGeneratePersona, generateRequest{Prompt: prompt, APIKey: apiKey, SystemPrompt: systemPrompt})
}

func (c *Client) generate(ctx context.Context, path string, req generateRequest) Result {
	status, body, err := c.post(ctx, path, req)
	if err != nil {
		logger.Warn("Request to %s failed: %v", path, err)
		msg := err.Error()
		if msg == "" {
			msg = msgUnknownError
		}
		return Result{Error: msg}
	}

	var resp generateResponse
	parseErr := json.Unmarshal(body, &resp)

	if status < 200 || status > 299 {
		if parseErr != nil || resp.Error == "" {
			return Result{Error: msgGenerateFailed}
		}
		return Result{Error: resp.Error}
	}
	if parseErr != nil {
		return Result{Error: fmt.Sprintf("invalid response: %v", parseErr)}
	}
	return Result{Success: true, Content: resp.Content}
}

type testKeyRequest struct {
	APIKey string `json:"api_key"`
}

type testKeyResponse struct {
	Success bool `json:"success"`
	Valid   bool `json:"valid"`
}

// TestKey asks the server to verify apiKey. It reports true only for a
// successful response with success and valid both set.
func (c *Client) TestKey(ctx context.Context, apiKey string) (bool, error) {
	status, body, err := c.post(ctx, PathTestKey, testKeyRequest{APIKey: apiKey})
	if err != nil {
		return false, err
	}
	var resp testKeyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, fmt.Errorf("decoding test-key response (HTTP %d): %w", status, err)
	}
	return resp.Success && resp.Valid, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return 0, nil, context.Canceled
		}
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
