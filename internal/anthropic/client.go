// Package anthropic is a minimal client for the Anthropic Messages API,
// covering the single non-streaming text completion claudemd needs.
package anthropic

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

const (
	// APIVersion is sent as the anthropic-version header.
	APIVersion     = "2023-06-01"
	DefaultBaseURL = "https://api.anthropic.com"

	maxResponseBody = 10 * 1024 * 1024
)

// Error categories, matched with errors.Is against an *APIError.
var (
	ErrAuthentication   = errors.New("authentication failed")
	ErrPermissionDenied = errors.New("permission denied")
	ErrRateLimit        = errors.New("rate limited")
	ErrEmptyResponse    = errors.New("Unexpected response type from Anthropic API")
)

// APIError is a non-2xx answer from the Messages API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error %d", e.StatusCode)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// Is matches the category sentinel for the status code.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAuthentication:
		return e.StatusCode == http.StatusUnauthorized
	case ErrPermissionDenied:
		return e.StatusCode == http.StatusForbidden
	case ErrRateLimit:
		return e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// Request is one completion call.
type Request struct {
	APIKey    string
	Model     string
	MaxTokens int
	System    string
	Prompt    string
}

// Usage reports token counts.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Response is the text of the first content block plus usage.
type Response struct {
	ID    string
	Model string
	Text  string
	Usage Usage
}

// Client calls the Messages API.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// NewClient creates a client for baseURL, or DefaultBaseURL when empty.
func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{baseURL: baseURL, http: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type wireRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system,omitempty"`
	Messages  []wireMessage `json:"messages"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type wireResponse struct {
	ID      string        `json:"id"`
	Model   string        `json:"model"`
	Content []wireContent `json:"content"`
	Usage   Usage         `json:"usage"`
}

type wireError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateMessage sends a single user message and returns the text reply.
func (c *Client) CreateMessage(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(wireRequest{
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
		System:    req.System,
		Messages:  []wireMessage{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", req.APIKey)
	httpReq.Header.Set("anthropic-version", APIVersion)

	logger.Debug("Calling Messages API: model=%s max_tokens=%d prompt_len=%d", req.Model, req.MaxTokens, len(req.Prompt))

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: httpResp.StatusCode}
		var we wireError
		if json.Unmarshal(respBody, &we) == nil {
			apiErr.Type = we.Error.Type
			apiErr.Message = we.Error.Message
		}
		logger.Warn("Messages API returned %d: %s", httpResp.StatusCode, apiErr.Message)
		return nil, apiErr
	}

	var wr wireResponse
	if err := json.Unmarshal(respBody, &wr); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(wr.Content) == 0 || wr.Content[0].Type != "text" {
		return nil, ErrEmptyResponse
	}

	logger.Debug("Messages API usage: in=%d out=%d", wr.Usage.InputTokens, wr.Usage.OutputTokens)
	return &Response{ID: wr.ID, Model: wr.Model, Text: wr.Content[0].Text, Usage: wr.Usage}, nil
}
