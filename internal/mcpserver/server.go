package mcpserver

import (
	"context"
	"net/http"

	"github.com/mark3labs/claudemd/internal/gateway"
	"github.com/mark3labs/mcp-go/server"
)

// Generator runs one CLAUDE.md generation for a finished prompt.
type Generator interface {
	Generate(ctx context.Context, prompt, apiKey string) gateway.Result
}

// KeySource provides the serving session's API key.
type KeySource interface {
	APIKey() (string, bool)
}

// Server exposes the prompt builder, content validation and generation as
// MCP tools. It is mounted on the claudemd HTTP server rather than
// listening on its own port.
type Server struct {
	generator    Generator
	keys         KeySource
	templatePath string
	mcpServer    *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithKeySource lets generate-claude-md fall back to keys when the caller
// passes no api_key argument.
func WithKeySource(keys KeySource) Option {
	return func(s *Server) { s.keys = keys }
}

// WithTemplate uses a custom prompt template file.
func WithTemplate(path string) Option {
	return func(s *Server) { s.templatePath = path }
}

// New creates the MCP server and registers its tools.
func New(generator Generator, opts ...Option) *Server {
	s := &Server{generator: generator}
	for _, opt := range opts {
		opt(s)
	}

	s.mcpServer = server.NewMCPServer(
		"claudemd-tools",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// Handler returns the stateless streamable HTTP handler for mounting at /mcp.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithStateLess(true),
	)
}
