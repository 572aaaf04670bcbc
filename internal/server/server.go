// Package server is the claudemd HTTP API. It holds no key material: every
// request carries the caller's Anthropic key and the server forwards it
// upstream once.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mark3labs/claudemd/internal/anthropic"
	"github.com/mark3labs/claudemd/internal/config"
	"github.com/mark3labs/claudemd/internal/gateway"
	"github.com/mark3labs/claudemd/internal/logger"
)

// Completer sends one message to the upstream model.
type Completer interface {
	CreateMessage(ctx context.Context, req anthropic.Request) (*anthropic.Response, error)
}

// Options tunes the upstream request.
type Options struct {
	Model     string
	MaxTokens int
}

// Server routes the generation API.
type Server struct {
	upstream Completer
	opts     Options
	router   chi.Router

	stdServer *http.Server
	port      int
	mu        sync.Mutex
}

// New creates a server backed by upstream. Zero options fall back to the
// config defaults.
func New(upstream Completer, opts Options) *Server {
	if opts.Model == "" {
		opts.Model = config.DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = config.DefaultMaxTokens
	}
	s := &Server{upstream: upstream, opts: opts}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	// stdout belongs to the TUI, so request lines go to the debug log.
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: debugPrinter{}, NoColor: true}))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate-claude-md", s.handleGenerate)
		r.Post("/test-key", s.handleTestKey)
		r.Post("/generate-persona", s.handleGeneratePersona)
	})

	s.router = r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Mount attaches h under pattern, used for the MCP endpoint.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.router.Mount(pattern, h)
}

// Start listens on addr and serves in the background. An addr with port 0
// picks a free port. It returns the bound port.
func (s *Server) Start(ctx context.Context, addr string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer != nil {
		return 0, fmt.Errorf("server already started")
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return 0, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.port = listener.Addr().(*net.TCPAddr).Port

	s.stdServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stdServer := s.stdServer
	go func() {
		if err := stdServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error: %v", err)
		}
	}()

	logger.Debug("HTTP server ready on port %d", s.port)
	return s.port, nil
}

// Stop shuts the server down, waiting for in-flight requests.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.stdServer.Shutdown(ctx); err != nil {
		logger.Warn("Error stopping HTTP server: %v", err)
		return fmt.Errorf("failed to stop server: %w", err)
	}
	s.stdServer = nil
	logger.Debug("HTTP server stopped")
	return nil
}

// URL returns the base URL of a started server.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("http://127.0.0.1:%d", s.port)
}

// Generate runs a CLAUDE.md generation in process, bypassing HTTP. The
// outcome carries the same messages the HTTP endpoint would return.
func (s *Server) Generate(ctx context.Context, prompt, apiKey string) gateway.Result {
	status, resp := s.generate(ctx, generateRequest{APIKey: apiKey, Prompt: prompt}, true)
	if status != http.StatusOK {
		return gateway.Result{Error: resp.Error}
	}
	return gateway.Result{Success: true, Content: resp.Content}
}

type debugPrinter struct{}

func (debugPrinter) Print(v ...any) {
	logger.Debug("%s", fmt.Sprint(v...))
}
