// Package server exposes the extraction pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jackzampolin/veridoc/internal/ingest"
	"github.com/jackzampolin/veridoc/internal/pipeline"
	"github.com/jackzampolin/veridoc/internal/recognize"
)

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// Pipeline processes recognized pages into structured documents.
	Pipeline *pipeline.Pipeline
	// Engine recognizes text on page images.
	Engine *recognize.Engine
	// Resolver turns upload/path/URL input into image bytes. Optional.
	Resolver *ingest.Resolver
	// Logger is the structured logger to use.
	Logger *slog.Logger
}

// Server is the veridoc HTTP server.
type Server struct {
	httpServer *http.Server
	pipe       *pipeline.Pipeline
	engine     *recognize.Engine
	resolver   *ingest.Resolver
	logger     *slog.Logger
	startTime  time.Time

	mu      sync.RWMutex
	running bool
}

// New creates a Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Pipeline == nil {
		return nil, fmt.Errorf("server: pipeline is required")
	}
	if cfg.Engine == nil {
		return nil, fmt.Errorf("server: recognition engine is required")
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Resolver == nil {
		cfg.Resolver = ingest.NewResolver(cfg.Logger)
	}

	s := &Server{
		pipe:     cfg.Pipeline,
		engine:   cfg.Engine,
		resolver: cfg.Resolver,
		logger:   cfg.Logger.With("component", "server"),
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:    net.JoinHostPort(cfg.Host, cfg.Port),
		Handler: mux,
		// Provider cascades can be slow; the write timeout covers a full
		// text-plus-vision fallback pass.
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s, nil
}

// Handler returns the server's HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start begins listening. It returns once the listener is bound; serving
// continues in the background until Shutdown.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true
	s.startTime = time.Now()
	s.mu.Unlock()

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", s.httpServer.Addr, err)
	}

	s.logger.Info("server listening", "addr", ln.Addr().String())
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server stopped unexpectedly", "error", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false
	s.logger.Info("server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// Uptime reports how long the server has been running.
func (s *Server) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.startTime.IsZero() {
		return 0
	}
	return time.Since(s.startTime)
}
