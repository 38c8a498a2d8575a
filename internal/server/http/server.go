// Package httpserver provides the HTTP API server for the research
// search service.
package httpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/paperscout/research-search-service/internal/domain"
)

// Searcher handles one inbound search request. Implemented by the search
// gateway; stubbed in tests.
type Searcher interface {
	Search(ctx context.Context, clientKey, rawQuery, rawRows string) (*domain.SearchResult, error)
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// MetricsEnabled mounts the Prometheus handler at MetricsPath.
	MetricsEnabled bool
	MetricsPath    string

	// StaticDir, when non-empty, serves static assets with an
	// index.html fallback for unknown paths.
	StaticDir string
}

// Server is the HTTP API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	searcher   Searcher
	config     Config
	logger     zerolog.Logger
}

// NewServer creates a new HTTP server around the given searcher.
func NewServer(cfg Config, searcher Searcher, logger zerolog.Logger) *Server {
	s := &Server{
		searcher: searcher,
		config:   cfg,
		logger:   logger.With().Str("component", "http-server").Logger(),
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(correlationIDMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.searchHandler)
		r.Get("/health", s.healthHandler)
	})

	if s.config.MetricsEnabled {
		path := s.config.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.Handler())
	}

	if s.config.StaticDir != "" {
		s.mountStatic(r)
	}

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
