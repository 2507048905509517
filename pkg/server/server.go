// Package server exposes the conversion pipeline over HTTP. It wraps a
// pipeline.Runner and a run store behind a small JSON API:
//
//	POST /api/convert   - convert a flow document and persist a run record
//	GET  /api/runs      - list recent runs, newest first
//	GET  /api/runs/{id} - fetch a single run record
//	GET  /healthz       - liveness probe
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/laneflow/pkg/pipeline"
	"github.com/matzehuels/laneflow/pkg/store"
)

// Config holds the server dependencies and listen address.
type Config struct {
	Addr   string
	Runner *pipeline.Runner
	Store  store.Store
	Logger *log.Logger
}

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	srv    *http.Server
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
}

// NewServer builds a server from cfg. Runner and Store must be set;
// a nil Logger falls back to the default logger.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Runner == nil {
		return nil, fmt.Errorf("server: runner is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("server: store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		runner: cfg.Runner,
		store:  cfg.Store,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/convert", s.handleConvert)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})

	s.router = r
	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the routing handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
