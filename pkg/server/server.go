// Package server exposes the flint search engine over HTTP.
//
// The surface is four endpoints (/health, /metrics, /documents, /search)
// with RFC 7807 problem responses and base64(JSON) cursor envelopes. The
// engine itself ships no synchronization (single-writer, many-reader), so
// the server serializes writes behind a RWMutex and shares reads.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"

	"github.com/RaphScript0/flint"
	"github.com/RaphScript0/flint/pkg/config"
	"github.com/RaphScript0/flint/pkg/metrics"
)

// Server is the HTTP front end over a single flint engine.
type Server struct {
	cfg       *config.Config
	engine    *flint.Engine
	mu        sync.RWMutex // serializes engine mutation against reads
	router    *chi.Mux
	httpSrv   *http.Server
	collector *metrics.Collector
	startTime time.Time
}

// New creates a server around an existing engine.
func New(cfg *config.Config, engine *flint.Engine) *Server {
	s := &Server{
		cfg:       cfg,
		engine:    engine,
		router:    chi.NewRouter(),
		collector: metrics.NewCollector(),
		startTime: time.Now(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpSrv = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// setupMiddleware configures the HTTP middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(requestIDMiddleware)
	s.router.Use(middleware.RealIP)
	s.router.Use(recoverMiddleware)
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.collector.RecordRequest()
			next.ServeHTTP(w, r)
		})
	})

	if s.cfg.RateLimitPerMinute > 0 {
		limiter := newRateLimiter(s.cfg.RateLimitPerMinute)
		s.router.Use(limiter.middleware(s.collector.RecordRateLimited))
	}

	s.router.Use(middleware.Timeout(60 * time.Second))
}

// setupRoutes configures the four-endpoint surface.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/metrics", s.handleMetrics)
	s.router.Post("/documents", s.handleDocuments)
	s.router.Post("/search", s.handleSearch)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusNotFound, CodeNotFound, "no such resource")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusNotFound, CodeNotFound, "no such resource")
	})
}

// Handler returns the complete handler chain including transparent gzip.
func (s *Server) Handler() http.Handler {
	return gzhttp.GzipHandler(s.router)
}

// Start begins serving and blocks until the listener closes.
func (s *Server) Start() error {
	slog.Info("server listening",
		slog.String("addr", s.cfg.Addr()),
		slog.Bool("metrics", s.cfg.MetricsEnabled))

	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("server shutting down")
	return s.httpSrv.Shutdown(ctx)
}
