// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	GET    /healthz                  liveness and build version
//	POST   /v1/layouts               compute and store a layout
//	GET    /v1/layouts               list stored layouts, newest first
//	GET    /v1/layouts/{id}          fetch a stored layout
//	GET    /v1/layouts/{id}/{format} render a stored layout (svg, png, pdf, dot, json)
//	DELETE /v1/layouts/{id}          delete a stored layout
//	GET    /v1/stats                 pipeline, cache and request counters (when enabled)
//
// Errors are JSON objects with "error" and "code" fields; the status code
// follows the error code.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stemma/pkg/observability"
	"github.com/matzehuels/stemma/pkg/pipeline"
	"github.com/matzehuels/stemma/pkg/store"
)

// Defaults for zero Config fields.
const (
	DefaultMaxBodyBytes  = 10 << 20
	DefaultLayoutTimeout = time.Minute
	DefaultListLimit     = 50
	requestSlack         = 30 * time.Second
	shutdownTimeout      = 10 * time.Second
	cleanupInterval      = time.Hour
)

// Config holds server settings.
type Config struct {
	Addr          string
	MaxBodyBytes  int64
	LayoutTimeout time.Duration // upper bound on a single layout request
	Retention     time.Duration // stored layouts older than this are removed; 0 keeps them
	Logger        *log.Logger
	Stats         *observability.Stats // served at /v1/stats when set
}

// Server serves layouts computed by a pipeline runner and kept in a store.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	cfg    Config
	logger *log.Logger
	router chi.Router
}

// New creates a server. The runner and store stay owned by the caller.
func New(runner *pipeline.Runner, st store.Store, cfg Config) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.LayoutTimeout <= 0 {
		cfg.LayoutTimeout = DefaultLayoutTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = runner.Logger
	}
	s := &Server{runner: runner, store: st, cfg: cfg, logger: cfg.Logger}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1/layouts", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Get("/{format}", s.handleRender)
		})
	})
	if s.cfg.Stats != nil {
		r.Get("/v1/stats", s.handleStats)
	}
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
// With a retention set, expired layouts are removed once an hour.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.Retention > 0 {
		go s.cleanupLoop(ctx)
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		s.cleanup(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) cleanup(ctx context.Context) {
	n, err := s.store.Cleanup(ctx, s.cfg.Retention)
	if err != nil {
		s.logger.Warn("cleanup failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("removed expired layouts", "count", n)
	}
}
