// Package api serves the layout pipeline over HTTP.
//
// # Endpoints
//
//   - POST /v1/solve: solve a layout document and return the solved
//     document, its leaf shapes and any requested artifacts
//   - POST /v1/validate: check a document's constraints and structure
//     without solving
//   - GET /healthz: build information and the configured backend
//
// Every response carries an X-Request-ID header. Errors are JSON objects
// with the error code from package errors and a user-facing message.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cellsolve/pkg/config"
	"github.com/matzehuels/cellsolve/pkg/pipeline"
)

// shutdownTimeout bounds how long in-flight requests may finish after the
// serve context is cancelled.
const shutdownTimeout = 10 * time.Second

// Server exposes a pipeline runner over HTTP.
type Server struct {
	runner   *pipeline.Runner
	cfg      config.ServerConfig
	defaults pipeline.Options
	logger   *log.Logger
}

// New creates a server. Solve requests start from the options derived from
// cfg; request options override them field by field.
func New(runner *pipeline.Runner, cfg *config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner:   runner,
		cfg:      cfg.Server,
		defaults: pipeline.FromConfig(cfg),
		logger:   logger,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(limitBody(s.cfg.MaxBodyBytes))
		if d := s.cfg.RequestTimeout.Duration; d > 0 {
			r.Use(middleware.Timeout(d))
		}
		r.Post("/solve", s.handleSolve)
		r.Post("/validate", s.handleValidate)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "INVALID_INPUT", "method not allowed")
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is like ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
