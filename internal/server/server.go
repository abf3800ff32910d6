// Package server exposes the TimeNexus pipeline over HTTP.
//
// Collections are kept in sessions: creating a collection opens a session
// holding it, and extractions add their result to the same session.
//
//	POST /v1/collections                build a network definition
//	GET  /v1/collections/{id}           describe a session
//	GET  /v1/collections/{id}/graph     flattened graph JSON of a collection
//	POST /v1/collections/{id}/extract   run an extraction
//	GET  /v1/collections/{id}/view.svg  draw the flattened view
//	GET  /healthz
//	GET  /metrics
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/timenexus/timenexus/internal/config"
	"github.com/timenexus/timenexus/pkg/observability"
	"github.com/timenexus/timenexus/pkg/pipeline"
	"github.com/timenexus/timenexus/pkg/session"
)

// Server serves the HTTP API.
type Server struct {
	Runner     *pipeline.Runner
	Sessions   session.Store
	Config     config.ServerConfig
	SessionTTL time.Duration
	Logger     *log.Logger

	registry *prometheus.Registry
}

// New creates a server. Extraction, cache and service request metrics are
// registered on a registry of its own and served at /metrics.
func New(runner *pipeline.Runner, sessions session.Store, cfg config.ServerConfig, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewPrometheus(reg)
	observability.SetExtractionHooks(prom)
	observability.SetCacheHooks(prom)
	observability.SetHTTPHooks(prom)

	return &Server{
		Runner:     runner,
		Sessions:   sessions,
		Config:     cfg,
		SessionTTL: session.DefaultTTL,
		Logger:     logger,
		registry:   reg,
	}
}

// Handler returns the router of the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/v1/collections", func(r chi.Router) {
		r.Post("/", s.createCollection)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getCollection)
			r.Delete("/", s.deleteCollection)
			r.Get("/graph", s.getGraph)
			r.Post("/extract", s.extract)
			r.Get("/view.svg", s.view)
		})
	})
	return r
}

// Run serves the API on the configured address until ctx is done, then
// shuts the server down.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.Config.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.Config.ReadTimeout,
		WriteTimeout: s.Config.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("starting HTTP server", "address", s.Config.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("HTTP server error: %w", err)
		}
		close(errc)
	}()

	select {
	case err, ok := <-errc:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.Logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	return <-errc
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
