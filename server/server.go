package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"

	"github.com/hupe1980/agentrelay/lifecycle"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/metrics"
)

// Options configures the HTTP server.
type Options struct {
	// Addr is the listen address. Default ":8080".
	Addr string

	// ServiceName tags request log lines. Default "agentrelay".
	ServiceName string

	// Metrics, when set, enables the GET /metrics endpoint.
	Metrics *metrics.Collector

	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Server wraps the engine manager behind the HTTP API.
type Server struct {
	manager *lifecycle.Manager
	metrics *metrics.Collector
	logger  logging.Logger
	router  chi.Router
	http    *http.Server
}

// New builds a Server around a lifecycle manager.
func New(manager *lifecycle.Manager, optFns ...func(o *Options)) *Server {
	opts := Options{
		Addr:        ":8080",
		ServiceName: "agentrelay",
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{
		manager: manager,
		metrics: opts.Metrics,
		logger:  opts.Logger,
	}

	httpLogger := httplog.NewLogger(opts.ServiceName, httplog.Options{
		JSON:    true,
		Concise: true,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(httpLogger))
	r.Use(middleware.Recoverer)

	r.Route("/dynamic-requests", func(r chi.Router) {
		r.Post("/create", s.handleCreateRequest)
		r.Post("/detect-gaps", s.handleDetectGaps)
		r.Get("/{requestID}/status", s.handleRequestStatus)
		r.Get("/{requestID}/results", s.handleRequestResults)
	})
	r.Route("/context-integration", func(r chi.Router) {
		r.Post("/create", s.handleCreateIntegration)
		r.Get("/{integrationID}/status", s.handleIntegrationStatus)
	})
	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Get("/metrics", s.handleMetrics)
	}

	s.router = r
	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router returns the HTTP handler, mainly for tests.
func (s *Server) Router() http.Handler { return s.router }

// ListenAndServe blocks serving requests until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
