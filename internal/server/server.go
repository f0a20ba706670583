// Package server exposes the diagram store over HTTP for a browser
// rendering surface.
//
// The surface fetches snapshots with GET /api/diagram, reports gestures as
// batches of change descriptors (POST /api/nodes/changes, POST
// /api/edges/changes) and submits forms through the node and edge
// endpoints. Destructive requests need confirm=true.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/diagrammer/pkg/diagram"
	"github.com/matzehuels/diagrammer/pkg/forms"
	"github.com/matzehuels/diagrammer/pkg/persist"
)

// StatusSource reports persistence health. *persist.Adapter implements it.
type StatusSource interface {
	Status() persist.Status
}

// Config holds HTTP server settings.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// Deps are the collaborators a Server needs.
type Deps struct {
	Store  *diagram.Store
	Forms  *forms.Controller
	Status StatusSource
	Logger *log.Logger

	// Registry is served on /metrics. Nil creates a private registry.
	Registry *prometheus.Registry

	// Metrics are registered with Registry. Nil creates them.
	Metrics *Metrics
}

// Server is the diagram HTTP API.
type Server struct {
	cfg     Config
	store   *diagram.Store
	forms   *forms.Controller
	status  StatusSource
	logger  *log.Logger
	metrics *Metrics
	reg     *prometheus.Registry
}

// New creates a server. It does not start listening.
func New(cfg Config, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics(deps.Registry)
	}
	if deps.Forms == nil {
		deps.Forms = forms.New(deps.Store, forms.Options{})
	}
	return &Server{
		cfg:     cfg,
		store:   deps.Store,
		forms:   deps.Forms,
		status:  deps.Status,
		logger:  deps.Logger,
		metrics: deps.Metrics,
		reg:     deps.Registry,
	}
}

// Metrics returns the server's Prometheus collectors. Register them as
// observability hooks to record events.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	if len(s.cfg.AllowedOrigins) > 0 {
		// A single "*" entry allows every origin.
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         600,
		}))
	}

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.getStatus)

		r.Get("/diagram", s.getDiagram)
		r.Put("/diagram", s.replaceDiagram)
		r.Get("/diagram/stats", s.getStats)
		r.Post("/diagram/clear", s.clearDiagram)

		r.Route("/nodes", func(r chi.Router) {
			r.Get("/", s.listNodes)
			r.Post("/", s.addNode)
			r.Post("/changes", s.applyNodeChanges)
			r.Get("/{id}", s.getNode)
			r.Patch("/{id}", s.editNode)
			r.Delete("/{id}", s.deleteNode)
		})

		r.Route("/edges", func(r chi.Router) {
			r.Get("/", s.listEdges)
			r.Post("/", s.addEdge)
			r.Post("/changes", s.applyEdgeChanges)
			r.Get("/{id}", s.getEdge)
			r.Patch("/{id}", s.editEdge)
			r.Delete("/{id}", s.deleteEdge)
		})

		r.Get("/view/fit", s.fitView)
		r.Get("/export", s.export)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
