// Package server exposes navigation over HTTP.
//
// Routes:
//
//	GET  /health
//	GET  /api/buildings
//	POST /api/ask_inside       {"start": "P1:H1_0", "arrival": "P1:2.14"}
//	POST /api/ask_outside      {"coords": [50.8125, 4.3810], "arrival": "P1:2.14"}
//	POST /api/ask_from_inside  {"start": "K:E7_0", "arrival": "P1:2.14"}
//	GET  /api/routes/{id}
//
// Every answered route is saved in the store and returned with its id.
// Errors are JSON objects {"code": ..., "error": ...} with a status derived
// from the error code.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/matzehuels/wayfinder/pkg/config"
	"github.com/matzehuels/wayfinder/pkg/navigator"
	"github.com/matzehuels/wayfinder/pkg/store"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 64 << 10

// Server holds the HTTP server dependencies.
type Server struct {
	runner  *navigator.Runner
	store   store.Store
	logger  *log.Logger
	cfg     config.ServerConfig
	ttl     time.Duration
	limiter *limiter
}

// New creates a server answering with runner and saving routes in st for
// ttl.
func New(runner *navigator.Runner, st store.Store, cfg config.ServerConfig, ttl time.Duration, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner:  runner,
		store:   st,
		logger:  logger,
		cfg:     cfg,
		ttl:     ttl,
		limiter: newLimiter(cfg.Rate, cfg.Burst),
	}
}

// Handler returns the complete HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(withPeer)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors(s.cfg.CORSOrigin))

	r.Get("/health", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.middleware)
		r.Get("/buildings", s.buildings)
		r.Post("/ask_inside", s.askInside)
		r.Post("/ask_outside", s.askOutside)
		r.Post("/ask_from_inside", s.askFromInside)
		r.Get("/routes/{id}", s.getRoute)
	})

	return otelhttp.NewHandler(r, "wayfinder")
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}
