// Package core provides the HTTP chassis for the notification pipeline API.
// It creates a chi router compatible with both standard HTTP (for local dev)
// and AWS Lambda Proxy Integration (via chiadapter), and enforces
// cross-cutting concerns before requests reach the dispatch handler.
package core

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lumiso/internal/config"
	"lumiso/internal/types"
)

// defaultRequestTimeout is the soft deadline applied to request contexts.
// In production this should stay under the Lambda hard timeout.
const defaultRequestTimeout = 29 * time.Second

// Server holds the chassis dependencies. Routes are mounted separately so
// tests can register their own handlers.
type Server struct {
	Config    *config.Config
	Logger    types.Logger
	Validator *Validator

	// HealthProbes report the liveness of critical dependencies. Probes are
	// registered by the entry point before MountRoutes.
	HealthProbes []HealthProbe

	// V1RouteRegistrars mount domain handlers under /v1. The indirection
	// keeps core free of handler package imports.
	V1RouteRegistrars []func(chi.Router)

	router *chi.Mux
}

// NewServer initializes the chassis and performs fail-fast checks on the
// required dependencies.
func NewServer(cfg *config.Config, logger types.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(),
		router:    chi.NewRouter(),
	}, nil
}

// Handler returns the http.Handler for the router. Used by
// http.ListenAndServe locally and chiadapter.New on Lambda.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// MountRoutes registers the global middleware chain, the /v1 route group,
// and the health endpoint. Middleware order matters: the recoverer is
// outermost so panics anywhere in the chain produce a JSON 500.
func (s *Server) MountRoutes() {
	s.router.Use(s.Recoverer)
	s.router.Use(ContextTimeoutMiddleware(defaultRequestTimeout))
	s.router.Use(RequestIDMiddleware)
	s.router.Use(RequestLogger(s.Logger))

	s.router.Route("/v1", func(r chi.Router) {
		for _, registrar := range s.V1RouteRegistrars {
			registrar(r)
		}
	})

	s.router.Get("/health", s.HandleHealth)
}
