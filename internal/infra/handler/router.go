package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig bundles handler dependencies.
type RouterConfig struct {
	StudentHandler *StudentHandler
	HealthHandler  *HealthHandler

	APIBasePath        string
	Middlewares        []func(http.Handler) http.Handler
	PrometheusHandler  http.Handler
	CORSAllowedOrigins []string
}

// NewRouter wires handlers and middlewares.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	for _, mw := range cfg.Middlewares {
		if mw == nil {
			continue
		}
		r.Use(mw)
	}

	if cfg.PrometheusHandler != nil {
		r.Handle("/metrics", cfg.PrometheusHandler)
	}

	apiBasePath := normalizeAPIBasePath(cfg.APIBasePath)
	if apiBasePath == "" {
		apiBasePath = "/"
	}
	r.Route(apiBasePath, func(api chi.Router) {
		if cfg.StudentHandler != nil {
			cfg.StudentHandler.RegisterRoutes(api)
		}
		if cfg.HealthHandler != nil {
			api.Get("/health", cfg.HealthHandler.ServeHTTP)
		}
	})
	return r
}
