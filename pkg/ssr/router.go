package ssr

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Route binds a chi pattern to a page.
type Route struct {
	Pattern string
	Page    PageFunc
}

// RouterConfig configures NewRouter.
type RouterConfig struct {
	Options

	// Routes are mounted in order.
	Routes []Route

	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	// Tracing opens a server span per request with TracingOptions.
	Tracing        bool
	TracingOptions []TracingOption

	// Middleware runs after the built-in request ID and recoverer.
	Middleware []func(http.Handler) http.Handler
}

// NewRouter creates a chi router serving every route as a page, plus
// /healthz and, when a gatherer is set, /metrics. Requests get an ID and
// panics are recovered.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	metrics := suspense.NewMetrics(suspense.WithRegistry(reg))
//	r := ssr.NewRouter(ssr.RouterConfig{
//	    Options:  ssr.Options{Renderer: suspense.NewRenderer(suspense.Config{Metrics: metrics})},
//	    Routes:   []ssr.Route{{Pattern: "/", Page: home}},
//	    Gatherer: reg,
//	})
//	http.ListenAndServe(":3000", r)
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.Tracing {
		r.Use(Tracing(cfg.TracingOptions...))
	}
	r.Use(middleware.Recoverer)
	for _, mw := range cfg.Middleware {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	for _, route := range cfg.Routes {
		r.Method(http.MethodGet, route.Pattern, Handler(route.Page, cfg.Options))
	}
	return r
}
