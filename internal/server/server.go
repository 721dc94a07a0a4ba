// Package server assembles the HTTP surface: middleware chain, domain
// handlers, and operational endpoints.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"claimshub/internal/addresslookup"
	claimshandler "claimshub/internal/claims/handler"
	"claimshub/internal/dashboard"
	"claimshub/internal/export"
	funnelhandler "claimshub/internal/funnel/handler"
	"claimshub/internal/platform/metrics"
	"claimshub/internal/platform/middleware"
)

const requestTimeout = 30 * time.Second

// Deps carries everything the router needs.
type Deps struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	Funnel        *funnelhandler.Handler
	Claims        *claimshandler.Handler
	Dashboard     *dashboard.Handler
	AddressLookup *addresslookup.Handler
	Export        *export.Handler

	Registry *prometheus.Registry
	Health   func() error
}

// NewRouter wires the middleware chain and mounts every handler. Operational
// endpoints register before the funnel's introducer wildcard so they always
// win routing.
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.LatencyMiddleware(deps.Metrics))

	r.Get("/healthz", healthHandler(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	deps.Claims.Register(r)
	deps.Dashboard.Register(r)
	deps.AddressLookup.Register(r)
	deps.Export.Register(r)
	deps.Funnel.Register(r)

	return r
}

func healthHandler(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if check != nil {
			if err := check(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
