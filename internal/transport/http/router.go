// Package httptransport assembles the console's HTTP surface: middleware
// stack, public session exchange, and the admin-guarded console routes.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"atrium/internal/platform/health"
	"atrium/internal/platform/metrics"
	"atrium/internal/platform/middleware"
)

// Registrar mounts a feature's routes on a router.
type Registrar interface {
	Register(r chi.Router)
}

// Deps carries everything the router mounts.
type Deps struct {
	Logger   *slog.Logger
	Health   *health.Handler
	Metrics  *metrics.HTTP
	Session  Registrar
	Verifier middleware.TokenVerifier

	// Console features, mounted behind the admin guard.
	Console []Registrar
}

// NewRouter wires the middleware stack and all endpoints. Health and
// metrics are unauthenticated; the session exchange is public; everything
// under /console requires an admin identity.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.ClientInfo(deps.Logger))
	r.Use(middleware.Timeout(30 * time.Second))

	deps.Health.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	if deps.Session != nil {
		deps.Session.Register(r)
	}

	r.Group(func(g chi.Router) {
		g.Use(middleware.RequireAdmin(deps.Verifier, deps.Logger))
		for _, feature := range deps.Console {
			feature.Register(g)
		}
	})

	return r
}
