package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	discoveryhandler "atrium/internal/discovery/handler"
	discoverymetrics "atrium/internal/discovery/metrics"
	discoveryservice "atrium/internal/discovery/service"
	"atrium/internal/notify"
	"atrium/internal/platform/config"
	"atrium/internal/platform/health"
	"atrium/internal/platform/logger"
	"atrium/internal/platform/metrics"
	"atrium/internal/session"
	tenanthandler "atrium/internal/tenantform/handler"
	tenantmetrics "atrium/internal/tenantform/metrics"
	tenantmodels "atrium/internal/tenantform/models"
	tenantservice "atrium/internal/tenantform/service"
	httptransport "atrium/internal/transport/http"
	"atrium/internal/upstream"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing console",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"identity_api", cfg.UpstreamBaseURL,
	)

	client := upstream.NewClient(cfg.UpstreamBaseURL, log,
		upstream.WithTracer(otel.Tracer("atrium/upstream")),
	)

	// The validation settings snapshot is fetched once at startup; the
	// form runs against this snapshot until the process restarts.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	rawSettings, err := client.FetchValidationSettings(ctx)
	cancel()
	if err != nil {
		log.Error("fetching validation settings failed", "error", err)
		rawSettings = &upstream.ValidationSettings{}
	}
	settings, err := tenantmodels.CompileSettings(rawSettings)
	if err != nil {
		// Broken patterns are skipped, the remaining rules still apply.
		log.Warn("some validation patterns were skipped", "error", err)
	}

	feed := notify.NewFeed(log, 100)
	issuer := session.NewIssuer(cfg.JWTSigningKey, cfg.AdminTokenHash, cfg.SessionTTL)

	tenantSvc, err := tenantservice.New(client, settings,
		tenantservice.WithLogger(log),
		tenantservice.WithMetrics(tenantmetrics.New()),
		tenantservice.WithNotifier(feed),
		tenantservice.WithCacheEntries(cfg.AvailabilityCacheEntries),
	)
	if err != nil {
		log.Error("building tenant form service failed", "error", err)
		os.Exit(1)
	}

	dMetrics := discoverymetrics.New()
	discoveryHandler := discoveryhandler.New(func() (*discoveryservice.Assigner, error) {
		return discoveryservice.NewAssigner(client, cfg.OrganizationPageSize, cfg.FilterDebounce,
			discoveryservice.WithLogger(log),
			discoveryservice.WithMetrics(dMetrics),
			discoveryservice.WithNotifier(feed),
		)
	}, rawSettings, log)

	healthHandler := health.New(cfg.Environment)
	healthHandler.RegisterCheck("identity_api", func() error {
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer pingCancel()
		return client.Ping(pingCtx)
	})

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   log,
		Health:   healthHandler,
		Metrics:  metrics.NewHTTP(),
		Session:  session.NewHandler(issuer, log),
		Verifier: issuer,
		Console: []httptransport.Registrar{
			tenanthandler.New(tenantSvc, rawSettings, log),
			discoveryHandler,
			notify.NewHandler(feed),
		},
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
