package http

import (
	"net/http"

	"github.com/architeacher/netinventory/internal/adapters/inbound/http/handlers"
	"github.com/architeacher/netinventory/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/netinventory/internal/config"
	"github.com/architeacher/netinventory/internal/usecases"
	"github.com/architeacher/netinventory/pkg/logger"
	"github.com/architeacher/netinventory/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type RouterConfig struct {
	App            *usecases.Application
	Logger         logger.Logger
	MetricsClient  metrics.Client
	TracerProvider otelTrace.TracerProvider
	Config         *config.ServiceConfig
}

func NewRouter(cfg RouterConfig) http.Handler {
	router := chi.NewRouter()

	// Core middlewares - always applied
	router.Use(middleware.RequestTracking())
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Recovery(cfg.Logger))
	router.Use(middleware.SecurityHeaders())

	if cfg.Config.Telemetry.Metrics.Enabled {
		metricsMiddleware := middleware.NewMetricsMiddleware(cfg.MetricsClient)
		router.Use(metricsMiddleware.Middleware)
		cfg.Logger.Info().Msg("HTTP metrics collection enabled")
	}

	// Access logging with health check filtering
	if cfg.Config.Logging.AccessLog.Enabled {
		healthFilter := middleware.NewHealthCheckFilter(cfg.Config.Logging.AccessLog.LogHealthChecks)
		accessLogger := middleware.NewAccessLogger(cfg.Logger, cfg.Config.Logging.AccessLog.IncludeMetadata)

		router.Use(healthFilter.Middleware)
		router.Use(accessLogger.Middleware)
	}

	router.NotFound(handlers.NotFound)
	router.MethodNotAllowed(handlers.MethodNotAllowed)

	deviceHandler := handlers.NewDeviceHandler(cfg.App, cfg.Logger, cfg.Config.HTTPServer.MaxBodyBytes)
	healthHandler := handlers.NewHealthHandler(cfg.App)

	router.Route("/devices", func(r chi.Router) {
		r.Get("/", deviceHandler.ListDevices)
		r.Post("/", deviceHandler.CreateDevice)
		r.Delete("/{"+handlers.DeviceIDParam+":[0-9]+}", deviceHandler.DeleteDevice)
	})

	router.Get("/health", healthHandler.HealthCheck)
	router.Get("/liveness", healthHandler.LivenessCheck)
	router.Get("/readiness", healthHandler.ReadinessCheck)

	if cfg.Config.Telemetry.Metrics.Enabled {
		router.Method(http.MethodGet, "/metrics", cfg.MetricsClient.Handler())
	}

	if !cfg.Config.Telemetry.Traces.Enabled || cfg.TracerProvider == nil {
		return router
	}

	cfg.Logger.Info().Msg("distributed tracing enabled")

	return otelhttp.NewHandler(
		router,
		cfg.Config.App.ServiceName,
		otelhttp.WithTracerProvider(cfg.TracerProvider),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
