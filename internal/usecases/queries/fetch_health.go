package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/architeacher/netinventory/internal/ports"
	"github.com/architeacher/netinventory/pkg/decorator"
	"github.com/architeacher/netinventory/pkg/logger"
	"github.com/architeacher/netinventory/pkg/metrics"
	otelTrace "go.opentelemetry.io/otel/trace"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

type (
	FetchHealthReportQuery struct{}

	HealthResult struct {
		Status       string                            `json:"status"`
		Version      string                            `json:"version"`
		Uptime       string                            `json:"uptime"`
		Dependencies map[string]ports.DependencyStatus `json:"dependencies"`
	}

	FetchHealthReportQueryHandler = decorator.QueryHandler[FetchHealthReportQuery, *HealthResult]

	fetchHealthReportQueryHandler struct {
		dependencyName  string
		version         string
		dbHealthChecker ports.DatabaseHealthChecker
		startTime       time.Time
	}
)

func NewFetchHealthReportQueryHandler(
	dependencyName string,
	version string,
	dbHealthChecker ports.DatabaseHealthChecker,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) FetchHealthReportQueryHandler {
	return decorator.ApplyQueryDecorators[FetchHealthReportQuery, *HealthResult](
		fetchHealthReportQueryHandler{
			dependencyName:  dependencyName,
			version:         version,
			dbHealthChecker: dbHealthChecker,
			startTime:       time.Now(),
		},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h fetchHealthReportQueryHandler) Execute(ctx context.Context, _ FetchHealthReportQuery) (*HealthResult, error) {
	start := time.Now()
	dbErr := h.dbHealthChecker.PingContext(ctx)
	latency := time.Since(start)

	dbStatus := ports.DependencyStatus{
		Healthy: dbErr == nil,
		Latency: fmt.Sprintf("%dms", latency.Milliseconds()),
	}

	if dbErr != nil {
		dbStatus.Message = dbErr.Error()
	}

	overallStatus := StatusHealthy
	if !dbStatus.Healthy {
		overallStatus = StatusUnhealthy
	}

	return &HealthResult{
		Status:       overallStatus,
		Version:      h.version,
		Uptime:       time.Since(h.startTime).String(),
		Dependencies: map[string]ports.DependencyStatus{h.dependencyName: dbStatus},
	}, nil
}
