package usecases

import (
	"github.com/architeacher/netinventory/internal/ports"
	"github.com/architeacher/netinventory/internal/usecases/commands"
	"github.com/architeacher/netinventory/internal/usecases/queries"
	"github.com/architeacher/netinventory/pkg/logger"
	"github.com/architeacher/netinventory/pkg/metrics"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	Commands struct {
		CreateDevice commands.CreateDeviceCommandHandler
		DeleteDevice commands.DeleteDeviceCommandHandler
	}

	Queries struct {
		ListDevices       queries.ListDevicesQueryHandler
		FetchLiveness     queries.FetchLivenessQueryHandler
		FetchReadiness    queries.FetchReadinessQueryHandler
		FetchHealthReport queries.FetchHealthReportQueryHandler
	}

	Application struct {
		Commands Commands
		Queries  Queries
	}

	// HealthTarget names the storage engine reported by the health endpoints.
	HealthTarget struct {
		Name    string
		Checker ports.DatabaseHealthChecker
		Version string
	}
)

func NewApplication(
	devicesSvc ports.DevicesService,
	health HealthTarget,
	log logger.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient metrics.Client,
) *Application {
	return &Application{
		Commands: Commands{
			CreateDevice: commands.NewCreateDeviceCommandHandler(devicesSvc, log, metricsClient, tracerProvider),
			DeleteDevice: commands.NewDeleteDeviceCommandHandler(devicesSvc, log, metricsClient, tracerProvider),
		},
		Queries: Queries{
			ListDevices:    queries.NewListDevicesQueryHandler(devicesSvc, log, metricsClient, tracerProvider),
			FetchLiveness:  queries.NewFetchLivenessQueryHandler(log, metricsClient, tracerProvider),
			FetchReadiness: queries.NewFetchReadinessQueryHandler(health.Checker, log, metricsClient, tracerProvider),
			FetchHealthReport: queries.NewFetchHealthReportQueryHandler(
				health.Name,
				health.Version,
				health.Checker,
				log,
				metricsClient,
				tracerProvider,
			),
		},
	}
}
