package runtime

import (
	"context"
	"fmt"
	"net/http"

	"github.com/architeacher/netinventory/internal/adapters/repos"
	"github.com/architeacher/netinventory/internal/config"
	"github.com/architeacher/netinventory/internal/infrastructure/database"
	"github.com/architeacher/netinventory/internal/ports"
	"github.com/architeacher/netinventory/internal/usecases"
	"github.com/architeacher/netinventory/pkg/logger"
	"github.com/architeacher/netinventory/pkg/metrics"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	infrastructureDep struct {
		httpServer     *http.Server
		db             *database.DB
		logger         logger.Logger
		metricsClient  metrics.Client
		tracerProvider otelTrace.TracerProvider
	}

	repositories struct {
		secretsRepo ports.SecretsRepository
		devicesRepo *repos.DevicesRepository
	}

	dependencies struct {
		config *config.ServiceConfig

		infra infrastructureDep

		repos repositories

		devicesService ports.DevicesService

		app *usecases.Application

		cleanups []cleanup
	}

	cleanup struct {
		resource string
		fn       func(ctx context.Context) error
	}

	DependencyOption func(*dependencies) error
)

func initializeDependencies(ctx context.Context, opts ...DependencyOption) (*dependencies, error) {
	deps := &dependencies{}

	allOpts := append(defaultOptions(ctx), opts...)

	for _, opt := range allOpts {
		if err := opt(deps); err != nil {
			return nil, fmt.Errorf("failed to apply dependency option: %w", err)
		}
	}

	return deps, nil
}

// onShutdown registers fn to run during shutdown. Resources are released in reverse order of registration.
func (d *dependencies) onShutdown(resource string, fn func(ctx context.Context) error) {
	d.cleanups = append(d.cleanups, cleanup{resource: resource, fn: fn})
}
