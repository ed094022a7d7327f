package runtime

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"

	inboundhttp "github.com/architeacher/netinventory/internal/adapters/inbound/http"
	"github.com/architeacher/netinventory/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/netinventory/internal/adapters/repos"
	"github.com/architeacher/netinventory/internal/config"
	"github.com/architeacher/netinventory/internal/infrastructure"
	"github.com/architeacher/netinventory/internal/infrastructure/database"
	"github.com/architeacher/netinventory/internal/services"
	"github.com/architeacher/netinventory/internal/usecases"
	"github.com/architeacher/netinventory/pkg/logger"
	"github.com/architeacher/netinventory/pkg/metrics"
	"github.com/architeacher/netinventory/pkg/metrics/noop"
	"github.com/hashicorp/vault/api"
)

func defaultOptions(ctx context.Context) []DependencyOption {
	return []DependencyOption{
		WithConfig(),
		WithSecretsRepository(),
		WithSecrets(ctx),
		WithLogger(),
		WithTracing(ctx),
		WithMetrics(ctx),
		WithDatabase(ctx),
		WithSchema(ctx),
		WithDevicesRepository(),
		WithDevicesService(),
		WithApplication(),
		WithHTTPServer(),
	}
}

func WithConfig() DependencyOption {
	return func(d *dependencies) error {
		cfg, err := config.Init()
		if err != nil {
			return fmt.Errorf("initializing configuration: %w", err)
		}

		d.config = cfg

		return nil
	}
}

func WithSecretsRepository() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.SecretsStorage.Enabled {
			return nil
		}

		vaultConfig := api.DefaultConfig()
		vaultConfig.Address = d.config.SecretsStorage.Address
		vaultConfig.Timeout = d.config.SecretsStorage.Timeout

		if d.config.SecretsStorage.TLSSkipVerify {
			vaultConfig.HttpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		}

		client, err := api.NewClient(vaultConfig)
		if err != nil {
			return fmt.Errorf("creating Vault client: %w", err)
		}

		if d.config.SecretsStorage.Namespace != "" {
			client.SetNamespace(d.config.SecretsStorage.Namespace)
		}

		d.repos.secretsRepo = repos.NewVaultRepository(client)

		return nil
	}
}

func WithSecrets(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		if d.repos.secretsRepo == nil {
			return nil
		}

		if err := config.NewSecretsLoader(d.repos.secretsRepo).Load(ctx, d.config); err != nil {
			return fmt.Errorf("loading secrets from Vault: %w", err)
		}

		return nil
	}
}

func WithLogger() DependencyOption {
	return func(d *dependencies) error {
		d.infra.logger = logger.New(d.config.Logging.Level, d.config.Logging.Format)

		return nil
	}
}

func WithTracing(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		telemetry := d.config.Telemetry
		if !telemetry.Enabled || !telemetry.Traces.Enabled || telemetry.OTLPEndpoint == "" {
			d.infra.tracerProvider = infrastructure.NewNoopTracerProvider()

			return nil
		}

		tp, shutdown, err := infrastructure.NewTracerProvider(ctx, d.config.App, telemetry)
		if err != nil {
			return fmt.Errorf("initializing tracer: %w", err)
		}

		d.infra.tracerProvider = tp
		d.onShutdown("tracer", shutdown)

		return nil
	}
}

func WithMetrics(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		if !d.config.Telemetry.Metrics.Enabled {
			d.infra.metricsClient = noop.NewMetricsClient()

			return nil
		}

		mp, reader, err := infrastructure.NewMeterProvider(ctx, d.config.App, d.config.Telemetry)
		if err != nil {
			return fmt.Errorf("initializing meter provider: %w", err)
		}

		d.infra.metricsClient = metrics.NewOtelClient(
			mp.Meter(d.config.App.ServiceName),
			metrics.WithReader(reader),
			metrics.WithDescriptors(middleware.Descriptors),
			metrics.WithShutdown(mp.Shutdown),
		)
		d.onShutdown("metrics", d.infra.metricsClient.Shutdown)

		return nil
	}
}

func WithDatabase(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		db, err := database.Open(d.config.Database)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}

		if err := db.PingContext(ctx); err != nil {
			d.infra.logger.Warn().
				Err(err).
				Str("driver", db.Dialect.Name).
				Msg("database is not reachable yet")
		}

		d.infra.db = db
		d.onShutdown("database", func(context.Context) error {
			return db.Close()
		})

		return nil
	}
}

// WithSchema reconciles the devices table. Failures are logged and startup continues,
// unless DATABASE_SCHEMA_STRICT is set.
func WithSchema(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		err := database.NewSchemaManager(d.infra.db, d.infra.logger).EnsureSchema(ctx)
		if err == nil {
			return nil
		}

		if d.config.Database.SchemaStrict {
			return fmt.Errorf("ensuring database schema: %w", err)
		}

		d.infra.logger.Error().Err(err).Msg("failed to ensure database schema, continuing")

		return nil
	}
}

func WithDevicesRepository() DependencyOption {
	return func(d *dependencies) error {
		d.repos.devicesRepo = repos.NewDevicesRepository(d.infra.db, repos.NewSQLScanner(), d.infra.logger)

		return nil
	}
}

func WithDevicesService() DependencyOption {
	return func(d *dependencies) error {
		d.devicesService = services.NewDevicesService(d.repos.devicesRepo)

		return nil
	}
}

func WithApplication() DependencyOption {
	return func(d *dependencies) error {
		d.app = usecases.NewApplication(
			d.devicesService,
			usecases.HealthTarget{
				Name:    d.infra.db.Dialect.Name,
				Checker: d.repos.devicesRepo,
				Version: d.config.App.ServiceVersion,
			},
			d.infra.logger,
			d.infra.tracerProvider,
			d.infra.metricsClient,
		)

		return nil
	}
}

func WithHTTPServer() DependencyOption {
	return func(d *dependencies) error {
		router := inboundhttp.NewRouter(inboundhttp.RouterConfig{
			App:            d.app,
			Logger:         d.infra.logger,
			MetricsClient:  d.infra.metricsClient,
			TracerProvider: d.infra.tracerProvider,
			Config:         d.config,
		})

		d.infra.httpServer = &http.Server{
			Handler:           router,
			ReadHeaderTimeout: d.config.HTTPServer.ReadHeaderTimeout,
			IdleTimeout:       d.config.HTTPServer.IdleTimeout,
		}
		d.onShutdown("http server", d.infra.httpServer.Shutdown)

		return nil
	}
}
