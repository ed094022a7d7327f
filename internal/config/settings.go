package config

import "time"

var (
	ServiceVersion string
	CommitSHA      string
)

const (
	Development = 1 << iota
	Sandbox
	Staging
	Production
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type (
	ServiceConfig struct {
		App            App            `json:"app"`
		SecretsStorage SecretsStorage `json:"secrets_storage"`
		HTTPServer     HTTPServer     `json:"http_server"`
		Database       Database       `json:"database"`
		Logging        Logging        `json:"logging"`
		Telemetry      Telemetry      `json:"telemetry"`
	}

	App struct {
		ServiceName    string      `envconfig:"APP_SERVICE_NAME" default:"netinventory" json:"service_name"`
		ServiceVersion string      `envconfig:"APP_SERVICE_VERSION" default:"dev" json:"service_version"`
		CommitSHA      string      `envconfig:"APP_COMMIT_SHA" default:"" json:"commit_sha"`
		Env            Environment `json:"environment"`
	}

	Environment struct {
		Name string `envconfig:"APP_ENVIRONMENT" default:"development" json:"env"`
	}

	SecretsStorage struct {
		Enabled       bool          `envconfig:"VAULT_ENABLED" default:"false" json:"enabled"`
		Address       string        `envconfig:"VAULT_ADDRESS" default:"http://vault:8200" json:"address"`
		Token         string        `envconfig:"VAULT_TOKEN" default:"" json:"-"`
		RoleID        string        `envconfig:"VAULT_ROLE_ID" default:"" json:"role_id,omitempty"`
		SecretID      string        `envconfig:"VAULT_SECRET_ID" default:"" json:"-"`
		AuthMethod    string        `envconfig:"VAULT_AUTH_METHOD" default:"token" json:"auth_method"`
		MountPath     string        `envconfig:"VAULT_MOUNT_PATH" default:"netinventory" json:"mount_path"`
		Namespace     string        `envconfig:"VAULT_NAMESPACE" default:"" json:"namespace,omitempty"`
		Timeout       time.Duration `envconfig:"VAULT_TIMEOUT" default:"30s" json:"timeout"`
		MaxRetries    uint          `envconfig:"VAULT_MAX_RETRIES" default:"3" json:"max_retries"`
		TLSSkipVerify bool          `envconfig:"VAULT_TLS_SKIP_VERIFY" default:"false" json:"tls_skip_verify"`
	}

	HTTPServer struct {
		Host              string        `envconfig:"HTTP_SERVER_HOST" default:"0.0.0.0" json:"host"`
		Port              uint          `envconfig:"HTTP_SERVER_PORT" default:"5000" json:"port"`
		ReadHeaderTimeout time.Duration `envconfig:"HTTP_SERVER_READ_HEADER_TIMEOUT" default:"10s" json:"read_header_timeout"`
		IdleTimeout       time.Duration `envconfig:"HTTP_SERVER_IDLE_TIMEOUT" default:"60s" json:"idle_timeout"`
		ShutdownTimeout   time.Duration `envconfig:"HTTP_SERVER_SHUTDOWN_TIMEOUT" default:"15s" json:"shutdown_timeout"`
		MaxBodyBytes      int64         `envconfig:"HTTP_SERVER_MAX_BODY_BYTES" default:"1048576" json:"max_body_bytes"`
	}

	Database struct {
		Driver             string        `envconfig:"DATABASE_DRIVER" default:"sqlite3" json:"driver"`
		MaxIdleConnections int           `envconfig:"DATABASE_MAX_IDLE_CONNECTIONS" default:"0" json:"max_idle_connections"`
		MaxOpenConnections int           `envconfig:"DATABASE_MAX_OPEN_CONNECTIONS" default:"0" json:"max_open_connections"`
		ConnMaxLifetime    time.Duration `envconfig:"DATABASE_CONN_MAX_LIFETIME" default:"0s" json:"conn_max_lifetime"`
		SchemaStrict       bool          `envconfig:"DATABASE_SCHEMA_STRICT" default:"false" json:"schema_strict"`
		SQLite             SQLite        `json:"sqlite"`
		Postgres           Postgres      `json:"postgres"`
	}

	SQLite struct {
		Path        string        `envconfig:"SQLITE_PATH" default:"devices.db" json:"path"`
		BusyTimeout time.Duration `envconfig:"SQLITE_BUSY_TIMEOUT" default:"5s" json:"busy_timeout"`
	}

	Postgres struct {
		Host           string        `envconfig:"POSTGRES_HOST" default:"postgres" json:"host"`
		Port           uint          `envconfig:"POSTGRES_PORT" default:"5432" json:"port"`
		Database       string        `envconfig:"POSTGRES_DATABASE" default:"devices" json:"database"`
		Username       string        `envconfig:"POSTGRES_USERNAME" default:"postgres" json:"username"`
		Password       string        `envconfig:"POSTGRES_PASSWORD" default:"" json:"-"`
		SSLMode        string        `envconfig:"POSTGRES_SSL_MODE" default:"disable" json:"ssl_mode"`
		ConnectTimeout time.Duration `envconfig:"POSTGRES_CONNECT_TIMEOUT" default:"10s" json:"connect_timeout"`
	}

	Logging struct {
		Level     string    `envconfig:"LOG_LEVEL" default:"info" json:"level"`
		Format    string    `envconfig:"LOG_FORMAT" default:"console" json:"format"`
		AccessLog AccessLog `json:"access_log"`
	}

	AccessLog struct {
		Enabled         bool `envconfig:"ACCESS_LOG_ENABLED" default:"true" json:"enabled"`
		LogHealthChecks bool `envconfig:"ACCESS_LOG_HEALTH_CHECKS" default:"false" json:"log_health_checks"`
		IncludeMetadata bool `envconfig:"ACCESS_LOG_INCLUDE_METADATA" default:"true" json:"include_metadata"`
	}

	Telemetry struct {
		Enabled        bool    `envconfig:"OTEL_ENABLED" default:"false" json:"enabled"`
		ExporterType   string  `envconfig:"OTEL_EXPORTER" default:"grpc" json:"exporter_type"`
		OTLPEndpoint   string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"" json:"otlp_endpoint"`
		ServiceName    string  `envconfig:"OTEL_SERVICE_NAME" default:"netinventory" json:"service_name"`
		ServiceVersion string  `envconfig:"OTEL_SERVICE_VERSION" default:"1.0.0" json:"service_version"`
		Metrics        Metrics `json:"metrics"`
		Traces         Traces  `json:"traces"`
	}

	Metrics struct {
		Enabled bool `envconfig:"METRICS_ENABLED" default:"false" json:"enabled"`
	}

	Traces struct {
		Enabled      bool    `envconfig:"TRACES_ENABLED" default:"false" json:"enabled"`
		SamplerRatio float64 `envconfig:"TRACES_SAMPLER_RATIO" default:"1.0" json:"sampler_ratio"`
	}
)

func (c *ServiceConfig) GetEnvironment() int {
	switch c.App.Env.Name {
	case "production", "prod":
		return Production
	case "staging", "stg":
		return Staging
	case "sandbox", "sbx":
		return Sandbox
	default:
		return Development
	}
}

func (c *ServiceConfig) IsProduction() bool {
	return c.GetEnvironment() == Production
}

func (h HTTPServer) Address() string {
	return joinHostPort(h.Host, h.Port)
}
