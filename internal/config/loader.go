package config

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/architeacher/netinventory/internal/ports"
	"github.com/hashicorp/vault/api"
	"github.com/kelseyhightower/envconfig"
)

// SecretsLoader overlays Vault KV v2 secrets on top of the environment configuration.
// Secrets are read once, at startup.
type SecretsLoader struct {
	secretsRepo ports.SecretsRepository
	sleep       func(time.Duration)
}

func NewSecretsLoader(secretsRepo ports.SecretsRepository) *SecretsLoader {
	return &SecretsLoader{
		secretsRepo: secretsRepo,
		sleep:       time.Sleep,
	}
}

func Init() (*ServiceConfig, error) {
	cfg := &ServiceConfig{}

	err := envconfig.Process("", cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service configuration: %w", err)
	}

	if len(ServiceVersion) != 0 {
		cfg.App.ServiceVersion = ServiceVersion
	}

	if len(CommitSHA) != 0 {
		cfg.App.CommitSHA = CommitSHA
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load authenticates against Vault and applies the secrets found under apps/data/<mount path>.
func (l *SecretsLoader) Load(ctx context.Context, cfg *ServiceConfig) error {
	if !cfg.SecretsStorage.Enabled {
		return fmt.Errorf("secret storage is not enabled")
	}

	if err := l.authenticate(ctx, cfg.SecretsStorage); err != nil {
		return fmt.Errorf("failed to authenticate with Vault: %w", err)
	}

	data, err := l.loadSecrets(ctx, cfg.SecretsStorage)
	if err != nil {
		return fmt.Errorf("failed to load secrets from Vault: %w", err)
	}

	applySecrets(cfg, data)

	return nil
}

func (l *SecretsLoader) authenticate(ctx context.Context, storage SecretsStorage) error {
	switch strings.ToLower(storage.AuthMethod) {
	case "token":
		if storage.Token == "" {
			return fmt.Errorf("token is required for token auth method")
		}
		l.secretsRepo.SetToken(storage.Token)

		return nil

	case "approle":
		if storage.RoleID == "" || storage.SecretID == "" {
			return fmt.Errorf("role_id and secret_id are required for approle auth method")
		}

		data := map[string]any{
			"role_id":   storage.RoleID,
			"secret_id": storage.SecretID,
		}

		resp, err := l.secretsRepo.WriteWithContext(ctx, "auth/approle/login", data)
		if err != nil {
			return fmt.Errorf("failed to authenticate via approle: %w", err)
		}

		if resp == nil || resp.Auth == nil {
			return fmt.Errorf("no auth info returned from Vault")
		}

		l.secretsRepo.SetToken(resp.Auth.ClientToken)

		return nil

	default:
		return fmt.Errorf("unsupported auth method: %s", storage.AuthMethod)
	}
}

func (l *SecretsLoader) loadSecrets(ctx context.Context, storage SecretsStorage) (map[string]any, error) {
	path := fmt.Sprintf("apps/data/%s", storage.MountPath)

	ctx, cancel := context.WithTimeout(ctx, storage.Timeout)
	defer cancel()

	var (
		secret *api.Secret
		err    error
	)

	for attempt := uint(0); attempt <= storage.MaxRetries; attempt++ {
		secret, err = l.secretsRepo.GetSecrets(ctx, path)
		if err == nil {
			break
		}

		if attempt < storage.MaxRetries {
			l.sleep(time.Duration(attempt+1) * time.Second)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read from path %s after %d retries: %w", path, storage.MaxRetries, err)
	}

	if secret == nil || secret.Data == nil {
		return nil, nil
	}

	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid secret format at path %s, missing 'data' key", path)
	}

	return data, nil
}

func applySecrets(cfg *ServiceConfig, data map[string]any) {
	for key, value := range data {
		strValue, ok := value.(string)
		if !ok || strValue == "" {
			continue
		}

		switch key {
		case "POSTGRES_PASSWORD":
			cfg.Database.Postgres.Password = strValue
		case "POSTGRES_USERNAME":
			cfg.Database.Postgres.Username = strValue
		case "POSTGRES_HOST":
			cfg.Database.Postgres.Host = strValue
		}
	}
}

func (c *ServiceConfig) validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Database.MaxIdleConnections < 0 {
		return fmt.Errorf("max idle connections must not be negative")
	}

	if c.IsProduction() && c.SecretsStorage.TLSSkipVerify {
		return fmt.Errorf("vault TLS verification cannot be skipped in production")
	}

	return nil
}

func joinHostPort(host string, port uint) string {
	return net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10))
}
