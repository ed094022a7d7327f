package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/architeacher/netinventory/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/mattn/go-sqlite3"    // registers the "sqlite3" driver
)

const (
	DevicesTable = "devices"

	dirPermissions = 0750
)

type (
	// Dialect captures everything that differs between the supported engines.
	Dialect struct {
		Name            string
		DriverName      string
		Placeholder     sq.PlaceholderFormat
		ExpectedColumns map[string]string

		createTableSQL string
		columnsQuery   func(builder sq.StatementBuilderType) sq.SelectBuilder
	}

	// DB is a database handle bound to its dialect.
	DB struct {
		*sql.DB
		Dialect Dialect
	}
)

var (
	SQLite = Dialect{
		Name:        config.DriverSQLite,
		DriverName:  "sqlite3",
		Placeholder: sq.Question,
		ExpectedColumns: map[string]string{
			"id":           "INTEGER",
			"ip":           "TEXT",
			"name":         "TEXT",
			"traffic_rate": "REAL",
		},
		createTableSQL: `CREATE TABLE IF NOT EXISTS devices (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ip TEXT NOT NULL,
			name TEXT NOT NULL,
			traffic_rate REAL NOT NULL
		)`,
		columnsQuery: func(builder sq.StatementBuilderType) sq.SelectBuilder {
			return builder.Select("name", "type").
				From("pragma_table_info('" + DevicesTable + "')").
				OrderBy("cid")
		},
	}

	Postgres = Dialect{
		Name:        config.DriverPostgres,
		DriverName:  "pgx",
		Placeholder: sq.Dollar,
		ExpectedColumns: map[string]string{
			"id":           "integer",
			"ip":           "text",
			"name":         "text",
			"traffic_rate": "real",
		},
		createTableSQL: `CREATE TABLE IF NOT EXISTS devices (
			id INTEGER GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
			ip TEXT NOT NULL,
			name TEXT NOT NULL,
			traffic_rate REAL NOT NULL
		)`,
		columnsQuery: func(builder sq.StatementBuilderType) sq.SelectBuilder {
			return builder.Select("column_name AS name", "data_type AS type").
				From("information_schema.columns").
				Where("table_schema = current_schema()").
				Where(sq.Eq{"table_name": DevicesTable}).
				OrderBy("ordinal_position")
		},
	}
)

func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverSQLite:
		return SQLite, nil
	case config.DriverPostgres:
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// StatementBuilder returns a squirrel builder using the dialect's placeholders.
func (d Dialect) StatementBuilder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(d.Placeholder)
}

// Open prepares a handle for the configured engine. No connection is made until first use.
// With the default of zero idle connections every released connection is closed.
func Open(cfg config.Database) (*DB, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn, err := dataSourceName(cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConnections)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConnections)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return &DB{
		DB:      sqlDB,
		Dialect: dialect,
	}, nil
}

func dataSourceName(cfg config.Database) (string, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.SQLite.Path); dir != "." {
			if err := os.MkdirAll(dir, dirPermissions); err != nil {
				return "", fmt.Errorf("creating database directory: %w", err)
			}
		}

		return fmt.Sprintf("file:%s?_busy_timeout=%d", cfg.SQLite.Path, cfg.SQLite.BusyTimeout.Milliseconds()), nil

	case config.DriverPostgres:
		pg := cfg.Postgres
		query := url.Values{}
		query.Set("sslmode", pg.SSLMode)

		if pg.ConnectTimeout > 0 {
			query.Set("connect_timeout", strconv.Itoa(int(pg.ConnectTimeout.Seconds())))
		}

		dsn := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(pg.Username, pg.Password),
			Host:     fmt.Sprintf("%s:%d", pg.Host, pg.Port),
			Path:     "/" + pg.Database,
			RawQuery: query.Encode(),
		}

		return dsn.String(), nil

	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
