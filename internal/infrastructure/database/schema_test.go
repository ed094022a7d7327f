package database_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/architeacher/netinventory/internal/config"
	"github.com/architeacher/netinventory/internal/infrastructure/database"
	"github.com/architeacher/netinventory/pkg/logger"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(config.Database{
		Driver: config.DriverSQLite,
		SQLite: config.SQLite{
			Path:        filepath.Join(t.TempDir(), "devices.db"),
			BusyTimeout: 5 * time.Second,
		},
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func exec(t *testing.T, db *database.DB, statements ...string) {
	t.Helper()

	for _, statement := range statements {
		_, err := db.ExecContext(context.Background(), statement)
		require.NoError(t, err)
	}
}

func countDevices(t *testing.T, db *database.DB) int {
	t.Helper()

	var count int
	require.NoError(t, db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM devices").Scan(&count))

	return count
}

func TestSchemaManager_EnsureSchema(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name          string
		setup         []string
		expectedRows  int
		expectRebuild bool
	}{
		{
			name: "absent table is created",
		},
		{
			name: "matching table is kept with its rows",
			setup: []string{
				`CREATE TABLE devices (id INTEGER PRIMARY KEY AUTOINCREMENT, ip TEXT NOT NULL, name TEXT NOT NULL, traffic_rate REAL NOT NULL)`,
				`INSERT INTO devices (ip, name, traffic_rate) VALUES ('10.0.0.1', 'core', 12.5)`,
			},
			expectedRows: 1,
		},
		{
			name: "extra column triggers rebuild",
			setup: []string{
				`CREATE TABLE devices (id INTEGER PRIMARY KEY AUTOINCREMENT, ip TEXT, name TEXT, traffic_rate REAL, location TEXT)`,
				`INSERT INTO devices (ip, name, traffic_rate, location) VALUES ('10.0.0.1', 'core', 1, 'rack-1')`,
				`INSERT INTO devices (ip, name, traffic_rate, location) VALUES ('10.0.0.2', 'edge', 2, 'rack-2')`,
			},
			expectRebuild: true,
		},
		{
			name: "changed declared type triggers rebuild",
			setup: []string{
				`CREATE TABLE devices (id INTEGER PRIMARY KEY, ip TEXT, name TEXT, traffic_rate TEXT)`,
				`INSERT INTO devices (ip, name, traffic_rate) VALUES ('10.0.0.1', 'core', 'fast')`,
			},
			expectRebuild: true,
		},
		{
			name: "missing column triggers rebuild",
			setup: []string{
				`CREATE TABLE devices (id INTEGER PRIMARY KEY, ip TEXT, name TEXT)`,
			},
			expectRebuild: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			db := openTestDB(t)
			exec(t, db, tc.setup...)

			logBuffer := &bytes.Buffer{}
			manager := database.NewSchemaManager(db, logger.NewBufferedTestLogger(logBuffer))

			require.NoError(t, manager.EnsureSchema(context.Background()))

			columns, err := manager.Columns(context.Background())
			require.NoError(t, err)
			require.Equal(t, database.SQLite.ExpectedColumns, columns)
			require.Equal(t, tc.expectedRows, countDevices(t, db))

			if tc.expectRebuild {
				require.Contains(t, logBuffer.String(), "devices table structure mismatch, recreating table")
				require.Contains(t, logBuffer.String(), `"level":"warn"`)
			} else {
				require.NotContains(t, logBuffer.String(), "structure mismatch")
			}
		})
	}
}

func TestSchemaManager_EnsureSchema_LogsDiscardedRows(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	exec(t, db,
		`CREATE TABLE devices (id INTEGER PRIMARY KEY, ip TEXT, name TEXT, traffic_rate REAL, vendor TEXT)`,
		`INSERT INTO devices (ip, name, traffic_rate, vendor) VALUES ('10.0.0.1', 'a', 1, 'x')`,
		`INSERT INTO devices (ip, name, traffic_rate, vendor) VALUES ('10.0.0.2', 'b', 2, 'y')`,
	)

	logBuffer := &bytes.Buffer{}
	manager := database.NewSchemaManager(db, logger.NewBufferedTestLogger(logBuffer))

	require.NoError(t, manager.EnsureSchema(context.Background()))
	require.Contains(t, logBuffer.String(), `"discarded_rows":2`)
}

func TestSchemaManager_EnsureSchema_IsIdempotent(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	manager := database.NewSchemaManager(db, logger.NewTestLogger())

	require.NoError(t, manager.EnsureSchema(context.Background()))
	exec(t, db, `INSERT INTO devices (ip, name, traffic_rate) VALUES ('10.0.0.1', 'core', 3)`)
	require.NoError(t, manager.EnsureSchema(context.Background()))

	require.Equal(t, 1, countDevices(t, db))
}

func TestSchemaManager_EnsureSchema_ClosedDatabase(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	require.NoError(t, db.Close())

	logBuffer := &bytes.Buffer{}
	manager := database.NewSchemaManager(db, logger.NewBufferedTestLogger(logBuffer))

	err := manager.EnsureSchema(context.Background())
	require.ErrorContains(t, err, "creating devices table")
	require.Contains(t, logBuffer.String(), "failed to inspect devices table")
}

func TestDialectFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		driver      string
		expected    string
		expectError bool
	}{
		{name: "sqlite", driver: config.DriverSQLite, expected: "sqlite3"},
		{name: "postgres", driver: config.DriverPostgres, expected: "pgx"},
		{name: "unknown", driver: "oracle", expectError: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dialect, err := database.DialectFor(tc.driver)
			if tc.expectError {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.expected, dialect.DriverName)
		})
	}
}
