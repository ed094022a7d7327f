package database

import (
	"context"
	"database/sql"
	"fmt"
	"maps"

	"github.com/architeacher/netinventory/pkg/logger"
	"github.com/georgysavva/scany/v2/sqlscan"
)

type (
	// SchemaManager keeps the devices table at exactly the expected shape.
	SchemaManager struct {
		db     *DB
		logger logger.Logger
	}

	columnRow struct {
		Name string `db:"name"`
		Type string `db:"type"`
	}
)

func NewSchemaManager(db *DB, log logger.Logger) *SchemaManager {
	return &SchemaManager{
		db:     db,
		logger: log.Component("schema"),
	}
}

// EnsureSchema creates the devices table when it is absent and rebuilds it when its
// column set differs from the expected one. Rebuilding discards every stored row.
func (m *SchemaManager) EnsureSchema(ctx context.Context) error {
	columns, err := m.Columns(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to inspect devices table, attempting to create it")

		return m.create(ctx)
	}

	if len(columns) == 0 {
		m.logger.Info().Str("dialect", m.db.Dialect.Name).Msg("devices table not found, creating it")

		return m.create(ctx)
	}

	if maps.Equal(columns, m.db.Dialect.ExpectedColumns) {
		m.logger.Debug().Msg("devices table matches the expected structure")

		return nil
	}

	return m.recreate(ctx, columns)
}

// Columns returns the persisted column name to declared type mapping of the devices table.
// An absent table yields an empty map.
func (m *SchemaManager) Columns(ctx context.Context) (map[string]string, error) {
	query, args, err := m.db.Dialect.columnsQuery(m.db.Dialect.StatementBuilder()).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build columns query: %w", err)
	}

	var rows []columnRow
	if err := sqlscan.Select(ctx, m.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("inspecting devices table: %w", err)
	}

	columns := make(map[string]string, len(rows))
	for _, row := range rows {
		columns[row.Name] = row.Type
	}

	return columns, nil
}

func (m *SchemaManager) create(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, m.db.Dialect.createTableSQL); err != nil {
		m.logger.Error().Err(err).Msg("failed to create devices table")

		return fmt.Errorf("creating devices table: %w", err)
	}

	return nil
}

func (m *SchemaManager) recreate(ctx context.Context, current map[string]string) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting schema transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				m.logger.Error().Err(rbErr).Msg("failed to roll back schema transaction")
			}
		}
	}()

	var discarded int64
	if err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+DevicesTable).Scan(&discarded); err != nil {
		return fmt.Errorf("counting devices before rebuild: %w", err)
	}

	m.logger.Warn().
		Interface("current_columns", current).
		Interface("expected_columns", m.db.Dialect.ExpectedColumns).
		Int64("discarded_rows", discarded).
		Msg("devices table structure mismatch, recreating table")

	if _, err = tx.ExecContext(ctx, "DROP TABLE "+DevicesTable); err != nil {
		return fmt.Errorf("dropping devices table: %w", err)
	}

	if _, err = tx.ExecContext(ctx, m.db.Dialect.createTableSQL); err != nil {
		m.logger.Error().Err(err).Msg("failed to create devices table")

		return fmt.Errorf("creating devices table: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}
