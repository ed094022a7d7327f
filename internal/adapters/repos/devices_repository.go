package repos

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/architeacher/netinventory/internal/domain/model"
	"github.com/architeacher/netinventory/internal/infrastructure/database"
	"github.com/architeacher/netinventory/pkg/logger"
)

var deviceColumns = []string{"id", "ip", "name", "traffic_rate"}

type (
	// DBOps defines the subset of *sql.DB the repository relies on.
	DBOps interface {
		QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
		QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
		ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
		PingContext(ctx context.Context) error
	}

	// DevicesRepository handles device persistence operations.
	DevicesRepository struct {
		db      DBOps
		builder sq.StatementBuilderType
		scanner Scanner
		logger  logger.Logger
	}

	deviceRow struct {
		ID          int64   `db:"id"`
		IP          string  `db:"ip"`
		Name        string  `db:"name"`
		TrafficRate float64 `db:"traffic_rate"`
	}
)

// NewDevicesRepository creates a repository over an opened database, using its dialect's placeholders.
func NewDevicesRepository(db *database.DB, scanner Scanner, log logger.Logger) *DevicesRepository {
	return NewDevicesRepositoryWithOps(db, db.Dialect.StatementBuilder(), scanner, log)
}

func NewDevicesRepositoryWithOps(
	db DBOps,
	builder sq.StatementBuilderType,
	scanner Scanner,
	log logger.Logger,
) *DevicesRepository {
	return &DevicesRepository{
		db:      db,
		builder: builder,
		scanner: scanner,
		logger:  log,
	}
}

func (r *DevicesRepository) Create(ctx context.Context, device *model.Device) error {
	query, args, err := r.builder.Insert(database.DevicesTable).
		Columns("ip", "name", "traffic_rate").
		Values(device.IP, device.Name, device.TrafficRate).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}

	device.ID = model.DeviceID(id)

	return nil
}

func (r *DevicesRepository) List(ctx context.Context) ([]*model.Device, error) {
	query, args, err := r.builder.Select(deviceColumns...).
		From(database.DevicesTable).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}
	defer rows.Close()

	var deviceRows []deviceRow
	if err := r.scanner.ScanAll(&deviceRows, rows); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}

	devices := make([]*model.Device, 0, len(deviceRows))
	for index := range deviceRows {
		devices = append(devices, deviceRows[index].toDevice())
	}

	return devices, nil
}

func (r *DevicesRepository) Exists(ctx context.Context, id model.DeviceID) (bool, error) {
	query, args, err := r.builder.Select(deviceColumns...).
		From(database.DevicesTable).
		Where(sq.Eq{"id": id.Int64()}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}
	defer rows.Close()

	var row deviceRow
	if err := r.scanner.ScanOne(&row, rows); err != nil {
		if r.scanner.IsNotFound(err) {
			return false, nil
		}

		return false, fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}

	return true, nil
}

func (r *DevicesRepository) Delete(ctx context.Context, id model.DeviceID) error {
	query, args, err := r.builder.Delete(database.DevicesTable).
		Where(sq.Eq{"id": id.Int64()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}

	if affected == 0 {
		r.logger.Debug().Int64("device_id", id.Int64()).Msg("device vanished before delete")

		return model.ErrDeviceNotFound
	}

	return nil
}

func (r *DevicesRepository) PingContext(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", model.ErrDatabaseConnection, err)
	}

	return nil
}

func (row deviceRow) toDevice() *model.Device {
	return &model.Device{
		ID:          model.DeviceID(row.ID),
		IP:          row.IP,
		Name:        row.Name,
		TrafficRate: row.TrafficRate,
	}
}
