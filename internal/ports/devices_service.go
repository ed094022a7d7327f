package ports

import (
	"context"

	"github.com/architeacher/netinventory/internal/domain/model"
)

// DevicesService defines the device registry operations.
type DevicesService interface {
	// CreateDevice validates the input and stores it as a new device.
	CreateDevice(ctx context.Context, input model.DeviceInput) (*model.Device, error)

	// ListDevices returns every registered device.
	ListDevices(ctx context.Context) ([]*model.Device, error)

	// DeleteDevice deletes a device by its ID.
	DeleteDevice(ctx context.Context, id model.DeviceID) error
}
