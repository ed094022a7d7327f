package ports

import (
	"context"

	"github.com/architeacher/netinventory/internal/domain/model"
)

type (
	Saver interface {
		// Create stores a new device and sets its storage assigned ID.
		Create(ctx context.Context, device *model.Device) error
	}

	Finder interface {
		// List retrieves every stored device in storage order.
		List(ctx context.Context) ([]*model.Device, error)

		// Exists checks if a device with the given ID exists.
		Exists(ctx context.Context, id model.DeviceID) (bool, error)
	}

	Deleter interface {
		// Delete removes a device from the database by its ID.
		Delete(ctx context.Context, id model.DeviceID) error
	}

	// DevicesRepository defines the interface for device persistence operations.
	DevicesRepository interface {
		Saver
		Finder
		Deleter
	}
)
