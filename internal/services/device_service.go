package services

import (
	"context"

	"github.com/architeacher/netinventory/internal/domain/model"
	"github.com/architeacher/netinventory/internal/ports"
)

type DevicesService struct {
	repo ports.DevicesRepository
}

func NewDevicesService(repo ports.DevicesRepository) *DevicesService {
	return &DevicesService{repo: repo}
}

func (s *DevicesService) CreateDevice(ctx context.Context, input model.DeviceInput) (*model.Device, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	device := input.Device()

	if err := s.repo.Create(ctx, device); err != nil {
		return nil, err
	}

	return device, nil
}

func (s *DevicesService) ListDevices(ctx context.Context) ([]*model.Device, error) {
	return s.repo.List(ctx)
}

// DeleteDevice checks existence first so an unknown ID never reaches the delete statement.
func (s *DevicesService) DeleteDevice(ctx context.Context, id model.DeviceID) error {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return err
	}

	if !exists {
		return model.ErrDeviceNotFound
	}

	return s.repo.Delete(ctx, id)
}
