package client

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrIncomplete          = errors.New("ip and name are required")
	ErrInvalidIP           = errors.New("invalid IPv4 address")
	ErrNegativeTrafficRate = errors.New("traffic rate must be greater than or equal to 0")
	ErrDuplicateIP         = errors.New("device already registered")
	ErrDuplicateName       = errors.New("device name already registered")
)

// Register runs the console checks and creates the device when they pass.
// The checks run in order: required fields, IPv4 format, rate sign, duplicate ip, duplicate name.
// The service itself enforces none of them, and two concurrent registrations can still race.
func (c *Client) Register(ctx context.Context, ip, name string, trafficRate float64) (Device, error) {
	if ip == "" || name == "" {
		return Device{}, ErrIncomplete
	}

	if !IsValidDottedIPv4(ip) {
		return Device{}, fmt.Errorf("%w: %q", ErrInvalidIP, ip)
	}

	if trafficRate < 0 {
		return Device{}, ErrNegativeTrafficRate
	}

	existing, err := c.List(ctx)
	if err != nil {
		return Device{}, fmt.Errorf("listing devices: %w", err)
	}

	for _, device := range existing {
		if device.IP == ip {
			return Device{}, fmt.Errorf("%w: %s", ErrDuplicateIP, ip)
		}
	}

	for _, device := range existing {
		if device.Name == name {
			return Device{}, fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
	}

	return c.Create(ctx, ip, name, trafficRate)
}
