package model

import (
	"fmt"
	"strconv"
)

const (
	FieldIP          = "ip"
	FieldName        = "name"
	FieldTrafficRate = "traffic_rate"
)

// DeviceID is assigned by storage on insert and never reused.
type DeviceID int64

func ParseDeviceID(s string) (DeviceID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDeviceID, s)
	}

	return DeviceID(id), nil
}

func (d DeviceID) String() string {
	return strconv.FormatInt(int64(d), 10)
}

func (d DeviceID) Int64() int64 {
	return int64(d)
}

func (d DeviceID) IsZero() bool {
	return d == 0
}

// Device is a registered network endpoint. TrafficRate is a user supplied value in Mbps.
type Device struct {
	ID          DeviceID
	IP          string
	Name        string
	TrafficRate float64
}

// DeviceInput is the payload of a create request. A nil field was absent from the request.
type DeviceInput struct {
	IP          *string
	Name        *string
	TrafficRate *float64
}

func NewDeviceInput(ip, name string, trafficRate float64) DeviceInput {
	return DeviceInput{
		IP:          &ip,
		Name:        &name,
		TrafficRate: &trafficRate,
	}
}

// Validate reports every absent field. Values themselves are not checked.
func (in DeviceInput) Validate() error {
	errs := NewValidationErrors()

	if in.IP == nil {
		errs.Add(FieldIP, "ip is required", CodeRequired)
	}

	if in.Name == nil {
		errs.Add(FieldName, "name is required", CodeRequired)
	}

	if in.TrafficRate == nil {
		errs.Add(FieldTrafficRate, "traffic_rate is required", CodeRequired)
	}

	if errs.HasErrors() {
		return errs
	}

	return nil
}

// String prints absent fields as <nil> instead of pointer addresses.
func (in DeviceInput) String() string {
	return fmt.Sprintf("{IP:%s Name:%s TrafficRate:%s}", optional(in.IP), optional(in.Name), optional(in.TrafficRate))
}

// Device builds an unsaved device. Callers must Validate first.
func (in DeviceInput) Device() *Device {
	return &Device{
		IP:          *in.IP,
		Name:        *in.Name,
		TrafficRate: *in.TrafficRate,
	}
}

func optional[T any](v *T) string {
	if v == nil {
		return "<nil>"
	}

	return fmt.Sprint(*v)
}
