package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const MaxDeviceNameLength = 20

type DeviceType string

const (
	DeviceTypeMobile DeviceType = "mobile"
	DeviceTypeTablet DeviceType = "tablet"
	DeviceTypePC     DeviceType = "pc"
)

func (t DeviceType) Valid() bool {
	switch t {
	case DeviceTypeMobile, DeviceTypeTablet, DeviceTypePC:
		return true
	default:
		return false
	}
}

// Device is the record exchanged with the server. ID stays empty until the
// first handshake reply assigns one.
type Device struct {
	ID          string
	Name        string
	Type        DeviceType
	Coordinates Coordinate
	Battery     string
}

// DeviceProfile is the client-supplied part of a Device that survives restarts.
type DeviceProfile struct {
	Name    string
	Type    DeviceType
	Battery string
}

func (p DeviceProfile) Validate() error {
	if err := ValidateDeviceName(p.Name); err != nil {
		return err
	}
	if !p.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDeviceType, p.Type)
	}

	return nil
}

func (p DeviceProfile) Device() Device {
	return Device{
		Name:    p.Name,
		Type:    p.Type,
		Battery: p.Battery,
	}
}

func ValidateDeviceName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDeviceName)
	}
	if utf8.RuneCountInString(name) > MaxDeviceNameLength {
		return fmt.Errorf("%w: at most %d characters", ErrInvalidDeviceName, MaxDeviceNameLength)
	}

	return nil
}
