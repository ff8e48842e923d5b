package domain

import "errors"

var (
	ErrInvalidWindow            = errors.New("smoothing window must be at least 1")
	ErrInvalidDeviceName        = errors.New("invalid device name")
	ErrInvalidDeviceType        = errors.New("invalid device type")
	ErrProfileNotFound          = errors.New("device profile not found")
	ErrSessionAlreadyStarted    = errors.New("session already started")
	ErrLocationUnsupported      = errors.New("location source unsupported")
	ErrConnectionLost           = errors.New("connection to the server has been lost")
	ErrConnectionNotEstablished = errors.New("connection to the server could not be established")
)

type AcquisitionCode string

const (
	AcquisitionPermissionDenied    AcquisitionCode = "permission_denied"
	AcquisitionPositionUnavailable AcquisitionCode = "position_unavailable"
	AcquisitionTimeout             AcquisitionCode = "timeout"
	AcquisitionUnsupported         AcquisitionCode = "unsupported"
	AcquisitionUnknown             AcquisitionCode = "unknown"
)

// AcquisitionError reports a failure to obtain a position. It never affects
// session state.
type AcquisitionError struct {
	Code AcquisitionCode
	Err  error
}

func NewAcquisitionError(code AcquisitionCode, err error) *AcquisitionError {
	return &AcquisitionError{Code: code, Err: err}
}

func (e *AcquisitionError) Error() string {
	switch e.Code {
	case AcquisitionPermissionDenied:
		return "User denied the request for Geolocation."
	case AcquisitionPositionUnavailable:
		return "Location information is unavailable."
	case AcquisitionTimeout:
		return "The request to get user location timed out."
	case AcquisitionUnsupported:
		return "Geolocation is not supported by this device."
	default:
		return "An unknown error occurred."
	}
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}
