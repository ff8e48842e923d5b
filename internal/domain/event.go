package domain

type EventKind string

const (
	EventConnecting        EventKind = "connecting"
	EventConnected         EventKind = "connected"
	EventConnectionError   EventKind = "connection_error"
	EventConnectionClosed  EventKind = "connection_closed"
	EventDeviceIDAssigned  EventKind = "device_id_assigned"
	EventCoordinateUpdated EventKind = "coordinate_updated"
	EventLocationError     EventKind = "location_error"
)

// Event is a lifecycle or data notification flowing from the core outward.
// Only the fields relevant to Kind are set.
type Event struct {
	Kind         EventKind
	Message      string
	HadConnected bool
	DeviceID     string
	Coordinate   Coordinate
}

// Terminal reports whether the event ends a session.
func (e Event) Terminal() bool {
	return e.Kind == EventConnectionClosed
}
