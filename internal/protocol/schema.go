package protocol

import "github.com/dorian305/rtls-client/internal/domain"

type coordinateSchema struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type deviceSchema struct {
	ID          string           `json:"id,omitempty"`
	Name        string           `json:"name"`
	Type        string           `json:"type"`
	Coordinates coordinateSchema `json:"coordinates"`
	Battery     string           `json:"battery,omitempty"`
}

type deviceMessage struct {
	Type   string       `json:"type"`
	Device deviceSchema `json:"device"`
}

type pongMessage struct {
	Type     string `json:"type"`
	SocketID string `json:"socketId"`
}

type inboundEnvelope struct {
	Type   string        `json:"type"`
	Device *deviceSchema `json:"device,omitempty"`
}

func toSchema(device domain.Device) deviceSchema {
	return deviceSchema{
		ID:   device.ID,
		Name: device.Name,
		Type: string(device.Type),
		Coordinates: coordinateSchema{
			X: device.Coordinates.X,
			Y: device.Coordinates.Y,
		},
		Battery: device.Battery,
	}
}

func fromSchema(device deviceSchema) domain.Device {
	return domain.Device{
		ID:   device.ID,
		Name: device.Name,
		Type: domain.DeviceType(device.Type),
		Coordinates: domain.Coordinate{
			X: device.Coordinates.X,
			Y: device.Coordinates.Y,
		},
		Battery: device.Battery,
	}
}
