package statusapi

import (
	"time"

	"github.com/dorian305/rtls-client/internal/application"
	"github.com/dorian305/rtls-client/internal/domain"
)

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

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Device           deviceSchema `json:"device"`
	State            string       `json:"state"`
	Samples          int          `json:"samples"`
	ConnectRequested bool         `json:"connect_requested"`
	LastError        string       `json:"last_error,omitempty"`
	GeneratedAt      time.Time    `json:"generated_at"`
}

func toResponse(status application.Status, now time.Time) StatusResponse {
	d := status.Device
	return StatusResponse{
		Device: deviceSchema{
			ID:          d.ID,
			Name:        d.Name,
			Type:        string(d.Type),
			Coordinates: coordinateSchema{X: d.Coordinates.X, Y: d.Coordinates.Y},
			Battery:     d.Battery,
		},
		State:            status.State.String(),
		Samples:          status.Samples,
		ConnectRequested: status.ConnectRequested,
		LastError:        status.LastError,
		GeneratedAt:      now.UTC(),
	}
}

// Status converts the response back into the application snapshot.
func (r StatusResponse) Status() application.Status {
	return application.Status{
		Device: domain.Device{
			ID:          r.Device.ID,
			Name:        r.Device.Name,
			Type:        domain.DeviceType(r.Device.Type),
			Coordinates: domain.Coordinate{X: r.Device.Coordinates.X, Y: r.Device.Coordinates.Y},
			Battery:     r.Device.Battery,
		},
		State:            parseState(r.State),
		Samples:          r.Samples,
		ConnectRequested: r.ConnectRequested,
		LastError:        r.LastError,
	}
}

func parseState(raw string) domain.SessionState {
	for _, state := range []domain.SessionState{
		domain.SessionDisconnected,
		domain.SessionConnecting,
		domain.SessionConnected,
		domain.SessionClosed,
	} {
		if state.String() == raw {
			return state
		}
	}
	return domain.SessionDisconnected
}
