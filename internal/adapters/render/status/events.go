package status

import (
	"fmt"

	"github.com/dorian305/rtls-client/internal/domain"
)

// EventLine formats one orchestrator event for the run log. The second
// return value is false for events that have nothing to show.
func EventLine(event domain.Event, plain bool) (string, bool) {
	text, kind := describe(event)
	if text == "" {
		return "", false
	}
	if plain {
		return text, true
	}

	s := newStyles()
	switch kind {
	case lineWarning:
		return s.warning.Render(text), true
	case lineGood:
		return s.connected.Render(text), true
	case lineQuiet:
		return s.meta.Render(text), true
	default:
		return s.detail.Render(text), true
	}
}

type lineKind int

const (
	lineNormal lineKind = iota
	lineGood
	lineWarning
	lineQuiet
)

func describe(event domain.Event) (string, lineKind) {
	switch event.Kind {
	case domain.EventConnecting:
		return "Connecting to the server...", lineQuiet
	case domain.EventConnected:
		return "Connected.", lineGood
	case domain.EventDeviceIDAssigned:
		return fmt.Sprintf("Device ID: %s", event.DeviceID), lineNormal
	case domain.EventCoordinateUpdated:
		return event.Coordinate.String(), lineQuiet
	case domain.EventConnectionError, domain.EventConnectionClosed, domain.EventLocationError:
		return event.Message, lineWarning
	default:
		return "", lineNormal
	}
}
