package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dorian305/rtls-client/internal/domain"
)

const (
	TypeDeviceConnected = "deviceConnected"
	TypeLocationUpdate  = "locationUpdate"
	TypePong            = "pong"
	TypePing            = "ping"
)

var (
	ErrMalformedMessage   = errors.New("malformed message")
	ErrUnknownMessageType = errors.New("unknown message type")
)

// Inbound is a decoded server-to-client message. Device is set only for
// deviceConnected replies.
type Inbound struct {
	Type   string
	Device domain.Device
}

func EncodeDeviceConnected(device domain.Device) ([]byte, error) {
	return encodeDevice(TypeDeviceConnected, device)
}

func EncodeLocationUpdate(device domain.Device) ([]byte, error) {
	return encodeDevice(TypeLocationUpdate, device)
}

func EncodePong(socketID string) ([]byte, error) {
	data, err := json.Marshal(pongMessage{Type: TypePong, SocketID: socketID})
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", TypePong, err)
	}

	return data, nil
}

func encodeDevice(messageType string, device domain.Device) ([]byte, error) {
	data, err := json.Marshal(deviceMessage{Type: messageType, Device: toSchema(device)})
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", messageType, err)
	}

	return data, nil
}

func DecodeInbound(data []byte) (Inbound, error) {
	var envelope inboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	switch envelope.Type {
	case TypeDeviceConnected:
		if envelope.Device == nil {
			return Inbound{}, fmt.Errorf("%w: %s without device", ErrMalformedMessage, envelope.Type)
		}
		return Inbound{Type: envelope.Type, Device: fromSchema(*envelope.Device)}, nil
	case TypePing:
		return Inbound{Type: envelope.Type}, nil
	case "":
		return Inbound{}, fmt.Errorf("%w: missing type", ErrMalformedMessage)
	default:
		return Inbound{Type: envelope.Type}, fmt.Errorf("%w: %q", ErrUnknownMessageType, envelope.Type)
	}
}
