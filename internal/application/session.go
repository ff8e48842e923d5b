package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dorian305/rtls-client/internal/domain"
	"github.com/dorian305/rtls-client/internal/logging"
	"github.com/dorian305/rtls-client/internal/observability"
	"github.com/dorian305/rtls-client/internal/ports"
	"github.com/dorian305/rtls-client/internal/protocol"
	"github.com/google/uuid"
)

const sessionEventBuffer = 64

// Session is one connect→connected→closed lifecycle with the server.
type Session interface {
	Connect(ctx context.Context, device domain.Device) error
	SendCoordinates(coord domain.Coordinate)
	Close() error
	State() domain.SessionState
	Events() <-chan domain.Event
}

type SessionFactory func() Session

type SessionOptions struct {
	Logger  logging.Logger
	Metrics *observability.TelemetryCollector
}

// ConnectionSession owns the transport for a single session. Connect starts
// an actor goroutine that is the only writer to the connection; inbound frames
// are read on a second goroutine and handed to the actor in arrival order.
// A ConnectionSession is never reused once Closed.
type ConnectionSession struct {
	id       string
	dialer   ports.Dialer
	endpoint domain.Endpoint
	log      logging.Logger
	metrics  *observability.TelemetryCollector

	state      atomic.Int32
	assignedID atomic.Value

	mu      sync.Mutex
	started bool
	closed  bool
	cancel  context.CancelFunc

	events chan domain.Event
	coords chan domain.Coordinate
	done   chan struct{}

	// device is only touched by the actor goroutine after Connect.
	device       domain.Device
	hadConnected bool
}

var _ Session = (*ConnectionSession)(nil)

func NewConnectionSession(dialer ports.Dialer, endpoint domain.Endpoint, opts SessionOptions) *ConnectionSession {
	log := opts.Logger
	if log == nil {
		log = logging.Noop()
	}

	id := uuid.NewString()
	s := &ConnectionSession{
		id:       id,
		dialer:   dialer,
		endpoint: endpoint,
		log:      log.With(logging.String("session_id", id)),
		metrics:  opts.Metrics,
		events:   make(chan domain.Event, sessionEventBuffer),
		coords:   make(chan domain.Coordinate, 1),
		done:     make(chan struct{}),
	}
	s.assignedID.Store("")
	return s
}

// ID is the local correlation id used in logs. It is never sent to the server.
func (s *ConnectionSession) ID() string {
	return s.id
}

func (s *ConnectionSession) State() domain.SessionState {
	return domain.SessionState(s.state.Load())
}

// AssignedID is the device id returned by this session's handshake reply.
func (s *ConnectionSession) AssignedID() string {
	return s.assignedID.Load().(string)
}

// Events delivers lifecycle events in transport order. The channel is closed
// after the final ConnectionClosed event.
func (s *ConnectionSession) Events() <-chan domain.Event {
	return s.events
}

// Done is closed once the session reached Closed and released the transport.
func (s *ConnectionSession) Done() <-chan struct{} {
	return s.done
}

// Connect dials the server and sends the deviceConnected handshake with the
// given snapshot. Only the first call on a session has any effect.
func (s *ConnectionSession) Connect(ctx context.Context, device domain.Device) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return domain.ErrSessionAlreadyStarted
	}
	s.started = true
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.device = device
	s.setState(domain.SessionConnecting)
	s.events <- domain.Event{Kind: domain.EventConnecting}
	s.log.Info(ctx, "connecting", logging.String("endpoint", s.endpoint.URL()))

	go s.run(runCtx)
	return nil
}

// SendCoordinates queues a location update. It is a no-op unless the session
// is Connected. Pending updates that were not written yet are superseded.
func (s *ConnectionSession) SendCoordinates(coord domain.Coordinate) {
	if s.State() != domain.SessionConnected {
		return
	}

	for {
		select {
		case s.coords <- coord:
			return
		default:
		}
		select {
		case <-s.coords:
		default:
		}
	}
}

// Close ends the session. It is safe to call at any time and more than once.
func (s *ConnectionSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true

	if !s.started {
		// Never connected: there is no actor to wind down.
		s.started = true
		s.mu.Unlock()
		s.setState(domain.SessionClosed)
		s.events <- domain.Event{Kind: domain.EventConnectionClosed, Message: closedMessage(false)}
		close(s.events)
		close(s.done)
		return nil
	}
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	return nil
}

func (s *ConnectionSession) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.events)

	conn, err := s.dialer.Dial(ctx, s.endpoint)
	if err != nil {
		if ctx.Err() != nil {
			s.finish(ctx, nil)
			return
		}
		s.finish(ctx, fmt.Errorf("dial %s: %w", s.endpoint.URL(), err))
		return
	}
	// A write blocked on a stalled peer only returns once the socket is closed.
	stopClose := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer func() {
		stopClose()
		_ = conn.Close()
	}()

	handshake, err := protocol.EncodeDeviceConnected(s.device)
	if err == nil {
		err = s.write(conn, protocol.TypeDeviceConnected, handshake)
	}
	if err != nil {
		s.finish(ctx, err)
		return
	}

	frames := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		for {
			data, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case frames <- data:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.log.Debug(ctx, "session closed by owner")
			s.finish(ctx, nil)
			return
		case data := <-frames:
			if err := s.handleFrame(ctx, conn, data); err != nil {
				s.finish(ctx, err)
				return
			}
		case err := <-readErr:
			if errors.Is(err, ports.ErrConnClosed) {
				s.log.Info(ctx, "server closed the connection")
				err = nil
			}
			s.finish(ctx, err)
			return
		case coord := <-s.coords:
			if s.State() != domain.SessionConnected {
				continue
			}
			s.device.Coordinates = coord
			update, err := protocol.EncodeLocationUpdate(s.device)
			if err == nil {
				err = s.write(conn, protocol.TypeLocationUpdate, update)
			}
			if err != nil {
				s.finish(ctx, err)
				return
			}
		}
	}
}

func (s *ConnectionSession) handleFrame(ctx context.Context, conn ports.Conn, data []byte) error {
	msg, err := protocol.DecodeInbound(data)
	if err != nil {
		s.metrics.ObserveMalformed()
		s.log.Warn(ctx, "ignoring inbound message", logging.Err(err))
		return nil
	}
	s.metrics.ObserveInbound(msg.Type)

	switch msg.Type {
	case protocol.TypeDeviceConnected:
		if s.State() != domain.SessionConnecting {
			s.log.Debug(ctx, "ignoring repeated handshake reply")
			return nil
		}
		if msg.Device.ID == "" {
			s.log.Warn(ctx, "handshake reply without device id")
			return nil
		}

		// The device id is fixed for the life of the process.
		switch s.device.ID {
		case "":
			s.device.ID = msg.Device.ID
		case msg.Device.ID:
		default:
			s.log.Warn(ctx, "server replied with a different id, keeping the known one",
				logging.String("device_id", s.device.ID), logging.String("assigned_id", msg.Device.ID))
		}
		s.assignedID.Store(s.device.ID)
		s.hadConnected = true
		s.setState(domain.SessionConnected)
		s.log.Info(ctx, "connected", logging.String("device_id", s.device.ID))
		s.emit(ctx, domain.Event{Kind: domain.EventConnected})
		s.emit(ctx, domain.Event{Kind: domain.EventDeviceIDAssigned, DeviceID: s.device.ID})
	case protocol.TypePing:
		pong, err := protocol.EncodePong(s.AssignedID())
		if err != nil {
			return err
		}
		s.log.Debug(ctx, "server pinged, sending pong")
		return s.write(conn, protocol.TypePong, pong)
	}

	return nil
}

func (s *ConnectionSession) write(conn ports.Conn, messageType string, data []byte) error {
	if err := conn.WriteMessage(data); err != nil {
		return fmt.Errorf("write %s message: %w", messageType, err)
	}
	s.metrics.ObserveOutbound(messageType)
	return nil
}

// finish moves the session to Closed and emits the terminal events. A non-nil
// cause before the handshake completed is reported as a ConnectionError.
func (s *ConnectionSession) finish(ctx context.Context, cause error) {
	s.setState(domain.SessionClosed)

	if cause != nil && ctx.Err() != nil {
		// Owner-initiated close: the transport error is a consequence of it.
		s.log.Debug(ctx, "transport error after close", logging.Err(cause))
		cause = nil
	}
	if cause != nil {
		s.log.Warn(ctx, "session terminated", logging.Err(cause), logging.Any("had_connected", s.hadConnected))
		if !s.hadConnected {
			s.emitFinal(domain.Event{
				Kind:    domain.EventConnectionError,
				Message: fmt.Sprintf("An error occurred while communicating with the server: %v", cause),
			})
		}
	}

	s.emitFinal(domain.Event{
		Kind:         domain.EventConnectionClosed,
		Message:      closedMessage(s.hadConnected),
		HadConnected: s.hadConnected,
	})
}

func (s *ConnectionSession) setState(state domain.SessionState) {
	s.state.Store(int32(state))
	s.metrics.SetSessionState(state)
}

func (s *ConnectionSession) emit(ctx context.Context, event domain.Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// emitFinal must not be dropped by cancellation: owners wait for it.
func (s *ConnectionSession) emitFinal(event domain.Event) {
	s.events <- event
}

func closedMessage(hadConnected bool) string {
	if hadConnected {
		return "Connection to the server has been lost."
	}
	return "Connection to the server could not be established."
}
