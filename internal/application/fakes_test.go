package application

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dorian305/rtls-client/internal/domain"
	"github.com/dorian305/rtls-client/internal/ports"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

func mockAnyContext() interface{} {
	return mock.MatchedBy(func(context.Context) bool { return true })
}

type fakeConn struct {
	inbound  chan []byte
	readErrs chan error
	writes   chan []byte
	closed   chan struct{}
	once     sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		inbound:  make(chan []byte, 16),
		readErrs: make(chan error, 1),
		writes:   make(chan []byte, 64),
		closed:   make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case data := <-c.inbound:
		return data, nil
	case err := <-c.readErrs:
		return nil, err
	case <-c.closed:
		return nil, ports.ErrConnClosed
	}
}

func (c *fakeConn) WriteMessage(data []byte) error {
	select {
	case <-c.closed:
		return errors.New("write on closed connection")
	default:
	}
	c.writes <- append([]byte(nil), data...)
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *fakeConn) serverSends(t *testing.T, payload string) {
	t.Helper()
	c.inbound <- []byte(payload)
}

func nextWrite(t *testing.T, c *fakeConn) map[string]any {
	t.Helper()

	select {
	case data := <-c.writes:
		var msg map[string]any
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for an outbound message")
		return nil
	}
}

func requireNoWrite(t *testing.T, c *fakeConn, within time.Duration) {
	t.Helper()

	select {
	case data := <-c.writes:
		t.Fatalf("unexpected outbound message: %s", data)
	case <-time.After(within):
	}
}

func nextEvent(t *testing.T, events <-chan domain.Event) domain.Event {
	t.Helper()

	select {
	case event, ok := <-events:
		require.True(t, ok, "event stream closed")
		return event
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for an event")
		return domain.Event{}
	}
}

func drainEvents(t *testing.T, events <-chan domain.Event) []domain.Event {
	t.Helper()

	var out []domain.Event
	deadline := time.After(waitFor)
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, event)
		case <-deadline:
			t.Fatal("timed out waiting for the event stream to close")
			return out
		}
	}
}

func eventKinds(events []domain.Event) []domain.EventKind {
	kinds := make([]domain.EventKind, 0, len(events))
	for _, event := range events {
		kinds = append(kinds, event.Kind)
	}
	return kinds
}

// fakeSession mirrors ConnectionSession's observable contract without a
// transport.
type fakeSession struct {
	mu       sync.Mutex
	connects []domain.Device
	sent     []domain.Coordinate

	state     atomic.Int32
	events    chan domain.Event
	closeOnce sync.Once
}

func newFakeSession() *fakeSession {
	return &fakeSession{events: make(chan domain.Event, 64)}
}

func (s *fakeSession) Connect(_ context.Context, device domain.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.connects) > 0 {
		return domain.ErrSessionAlreadyStarted
	}
	s.connects = append(s.connects, device)
	s.state.Store(int32(domain.SessionConnecting))
	s.events <- domain.Event{Kind: domain.EventConnecting}
	return nil
}

func (s *fakeSession) SendCoordinates(coord domain.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, coord)
}

func (s *fakeSession) Close() error {
	s.closeOnce.Do(func() {
		s.state.Store(int32(domain.SessionClosed))
		close(s.events)
	})
	return nil
}

func (s *fakeSession) State() domain.SessionState {
	return domain.SessionState(s.state.Load())
}

func (s *fakeSession) Events() <-chan domain.Event {
	return s.events
}

func (s *fakeSession) accept(id string) {
	s.state.Store(int32(domain.SessionConnected))
	s.events <- domain.Event{Kind: domain.EventConnected}
	s.events <- domain.Event{Kind: domain.EventDeviceIDAssigned, DeviceID: id}
}

func (s *fakeSession) fail(message string) {
	s.events <- domain.Event{Kind: domain.EventConnectionError, Message: message}
}

func (s *fakeSession) drop(hadConnected bool) {
	s.closeOnce.Do(func() {
		s.state.Store(int32(domain.SessionClosed))
		s.events <- domain.Event{Kind: domain.EventConnectionClosed, HadConnected: hadConnected}
		close(s.events)
	})
}

func (s *fakeSession) connectCalls() []domain.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Device(nil), s.connects...)
}

func (s *fakeSession) sentCoordinates() []domain.Coordinate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Coordinate(nil), s.sent...)
}

type sessionFactory struct {
	mu       sync.Mutex
	sessions []*fakeSession
}

func (f *sessionFactory) New() Session {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := newFakeSession()
	f.sessions = append(f.sessions, s)
	return s
}

func (f *sessionFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

func (f *sessionFactory) session(i int) *fakeSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[i]
}

type fakeSource struct {
	mu       sync.Mutex
	handler  ports.PositionHandler
	watchErr error
	watching chan struct{}
	stops    atomic.Int32
}

func newFakeSource() *fakeSource {
	return &fakeSource{watching: make(chan struct{})}
}

func (s *fakeSource) Watch(_ context.Context, handler ports.PositionHandler) (ports.Watch, error) {
	if s.watchErr != nil {
		return nil, s.watchErr
	}

	s.mu.Lock()
	s.handler = handler
	s.mu.Unlock()
	close(s.watching)
	return fakeWatch{source: s}, nil
}

func (s *fakeSource) waitWatching(t *testing.T) {
	t.Helper()

	select {
	case <-s.watching:
	case <-time.After(waitFor):
		t.Fatal("location source was never watched")
	}
}

func (s *fakeSource) emit(c domain.Coordinate) {
	s.mu.Lock()
	handler := s.handler
	s.mu.Unlock()
	handler.OnPosition(c)
}

func (s *fakeSource) fail(err error) {
	s.mu.Lock()
	handler := s.handler
	s.mu.Unlock()
	handler.OnError(err)
}

type fakeWatch struct {
	source *fakeSource
}

func (w fakeWatch) Stop() {
	w.source.stops.Add(1)
}

// eventRecorder keeps consuming an event stream so producers never block.
type eventRecorder struct {
	mu     sync.Mutex
	events []domain.Event
	done   chan struct{}
}

func recordEvents(events <-chan domain.Event) *eventRecorder {
	r := &eventRecorder{done: make(chan struct{})}
	go func() {
		defer close(r.done)
		for event := range events {
			r.mu.Lock()
			r.events = append(r.events, event)
			r.mu.Unlock()
		}
	}()
	return r
}

func (r *eventRecorder) snapshot() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Event(nil), r.events...)
}

func (r *eventRecorder) count(kind domain.EventKind) int {
	n := 0
	for _, event := range r.snapshot() {
		if event.Kind == kind {
			n++
		}
	}
	return n
}
