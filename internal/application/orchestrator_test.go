package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dorian305/rtls-client/internal/domain"
	"github.com/dorian305/rtls-client/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orchestratorHarness struct {
	orchestrator *Orchestrator
	factory      *sessionFactory
	source       *fakeSource
	recorder     *eventRecorder
	cancel       context.CancelFunc
	runErr       chan error
}

func startOrchestrator(t *testing.T, cfg OrchestratorConfig) *orchestratorHarness {
	t.Helper()

	factory := &sessionFactory{}
	orchestrator, err := NewOrchestrator(cfg, domain.Device{Name: "rover", Type: domain.DeviceTypeMobile}, factory.New, OrchestratorOptions{})
	require.NoError(t, err)

	h := &orchestratorHarness{
		orchestrator: orchestrator,
		factory:      factory,
		source:       newFakeSource(),
		runErr:       make(chan error, 1),
	}
	h.recorder = recordEvents(orchestrator.Events())

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() {
		h.runErr <- orchestrator.Run(ctx, h.source)
	}()
	t.Cleanup(func() { h.stop(t) })

	h.source.waitWatching(t)
	return h
}

func (h *orchestratorHarness) stop(t *testing.T) error {
	t.Helper()

	h.cancel()
	select {
	case err := <-h.runErr:
		h.runErr <- err
		<-h.recorder.done
		return err
	case <-time.After(waitFor):
		t.Fatal("orchestrator did not stop")
		return nil
	}
}

func (h *orchestratorHarness) emitSamples(n int, c domain.Coordinate) {
	for i := 0; i < n; i++ {
		h.source.emit(c)
	}
}

func (h *orchestratorHarness) waitSamples(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return h.orchestrator.Status().Samples == n
	}, waitFor, 5*time.Millisecond)
}

func TestNewOrchestratorValidatesConfig(t *testing.T) {
	factory := &sessionFactory{}

	_, err := NewOrchestrator(OrchestratorConfig{Window: 10, MinSamples: 0}, domain.Device{}, factory.New, OrchestratorOptions{})
	require.Error(t, err)

	_, err = NewOrchestrator(OrchestratorConfig{Window: 0, MinSamples: 10}, domain.Device{}, factory.New, OrchestratorOptions{})
	require.ErrorIs(t, err, domain.ErrInvalidWindow)

	_, err = NewOrchestrator(OrchestratorConfig{Window: 10, MinSamples: 10}, domain.Device{}, nil, OrchestratorOptions{})
	require.Error(t, err)
}

func TestOrchestratorConnectsOnceSampleGateIsReached(t *testing.T) {
	h := startOrchestrator(t, OrchestratorConfig{Window: 10, MinSamples: 10})

	for i := 1; i <= 9; i++ {
		h.source.emit(domain.Coordinate{X: float64(i), Y: float64(i) * 2})
	}
	h.waitSamples(t, 9)
	assert.Equal(t, 0, h.factory.count())
	assert.False(t, h.orchestrator.Status().ConnectRequested)

	h.source.emit(domain.Coordinate{X: 10, Y: 20})
	h.waitSamples(t, 10)

	require.Equal(t, 1, h.factory.count())
	connects := h.factory.session(0).connectCalls()
	require.Len(t, connects, 1)
	assert.InDelta(t, 5.5, connects[0].Coordinates.X, 1e-9)
	assert.InDelta(t, 11.0, connects[0].Coordinates.Y, 1e-9)
	assert.Equal(t, "rover", connects[0].Name)
	assert.Empty(t, h.factory.session(0).sentCoordinates())

	status := h.orchestrator.Status()
	assert.True(t, status.ConnectRequested)
	assert.Equal(t, domain.SessionConnecting, status.State)
}

func TestOrchestratorSendsSmoothedCoordinatesOnlyWhenConnected(t *testing.T) {
	h := startOrchestrator(t, OrchestratorConfig{Window: 2, MinSamples: 2})

	h.emitSamples(2, domain.Coordinate{X: 1, Y: 1})
	h.waitSamples(t, 2)
	session := h.factory.session(0)

	h.source.emit(domain.Coordinate{X: 3, Y: 3})
	h.waitSamples(t, 3)
	assert.Empty(t, session.sentCoordinates(), "nothing is sent while connecting")

	session.accept("abc123")
	require.Eventually(t, func() bool {
		return h.orchestrator.Status().Device.ID == "abc123"
	}, waitFor, 5*time.Millisecond)

	h.source.emit(domain.Coordinate{X: 5, Y: 5})
	h.waitSamples(t, 4)
	assert.Equal(t, []domain.Coordinate{{X: 4, Y: 4}}, session.sentCoordinates())
	assert.Equal(t, domain.SessionConnected, h.orchestrator.Status().State)
}

func TestOrchestratorForwardsLifecycleEventsInOrder(t *testing.T) {
	h := startOrchestrator(t, OrchestratorConfig{Window: 10, MinSamples: 1})

	h.source.emit(domain.Coordinate{X: 1, Y: 1})
	h.waitSamples(t, 1)
	session := h.factory.session(0)
	session.accept("abc123")
	session.drop(true)

	require.Eventually(t, func() bool {
		return h.recorder.count(domain.EventConnectionClosed) == 1
	}, waitFor, 5*time.Millisecond)

	var lifecycle []domain.EventKind
	for _, event := range h.recorder.snapshot() {
		if event.Kind != domain.EventCoordinateUpdated {
			lifecycle = append(lifecycle, event.Kind)
		}
	}
	assert.Equal(t, []domain.EventKind{
		domain.EventConnecting,
		domain.EventConnected,
		domain.EventDeviceIDAssigned,
		domain.EventConnectionClosed,
	}, lifecycle)
}

func TestOrchestratorDoesNotRetryAfterClosure(t *testing.T) {
	h := startOrchestrator(t, OrchestratorConfig{Window: 10, MinSamples: 1})

	h.source.emit(domain.Coordinate{X: 1, Y: 1})
	h.waitSamples(t, 1)
	h.factory.session(0).fail("refused")
	h.factory.session(0).drop(false)

	require.Eventually(t, func() bool {
		return h.recorder.count(domain.EventConnectionClosed) == 1
	}, waitFor, 5*time.Millisecond)

	h.emitSamples(5, domain.Coordinate{X: 2, Y: 2})
	h.waitSamples(t, 6)

	assert.Equal(t, 1, h.factory.count())
	status := h.orchestrator.Status()
	assert.Equal(t, domain.SessionClosed, status.State)
	assert.Equal(t, "refused", status.LastError)
}

func TestOrchestratorReconnectStartsFreshSession(t *testing.T) {
	h := startOrchestrator(t, OrchestratorConfig{Window: 10, MinSamples: 1})

	h.source.emit(domain.Coordinate{X: 1, Y: 1})
	h.waitSamples(t, 1)
	first := h.factory.session(0)
	first.accept("abc123")

	// Live session: reconnect is ignored.
	h.orchestrator.Reconnect()
	h.source.emit(domain.Coordinate{X: 1, Y: 1})
	h.waitSamples(t, 2)
	assert.Equal(t, 1, h.factory.count())

	first.drop(true)
	require.Eventually(t, func() bool {
		return h.orchestrator.Status().State == domain.SessionClosed
	}, waitFor, 5*time.Millisecond)

	h.orchestrator.Reconnect()
	require.Eventually(t, func() bool { return h.factory.count() == 2 }, waitFor, 5*time.Millisecond)

	second := h.factory.session(1)
	require.Eventually(t, func() bool { return len(second.connectCalls()) == 1 }, waitFor, 5*time.Millisecond)
	assert.Equal(t, "abc123", second.connectCalls()[0].ID, "the device keeps its assigned id")
}

func TestOrchestratorReconnectBeforeGateIsIgnored(t *testing.T) {
	h := startOrchestrator(t, OrchestratorConfig{Window: 10, MinSamples: 5})

	h.orchestrator.Reconnect()
	h.source.emit(domain.Coordinate{X: 1, Y: 1})
	h.waitSamples(t, 1)

	assert.Equal(t, 0, h.factory.count())
}

func TestOrchestratorReportsLocationErrors(t *testing.T) {
	h := startOrchestrator(t, OrchestratorConfig{Window: 10, MinSamples: 10})

	h.source.fail(domain.NewAcquisitionError(domain.AcquisitionPermissionDenied, nil))
	h.source.fail(errors.New("gps exploded"))

	require.Eventually(t, func() bool {
		return h.recorder.count(domain.EventLocationError) == 2
	}, waitFor, 5*time.Millisecond)

	var messages []string
	for _, event := range h.recorder.snapshot() {
		if event.Kind == domain.EventLocationError {
			messages = append(messages, event.Message)
		}
	}
	assert.Equal(t, []string{
		"User denied the request for Geolocation.",
		"An unknown error occurred.",
	}, messages)
	assert.Equal(t, 0, h.factory.count())
	assert.Equal(t, 0, h.orchestrator.Status().Samples)
}

func TestOrchestratorWatchFailure(t *testing.T) {
	factory := &sessionFactory{}
	orchestrator, err := NewOrchestrator(OrchestratorConfig{Window: 10, MinSamples: 10}, domain.Device{Name: "rover"}, factory.New, OrchestratorOptions{})
	require.NoError(t, err)
	recorder := recordEvents(orchestrator.Events())

	source := newFakeSource()
	source.watchErr = domain.NewAcquisitionError(domain.AcquisitionUnsupported, domain.ErrLocationUnsupported)

	err = orchestrator.Run(context.Background(), source)
	require.ErrorIs(t, err, domain.ErrLocationUnsupported)

	<-recorder.done
	events := recorder.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventLocationError, events[0].Kind)
	assert.Equal(t, "Geolocation is not supported by this device.", events[0].Message)
}

func TestOrchestratorStopClosesSessionAndWatch(t *testing.T) {
	h := startOrchestrator(t, OrchestratorConfig{Window: 10, MinSamples: 1})

	h.source.emit(domain.Coordinate{X: 1, Y: 1})
	h.waitSamples(t, 1)
	h.factory.session(0).accept("abc123")

	err := h.stop(t)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), h.source.stops.Load())
	assert.Equal(t, domain.SessionClosed, h.factory.session(0).State())
}

func TestOrchestratorRunTwice(t *testing.T) {
	h := startOrchestrator(t, OrchestratorConfig{Window: 10, MinSamples: 10})

	err := h.orchestrator.Run(context.Background(), newFakeSource())
	require.ErrorIs(t, err, ErrOrchestratorStarted)
}

func TestOrchestratorReconnectKeepsDeviceIDOnTheWire(t *testing.T) {
	first, second := newFakeConn(), newFakeConn()
	dialer := mocks.NewMockDialer(t)
	dialer.EXPECT().Dial(mockAnyContext(), testEndpoint).Return(first, nil).Once()
	dialer.EXPECT().Dial(mockAnyContext(), testEndpoint).Return(second, nil).Once()

	newSession := func() Session {
		return NewConnectionSession(dialer, testEndpoint, SessionOptions{})
	}
	orchestrator, err := NewOrchestrator(OrchestratorConfig{Window: 10, MinSamples: 1},
		domain.Device{Name: "rover", Type: domain.DeviceTypeMobile}, newSession, OrchestratorOptions{})
	require.NoError(t, err)

	recorder := recordEvents(orchestrator.Events())
	source := newFakeSource()
	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- orchestrator.Run(ctx, source) }()
	defer func() {
		cancel()
		<-runErr
		<-recorder.done
	}()
	source.waitWatching(t)

	stateIs := func(state domain.SessionState) func() bool {
		return func() bool { return orchestrator.Status().State == state }
	}

	source.emit(domain.Coordinate{X: 45.33, Y: 14.41})
	nextWrite(t, first)
	first.serverSends(t, `{"type":"deviceConnected","device":{"id":"abc123","name":"rover","type":"mobile","coordinates":{"x":1,"y":1}}}`)
	require.Eventually(t, stateIs(domain.SessionConnected), waitFor, 5*time.Millisecond)
	assert.Equal(t, "abc123", orchestrator.Status().Device.ID)

	first.readErrs <- errors.New("unexpected EOF")
	require.Eventually(t, stateIs(domain.SessionClosed), waitFor, 5*time.Millisecond)

	orchestrator.Reconnect()
	handshake := nextWrite(t, second)
	assert.Equal(t, "abc123", handshake["device"].(map[string]any)["id"])
	second.serverSends(t, `{"type":"deviceConnected","device":{"id":"xyz999","name":"rover","type":"mobile","coordinates":{"x":1,"y":1}}}`)
	require.Eventually(t, stateIs(domain.SessionConnected), waitFor, 5*time.Millisecond)

	source.emit(domain.Coordinate{X: 45.33, Y: 14.41})
	update := nextWrite(t, second)
	assert.Equal(t, "locationUpdate", update["type"])
	assert.Equal(t, "abc123", update["device"].(map[string]any)["id"])

	second.serverSends(t, `{"type":"ping"}`)
	assert.Equal(t, "abc123", nextWrite(t, second)["socketId"])

	assert.Equal(t, "abc123", orchestrator.Status().Device.ID)
	for _, event := range recorder.snapshot() {
		if event.Kind == domain.EventDeviceIDAssigned {
			assert.Equal(t, "abc123", event.DeviceID)
		}
	}
}
