package application

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dorian305/rtls-client/internal/domain"
	"github.com/dorian305/rtls-client/internal/logging"
	"github.com/dorian305/rtls-client/internal/observability"
	"github.com/dorian305/rtls-client/internal/ports"
)

const (
	DefaultMinSamples = 10

	orchestratorEventBuffer = 128
	sampleBuffer            = 16
)

var ErrOrchestratorStarted = errors.New("orchestrator already started")

type OrchestratorConfig struct {
	Window     int
	MinSamples int
}

type OrchestratorOptions struct {
	Logger  logging.Logger
	Metrics *observability.TelemetryCollector
}

// Status is an immutable snapshot of the pipeline, safe to read from any
// goroutine.
type Status struct {
	Device           domain.Device
	State            domain.SessionState
	Samples          int
	ConnectRequested bool
	LastError        string
}

// Orchestrator feeds smoothed samples into a Session. It connects once the
// sample gate is reached and never retries on its own; Reconnect starts a
// fresh session on request.
type Orchestrator struct {
	cfg        OrchestratorConfig
	newSession SessionFactory
	log        logging.Logger
	metrics    *observability.TelemetryCollector

	started   atomic.Bool
	status    atomic.Pointer[Status]
	events    chan domain.Event
	reconnect chan struct{}

	// Owned by the Run goroutine.
	history          *domain.CoordinateHistory
	device           domain.Device
	samples          int
	connectRequested bool
	session          Session
	sessionEvents    <-chan domain.Event
	lastError        string
}

func NewOrchestrator(cfg OrchestratorConfig, device domain.Device, newSession SessionFactory, opts OrchestratorOptions) (*Orchestrator, error) {
	if cfg.MinSamples < 1 {
		return nil, fmt.Errorf("min samples must be at least 1, got %d", cfg.MinSamples)
	}
	if newSession == nil {
		return nil, errors.New("session factory is nil")
	}

	history, err := domain.NewCoordinateHistory(cfg.Window)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = logging.Noop()
	}

	o := &Orchestrator{
		cfg:        cfg,
		newSession: newSession,
		log:        log,
		metrics:    opts.Metrics,
		events:     make(chan domain.Event, orchestratorEventBuffer),
		reconnect:  make(chan struct{}, 1),
		history:    history,
		device:     device,
	}
	o.publishStatus()
	return o, nil
}

// Events is the outward stream for the presentation layer. It is closed when
// Run returns.
func (o *Orchestrator) Events() <-chan domain.Event {
	return o.events
}

func (o *Orchestrator) Status() Status {
	return *o.status.Load()
}

// Reconnect asks Run to replace a Closed session with a fresh one. It is
// ignored while a session is live or before the gate opened.
func (o *Orchestrator) Reconnect() {
	select {
	case o.reconnect <- struct{}{}:
	default:
	}
}

// Run subscribes to source and drives the pipeline until ctx ends.
func (o *Orchestrator) Run(ctx context.Context, source ports.LocationSource) error {
	if !o.started.CompareAndSwap(false, true) {
		return ErrOrchestratorStarted
	}
	defer close(o.events)

	samples := make(chan domain.Coordinate, sampleBuffer)
	failures := make(chan error, sampleBuffer)

	watch, err := source.Watch(ctx, ports.PositionHandler{
		OnPosition: func(c domain.Coordinate) {
			select {
			case samples <- c:
			case <-ctx.Done():
			}
		},
		OnError: func(err error) {
			select {
			case failures <- err:
			case <-ctx.Done():
			}
		},
	})
	if err != nil {
		o.reportAcquisition(ctx, err)
		return fmt.Errorf("watch location: %w", err)
	}
	defer watch.Stop()
	defer o.closeSession(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-samples:
			o.handleSample(ctx, c)
		case err := <-failures:
			o.reportAcquisition(ctx, err)
		case event, ok := <-o.sessionEvents:
			if !ok {
				o.sessionEvents = nil
				continue
			}
			o.handleSessionEvent(ctx, event)
		case <-o.reconnect:
			o.handleReconnect(ctx)
		}
		o.publishStatus()
	}
}

func (o *Orchestrator) handleSample(ctx context.Context, sample domain.Coordinate) {
	o.metrics.ObserveSample()
	o.samples++

	smoothed := o.history.Push(sample)
	o.device.Coordinates = smoothed
	o.emitCoordinate(smoothed)

	switch {
	case !o.connectRequested && o.samples >= o.cfg.MinSamples:
		o.connect(ctx)
	case o.session != nil && o.session.State() == domain.SessionConnected:
		o.session.SendCoordinates(smoothed)
	}
}

func (o *Orchestrator) connect(ctx context.Context) {
	o.connectRequested = true

	session := o.newSession()
	o.metrics.ObserveConnectAttempt()
	if err := session.Connect(ctx, o.device); err != nil {
		o.log.Error(ctx, "start session", logging.Err(err))
		o.lastError = err.Error()
		return
	}

	o.session = session
	o.sessionEvents = session.Events()
}

func (o *Orchestrator) handleReconnect(ctx context.Context) {
	if !o.connectRequested {
		o.log.Debug(ctx, "reconnect ignored before the sample gate opened")
		return
	}
	if o.session != nil && o.session.State() != domain.SessionClosed {
		o.log.Debug(ctx, "reconnect ignored while a session is live", logging.String("state", o.session.State().String()))
		return
	}

	o.log.Info(ctx, "starting a fresh session")
	o.drainSession(ctx)
	o.connect(ctx)
}

func (o *Orchestrator) handleSessionEvent(ctx context.Context, event domain.Event) {
	switch event.Kind {
	case domain.EventDeviceIDAssigned:
		switch o.device.ID {
		case "":
			o.device.ID = event.DeviceID
		case event.DeviceID:
		default:
			o.log.Warn(ctx, "server assigned a different id to a known device",
				logging.String("device_id", o.device.ID), logging.String("assigned_id", event.DeviceID))
			return
		}
	case domain.EventConnectionError:
		o.lastError = event.Message
	}

	o.emit(ctx, event)
}

func (o *Orchestrator) reportAcquisition(ctx context.Context, err error) {
	o.metrics.ObserveAcquisitionError()

	var acquisition *domain.AcquisitionError
	if !errors.As(err, &acquisition) {
		acquisition = domain.NewAcquisitionError(domain.AcquisitionUnknown, err)
	}
	o.lastError = acquisition.Error()
	o.log.Warn(ctx, "location acquisition failed", logging.String("code", string(acquisition.Code)), logging.Err(err))
	o.emit(ctx, domain.Event{Kind: domain.EventLocationError, Message: acquisition.Error()})
}

// emit delivers lifecycle events without dropping them.
func (o *Orchestrator) emit(ctx context.Context, event domain.Event) {
	select {
	case o.events <- event:
	case <-ctx.Done():
	}
}

// emitCoordinate drops the update when the consumer lags; a later sample
// supersedes it.
func (o *Orchestrator) emitCoordinate(c domain.Coordinate) {
	select {
	case o.events <- domain.Event{Kind: domain.EventCoordinateUpdated, Coordinate: c}:
	default:
	}
}

func (o *Orchestrator) closeSession(ctx context.Context) {
	if o.session == nil {
		return
	}
	_ = o.session.Close()
	o.drainSession(ctx)
}

// drainSession forwards whatever the previous session still has to say so
// its actor can exit.
func (o *Orchestrator) drainSession(ctx context.Context) {
	if o.sessionEvents == nil {
		return
	}
	for event := range o.sessionEvents {
		o.handleSessionEvent(ctx, event)
	}
	o.sessionEvents = nil
}

func (o *Orchestrator) publishStatus() {
	state := domain.SessionDisconnected
	if o.session != nil {
		state = o.session.State()
	}

	o.status.Store(&Status{
		Device:           o.device,
		State:            state,
		Samples:          o.samples,
		ConnectRequested: o.connectRequested,
		LastError:        o.lastError,
	})
}
