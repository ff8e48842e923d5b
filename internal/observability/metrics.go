package observability

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dorian305/rtls-client/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TelemetryCollector bundles Prometheus metrics for the sampling pipeline and
// the connection session. A nil collector is valid and records nothing.
type TelemetryCollector struct {
	gatherer prometheus.Gatherer

	Samples          prometheus.Counter
	AcquisitionFails prometheus.Counter
	ConnectAttempts  prometheus.Counter
	Outbound         *prometheus.CounterVec
	Inbound          *prometheus.CounterVec
	MalformedInbound prometheus.Counter
	SessionState     prometheus.Gauge
}

// NewTelemetryCollector registers metrics against reg, defaulting to the
// global Prometheus registry when nil.
func NewTelemetryCollector(reg prometheus.Registerer) (*TelemetryCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	samples, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rtls_samples_total",
		Help: "Raw coordinate samples received from the location source.",
	}), "rtls_samples_total")
	if err != nil {
		return nil, err
	}
	acquisition, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rtls_acquisition_errors_total",
		Help: "Location acquisition failures reported by the location source.",
	}), "rtls_acquisition_errors_total")
	if err != nil {
		return nil, err
	}
	connects, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rtls_connect_attempts_total",
		Help: "Connection sessions started.",
	}), "rtls_connect_attempts_total")
	if err != nil {
		return nil, err
	}
	outbound, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rtls_outbound_messages_total",
		Help: "Messages written to the server, labeled by message type.",
	}, []string{"type"}), "rtls_outbound_messages_total")
	if err != nil {
		return nil, err
	}
	inbound, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rtls_inbound_messages_total",
		Help: "Messages received from the server, labeled by message type.",
	}, []string{"type"}), "rtls_inbound_messages_total")
	if err != nil {
		return nil, err
	}
	malformed, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rtls_inbound_malformed_total",
		Help: "Inbound frames that could not be decoded or had an unknown type.",
	}), "rtls_inbound_malformed_total")
	if err != nil {
		return nil, err
	}
	state, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rtls_session_state",
		Help: "Current session state (0 disconnected, 1 connecting, 2 connected, 3 closed).",
	}), "rtls_session_state")
	if err != nil {
		return nil, err
	}

	return &TelemetryCollector{
		gatherer:         gatherer,
		Samples:          samples,
		AcquisitionFails: acquisition,
		ConnectAttempts:  connects,
		Outbound:         outbound,
		Inbound:          inbound,
		MalformedInbound: malformed,
		SessionState:     state,
	}, nil
}

func (c *TelemetryCollector) ObserveSample() {
	if c == nil {
		return
	}
	c.Samples.Inc()
}

func (c *TelemetryCollector) ObserveAcquisitionError() {
	if c == nil {
		return
	}
	c.AcquisitionFails.Inc()
}

func (c *TelemetryCollector) ObserveConnectAttempt() {
	if c == nil {
		return
	}
	c.ConnectAttempts.Inc()
}

func (c *TelemetryCollector) ObserveOutbound(messageType string) {
	if c == nil {
		return
	}
	c.Outbound.WithLabelValues(messageType).Inc()
}

func (c *TelemetryCollector) ObserveInbound(messageType string) {
	if c == nil {
		return
	}
	c.Inbound.WithLabelValues(messageType).Inc()
}

func (c *TelemetryCollector) ObserveMalformed() {
	if c == nil {
		return
	}
	c.MalformedInbound.Inc()
}

func (c *TelemetryCollector) SetSessionState(state domain.SessionState) {
	if c == nil {
		return
	}
	c.SessionState.Set(float64(state))
}

// Handler serves the registry the collector was created against.
func (c *TelemetryCollector) Handler() http.Handler {
	if c == nil || c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	return c, nil
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	return c, nil
}

func registerGauge(reg prometheus.Registerer, g prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(g); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	return g, nil
}
