package simulated

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dorian305/rtls-client/internal/domain"
	"github.com/dorian305/rtls-client/internal/logging"
	"github.com/dorian305/rtls-client/internal/ports"
)

// Source emits a random walk at a fixed interval. The first position is
// emitted as soon as the watch starts.
type Source struct {
	interval  time.Duration
	simulator *domain.MovementSimulator
	log       logging.Logger
}

var _ ports.LocationSource = (*Source)(nil)

func New(interval time.Duration, simulator *domain.MovementSimulator, log logging.Logger) (*Source, error) {
	if interval <= 0 {
		return nil, errors.New("sampling interval must be positive")
	}
	if simulator == nil {
		return nil, errors.New("movement simulator is nil")
	}
	if log == nil {
		log = logging.Noop()
	}

	return &Source{interval: interval, simulator: simulator, log: log}, nil
}

func (s *Source) Watch(ctx context.Context, handler ports.PositionHandler) (ports.Watch, error) {
	w := &watch{stopCh: make(chan struct{})}

	s.log.Info(ctx, "starting simulated location source", logging.Any("interval", s.interval))
	go s.loop(ctx, w, handler)

	return w, nil
}

func (s *Source) loop(ctx context.Context, w *watch, handler ports.PositionHandler) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var current domain.Coordinate
	emit := func() {
		current = s.simulator.Step(current)
		handler.OnPosition(current)
	}

	emit()
	for {
		select {
		case <-ticker.C:
			emit()
		case <-w.stopCh:
			s.log.Debug(ctx, "simulated location source stopped")
			return
		case <-ctx.Done():
			return
		}
	}
}

type watch struct {
	stopCh chan struct{}
	once   sync.Once
}

func (w *watch) Stop() {
	w.once.Do(func() { close(w.stopCh) })
}
