package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dorian305/rtls-client/internal/domain"
	"github.com/dorian305/rtls-client/internal/logging"
	"github.com/dorian305/rtls-client/internal/ports"
)

// Supervisor runs an Orchestrator, relays its events and applies a
// ReconnectPolicy whenever a session closes.
type Supervisor struct {
	Orchestrator *Orchestrator
	Policy       ReconnectPolicy
	Logger       logging.Logger
}

// Run blocks until ctx ends, the location source cannot be watched, or the
// policy gives up after a closure. onEvent sees every outward event in order.
func (s Supervisor) Run(ctx context.Context, source ports.LocationSource, onEvent func(domain.Event)) error {
	policy := s.Policy
	if policy == nil {
		policy = NeverReconnect{}
	}
	log := s.Logger
	if log == nil {
		log = logging.Noop()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)
	go func() {
		runErr <- s.Orchestrator.Run(ctx, source)
	}()

	var (
		attempt   int
		lastError string
		result    error
		retry     <-chan time.Time
	)
	events := s.Orchestrator.Events()
	for events != nil {
		select {
		case <-retry:
			retry = nil
			s.Orchestrator.Reconnect()
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if onEvent != nil {
				onEvent(event)
			}

			switch event.Kind {
			case domain.EventConnected:
				attempt = 0
				lastError = ""
			case domain.EventConnectionError:
				lastError = event.Message
			case domain.EventConnectionClosed:
				if result != nil {
					continue
				}
				attempt++
				delay, again := policy.NextDelay(attempt, event)
				if !again {
					result = closedError(event, lastError)
					cancel()
					continue
				}
				log.Info(ctx, "scheduling reconnect", logging.Int("attempt", attempt), logging.Any("delay", delay))
				retry = time.After(delay)
			}
		}
	}

	err := <-runErr
	if result != nil {
		return result
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func closedError(event domain.Event, lastError string) error {
	if event.HadConnected {
		return domain.ErrConnectionLost
	}
	if lastError != "" {
		return fmt.Errorf("%w: %s", domain.ErrConnectionNotEstablished, lastError)
	}
	return domain.ErrConnectionNotEstablished
}
