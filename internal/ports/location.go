package ports

import (
	"context"

	"github.com/dorian305/rtls-client/internal/domain"
)

// PositionHandler receives raw samples and acquisition failures from a
// LocationSource. Callbacks may run on the source's own goroutine.
type PositionHandler struct {
	OnPosition func(domain.Coordinate)
	OnError    func(error)
}

type LocationSource interface {
	// Watch subscribes handler to position updates until ctx ends or the
	// returned Watch is stopped. A source that cannot produce positions at all
	// returns a *domain.AcquisitionError.
	Watch(ctx context.Context, handler PositionHandler) (Watch, error)
}

// Watch is an active subscription. Stop is idempotent.
type Watch interface {
	Stop()
}
