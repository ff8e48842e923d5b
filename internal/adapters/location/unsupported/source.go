package unsupported

import (
	"context"

	"github.com/dorian305/rtls-client/internal/domain"
	"github.com/dorian305/rtls-client/internal/ports"
)

// Source stands in when no position provider is configured.
type Source struct{}

var _ ports.LocationSource = Source{}

func (Source) Watch(context.Context, ports.PositionHandler) (ports.Watch, error) {
	return nil, domain.NewAcquisitionError(domain.AcquisitionUnsupported, domain.ErrLocationUnsupported)
}
