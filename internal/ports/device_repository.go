package ports

import (
	"context"

	"github.com/dorian305/rtls-client/internal/domain"
)

type DeviceProfileRepository interface {
	Get(ctx context.Context) (domain.DeviceProfile, error)
	Save(ctx context.Context, profile domain.DeviceProfile) error
}
