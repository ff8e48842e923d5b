package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dorian305/rtls-client/internal/domain"
	"github.com/dorian305/rtls-client/internal/ports"
)

type DeviceService struct {
	repo ports.DeviceProfileRepository
}

func NewDeviceService(repo ports.DeviceProfileRepository) *DeviceService {
	return &DeviceService{repo: repo}
}

func (s *DeviceService) Register(ctx context.Context, profile domain.DeviceProfile) error {
	profile.Name = strings.TrimSpace(profile.Name)
	if err := profile.Validate(); err != nil {
		return err
	}

	if err := s.repo.Save(ctx, profile); err != nil {
		return fmt.Errorf("save device profile: %w", err)
	}

	return nil
}

func (s *DeviceService) Profile(ctx context.Context) (domain.DeviceProfile, error) {
	profile, err := s.repo.Get(ctx)
	if err != nil {
		return domain.DeviceProfile{}, fmt.Errorf("get device profile: %w", err)
	}

	return profile, nil
}

// Resolve merges non-empty overrides onto the stored profile. A missing
// stored profile is fine as long as the overrides make a valid one.
func (s *DeviceService) Resolve(ctx context.Context, override domain.DeviceProfile) (domain.DeviceProfile, error) {
	profile, err := s.repo.Get(ctx)
	if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		return domain.DeviceProfile{}, fmt.Errorf("get device profile: %w", err)
	}

	if name := strings.TrimSpace(override.Name); name != "" {
		profile.Name = name
	}
	if override.Type != "" {
		profile.Type = override.Type
	}
	if override.Battery != "" {
		profile.Battery = override.Battery
	}

	if err := profile.Validate(); err != nil {
		if errors.Is(err, domain.ErrInvalidDeviceName) && profile.Name == "" {
			return domain.DeviceProfile{}, fmt.Errorf("%w (run `rtls device set --name <name>` or pass --name)", err)
		}
		return domain.DeviceProfile{}, err
	}

	return profile, nil
}
