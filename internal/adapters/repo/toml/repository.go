package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dorian305/rtls-client/internal/domain"
	"github.com/dorian305/rtls-client/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	devicePathKey    = "device.path"
	deviceFileMode   = 0o600
	deviceDirMode    = 0o700
	deviceConfigDir  = ".rtls"
	deviceConfigFile = "device.toml"
	tempFilePattern  = ".device-*.toml.tmp"
)

// Repository stores the single device profile of this client in a TOML file.
type Repository struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.DeviceProfileRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	path := cfg.GetString(devicePathKey)
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(homeDir, deviceConfigDir, deviceConfigFile)
	}

	path, err := normalizePath(path)
	if err != nil {
		return nil, err
	}

	return &Repository{path: path, mu: lockForPath(path)}, nil
}

// Path is the resolved profile file location.
func (r *Repository) Path() string {
	return r.path
}

func (r *Repository) Get(ctx context.Context) (domain.DeviceProfile, error) {
	if err := ctx.Err(); err != nil {
		return domain.DeviceProfile{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.DeviceProfile{}, err
	}
	if file.Device == nil {
		return domain.DeviceProfile{}, domain.ErrProfileNotFound
	}

	return fromSchema(*file.Device), nil
}

func (r *Repository) Save(ctx context.Context, profile domain.DeviceProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	encoded := toSchema(profile)
	file.Device = &encoded

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read device file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode device file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

// writeSchema replaces the file atomically so a crash never leaves a
// half-written profile behind.
func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, deviceDirMode); err != nil {
		return fmt.Errorf("create device directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode device file: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp device file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp device file: %w", err)
	}
	if err := tempFile.Chmod(deviceFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp device file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp device file: %w", err)
	}

	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace device file: %w", err)
	}
	cleanup = false

	return nil
}

func normalizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve device path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func toSchema(profile domain.DeviceProfile) profileSchema {
	return profileSchema{
		Name:    profile.Name,
		Type:    string(profile.Type),
		Battery: profile.Battery,
	}
}

func fromSchema(profile profileSchema) domain.DeviceProfile {
	return domain.DeviceProfile{
		Name:    profile.Name,
		Type:    domain.DeviceType(profile.Type),
		Battery: profile.Battery,
	}
}
