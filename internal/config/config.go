package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dorian305/rtls-client/internal/application"
	"github.com/dorian305/rtls-client/internal/domain"
	"github.com/dorian305/rtls-client/internal/logging"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".rtls"
	envPrefix  = "RTLS"

	PolicyNever   = "never"
	PolicyBackoff = "backoff"
)

// Keys shared with flag bindings.
const (
	KeyServerProtocol     = "server.protocol"
	KeyServerHost         = "server.host"
	KeyServerPort         = "server.port"
	KeyServerPath         = "server.path"
	KeySmoothingWindow    = "smoothing.window"
	KeyGateMinSamples     = "gate.min_samples"
	KeySamplingInterval   = "sampling.interval"
	KeySamplingSimulate   = "sampling.simulate"
	KeySamplingTrackFile  = "sampling.track_file"
	KeySamplingTrackLoop  = "sampling.track_loop"
	KeySimulatorMinX      = "simulator.min_x"
	KeySimulatorMaxX      = "simulator.max_x"
	KeySimulatorMinY      = "simulator.min_y"
	KeySimulatorMaxY      = "simulator.max_y"
	KeySimulatorMaxChange = "simulator.max_change"
	KeySimulatorMaxAngle  = "simulator.max_angle"
	KeyReconnectPolicy    = "reconnect.policy"
	KeyReconnectInitial   = "reconnect.initial"
	KeyReconnectMax       = "reconnect.max"
	KeyReconnectAttempts  = "reconnect.max_attempts"
	KeyDevicePath         = "device.path"
	KeyStatusListen       = "status.listen"
	KeyLogLevel           = "log.level"
	KeyLogFormat          = "log.format"
	KeyLogFile            = "log.file"
	KeyLogMaxSizeMB       = "log.max_size_mb"
	KeyLogMaxBackups      = "log.max_backups"
	KeyLogMaxAgeDays      = "log.max_age_days"
)

type Config struct {
	Server       domain.Endpoint
	Window       int
	MinSamples   int
	Sampling     Sampling
	Simulator    domain.MovementConfig
	Reconnect    Reconnect
	DevicePath   string
	StatusListen string
	Log          logging.Config
}

type Sampling struct {
	Interval  time.Duration
	Simulate  bool
	TrackFile string
	TrackLoop bool
}

type Reconnect struct {
	Policy      string
	Initial     time.Duration
	Max         time.Duration
	MaxAttempts int
}

// SetDefaults registers every key so env overrides resolve even when no
// config file exists.
func SetDefaults(v *viper.Viper, home string) {
	movement := domain.DefaultMovementConfig()

	v.SetDefault(KeyServerProtocol, "ws")
	v.SetDefault(KeyServerHost, "localhost")
	v.SetDefault(KeyServerPort, 3000)
	v.SetDefault(KeyServerPath, "/")
	v.SetDefault(KeySmoothingWindow, domain.DefaultWindowSize)
	v.SetDefault(KeyGateMinSamples, application.DefaultMinSamples)
	v.SetDefault(KeySamplingInterval, 500*time.Millisecond)
	v.SetDefault(KeySamplingSimulate, false)
	v.SetDefault(KeySamplingTrackFile, "")
	v.SetDefault(KeySamplingTrackLoop, true)
	v.SetDefault(KeySimulatorMinX, movement.Bounds.MinX)
	v.SetDefault(KeySimulatorMaxX, movement.Bounds.MaxX)
	v.SetDefault(KeySimulatorMinY, movement.Bounds.MinY)
	v.SetDefault(KeySimulatorMaxY, movement.Bounds.MaxY)
	v.SetDefault(KeySimulatorMaxChange, movement.MaxChange)
	v.SetDefault(KeySimulatorMaxAngle, movement.MaxAngle)
	v.SetDefault(KeyReconnectPolicy, PolicyNever)
	v.SetDefault(KeyReconnectInitial, time.Second)
	v.SetDefault(KeyReconnectMax, 30*time.Second)
	v.SetDefault(KeyReconnectAttempts, 5)
	v.SetDefault(KeyDevicePath, filepath.Join(home, configDir, "device.toml"))
	v.SetDefault(KeyStatusListen, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogMaxSizeMB, 10)
	v.SetDefault(KeyLogMaxBackups, 3)
	v.SetDefault(KeyLogMaxAgeDays, 28)
}

// Load reads ~/.rtls/config.toml when present and RTLS_* environment
// overrides. Flags bound to v before Load take precedence over both.
func Load(v *viper.Viper, home string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	SetDefaults(v, home)
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(filepath.Join(home, configDir))
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := FromViper(v)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func FromViper(v *viper.Viper) Config {
	return Config{
		Server: domain.Endpoint{
			Protocol: strings.ToLower(v.GetString(KeyServerProtocol)),
			Host:     v.GetString(KeyServerHost),
			Port:     v.GetInt(KeyServerPort),
			Path:     v.GetString(KeyServerPath),
		},
		Window:     v.GetInt(KeySmoothingWindow),
		MinSamples: v.GetInt(KeyGateMinSamples),
		Sampling: Sampling{
			Interval:  v.GetDuration(KeySamplingInterval),
			Simulate:  v.GetBool(KeySamplingSimulate),
			TrackFile: v.GetString(KeySamplingTrackFile),
			TrackLoop: v.GetBool(KeySamplingTrackLoop),
		},
		Simulator: domain.MovementConfig{
			Bounds: domain.Bounds{
				MinX: v.GetFloat64(KeySimulatorMinX),
				MaxX: v.GetFloat64(KeySimulatorMaxX),
				MinY: v.GetFloat64(KeySimulatorMinY),
				MaxY: v.GetFloat64(KeySimulatorMaxY),
			},
			MaxChange: v.GetFloat64(KeySimulatorMaxChange),
			MaxAngle:  v.GetFloat64(KeySimulatorMaxAngle),
		},
		Reconnect: Reconnect{
			Policy:      strings.ToLower(v.GetString(KeyReconnectPolicy)),
			Initial:     v.GetDuration(KeyReconnectInitial),
			Max:         v.GetDuration(KeyReconnectMax),
			MaxAttempts: v.GetInt(KeyReconnectAttempts),
		},
		DevicePath:   v.GetString(KeyDevicePath),
		StatusListen: v.GetString(KeyStatusListen),
		Log: logging.Config{
			Level:      v.GetString(KeyLogLevel),
			Format:     v.GetString(KeyLogFormat),
			File:       v.GetString(KeyLogFile),
			MaxSizeMB:  v.GetInt(KeyLogMaxSizeMB),
			MaxBackups: v.GetInt(KeyLogMaxBackups),
			MaxAgeDays: v.GetInt(KeyLogMaxAgeDays),
		},
	}
}

func (c Config) Validate() error {
	var errs []error

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Window < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", KeySmoothingWindow, c.Window))
	}
	if c.MinSamples < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", KeyGateMinSamples, c.MinSamples))
	}
	if c.Sampling.Interval <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %s", KeySamplingInterval, c.Sampling.Interval))
	}
	if c.Sampling.Simulate {
		if err := c.Simulator.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("simulator: %w", err))
		}
	}

	switch c.Reconnect.Policy {
	case PolicyNever:
	case PolicyBackoff:
		if c.Reconnect.Initial <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", KeyReconnectInitial))
		}
		if c.Reconnect.Max < c.Reconnect.Initial {
			errs = append(errs, fmt.Errorf("%s must not be below %s", KeyReconnectMax, KeyReconnectInitial))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown %s %q (want %s or %s)", KeyReconnectPolicy, c.Reconnect.Policy, PolicyNever, PolicyBackoff))
	}

	return errors.Join(errs...)
}

// ReconnectPolicy builds the policy named by the configuration.
func (c Config) ReconnectPolicy() application.ReconnectPolicy {
	if c.Reconnect.Policy != PolicyBackoff {
		return application.NeverReconnect{}
	}

	return application.ExponentialBackoff{
		Initial:     c.Reconnect.Initial,
		Max:         c.Reconnect.Max,
		MaxAttempts: c.Reconnect.MaxAttempts,
	}
}

