package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"

	statusadapter "github.com/dorian305/rtls-client/internal/adapters/render/status"
	tomlrepo "github.com/dorian305/rtls-client/internal/adapters/repo/toml"
	wsadapter "github.com/dorian305/rtls-client/internal/adapters/transport/websocket"
	"github.com/dorian305/rtls-client/internal/application"
	"github.com/dorian305/rtls-client/internal/config"
	"github.com/dorian305/rtls-client/internal/logging"
	"github.com/dorian305/rtls-client/internal/ports"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type app struct {
	cfg            config.Config
	log            logging.Logger
	logCloser      io.Closer
	devices        *application.DeviceService
	devicePath     string
	dialer         ports.Dialer
	clock          ports.Clock
	statusRenderer func(application.Status, statusadapter.RenderOptions) (string, error)
	httpClient     *http.Client
}

func wireApp(v *viper.Viper, logOutput io.Writer) (*app, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg, err := config.Load(v, homeDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logCfg := cfg.Log
	logCfg.Output = logOutput
	log, logCloser := logging.New(logCfg)

	repo, err := tomlrepo.NewRepository(v)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("wire device repository: %w", err)
	}

	return &app{
		cfg:            cfg,
		log:            log,
		logCloser:      logCloser,
		devices:        application.NewDeviceService(repo),
		devicePath:     repo.Path(),
		dialer:         wsadapter.Dialer{},
		clock:          ports.SystemClock{},
		statusRenderer: statusadapter.Render,
		httpClient:     http.DefaultClient,
	}, nil
}

func (a *app) Close() error {
	return a.logCloser.Close()
}

// bindFlags binds the running command's flags to config keys. Binding at run
// time keeps commands that share a key from overriding each other.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		flag := flags.Lookup(name)
		if flag == nil {
			return fmt.Errorf("bind %s: unknown flag --%s", key, name)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}
