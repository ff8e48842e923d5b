package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dorian305/rtls-client/internal/adapters/http/statusapi"
	"github.com/dorian305/rtls-client/internal/adapters/location/replay"
	"github.com/dorian305/rtls-client/internal/adapters/location/simulated"
	"github.com/dorian305/rtls-client/internal/adapters/location/unsupported"
	statusadapter "github.com/dorian305/rtls-client/internal/adapters/render/status"
	"github.com/dorian305/rtls-client/internal/application"
	"github.com/dorian305/rtls-client/internal/config"
	"github.com/dorian305/rtls-client/internal/domain"
	"github.com/dorian305/rtls-client/internal/logging"
	"github.com/dorian305/rtls-client/internal/observability"
	"github.com/dorian305/rtls-client/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type runOptions struct {
	name       string
	deviceType string
	battery    string
	server     string
	plain      bool
	quiet      bool
}

func newRunCmd(v *viper.Viper) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sample the device location and stream it to the tracking server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bindFlags(v, cmd.Flags(), map[string]string{
				config.KeySamplingSimulate:  "simulate",
				config.KeySamplingTrackFile: "track",
				config.KeySamplingTrackLoop: "loop",
				config.KeySamplingInterval:  "interval",
				config.KeySmoothingWindow:   "window",
				config.KeyGateMinSamples:    "min-samples",
				config.KeyReconnectPolicy:   "reconnect",
				config.KeyStatusListen:      "status-listen",
			}); err != nil {
				return err
			}

			app, err := wireApp(v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runClient(ctx, cmd.OutOrStdout(), app, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.name, "name", "", "Device name, overrides the stored profile")
	flags.StringVar(&opts.deviceType, "type", "", "Device type (mobile, tablet, pc), overrides the stored profile")
	flags.StringVar(&opts.battery, "battery", "", "Battery label, overrides the stored profile")
	flags.StringVar(&opts.server, "server", "", "Server URL, e.g. ws://localhost:3000/ (overrides server.* config)")
	flags.Bool("simulate", false, "Generate positions with the movement simulator")
	flags.String("track", "", "Replay positions from a TOML track file")
	flags.Bool("loop", true, "Restart the track when it ends")
	flags.Duration("interval", 0, "Sampling interval (default from config, 500ms)")
	flags.Int("window", domain.DefaultWindowSize, "Smoothing window size")
	flags.Int("min-samples", application.DefaultMinSamples, "Samples to collect before connecting")
	flags.String("reconnect", config.PolicyNever, "Reconnect policy: never or backoff")
	flags.String("status-listen", "", "Serve /health, /status and /metrics on this address")
	flags.BoolVar(&opts.plain, "plain", false, "Disable colors in event output")
	flags.BoolVar(&opts.quiet, "quiet", false, "Do not print coordinate updates")

	return cmd
}

func runClient(ctx context.Context, out io.Writer, app *app, opts runOptions) error {
	cfg := app.cfg
	if opts.server != "" {
		endpoint, err := domain.ParseEndpoint(opts.server)
		if err != nil {
			return err
		}
		cfg.Server = endpoint
	}

	profile, err := app.devices.Resolve(ctx, domain.DeviceProfile{
		Name:    opts.name,
		Type:    domain.DeviceType(opts.deviceType),
		Battery: opts.battery,
	})
	if err != nil {
		return err
	}

	source, err := newLocationSource(cfg, app.log)
	if err != nil {
		return err
	}

	metrics, err := observability.NewTelemetryCollector(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	sessionOpts := application.SessionOptions{Logger: app.log, Metrics: metrics}
	newSession := func() application.Session {
		return application.NewConnectionSession(app.dialer, cfg.Server, sessionOpts)
	}

	orchestrator, err := application.NewOrchestrator(
		application.OrchestratorConfig{Window: cfg.Window, MinSamples: cfg.MinSamples},
		profile.Device(),
		newSession,
		application.OrchestratorOptions{Logger: app.log, Metrics: metrics},
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	apiDone := make(chan struct{})
	if cfg.StatusListen != "" {
		router := statusapi.NewRouter(orchestrator, metrics.Handler(), app.clock)
		go func() {
			defer close(apiDone)
			if err := statusapi.Serve(ctx, cfg.StatusListen, router, app.log, nil); err != nil {
				app.log.Error(ctx, "status api stopped", logging.Err(err))
			}
		}()
	} else {
		close(apiDone)
	}

	_, _ = fmt.Fprintf(out, "Device %s (%s): collecting %d samples before connecting to %s\n",
		sanitizeForTerminal(profile.Name), profile.Type, cfg.MinSamples, cfg.Server.URL())

	supervisor := application.Supervisor{
		Orchestrator: orchestrator,
		Policy:       cfg.ReconnectPolicy(),
		Logger:       app.log,
	}
	runErr := supervisor.Run(ctx, source, func(event domain.Event) {
		if opts.quiet && event.Kind == domain.EventCoordinateUpdated {
			return
		}
		event.Message = sanitizeForTerminal(event.Message)
		event.DeviceID = sanitizeForTerminal(event.DeviceID)
		if line, ok := statusadapter.EventLine(event, opts.plain); ok {
			_, _ = fmt.Fprintln(out, line)
		}
	})

	cancel()
	<-apiDone

	return runErr
}

func newLocationSource(cfg config.Config, log logging.Logger) (ports.LocationSource, error) {
	switch {
	case cfg.Sampling.TrackFile != "":
		return replay.New(cfg.Sampling.TrackFile, cfg.Sampling.Interval, cfg.Sampling.TrackLoop, log)
	case cfg.Sampling.Simulate:
		simulator, err := domain.NewMovementSimulator(cfg.Simulator, nil)
		if err != nil {
			return nil, err
		}
		return simulated.New(cfg.Sampling.Interval, simulator, log)
	default:
		return unsupported.Source{}, nil
	}
}
