package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dorian305/rtls-client/internal/adapters/http/statusapi"
	statusadapter "github.com/dorian305/rtls-client/internal/adapters/render/status"
	"github.com/dorian305/rtls-client/internal/application"
	"github.com/dorian305/rtls-client/internal/config"
	"github.com/dorian305/rtls-client/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newStatusCmd(v *viper.Viper) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the status of a running client, or the stored profile when none is reachable",
		Long:  "status queries the local status API of a running `rtls run` (status.listen). Without a configured listen address it shows the stored device profile and target server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bindFlags(v, cmd.Flags(), map[string]string{
				config.KeyStatusListen: "status-listen",
			}); err != nil {
				return err
			}

			app, err := wireApp(v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			status, err := loadStatus(cmd, app, asJSON)
			if err != nil {
				return err
			}

			return writeStatusOutput(cmd, app, status, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().String("status-listen", "", "Address of the running client's status API (host:port)")

	return cmd
}

func loadStatus(cmd *cobra.Command, app *app, asJSON bool) (application.Status, error) {
	if app.cfg.StatusListen == "" {
		return offlineStatus(cmd, app)
	}

	fetch := func(ctx context.Context) (application.Status, error) {
		response, err := statusapi.Fetch(ctx, app.httpClient, app.cfg.StatusListen)
		if err != nil {
			return application.Status{}, err
		}
		return response.Status(), nil
	}

	if asJSON {
		return fetch(cmd.Context())
	}
	return fetchStatusWithSpinner(cmd.Context(), cmd.ErrOrStderr(), app.cfg.StatusListen, fetch)
}

func offlineStatus(cmd *cobra.Command, app *app) (application.Status, error) {
	profile, err := app.devices.Profile(cmd.Context())
	if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		return application.Status{}, err
	}

	return application.Status{Device: profile.Device(), State: domain.SessionDisconnected}, nil
}

func writeStatusOutput(cmd *cobra.Command, app *app, status application.Status, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(statusJSON(status))
	}

	rendered, err := app.statusRenderer(status, statusadapter.RenderOptions{
		Endpoint:   app.cfg.Server.URL(),
		MinSamples: app.cfg.MinSamples,
	})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

type statusOutput struct {
	ID               string  `json:"id,omitempty"`
	Name             string  `json:"name"`
	Type             string  `json:"type"`
	State            string  `json:"state"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Battery          string  `json:"battery,omitempty"`
	Samples          int     `json:"samples"`
	ConnectRequested bool    `json:"connect_requested"`
	LastError        string  `json:"last_error,omitempty"`
}

func statusJSON(status application.Status) statusOutput {
	return statusOutput{
		ID:               status.Device.ID,
		Name:             status.Device.Name,
		Type:             string(status.Device.Type),
		State:            status.State.String(),
		Latitude:         status.Device.Coordinates.X,
		Longitude:        status.Device.Coordinates.Y,
		Battery:          status.Device.Battery,
		Samples:          status.Samples,
		ConnectRequested: status.ConnectRequested,
		LastError:        status.LastError,
	}
}
