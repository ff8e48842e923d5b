package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dorian305/rtls-client/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newDeviceCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Manage the stored device profile",
	}

	cmd.AddCommand(
		newDeviceSetCmd(v),
		newDeviceShowCmd(v),
	)

	return cmd
}

func newDeviceSetCmd(v *viper.Viper) *cobra.Command {
	var (
		name       string
		deviceType string
		battery    string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the device name, type and battery label",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := wireApp(v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			profile := domain.DeviceProfile{Name: name, Type: domain.DeviceType(deviceType), Battery: battery}
			if err := app.devices.Register(cmd.Context(), profile); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved device profile to %s\n", app.devicePath)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", fmt.Sprintf("Device name (1-%d characters)", domain.MaxDeviceNameLength))
	cmd.Flags().StringVar(&deviceType, "type", string(domain.DeviceTypeMobile), "Device type: mobile, tablet or pc")
	cmd.Flags().StringVar(&battery, "battery", "", "Optional battery label, e.g. \"Charging (80%)\"")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newDeviceShowCmd(v *viper.Viper) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the stored device profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := wireApp(v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			profile, err := app.devices.Profile(cmd.Context())
			if err != nil {
				if errors.Is(err, domain.ErrProfileNotFound) {
					return fmt.Errorf("%w: run `rtls device set --name <name>` first", err)
				}
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(profileJSON{Name: profile.Name, Type: string(profile.Type), Battery: profile.Battery})
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "name:    %s\n", sanitizeForTerminal(profile.Name))
			_, _ = fmt.Fprintf(out, "type:    %s\n", profile.Type)
			if profile.Battery != "" {
				_, _ = fmt.Fprintf(out, "battery: %s\n", sanitizeForTerminal(profile.Battery))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

type profileJSON struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Battery string `json:"battery,omitempty"`
}
