package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rtls",
		Short:         "RTLS client: stream this device's location to a tracking server",
		Long:          "rtls samples the device location, smooths it over a moving window and, once enough samples are collected, registers the device with a real-time location tracking server over websocket and keeps it updated.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Flags of every subcommand bind into v; wiring reads it at run time.
	v := viper.New()

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(v),
		newDeviceCmd(v),
		newStatusCmd(v),
	)

	return rootCmd
}
