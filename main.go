package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, errConfigCreated) {
			return
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// rootOptions holds flags shared by every command
type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "ridecoach",
		Short: "Cycling power and heart rate analysis for Strava rides",
		Long: `ridecoach syncs rides from Strava and analyzes their power and heart rate
streams: zone distribution, power curve, training load and aerobic decoupling.

Run without a subcommand to open the terminal UI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.ridecoach/config.json)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newSyncCmd(opts),
		newAnalyzeCmd(opts),
		newAnalyzeFITCmd(opts),
		newExportCmd(opts),
		newServeCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
	)

	return root
}
