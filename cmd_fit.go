package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ridecoach/internal/service"
)

// FIT commands never talk to Strava, so they only need local config

func newAnalyzeFITCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze-fit <file.fit>",
		Short: "Analyze a local FIT file and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			e, err := setupEnv(opts, out, false, true)
			if err != nil {
				return err
			}
			defer e.Close()

			result, err := service.NewAnalysisService(nil, e.db, e.cfg).AnalyzeFIT(args[0])
			if err != nil {
				return err
			}
			return writeJSON(out, result)
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.fit> <out.parquet>",
		Short: "Write a FIT file's per-second samples to parquet",
		Long: `Writes one row per second with power, heart rate and cadence, validity
flags, the lap index and whether the sample falls in the analyzed main set.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			e, err := setupEnv(opts, out, false, true)
			if err != nil {
				return err
			}
			defer e.Close()

			stats, err := service.NewAnalysisService(nil, e.db, e.cfg).ExportFIT(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, stats.String())
			return nil
		},
	}
}
