package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"ridecoach/internal/service"
)

func newSyncCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch new rides from Strava and analyze them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			e, err := setupEnv(opts, out, true, true)
			if err != nil {
				return err
			}
			defer e.Close()

			client, err := connectStrava(cmd.Context(), e, out, true)
			if err != nil {
				return err
			}
			syncSvc := service.NewSyncService(client, e.db, service.NewAnalysisService(client, e.db, e.cfg))

			progress := make(chan service.SyncProgress)
			done := make(chan struct{})
			go func() {
				defer close(done)
				printProgress(out, progress)
			}()

			result, err := syncSvc.SyncAll(cmd.Context(), progress)
			<-done
			if result != nil {
				fmt.Fprintf(out, "\n%d rides synced, %d analyzed", result.RidesStored, result.Analyzed)
				if len(result.Errors) > 0 {
					fmt.Fprintf(out, ", %d errors", len(result.Errors))
				}
				fmt.Fprintln(out)
				for _, syncErr := range result.Errors {
					fmt.Fprintf(out, "  %v\n", syncErr)
				}
			}
			return err
		},
	}
}

func printProgress(out io.Writer, progress <-chan service.SyncProgress) {
	for p := range progress {
		switch p.Phase {
		case service.PhaseActivities:
			fmt.Fprintf(out, "\rFetching rides... %d", p.Completed)
		case service.PhaseAnalysis:
			fmt.Fprintf(out, "\rAnalyzing %d/%d %-40.40s", p.Completed, p.Total, p.CurrentActivity)
		}
	}
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <activity-id>",
		Short: "Analyze one Strava ride and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid activity id %q", args[0])
			}

			out := cmd.OutOrStdout()
			e, err := setupEnv(opts, out, true, true)
			if err != nil {
				return err
			}
			defer e.Close()

			client, err := connectStrava(cmd.Context(), e, out, true)
			if err != nil {
				return err
			}

			an, err := service.NewAnalysisService(client, e.db, e.cfg).AnalyzeActivity(cmd.Context(), id)
			if err != nil {
				return err
			}
			return writeJSON(out, an)
		},
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
