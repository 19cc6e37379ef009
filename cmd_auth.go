package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ridecoach/internal/store"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Connect to Strava, replacing any stored login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			e, err := setupEnv(opts, out, true, true)
			if err != nil {
				return err
			}
			defer e.Close()

			_, err = authenticate(cmd.Context(), e.db, e.oauthConfig(), out)
			return err
		},
	}
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored Strava login (synced rides are kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			e, err := setupEnv(opts, out, false, true)
			if err != nil {
				return err
			}
			defer e.Close()

			cleared, err := e.db.ClearAuth()
			if errors.Is(err, store.ErrNoAuth) {
				fmt.Fprintln(out, "Not logged in.")
				return nil
			}
			if err != nil {
				return err
			}

			log.Info().Int64("athlete_id", cleared.AthleteID).Msg("strava login cleared")
			who := cleared.AthleteName
			if who == "" {
				who = fmt.Sprintf("athlete %d", cleared.AthleteID)
			}
			fmt.Fprintf(out, "Logged out %s.\n", who)
			return nil
		},
	}
}
