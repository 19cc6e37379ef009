package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ridecoach/internal/service"
	"ridecoach/internal/tui"
)

// runTUI opens the terminal UI. Without Strava credentials it still browses
// stored rides and goals.
func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	out := cmd.OutOrStdout()

	e, err := setupEnv(opts, out, false, false)
	if err != nil {
		return err
	}
	defer e.Close()

	querySvc := service.NewQueryService(e.db, e.cfg.Profile())

	var syncSvc *service.SyncService
	var analyzer tui.Analyzer
	if err := e.cfg.Validate(); err != nil {
		log.Warn().Err(err).Msg("Strava not configured, starting offline")
	} else {
		client, err := connectStrava(cmd.Context(), e, out, true)
		if err != nil {
			return err
		}
		analysisSvc := service.NewAnalysisService(client, e.db, e.cfg)
		syncSvc = service.NewSyncService(client, e.db, analysisSvc)
		analyzer = analysisSvc
	}

	app := tui.NewApp(querySvc, syncSvc, analyzer, tui.NewUnits(e.cfg.Display))
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
