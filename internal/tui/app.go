package tui

import (
	"ridecoach/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen identifiers
type Screen int

const (
	ScreenRides Screen = iota
	ScreenDetail
	ScreenGoals
	ScreenSync
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	rides      RidesModel
	detail     RideDetailModel
	goals      GoalsModel
	syncScreen SyncModel
	help       HelpModel

	// Services
	queryService *service.QueryService
	syncService  *service.SyncService
	analyzer     Analyzer
	units        Units

	// Window dimensions
	width  int
	height int

	// Status message
	status string
}

// NewApp creates a new App with all dependencies. syncService and analyzer
// are nil when Strava is not configured; the app then browses stored rides only.
func NewApp(queryService *service.QueryService, syncService *service.SyncService, analyzer Analyzer, units Units) *App {
	a := &App{
		screen:       ScreenRides,
		queryService: queryService,
		syncService:  syncService,
		analyzer:     analyzer,
		units:        units,
		rides:        NewRidesModel(queryService, units),
		goals:        NewGoalsModel(queryService),
		syncScreen:   NewSyncModel(syncService),
		help:         NewHelpModel(),
	}
	if syncService == nil {
		a.status = "Offline: Strava not configured"
	}
	return a
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.rides.Init()
}

// captureKeys reports whether the current screen needs raw key input
func (a *App) captureKeys() bool {
	switch a.screen {
	case ScreenSync:
		return a.syncScreen.syncing
	case ScreenGoals:
		return a.goals.Editing()
	}
	return false
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.captureKeys() {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "1":
				a.screen = ScreenRides
				return a, a.rides.Init()
			case "2":
				a.screen = ScreenGoals
				return a, a.goals.Init()
			case "3", "s":
				if a.screen != ScreenSync {
					a.screen = ScreenSync
					return a, a.syncScreen.Init()
				}
				// 's' starts the sync once on the sync screen
			case "?":
				if a.screen != ScreenHelp {
					a.prevScreen = a.screen
					a.screen = ScreenHelp
				}
				return a, nil
			case "esc":
				switch a.screen {
				case ScreenHelp:
					a.screen = a.prevScreen
					return a, nil
				case ScreenDetail:
					a.screen = ScreenRides
					return a, a.rides.Init()
				}
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case OpenActivityDetailMsg:
		a.screen = ScreenDetail
		a.detail = NewRideDetailModel(a.queryService, a.analyzer, a.units, msg.ActivityID, a.width, a.height)
		return a, a.detail.Init()

	case SyncCompleteMsg:
		// Stay on the sync screen so the summary is visible; refresh the list underneath
		return a, a.rides.Init()

	case ridesLoadedMsg:
		m, cmd := a.rides.Update(msg)
		a.rides = m.(RidesModel)
		return a, cmd
	}

	var cmd tea.Cmd
	var m tea.Model
	switch a.screen {
	case ScreenRides:
		m, cmd = a.rides.Update(msg)
		a.rides = m.(RidesModel)
	case ScreenDetail:
		m, cmd = a.detail.Update(msg)
		a.detail = m.(RideDetailModel)
	case ScreenGoals:
		m, cmd = a.goals.Update(msg)
		a.goals = m.(GoalsModel)
	case ScreenSync:
		m, cmd = a.syncScreen.Update(msg)
		a.syncScreen = m.(SyncModel)
	case ScreenHelp:
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenRides:
		content = a.rides.View()
	case ScreenDetail:
		content = a.detail.View()
	case ScreenGoals:
		content = a.goals.View()
	case ScreenSync:
		content = a.syncScreen.View()
	case ScreenHelp:
		content = a.help.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), a.renderNav(), content, a.renderFooter())
}

func (a *App) renderHeader() string {
	return headerStyle.Render("ridecoach: ride analysis")
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Rides", ScreenRides},
		{"2", "Goals", ScreenGoals},
		{"3", "Sync", ScreenSync},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		active := a.screen == item.screen || (item.screen == ScreenRides && a.screen == ScreenDetail)
		if active {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

func (a *App) renderFooter() string {
	if a.status != "" {
		return statusStyle.Render(a.status)
	}
	return ""
}

// SyncCompleteMsg is sent when sync finishes
type SyncCompleteMsg struct{}
