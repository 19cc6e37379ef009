package tui

import (
	"context"
	"fmt"
	"strings"

	"ridecoach/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxShownErrors = 5

// SyncModel is the sync screen model
type SyncModel struct {
	syncService *service.SyncService
	syncing     bool
	progress    service.SyncProgress
	updates     chan service.SyncProgress
	result      *service.SyncResult
	err         error
	done        bool
}

// NewSyncModel creates a new sync model. ss is nil when Strava is not configured.
func NewSyncModel(ss *service.SyncService) SyncModel {
	return SyncModel{
		syncService: ss,
	}
}

// Init initializes the sync screen
func (m SyncModel) Init() tea.Cmd {
	return nil
}

// SyncDoneMsg is sent when sync finishes
type SyncDoneMsg struct {
	Result *service.SyncResult
	Err    error
}

type syncProgressMsg service.SyncProgress

// Update handles messages
func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case syncProgressMsg:
		m.progress = service.SyncProgress(msg)
		return m, waitForProgress(m.updates)

	case SyncDoneMsg:
		m.syncing = false
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, func() tea.Msg { return SyncCompleteMsg{} }

	case tea.KeyMsg:
		if !m.syncing && m.syncService != nil {
			switch msg.String() {
			case "enter", "s":
				m.syncing = true
				m.done = false
				m.err = nil
				m.result = nil
				m.progress = service.SyncProgress{}
				m.updates = make(chan service.SyncProgress, 16)
				return m, tea.Batch(m.runSync(m.updates), waitForProgress(m.updates))
			}
		}
	}
	return m, nil
}

func (m SyncModel) runSync(updates chan service.SyncProgress) tea.Cmd {
	return func() tea.Msg {
		result, err := m.syncService.SyncAll(context.Background(), updates)
		return SyncDoneMsg{Result: result, Err: err}
	}
}

// waitForProgress reads one update; nil once SyncAll has closed the channel
func waitForProgress(updates <-chan service.SyncProgress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-updates
		if !ok {
			return nil
		}
		return syncProgressMsg(p)
	}
}

// View renders the sync screen
func (m SyncModel) View() string {
	sections := []string{cardTitleStyle.Render("Strava Sync")}

	if m.syncService == nil {
		sections = append(sections, warningStyle.Render("\n  Strava is not configured. Add client credentials to the config file."))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press 's' or Enter to retry"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.done && !m.syncing {
		sections = append(sections, successStyle.Render("\n  Sync complete!"))
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press '1' to go to rides"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.syncing {
		sections = append(sections, m.renderProgress())
	} else {
		sections = append(sections, m.renderStartPrompt())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SyncModel) renderStartPrompt() string {
	lines := []string{
		"",
		"  This will sync your Strava rides:",
		"",
		"  1. Fetch new rides from Strava",
		"  2. Download power and heart rate streams",
		"  3. Compute zones, power curve, training load and drift",
		"",
	}

	short, daily := m.syncService.RateLimitStatus()
	lines = append(lines, statusStyle.Render(fmt.Sprintf("  API requests remaining: %d (15min), %d (daily)", short, daily)))
	lines = append(lines, "")
	lines = append(lines, statusStyle.Render("  Press 's' or Enter to start sync"))

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderProgress() string {
	p := m.progress
	lines := []string{""}

	switch p.Phase {
	case service.PhaseActivities:
		lines = append(lines, fmt.Sprintf("  Fetching rides... %d so far", p.Completed))
	case service.PhaseAnalysis:
		pct := 0.0
		if p.Total > 0 {
			pct = float64(p.Completed) / float64(p.Total)
		}
		lines = append(lines, fmt.Sprintf("  Analyzing rides %d/%d", p.Completed, p.Total))
		lines = append(lines, "  "+RenderProgressBar(pct, 40))
	default:
		lines = append(lines, "  Connecting to Strava...")
	}

	if p.CurrentActivity != "" {
		lines = append(lines, statusStyle.Render("  "+truncateName(p.CurrentActivity, 50)))
	}

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderSummary() string {
	if m.result == nil {
		return ""
	}

	r := m.result
	lines := []string{""}

	if r.RidesStored > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d rides synced", r.RidesStored)))
	} else {
		lines = append(lines, statusStyle.Render("  No new rides"))
	}

	if r.Analyzed > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d rides analyzed", r.Analyzed)))
	}

	if len(r.Errors) > 0 {
		lines = append(lines, "")
		lines = append(lines, warningStyle.Render(fmt.Sprintf("  %d errors occurred", len(r.Errors))))
		for i, err := range r.Errors {
			if i == maxShownErrors {
				lines = append(lines, statusStyle.Render(fmt.Sprintf("    ...and %d more (see log)", len(r.Errors)-i)))
				break
			}
			lines = append(lines, statusStyle.Render("    "+truncateName(err.Error(), 70)))
		}
	}

	return strings.Join(lines, "\n")
}
