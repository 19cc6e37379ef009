package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	sections := []string{
		cardTitleStyle.Render("Keyboard Shortcuts"),
		m.renderSection("Navigation", []keyHelp{
			{"1", "Rides"},
			{"2", "Goals"},
			{"3 or s", "Sync screen"},
			{"?", "Help (this screen)"},
			{"q", "Quit"},
			{"esc", "Back / close help"},
		}),
		m.renderSection("Rides", []keyHelp{
			{"j / down", "Move cursor down"},
			{"k / up", "Move cursor up"},
			{"pgdn / pgup", "Next / previous page"},
			{"enter", "Open ride analysis"},
			{"r", "Refresh list"},
		}),
		m.renderSection("Ride Analysis", []keyHelp{
			{"a", "Fetch streams and re-analyze"},
			{"r", "Reload"},
		}),
		m.renderSection("Goals", []keyHelp{
			{"n", "New goal"},
			{"d", "Delete selected goal"},
		}),
		m.renderSection("Sync Screen", []keyHelp{
			{"s / enter", "Start sync"},
		}),
		m.renderMetricsHelp(),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	lines := []string{"", sectionTitle(title)}
	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}
	return strings.Join(lines, "\n")
}

func (m HelpModel) renderMetricsHelp() string {
	lines := []string{"", sectionTitle("Metrics Explained"), ""}

	metrics := []struct {
		name string
		desc string
	}{
		{"NP (Normalized Power)", "30s rolling average, raised to the 4th power, averaged, 4th root. Strava's weighted average watts when available."},
		{"IF (Intensity Factor)", "NP / FTP. 1.0 is a one hour all-out effort."},
		{"TSS (Training Stress Score)", "Duration x IF squared x 100. One hour at FTP = 100."},
		{"EF (Efficiency Factor)", "NP per heartbeat. Rising over weeks = improving aerobic fitness."},
		{"Aerobic Decoupling", "HR:power drift between the main set halves. <3% excellent, <5% good."},
		{"Zones", "Coggan power zones from FTP and five heart rate zones from max HR."},
		{"Power Curve", "Best average power for windows from 5s up to 30 minutes."},
	}

	for _, metric := range metrics {
		lines = append(lines, "  "+helpKeyStyle.Render(metric.name))
		lines = append(lines, "  "+helpDescStyle.Render(metric.desc))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
