package tui

import (
	"fmt"

	"ridecoach/internal/service"
	"ridecoach/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// RidesModel is the rides list screen model
type RidesModel struct {
	queryService *service.QueryService
	units        Units
	rides        []store.RideRow
	cursor       int
	offset       int
	total        int
	pageSize     int
	loading      bool
	err          error
}

// NewRidesModel creates a new rides model
func NewRidesModel(qs *service.QueryService, units Units) RidesModel {
	return RidesModel{
		queryService: qs,
		units:        units,
		pageSize:     15,
		loading:      true,
	}
}

// Init initializes the rides screen
func (m RidesModel) Init() tea.Cmd {
	return m.loadPage
}

type ridesLoadedMsg struct {
	rides []store.RideRow
	total int
	err   error
}

// OpenActivityDetailMsg asks the app to show one ride
type OpenActivityDetailMsg struct {
	ActivityID int64
}

func (m RidesModel) loadPage() tea.Msg {
	rides, err := m.queryService.ListRides(m.pageSize, m.offset)
	if err != nil {
		return ridesLoadedMsg{err: err}
	}

	total, err := m.queryService.RideCount()
	if err != nil {
		return ridesLoadedMsg{err: err}
	}

	return ridesLoadedMsg{rides: rides, total: total}
}

// Update handles messages
func (m RidesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ridesLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.rides = msg.rides
		m.total = msg.total
		if m.cursor >= len(m.rides) {
			m.cursor = max(len(m.rides)-1, 0)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			} else if m.offset > 0 {
				m.offset -= m.pageSize
				m.cursor = m.pageSize - 1
				m.loading = true
				return m, m.loadPage
			}
		case "down", "j":
			if m.cursor < len(m.rides)-1 {
				m.cursor++
			} else if m.offset+len(m.rides) < m.total {
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgup":
			if m.offset > 0 {
				m.offset = max(m.offset-m.pageSize, 0)
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgdown":
			if m.offset+m.pageSize < m.total {
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "r":
			m.loading = true
			return m, m.loadPage
		case "enter":
			if m.cursor < len(m.rides) {
				id := m.rides[m.cursor].ID
				return m, func() tea.Msg {
					return OpenActivityDetailMsg{ActivityID: id}
				}
			}
		}
	}
	return m, nil
}

// View renders the rides list
func (m RidesModel) View() string {
	if m.loading {
		return "\n  Loading rides..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if len(m.rides) == 0 {
		return "\n  No rides yet. Press 's' to sync with Strava."
	}

	var sections []string

	title := cardTitleStyle.Render(fmt.Sprintf("Rides (%d-%d of %d)", m.offset+1, m.offset+len(m.rides), m.total))
	sections = append(sections, title)

	header := tableHeaderStyle.Render(fmt.Sprintf("   %-14s  %-25s  %8s  %7s  %5s  %5s  %4s  %7s",
		"Date", "Name", m.units.DistanceLabel(), "Time", "NP", "TSS", "IF", "Drift"))
	sections = append(sections, header)

	for i, r := range m.rides {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		drift := "-"
		switch {
		case r.DriftValid && r.AerobicDecoupling != nil:
			drift = fmt.Sprintf("%.1f%%", *r.AerobicDecoupling)
		case r.Analyzed:
			drift = "n/a"
		}

		row := fmt.Sprintf("%s%-14s  %-25s  %8s  %7s  %5s  %5s  %4s  %7s",
			cursor,
			humanize.Time(r.StartDate),
			truncateName(r.Name, 25),
			m.units.FormatDistanceValue(r.Distance),
			formatDuration(r.MovingTime),
			formatOptional(r.WeightedAverageWatts, "%.0f"),
			formatOptional(r.TSS, "%.0f"),
			formatOptional(r.IntensityFactor, "%.2f"),
			drift,
		)

		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	help := statusStyle.Render("\n  enter: view analysis  j/k: navigate  pgup/pgdn: page  r: refresh")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
