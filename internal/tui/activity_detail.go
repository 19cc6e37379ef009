package tui

import (
	"context"
	"fmt"
	"strings"

	"ridecoach/internal/analysis"
	"ridecoach/internal/service"
	"ridecoach/internal/store"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// Analyzer runs the analysis for one ride on demand
type Analyzer interface {
	AnalyzeActivity(ctx context.Context, id int64) (*store.Analysis, error)
}

// RideDetailModel is the ride detail screen model
type RideDetailModel struct {
	queryService *service.QueryService
	analyzer     Analyzer
	units        Units
	activityID   int64
	detail       *service.RideDetail
	viewport     viewport.Model
	loading      bool
	analyzing    bool
	err          error
	width        int
	height       int
	ready        bool
}

// NewRideDetailModel creates a new ride detail model. analyzer may be nil
// when no Strava connection is configured.
func NewRideDetailModel(qs *service.QueryService, analyzer Analyzer, units Units, activityID int64, width, height int) RideDetailModel {
	m := RideDetailModel{
		queryService: qs,
		analyzer:     analyzer,
		units:        units,
		activityID:   activityID,
		loading:      true,
		width:        width,
		height:       height,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6) // header and footer
		m.ready = true
	}

	return m
}

// Init initializes the ride detail screen
func (m RideDetailModel) Init() tea.Cmd {
	return m.loadDetail
}

type rideDetailLoadedMsg struct {
	detail *service.RideDetail
	err    error
}

func (m RideDetailModel) loadDetail() tea.Msg {
	detail, err := m.queryService.GetRideDetail(m.activityID)
	return rideDetailLoadedMsg{detail: detail, err: err}
}

func (m RideDetailModel) analyze() tea.Msg {
	if _, err := m.analyzer.AnalyzeActivity(context.Background(), m.activityID); err != nil {
		return rideDetailLoadedMsg{err: fmt.Errorf("analyzing ride: %w", err)}
	}
	return m.loadDetail()
}

// Update handles messages
func (m RideDetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case rideDetailLoadedMsg:
		m.loading = false
		m.analyzing = false
		m.err = msg.err
		if msg.detail != nil {
			m.detail = msg.detail
		}
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		if m.detail != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadDetail
		case "a":
			if m.analyzer != nil && !m.analyzing {
				m.analyzing = true
				return m, m.analyze
			}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the ride detail screen
func (m RideDetailModel) View() string {
	if m.loading {
		return "\n  Loading ride..."
	}

	if m.analyzing {
		return "\n  Fetching streams and analyzing..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	help := "  esc: back to list  j/k or arrows: scroll  r: refresh"
	if m.analyzer != nil {
		help += "  a: re-analyze"
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), statusStyle.Render(help))
}

func (m RideDetailModel) renderContent() string {
	if m.detail == nil {
		return "No data"
	}

	sections := []string{m.renderHeader()}

	if m.detail.Analysis == nil {
		msg := "  Not analyzed yet."
		if m.analyzer != nil {
			msg += " Press 'a' to fetch streams and analyze."
		}
		sections = append(sections, statusStyle.Render(msg))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	sections = append(sections, m.renderSummary(), m.renderDrift())

	if len(m.detail.CurveWatts) > 1 {
		sections = append(sections, m.renderPowerCurve())
	}
	if len(m.detail.PowerZones) > 0 {
		sections = append(sections, renderZoneBars("Power Zones", m.detail.PowerZones))
	}
	if len(m.detail.HRZones) > 0 {
		sections = append(sections, renderZoneBars("Heart Rate Zones", m.detail.HRZones))
	}
	if len(m.detail.Analysis.Laps) > 0 {
		sections = append(sections, m.renderLaps())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m RideDetailModel) renderHeader() string {
	a := m.detail.Activity
	title := cardTitleStyle.Render(a.Name)

	date := a.StartDateLocal.Format("Monday, January 2, 2006 at 3:04 PM")
	subtitle := lipgloss.NewStyle().Foreground(mutedColor).Render(date + "  •  " + a.Type)

	stats := fmt.Sprintf("%s  •  %s  •  %s",
		m.units.FormatDistance(a.Distance),
		formatDuration(a.MovingTime),
		m.units.FormatSpeed(a.AverageSpeed))
	statsLine := lipgloss.NewStyle().Foreground(textColor).Bold(true).Render(stats)

	return lipgloss.JoinVertical(lipgloss.Left, "", title, subtitle, statsLine, "")
}

func (m RideDetailModel) renderSummary() string {
	an := m.detail.Analysis
	r := an.Result
	s := r.Summary

	np := formatOptional(an.NormalizedPower, "%.0f W")
	if an.NormalizedPower != nil && an.NPSource != "" {
		np += fmt.Sprintf(" (%s)", an.NPSource)
	}

	lines := []string{
		sectionTitle("Summary"),
		"  " + RenderMetric("Normalized Power", np),
		"  " + RenderMetric("Intensity Factor", formatOptional(r.IntensityFactor, "%.2f")),
		"  " + RenderMetric("Training Stress", formatOptional(r.TSS, "%.0f")),
		"  " + RenderMetric("Efficiency Factor", formatOptional(s.EfficiencyFactor, "%.2f")),
		"  " + RenderMetric("Power avg / max", formatOptional(s.AvgPower, "%.0f")+" / "+formatOptional(s.MaxPower, "%.0f W")),
		"  " + RenderMetric("HR avg / max", formatOptional(s.AvgHeartrate, "%.0f")+" / "+formatOptional(s.MaxHeartrate, "%.0f bpm")),
		"",
	}
	return strings.Join(lines, "\n")
}

func (m RideDetailModel) renderDrift() string {
	r := m.detail.Analysis.Result
	lines := []string{sectionTitle("Aerobic Decoupling")}

	if !r.DriftValid || r.Drift == nil {
		lines = append(lines, "  "+warningStyle.Render(m.detail.DriftAssessment), "")
		return strings.Join(lines, "\n")
	}

	d := r.Drift
	lines = append(lines,
		"  "+RenderMetric("HR:power drift", RenderDelta(d.HRPerWattDrift, true)),
		"  "+RenderMetric("EF drift", RenderDelta(d.EFDrift, false)),
		"  "+RenderMetric("Main set", fmt.Sprintf("%s (%d samples)", formatDuration(d.SegmentSeconds), d.Samples)),
		"  "+RenderMetric("Mean power / HR", fmt.Sprintf("%.0f W / %.0f bpm", d.MeanPower, d.MeanHR)),
		"  "+helpDescStyle.Render(m.detail.DriftAssessment),
		"",
	)
	return strings.Join(lines, "\n")
}

func (m RideDetailModel) renderPowerCurve() string {
	labels := m.detail.CurveLabel
	lines := []string{
		sectionTitle(fmt.Sprintf("Power Curve (%s to %s)", labels[0], labels[len(labels)-1])),
		asciigraph.Plot(m.detail.CurveWatts,
			asciigraph.Height(8),
			asciigraph.Width(50),
		),
	}

	var best []string
	for i, w := range m.detail.CurveWatts {
		best = append(best, fmt.Sprintf("%s %.0fW", labels[i], w))
	}
	lines = append(lines, "  "+helpDescStyle.Render(strings.Join(best, "  ")), "")
	return strings.Join(lines, "\n")
}

var zoneColors = []lipgloss.Color{
	lipgloss.Color("#6B7280"), // recovery
	lipgloss.Color("#10B981"), // endurance
	lipgloss.Color("#3B82F6"), // tempo
	lipgloss.Color("#F59E0B"), // threshold
	lipgloss.Color("#EF4444"), // VO2max
	lipgloss.Color("#9333EA"), // anaerobic
}

func renderZoneBars(title string, bars []service.ZoneBar) string {
	lines := []string{sectionTitle(title)}

	maxBarWidth := 30
	for i, z := range bars {
		width := int(z.Percent / 100 * float64(maxBarWidth))
		if width < 1 && z.Minutes > 0 {
			width = 1
		}

		bar := lipgloss.NewStyle().Foreground(zoneColors[i%len(zoneColors)]).Render(strings.Repeat("█", width))
		label := fmt.Sprintf("  %-3s %-16s", z.Label, z.Name)
		lines = append(lines, fmt.Sprintf("%s%s %5.1f%% (%s)", label, bar, z.Percent, formatDuration(int(z.Minutes*60))))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m RideDetailModel) renderLaps() string {
	lines := []string{sectionTitle("Laps")}

	header := fmt.Sprintf("  %-4s  %8s  %7s  %7s  %6s", "Lap", "Time", "Avg W", "Max W", "Avg HR")
	lines = append(lines, lipgloss.NewStyle().Foreground(primaryColor).Render(header))

	var bounds *analysis.Bounds
	if d := m.detail.Analysis.Result.Drift; d != nil {
		bounds = &d.Bounds
	}

	elapsed := 0.0
	for i, lap := range m.detail.Analysis.Laps {
		row := fmt.Sprintf("  %-4d  %8s  %7s  %7s  %6s",
			i+1,
			formatDuration(int(lap.ElapsedTimeSec)),
			formatOptional(lap.AverageWatts, "%.0f"),
			formatOptional(lap.MaxWatts, "%.0f"),
			formatOptional(lap.AverageHeartrate, "%.0f"),
		)

		// Laps fully outside the main set are warm-up or cool-down
		if bounds != nil && bounds.LapBased &&
			(elapsed+lap.ElapsedTimeSec <= float64(bounds.Start) || elapsed >= float64(bounds.End)) {
			row = helpDescStyle.Render(row)
		}
		elapsed += lap.ElapsedTimeSec
		lines = append(lines, row)
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}
