package tui

import (
	"fmt"
	"strings"
	"time"

	"ridecoach/internal/service"
	"ridecoach/internal/store"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const deadlineLayout = "2006-01-02"

// Goal form fields, in tab order
const (
	fieldTitle = iota
	fieldCategory
	fieldTarget
	fieldDeadline
	fieldCount
)

// GoalsModel is the goals screen model
type GoalsModel struct {
	queryService *service.QueryService
	goals        []store.Goal
	cursor       int
	loading      bool
	err          error

	// form state while creating a goal
	editing bool
	inputs  []textinput.Model
	focus   int
}

// NewGoalsModel creates a new goals model
func NewGoalsModel(qs *service.QueryService) GoalsModel {
	return GoalsModel{
		queryService: qs,
		loading:      true,
	}
}

// Init initializes the goals screen
func (m GoalsModel) Init() tea.Cmd {
	return m.loadGoals
}

// Editing reports whether the form has keyboard focus
func (m GoalsModel) Editing() bool {
	return m.editing
}

type goalsLoadedMsg struct {
	goals []store.Goal
	err   error
}

func (m GoalsModel) loadGoals() tea.Msg {
	goals, err := m.queryService.ListGoals()
	return goalsLoadedMsg{goals: goals, err: err}
}

func newGoalInputs() []textinput.Model {
	placeholders := [fieldCount]string{
		"Title, e.g. Ride a sub-3h century",
		"Category, e.g. endurance",
		"Target, e.g. FTP 280",
		"Deadline YYYY-MM-DD (optional)",
	}

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 80
		ti.Width = 50
		inputs[i] = ti
	}
	inputs[fieldTitle].Focus()
	return inputs
}

// goalFromInputs builds a goal from the form values
func goalFromInputs(inputs []textinput.Model) (*store.Goal, error) {
	g := &store.Goal{
		Title:       strings.TrimSpace(inputs[fieldTitle].Value()),
		Category:    strings.TrimSpace(inputs[fieldCategory].Value()),
		TargetValue: strings.TrimSpace(inputs[fieldTarget].Value()),
		IsActive:    true,
	}

	if s := strings.TrimSpace(inputs[fieldDeadline].Value()); s != "" {
		d, err := time.Parse(deadlineLayout, s)
		if err != nil {
			return nil, fmt.Errorf("deadline %q: want YYYY-MM-DD", s)
		}
		g.Deadline = &d
	}
	return g, nil
}

// Update handles messages
func (m GoalsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case goalsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.goals = msg.goals
		if m.cursor >= len(m.goals) {
			m.cursor = max(len(m.goals)-1, 0)
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateForm(msg)
		}

		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.goals)-1 {
				m.cursor++
			}
		case "n":
			m.editing = true
			m.err = nil
			m.inputs = newGoalInputs()
			m.focus = fieldTitle
			return m, textinput.Blink
		case "d":
			if m.cursor < len(m.goals) {
				id := m.goals[m.cursor].ID
				return m, func() tea.Msg {
					if err := m.queryService.DeleteGoal(id); err != nil {
						return goalsLoadedMsg{err: err}
					}
					return m.loadGoals()
				}
			}
		case "r":
			m.loading = true
			return m, m.loadGoals
		}
		return m, nil
	}

	if m.editing {
		return m.updateInputs(msg)
	}
	return m, nil
}

func (m GoalsModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.err = nil
		return m, nil

	case "tab", "down":
		return m.focusField((m.focus + 1) % fieldCount)

	case "shift+tab", "up":
		return m.focusField((m.focus + fieldCount - 1) % fieldCount)

	case "enter":
		g, err := goalFromInputs(m.inputs)
		if err != nil {
			m.err = err
			return m, nil
		}
		if err := m.queryService.CreateGoal(g); err != nil {
			m.err = err
			return m, nil
		}
		m.editing = false
		m.err = nil
		m.loading = true
		return m, m.loadGoals
	}

	return m.updateInputs(msg)
}

func (m GoalsModel) focusField(i int) (tea.Model, tea.Cmd) {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m, m.inputs[m.focus].Focus()
}

func (m GoalsModel) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// View renders the goals screen
func (m GoalsModel) View() string {
	if m.editing {
		return m.renderForm()
	}

	if m.loading {
		return "\n  Loading goals..."
	}

	sections := []string{cardTitleStyle.Render("Goals")}

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
	}

	if len(m.goals) == 0 {
		sections = append(sections, "  No goals yet. Press 'n' to add one.")
	}

	for i, g := range m.goals {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		var meta []string
		if g.Category != "" {
			meta = append(meta, g.Category)
		}
		if g.TargetValue != "" {
			meta = append(meta, g.TargetValue)
		}
		if g.Deadline != nil {
			meta = append(meta, "due "+humanize.Time(*g.Deadline))
		}
		if !g.IsActive {
			meta = append(meta, "inactive")
		}

		row := fmt.Sprintf("%s%-40s  %s", cursor, truncateName(g.Title, 40), strings.Join(meta, " • "))
		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	sections = append(sections, statusStyle.Render("\n  n: new goal  d: delete  j/k: navigate  r: refresh"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m GoalsModel) renderForm() string {
	sections := []string{cardTitleStyle.Render("New Goal")}
	for _, in := range m.inputs {
		sections = append(sections, "  "+in.View())
	}
	if m.err != nil {
		sections = append(sections, "", errorStyle.Render(fmt.Sprintf("  %v", m.err)))
	}
	sections = append(sections, statusStyle.Render("\n  tab: next field  enter: save  esc: cancel"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
