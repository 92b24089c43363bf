package analytics

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/nhle/matchbox/internal/api"
	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/theme"
	"github.com/nhle/matchbox/internal/ui"
)

// LoadedMsg carries freshly loaded analytics.
type LoadedMsg struct {
	Analytics model.Analytics
	Err       error
}

// Model is the analytics view.
type Model struct {
	backend api.AnalyticsService
	userID  string
	data    model.Analytics
	loaded  bool
	width   int
	height  int
}

// New creates the analytics view.
func New(backend api.AnalyticsService, width, height int) Model {
	return Model{backend: backend, width: width, height: height}
}

// SetUser selects whose analytics are shown.
func (m *Model) SetUser(userID string) {
	if m.userID != userID {
		m.loaded = false
	}
	m.userID = userID
}

// Init loads the analytics panels.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Load fetches every analytics panel.
func (m Model) Load() tea.Cmd {
	if m.userID == "" {
		return nil
	}
	backend, userID := m.backend, m.userID
	return func() tea.Msg {
		a, err := Fetch(context.Background(), backend, userID)
		return LoadedMsg{Analytics: a, Err: err}
	}
}

// Fetch reads all analytics panels for userID. A missing top performer
// is not an error.
func Fetch(ctx context.Context, backend api.AnalyticsService, userID string) (model.Analytics, error) {
	var a model.Analytics
	var err error

	if a.Overview, err = backend.Overview(ctx, userID); err != nil {
		return a, err
	}
	if a.TeamPerformance, err = backend.TeamPerformance(ctx, userID); err != nil {
		return a, err
	}
	if a.ProjectProgress, err = backend.ProjectProgress(ctx, userID); err != nil {
		return a, err
	}
	weekly, err := backend.WeeklySummary(ctx, userID)
	if err != nil {
		return a, err
	}
	a.Weekly = *weekly

	top, err := backend.TopPerformer(ctx, userID)
	switch {
	case err == nil:
		a.TopPerformer = top
	case api.StatusCode(err) != http.StatusNotFound:
		return a, err
	}

	health, err := backend.OverallHealth(ctx, userID)
	if err != nil {
		return a, err
	}
	a.Health = *health
	return a, nil
}

// Update handles messages for the analytics view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(LoadedMsg); ok {
		if msg.Err != nil {
			return m, ui.FailureCmd(msg.Err, "Failed to load analytics")
		}
		m.data = msg.Analytics
		m.loaded = true
	}
	return m, nil
}

// View renders the analytics panels.
func (m Model) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Analytics"))
	b.WriteString("\n")

	if !m.loaded {
		b.WriteString(theme.MutedStyle.Render("Loading..."))
		return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
	}

	a := m.data
	var cards []string
	for _, c := range a.Overview {
		value := humanize.FormatFloat("#,###.#", c.Value) + c.Unit
		detail := c.Description
		if c.Change != "" {
			detail = c.Change + " " + detail
		}
		cards = append(cards, statCard(c.Title, value, detail))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		section("Team performance", performanceTable(a.TeamPerformance)),
		"  ",
		section("Project progress", progressTable(a.ProjectProgress)),
	))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		statCard("This week",
			fmt.Sprintf("%d done", a.Weekly.TasksCompleted),
			fmt.Sprintf("%d new, %d overdue", a.Weekly.NewTasks, a.Weekly.Overdue)),
		topPerformerCard(a.TopPerformer),
		statCard("Overall health",
			fmt.Sprintf("%.0f%% %s", a.Health.Score, a.Health.Status),
			fmt.Sprintf("%d on track, %d at risk, %d delayed", a.Health.OnTrack, a.Health.AtRisk, a.Health.Delayed)),
	))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

func statCard(title, value, detail string) string {
	body := theme.MutedStyle.Render(title) + "\n" + theme.CardValueStyle.Render(value)
	if detail != "" {
		body += "\n" + theme.MutedStyle.Render(detail)
	}
	return theme.CardStyle.Render(body)
}

func topPerformerCard(p *model.TopPerformer) string {
	if p == nil {
		return statCard("Top performer", "-", "no completed tasks yet")
	}
	return statCard("Top performer", p.Name,
		fmt.Sprintf("%d tasks, %.0f%% efficiency", p.CompletedTasks, p.Efficiency))
}

func section(title, body string) string {
	return lipgloss.NewStyle().Bold(true).Render(title) + "\n" + body
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorBorder)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func performanceTable(rows []model.MemberPerformance) string {
	t := newTable("Member", "Tasks", "Done", "Efficiency")
	for _, r := range rows {
		t.Row(r.Name, fmt.Sprint(r.Tasks), fmt.Sprint(r.Completed), fmt.Sprintf("%.0f%%", r.Efficiency))
	}
	return t.Render()
}

func progressTable(rows []model.ProjectProgress) string {
	t := newTable("Project", "Completion", "On time")
	for _, r := range rows {
		t.Row(r.Name, fmt.Sprintf("%.0f%%", r.Completion), fmt.Sprintf("%.0f%%", r.OnTime))
	}
	return t.Render()
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
