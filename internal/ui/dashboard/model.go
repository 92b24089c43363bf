package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/nhle/matchbox/internal/api"
	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/theme"
	"github.com/nhle/matchbox/internal/ui"
)

// Backend is what the dashboard reads.
type Backend interface {
	api.ProjectService
	api.TaskService
	api.TeamService
	api.DashboardService
}

// LoadedMsg carries a freshly loaded dashboard.
type LoadedMsg struct {
	Summary model.DashboardSummary
	Err     error
}

// Model is the dashboard view.
type Model struct {
	backend Backend
	userID  string
	summary model.DashboardSummary
	loaded  bool
	now     func() time.Time
	width   int
	height  int
}

// New creates the dashboard view.
func New(backend Backend, width, height int) Model {
	return Model{backend: backend, now: time.Now, width: width, height: height}
}

// SetUser selects whose dashboard is shown.
func (m *Model) SetUser(userID string) {
	if m.userID != userID {
		m.loaded = false
	}
	m.userID = userID
}

// Init loads the dashboard.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Load fetches every dashboard counter.
func (m Model) Load() tea.Cmd {
	if m.userID == "" {
		return nil
	}
	backend, userID := m.backend, m.userID
	return func() tea.Msg {
		s, err := Fetch(context.Background(), backend, userID)
		return LoadedMsg{Summary: s, Err: err}
	}
}

// Fetch reads the dashboard counters for userID. The first failure
// aborts the load.
func Fetch(ctx context.Context, backend Backend, userID string) (model.DashboardSummary, error) {
	var s model.DashboardSummary
	var err error

	if s.TotalProjects, err = backend.TotalProjects(ctx, userID); err != nil {
		return s, err
	}
	if s.CompletedTasks, err = backend.CompletedTaskCount(ctx, userID); err != nil {
		return s, err
	}
	progress, err := backend.InProgressSummary(ctx, userID)
	if err != nil {
		return s, err
	}
	s.InProgress = *progress
	if s.ActiveMembers, err = backend.ActiveMemberCount(ctx, userID); err != nil {
		return s, err
	}
	if s.Deadlines, err = backend.UpcomingDeadlines(ctx, userID); err != nil {
		return s, err
	}
	return s, nil
}

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Err != nil {
			return m, ui.FailureCmd(msg.Err, "Failed to load dashboard")
		}
		m.summary = msg.Summary
		m.loaded = true
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Dashboard"))
	b.WriteString("\n")

	if !m.loaded {
		b.WriteString(theme.MutedStyle.Render("Loading..."))
		return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
	}

	s := m.summary
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total projects", humanize.Comma(int64(s.TotalProjects)), ""),
		card("Completed tasks", humanize.Comma(int64(s.CompletedTasks)), ""),
		card("In progress",
			fmt.Sprintf("%d / %d", s.InProgress.InProgress, s.InProgress.Total),
			fmt.Sprintf("avg %.0f%% done", s.InProgress.AverageProgress)),
		card("Active members", humanize.Comma(int64(s.ActiveMembers)), ""),
	)
	b.WriteString(cards)
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Upcoming deadlines"))
	b.WriteString("\n")
	if len(s.Deadlines) == 0 {
		b.WriteString(theme.MutedStyle.Italic(true).Render("Nothing due soon."))
	}
	now := m.now()
	for _, d := range s.Deadlines {
		due := theme.MutedStyle.Render(humanize.RelTime(d.DueDate.Time, now, "ago", "from now"))
		if d.DueDate.Before(now) {
			due = theme.ErrorStyle.Render("overdue " + humanize.RelTime(d.DueDate.Time, now, "ago", "from now"))
		}
		line := fmt.Sprintf("%s  %s  %s", d.TaskName, theme.MutedStyle.Render(d.ProjectName), due)
		b.WriteString(theme.ListItemStyle.Render(line))
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

func card(title, value, detail string) string {
	body := theme.MutedStyle.Render(title) + "\n" + theme.CardValueStyle.Render(value)
	if detail != "" {
		body += "\n" + theme.MutedStyle.Render(detail)
	}
	return theme.CardStyle.Render(body)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
