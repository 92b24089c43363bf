package projects

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/nhle/matchbox/internal/api"
	"github.com/nhle/matchbox/internal/keys"
	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/state"
	"github.com/nhle/matchbox/internal/theme"
	"github.com/nhle/matchbox/internal/ui"
)

// Backend is what the projects view reads and writes.
type Backend interface {
	api.ProjectService
	api.TaskService
	api.TeamService
}

type projectMode int

const (
	modeList projectMode = iota
	modeForm
	modeDetail
)

type formBindings struct {
	name        string
	description string
	teamID      string
	status      model.Status
	priority    model.Priority
	visibility  model.Visibility
	startDate   string
	dueDate     string
}

type projectsLoadedMsg struct {
	projects []model.Project
	err      error
}

type teamsLoadedMsg struct {
	teams []model.Team
	err   error
}

type projectSavedMsg struct {
	project *model.Project
	err     error
}

type detailLoadedMsg struct {
	project *model.Project
	tasks   []model.Task
	err     error
}

// Model is the Bubble Tea model for the projects view.
type Model struct {
	mode        projectMode
	backend     Backend
	keys        *keys.KeyMap
	userID      string
	projects    []model.Project
	teams       []model.Team
	selectedIdx int
	detail      *model.Project
	tasks       []model.Task
	form        *huh.Form
	fb          *formBindings
	width       int
	height      int
}

// New creates the projects view.
func New(backend Backend, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:    modeList,
		backend: backend,
		keys:    k,
		fb:      &formBindings{},
		width:   width,
		height:  height,
	}
}

// SetUser selects whose projects are listed.
func (m *Model) SetUser(userID string) {
	m.userID = userID
}

// Capturing reports whether a form has keyboard focus.
func (m Model) Capturing() bool {
	return m.mode == modeForm
}

// Init loads the project list.
func (m Model) Init() tea.Cmd {
	return m.loadProjects()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case projectsLoadedMsg:
		if msg.err != nil {
			return m, ui.FailureCmd(msg.err, "Failed to load projects")
		}
		m.projects = msg.projects
		if m.selectedIdx >= len(m.projects) {
			m.selectedIdx = max(len(m.projects)-1, 0)
		}
		return m, nil

	case teamsLoadedMsg:
		if msg.err != nil {
			m.mode = modeList
			return m, ui.FailureCmd(msg.err, "Failed to load teams")
		}
		if len(msg.teams) == 0 {
			m.mode = modeList
			return m, ui.ShowToast(state.InfoToast("Create a team before adding projects"))
		}
		m.teams = msg.teams
		m.resetForm()
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case projectSavedMsg:
		m.mode = modeList
		if msg.err != nil {
			return m, ui.FailureCmd(msg.err, "Failed to create project")
		}
		return m, tea.Batch(
			m.loadProjects(),
			ui.ShowToast(state.SuccessToast(fmt.Sprintf("Project %q created", msg.project.Name))),
		)

	case detailLoadedMsg:
		if msg.err != nil {
			m.mode = modeList
			return m, ui.FailureCmd(msg.err, "Failed to load project")
		}
		m.detail = msg.project
		m.tasks = msg.tasks
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.mode == modeForm {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeDetail:
		if key.Matches(msg, m.keys.Back) {
			m.mode = modeList
			m.detail = nil
			m.tasks = nil
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		if len(m.projects) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.projects)
		}
	case key.Matches(msg, m.keys.Up):
		if len(m.projects) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.projects) - 1
			}
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadProjects()
	case key.Matches(msg, m.keys.New):
		return m, m.loadTeams()
	case key.Matches(msg, m.keys.Select):
		if len(m.projects) == 0 {
			return m, nil
		}
		p := m.projects[m.selectedIdx]
		m.mode = modeDetail
		m.detail = &p
		m.tasks = nil
		return m, m.loadDetail(p)
	}
	return m, nil
}

func (m *Model) resetForm() {
	*m.fb = formBindings{
		teamID:     m.teams[0].ID,
		status:     model.StatusPending,
		priority:   model.PriorityMedium,
		visibility: model.VisibilityPrivate,
	}
}

func (m Model) buildForm() *huh.Form {
	teamOpts := make([]huh.Option[string], len(m.teams))
	for i, t := range m.teams {
		teamOpts[i] = huh.NewOption(t.Name, t.ID)
	}

	w, h := ui.FormSize(m.width, m.height)
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Project name").
				Value(&m.fb.name).
				Validate(ui.Required("Name")),
			huh.NewText().
				Title("Description").
				Placeholder("Optional description").
				Value(&m.fb.description),
			huh.NewSelect[string]().
				Title("Team").
				Options(teamOpts...).
				Value(&m.fb.teamID),
		),
		huh.NewGroup(
			huh.NewSelect[model.Status]().
				Title("Status").
				Options(
					huh.NewOption("Pending", model.StatusPending),
					huh.NewOption("Upcoming", model.StatusUpcoming),
					huh.NewOption("In progress", model.StatusInProgress),
					huh.NewOption("Completed", model.StatusCompleted),
				).
				Value(&m.fb.status),
			huh.NewSelect[model.Priority]().
				Title("Priority").
				Options(
					huh.NewOption("High", model.PriorityHigh),
					huh.NewOption("Medium", model.PriorityMedium),
					huh.NewOption("Low", model.PriorityLow),
				).
				Value(&m.fb.priority),
			huh.NewSelect[model.Visibility]().
				Title("Visibility").
				Options(
					huh.NewOption("Private", model.VisibilityPrivate),
					huh.NewOption("Public", model.VisibilityPublic),
				).
				Value(&m.fb.visibility),
			huh.NewInput().
				Title("Start date").
				Placeholder("YYYY-MM-DD (optional)").
				Value(&m.fb.startDate).
				Validate(ui.OptionalDate),
			huh.NewInput().
				Title("Due date").
				Placeholder("YYYY-MM-DD (optional)").
				Value(&m.fb.dueDate).
				Validate(ui.OptionalDate),
		),
	).WithWidth(w).WithHeight(h)
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		return m, m.saveProject()
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

// View renders the projects view.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render("New project")
		return lipgloss.NewStyle().Padding(1, 2).Render(title + "\n\n" + m.form.View())
	case modeDetail:
		return m.viewDetail()
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Projects"))
	b.WriteString("\n\n")

	if len(m.projects) == 0 {
		emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)
		b.WriteString(emptyStyle.Render("No projects yet. Press 'n' to create one."))
	}
	for i, p := range m.projects {
		label := fmt.Sprintf("%-32s %s %s  %3.0f%%  %d/%d tasks",
			truncate(p.Name, 32),
			theme.StatusStyle(string(p.Status)).Render(string(p.Status)),
			theme.PriorityStyle(p.Priority).Render(string(p.Priority)),
			p.Progress,
			p.CompletedTasks, p.TotalTasks,
		)
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("n new | enter open | r refresh"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

func (m Model) viewDetail() string {
	if m.detail == nil {
		return ""
	}
	p := m.detail
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue).Render(p.Name))
	b.WriteString("  ")
	b.WriteString(theme.StatusStyle(string(p.Status)).Render(string(p.Status)))
	b.WriteString(theme.PriorityStyle(p.Priority).Render(string(p.Priority)))
	b.WriteString("\n\n")
	if p.Description != "" {
		b.WriteString(p.Description)
		b.WriteString("\n\n")
	}
	b.WriteString(theme.MutedStyle.Render(fmt.Sprintf(
		"Progress %.0f%% | %d of %d tasks done | due %s | updated %s",
		p.Progress, p.CompletedTasks, p.TotalTasks,
		dateOrDash(p.DueDate), relOrDash(p.LastUpdated),
	)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Tasks"))
	b.WriteString("\n")
	if len(m.tasks) == 0 {
		b.WriteString(theme.MutedStyle.Italic(true).Render("No tasks."))
	}
	for _, t := range m.tasks {
		b.WriteString(theme.ListItemStyle.Render(fmt.Sprintf("%s %s %s",
			theme.StatusStyle(string(t.Status)).Render(string(t.Status)),
			t.Name(),
			theme.PriorityStyle(t.Priority).Render(string(t.Priority)),
		)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("esc back"))
	return theme.DetailPanelStyle.Width(m.width - 4).Render(b.String())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func dateOrDash(t model.Timestamp) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 02 2006")
}

func relOrDash(t model.Timestamp) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t.Time)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) loadProjects() tea.Cmd {
	if m.userID == "" {
		return nil
	}
	backend, userID := m.backend, m.userID
	return func() tea.Msg {
		projects, err := backend.ListProjects(context.Background(), userID)
		return projectsLoadedMsg{projects: projects, err: err}
	}
}

func (m Model) loadTeams() tea.Cmd {
	backend, userID := m.backend, m.userID
	return func() tea.Msg {
		teams, err := backend.ListTeams(context.Background(), userID)
		return teamsLoadedMsg{teams: teams, err: err}
	}
}

func (m Model) loadDetail(p model.Project) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx := context.Background()
		full, err := backend.GetProject(ctx, p.Key())
		if err != nil {
			return detailLoadedMsg{err: err}
		}
		tasks, err := backend.TasksByProject(ctx, full.ID)
		return detailLoadedMsg{project: full, tasks: tasks, err: err}
	}
}

func (m Model) saveProject() tea.Cmd {
	backend := m.backend
	fb := *m.fb
	req := model.ProjectRequest{
		Name:            strings.TrimSpace(fb.name),
		Description:     strings.TrimSpace(fb.description),
		CreatorID:       m.userID,
		TeamID:          fb.teamID,
		CollaboratorIDs: []string{},
		Status:          fb.status,
		Priority:        fb.priority,
		Visibility:      fb.visibility,
		StartDate:       model.NewTimestamp(ui.ParseDate(fb.startDate)),
		DueDate:         model.NewTimestamp(ui.ParseDate(fb.dueDate)),
	}
	return func() tea.Msg {
		p, err := backend.CreateProject(context.Background(), req)
		return projectSavedMsg{project: p, err: err}
	}
}
