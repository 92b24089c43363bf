package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/matchbox/internal/api"
	"github.com/nhle/matchbox/internal/keys"
	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/state"
	"github.com/nhle/matchbox/internal/theme"
	"github.com/nhle/matchbox/internal/ui"
)

// Backend is what the tasks view reads and writes.
type Backend interface {
	api.TaskService
	api.ProjectService
}

// Scope selects which tasks are listed.
type Scope int

const (
	// ScopeMine lists tasks assigned to the current user.
	ScopeMine Scope = iota
	// ScopeAll lists every task the current user can see.
	ScopeAll
)

func (s Scope) String() string {
	if s == ScopeAll {
		return "All tasks"
	}
	return "My tasks"
}

type taskMode int

const (
	modeList taskMode = iota
	modeForm
	modeConfirmDelete
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	projectID   string
	priority    model.Priority
	status      model.TaskStatus
	startDate   string
	dueDate     string
	confirm     bool
}

// TasksLoadedMsg is sent when a task list has been fetched.
type TasksLoadedMsg struct {
	Scope Scope
	Tasks []model.Task
	Err   error
}

type projectsLoadedMsg struct {
	projects []model.Project
	err      error
}

type taskCreatedMsg struct {
	task *model.Task
	err  error
}

type taskDeletedMsg struct {
	name string
	err  error
}

// Model is the task list view.
type Model struct {
	mode        taskMode
	list        list.Model
	backend     Backend
	keys        *keys.KeyMap
	userID      string
	scope       Scope
	projects    []model.Project
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	width       int
	height      int
}

// New creates the tasks view.
func New(backend Backend, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{now: time.Now}, width, height-2)
	l.Title = ScopeMine.String()
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:    l,
		backend: backend,
		keys:    k,
		fb:      &formBindings{},
		width:   width,
		height:  height,
	}
}

// SetUser selects whose tasks are listed.
func (m *Model) SetUser(userID string) {
	m.userID = userID
}

// Scope returns the active scope.
func (m Model) Scope() Scope {
	return m.scope
}

// Capturing reports whether a form or the list filter has keyboard focus.
func (m Model) Capturing() bool {
	return m.mode != modeList || m.list.SettingFilter()
}

// Init loads the task list.
func (m Model) Init() tea.Cmd {
	return m.LoadTasks()
}

// LoadTasks fetches the tasks for the active scope.
func (m Model) LoadTasks() tea.Cmd {
	if m.userID == "" {
		return nil
	}
	backend, userID, scope := m.backend, m.userID, m.scope
	return func() tea.Msg {
		ctx := context.Background()
		var tasks []model.Task
		var err error
		if scope == ScopeAll {
			tasks, err = backend.AllTasks(ctx, userID)
		} else {
			tasks, err = backend.MyTasks(ctx, userID)
		}
		return TasksLoadedMsg{Scope: scope, Tasks: tasks, Err: err}
	}
}

// ToggleScope switches between my tasks and all tasks and reloads.
func (m *Model) ToggleScope() tea.Cmd {
	if m.scope == ScopeMine {
		m.scope = ScopeAll
	} else {
		m.scope = ScopeMine
	}
	m.list.Title = m.scope.String()
	return m.LoadTasks()
}

// Update handles messages for the tasks view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TasksLoadedMsg:
		if msg.Scope != m.scope {
			return m, nil
		}
		if msg.Err != nil {
			return m, ui.FailureCmd(msg.Err, "Failed to load tasks")
		}
		items := make([]list.Item, len(msg.Tasks))
		for i, t := range msg.Tasks {
			items[i] = TaskItem{Task: t}
		}
		return m, m.list.SetItems(items)

	case projectsLoadedMsg:
		if msg.err != nil {
			m.mode = modeList
			return m, ui.FailureCmd(msg.err, "Failed to load projects")
		}
		if len(msg.projects) == 0 {
			m.mode = modeList
			return m, ui.ShowToast(state.InfoToast("Create a project before adding tasks"))
		}
		m.projects = msg.projects
		*m.fb = formBindings{
			projectID: msg.projects[0].ID,
			priority:  model.PriorityMedium,
			status:    model.TaskTodo,
		}
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case taskCreatedMsg:
		m.mode = modeList
		if msg.err != nil {
			return m, ui.FailureCmd(msg.err, "Failed to create task")
		}
		return m, tea.Batch(
			m.LoadTasks(),
			ui.ShowToast(state.SuccessToast(fmt.Sprintf("Task %q created", msg.task.Name()))),
		)

	case taskDeletedMsg:
		m.mode = modeList
		if msg.err != nil {
			return m, ui.FailureCmd(msg.err, "Failed to delete task")
		}
		return m, tea.Batch(
			m.LoadTasks(),
			ui.ShowToast(state.SuccessToast(fmt.Sprintf("Task %q deleted", msg.name))),
		)

	case tea.KeyMsg:
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		}
		if !m.list.SettingFilter() {
			switch {
			case key.Matches(msg, m.keys.Toggle):
				cmd := m.ToggleScope()
				return m, cmd
			case key.Matches(msg, m.keys.Refresh):
				return m, m.LoadTasks()
			case key.Matches(msg, m.keys.New):
				return m, m.loadProjects()
			case key.Matches(msg, m.keys.Delete):
				if _, ok := m.SelectedTask(); ok {
					m.fb.confirm = false
					m.confirmForm = m.buildConfirmForm()
					m.mode = modeConfirmDelete
					return m, m.confirmForm.Init()
				}
				return m, nil
			}
		}
	}

	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// SelectedTask returns the task under the cursor.
func (m Model) SelectedTask() (model.Task, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return model.Task{}, false
	}
	return item.Task, true
}

func (m Model) buildForm() *huh.Form {
	opts := make([]huh.Option[string], len(m.projects))
	for i, p := range m.projects {
		opts[i] = huh.NewOption(p.Name, p.ID)
	}

	w, h := ui.FormSize(m.width, m.height)
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What needs to be done?").
				Value(&m.fb.title).
				Validate(ui.Required("Title")),
			huh.NewText().
				Title("Description").
				Placeholder("Optional details...").
				Value(&m.fb.description),
			huh.NewSelect[string]().
				Title("Project").
				Options(opts...).
				Value(&m.fb.projectID),
			huh.NewSelect[model.Priority]().
				Title("Priority").
				Options(
					huh.NewOption("High", model.PriorityHigh),
					huh.NewOption("Medium", model.PriorityMedium),
					huh.NewOption("Low", model.PriorityLow),
				).
				Value(&m.fb.priority),
			huh.NewSelect[model.TaskStatus]().
				Title("Status").
				Options(
					huh.NewOption("To do", model.TaskTodo),
					huh.NewOption("In progress", model.TaskInProgress),
					huh.NewOption("Completed", model.TaskCompleted),
				).
				Value(&m.fb.status),
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

func (m Model) buildConfirmForm() *huh.Form {
	t, _ := m.SelectedTask()
	w, h := ui.FormSize(m.width, m.height)
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete task %q?", t.Name())).
				Description("This cannot be undone.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
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
		return m, m.createTask()
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	switch m.confirmForm.State {
	case huh.StateCompleted:
		if t, ok := m.SelectedTask(); ok && m.fb.confirm {
			return m, m.deleteTask(t)
		}
		m.mode = modeList
		return m, nil
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

// View renders the tasks view.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render("New task")
		return lipgloss.NewStyle().Padding(1, 2).Render(title + "\n\n" + m.form.View())
	case modeConfirmDelete:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirmForm.View())
	}

	hints := theme.HelpStyle.Render("t my/all | n new | d delete | / filter | r refresh")
	return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), hints)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}

func (m Model) loadProjects() tea.Cmd {
	backend, userID := m.backend, m.userID
	return func() tea.Msg {
		projects, err := backend.ListProjects(context.Background(), userID)
		return projectsLoadedMsg{projects: projects, err: err}
	}
}

func (m Model) createTask() tea.Cmd {
	fb := *m.fb
	teamID := ""
	for _, p := range m.projects {
		if p.ID == fb.projectID {
			teamID = p.TeamID
		}
	}
	req := model.TaskRequest{
		Title:        strings.TrimSpace(fb.title),
		Description:  strings.TrimSpace(fb.description),
		Status:       fb.status,
		Priority:     fb.priority,
		StartDate:    model.NewTimestamp(ui.ParseDate(fb.startDate)),
		DueDate:      model.NewTimestamp(ui.ParseDate(fb.dueDate)),
		ProjectID:    fb.projectID,
		AssignedToID: []string{m.userID},
		CreatedByID:  m.userID,
		TeamID:       teamID,
		SubtaskIDs:   []string{},
	}
	backend := m.backend
	return func() tea.Msg {
		t, err := backend.CreateTask(context.Background(), req)
		return taskCreatedMsg{task: t, err: err}
	}
}

func (m Model) deleteTask(t model.Task) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		err := backend.DeleteTask(context.Background(), t.ID)
		return taskDeletedMsg{name: t.Name(), err: err}
	}
}
