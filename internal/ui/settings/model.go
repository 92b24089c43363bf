package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
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

// SettingsMode represents the current state of the settings view.
type SettingsMode int

const (
	ModeMenu         SettingsMode = iota // Section menu
	ModeProfile                          // Profile form
	ModePassword                         // Password form
	ModeNotification                     // Notification preference form
	ModeSaving                           // Request in flight
)

// ThemeToggledMsg asks the root model to flip and persist the theme.
type ThemeToggledMsg struct{}

// LogoutMsg asks the root model to end the session.
type LogoutMsg struct{}

// UserUpdatedMsg carries the profile returned after a save.
type UserUpdatedMsg struct {
	User model.User
}

type savedMsg struct {
	user *model.User
	text string
	err  error
}

type menuItem struct {
	label string
	mode  SettingsMode
}

var menu = []menuItem{
	{"Profile", ModeProfile},
	{"Change password", ModePassword},
	{"Notification preferences", ModeNotification},
}

var errPasswordMismatch = errors.New("passwords do not match")

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	fullName string
	username string
	bio      string

	currentPassword string
	newPassword     string
	confirmPassword string

	email       bool
	assignments bool
	projects    bool
	mentions    bool
	weekly      bool
}

// Model is the settings view.
type Model struct {
	mode        SettingsMode
	backend     api.UserService
	keys        *keys.KeyMap
	user        *model.User
	theme       model.ThemeName
	selectedIdx int
	form        *huh.Form
	fb          *formBindings
	spinner     spinner.Model
	width       int
	height      int
}

// New creates the settings view.
func New(backend api.UserService, k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		backend: backend,
		keys:    k,
		fb:      &formBindings{},
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// SetUser sets the profile being edited.
func (m *Model) SetUser(u *model.User) {
	m.user = u
}

// SetTheme sets the theme shown in the appearance row.
func (m *Model) SetTheme(name model.ThemeName) {
	m.theme = name
}

// Capturing reports whether a form has keyboard focus.
func (m Model) Capturing() bool {
	return m.mode != ModeMenu
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the settings view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		m.mode = ModeMenu
		if msg.err != nil {
			return m, ui.FailureCmd(msg.err, "Failed to save settings")
		}
		cmds := []tea.Cmd{ui.ShowToast(state.SuccessToast(msg.text))}
		if msg.user != nil {
			m.user = msg.user
			u := *msg.user
			cmds = append(cmds, func() tea.Msg { return UserUpdatedMsg{User: u} })
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if m.mode != ModeSaving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.mode == ModeMenu {
			return m.handleMenuKey(msg)
		}
	}

	return m.updateForm(msg)
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	rows := len(menu)
	switch {
	case key.Matches(msg, m.keys.Down):
		m.selectedIdx = (m.selectedIdx + 1) % rows
	case key.Matches(msg, m.keys.Up):
		m.selectedIdx = (m.selectedIdx - 1 + rows) % rows
	case key.Matches(msg, m.keys.Toggle):
		return m, func() tea.Msg { return ThemeToggledMsg{} }
	case key.Matches(msg, m.keys.Logout):
		return m, func() tea.Msg { return LogoutMsg{} }
	case key.Matches(msg, m.keys.Select):
		if m.user == nil {
			return m, nil
		}
		return m.open(menu[m.selectedIdx].mode)
	}
	return m, nil
}

func (m Model) open(mode SettingsMode) (Model, tea.Cmd) {
	u := m.user
	s := u.Settings
	*m.fb = formBindings{
		fullName:    u.FullName,
		username:    u.Username,
		bio:         u.Bio,
		email:       s.EmailNotifications,
		assignments: s.TaskAssignmentNotifications,
		projects:    s.ProjectUpdateNotifications,
		mentions:    s.CommentsAndMentionNotifications,
		weekly:      s.WeeklySummary,
	}

	switch mode {
	case ModeProfile:
		m.form = m.buildProfileForm()
	case ModePassword:
		m.form = m.buildPasswordForm()
	case ModeNotification:
		m.form = m.buildNotificationForm()
	default:
		return m, nil
	}
	m.mode = mode
	return m, m.form.Init()
}

func (m Model) buildProfileForm() *huh.Form {
	w, h := ui.FormSize(m.width, m.height)
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Full name").
				Value(&m.fb.fullName).
				Validate(ui.Required("Full name")),
			huh.NewInput().
				Title("Username").
				Value(&m.fb.username).
				Validate(ui.Required("Username")),
			huh.NewText().
				Title("Bio").
				Placeholder("Optional").
				Value(&m.fb.bio),
		),
	).WithWidth(w).WithHeight(h)
}

func (m Model) buildPasswordForm() *huh.Form {
	w, h := ui.FormSize(m.width, m.height)
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Current password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.currentPassword).
				Validate(ui.Required("Current password")),
			huh.NewInput().
				Title("New password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.newPassword).
				Validate(ui.Required("New password")),
			huh.NewInput().
				Title("Confirm new password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.confirmPassword).
				Validate(func(s string) error {
					if s != m.fb.newPassword {
						return errPasswordMismatch
					}
					return nil
				}),
		),
	).WithWidth(w).WithHeight(h)
}

func (m Model) buildNotificationForm() *huh.Form {
	w, h := ui.FormSize(m.width, m.height)
	toggle := func(title string, v *bool) huh.Field {
		return huh.NewConfirm().Title(title).Affirmative("On").Negative("Off").Value(v)
	}
	return huh.NewForm(
		huh.NewGroup(
			toggle("Email notifications", &m.fb.email),
			toggle("Task assignments", &m.fb.assignments),
			toggle("Project updates", &m.fb.projects),
			toggle("Comments and mentions", &m.fb.mentions),
			toggle("Weekly summary", &m.fb.weekly),
		),
	).WithWidth(w).WithHeight(h)
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil || m.mode == ModeMenu || m.mode == ModeSaving {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		save := m.save()
		m.mode = ModeSaving
		return m, tea.Batch(save, m.spinner.Tick)
	case huh.StateAborted:
		m.mode = ModeMenu
		return m, nil
	}
	return m, cmd
}

func (m Model) save() tea.Cmd {
	backend, email, fb := m.backend, m.user.Email, *m.fb

	switch m.mode {
	case ModeProfile:
		update := model.UserUpdate{
			FullName: strings.TrimSpace(fb.fullName),
			Username: strings.TrimSpace(fb.username),
			Bio:      strings.TrimSpace(fb.bio),
		}
		return func() tea.Msg {
			u, err := backend.UpdateUser(context.Background(), email, update)
			return savedMsg{user: u, text: "Profile updated", err: err}
		}

	case ModePassword:
		update := model.PasswordUpdate{CurrentPassword: fb.currentPassword, NewPassword: fb.newPassword}
		return func() tea.Msg {
			err := backend.UpdatePassword(context.Background(), email, update)
			return savedMsg{text: "Password changed", err: err}
		}

	case ModeNotification:
		s := m.user.Settings
		s.EmailNotifications = fb.email
		s.TaskAssignmentNotifications = fb.assignments
		s.ProjectUpdateNotifications = fb.projects
		s.CommentsAndMentionNotifications = fb.mentions
		s.WeeklySummary = fb.weekly
		update := model.UserUpdate{Settings: &s}
		return func() tea.Msg {
			u, err := backend.UpdateUser(context.Background(), email, update)
			return savedMsg{user: u, text: "Notification preferences saved", err: err}
		}
	}
	return nil
}

// View renders the settings view.
func (m Model) View() string {
	switch m.mode {
	case ModeMenu:
		return m.viewMenu()
	case ModeSaving:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.spinner.View() + " Saving...")
	default:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	}
}

func (m Model) viewMenu() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")

	if m.user != nil {
		b.WriteString(fmt.Sprintf("%s  %s\n\n",
			lipgloss.NewStyle().Bold(true).Render(m.user.DisplayName()),
			theme.MutedStyle.Render(m.user.Email)))
	}

	for i, item := range menu {
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(item.label))
		} else {
			b.WriteString(theme.ListItemStyle.Render(item.label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.ListItemStyle.Render(fmt.Sprintf("Theme: %s", m.theme)))
	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("enter edit | t toggle theme | L log out"))
	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
