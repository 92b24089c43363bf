package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/matchbox/internal/state"
	"github.com/nhle/matchbox/internal/theme"
	"github.com/nhle/matchbox/internal/ui"
)

// ViewState identifies the active view.
type ViewState int

const (
	ViewAuth ViewState = iota
	ViewDashboard
	ViewProjects
	ViewTasks
	ViewTeams
	ViewNotifications
	ViewInvite
	ViewAnalytics
	ViewSettings
	ViewHelp
	ViewCommand
)

var viewNames = map[ViewState]string{
	ViewAuth:          "Sign in",
	ViewDashboard:     "Dashboard",
	ViewProjects:      "Projects",
	ViewTasks:         "Tasks",
	ViewTeams:         "Teams",
	ViewNotifications: "Notifications",
	ViewInvite:        "Invite",
	ViewAnalytics:     "Analytics",
	ViewSettings:      "Settings",
	ViewHelp:          "Help",
	ViewCommand:       "Command",
}

func (v ViewState) String() string {
	if name, ok := viewNames[v]; ok {
		return name
	}
	return fmt.Sprintf("ViewState(%d)", int(v))
}

// tabs is the header order; tab i is also selected by key i+1.
var tabs = []ViewState{
	ViewDashboard,
	ViewProjects,
	ViewTasks,
	ViewTeams,
	ViewNotifications,
	ViewInvite,
	ViewAnalytics,
	ViewSettings,
}

// commandViews maps palette commands to views.
var commandViews = map[string]ViewState{
	"dashboard":     ViewDashboard,
	"projects":      ViewProjects,
	"tasks":         ViewTasks,
	"teams":         ViewTeams,
	"notifications": ViewNotifications,
	"invite":        ViewInvite,
	"analytics":     ViewAnalytics,
	"settings":      ViewSettings,
}

func nextTab(current ViewState, delta int) ViewState {
	for i, v := range tabs {
		if v == current {
			return tabs[(i+delta+len(tabs))%len(tabs)]
		}
	}
	return tabs[0]
}

func (m Model) tabForKey(msg tea.KeyMsg) (ViewState, bool) {
	bindings := []key.Binding{
		m.keys.Dashboard,
		m.keys.Projects,
		m.keys.Tasks,
		m.keys.Teams,
		m.keys.Notifications,
		m.keys.Invite,
		m.keys.Analytics,
		m.keys.Settings,
	}
	for i, b := range bindings {
		if key.Matches(msg, b) {
			return tabs[i], true
		}
	}
	return 0, false
}

// switchTo activates v and loads what it shows.
func (m Model) switchTo(v ViewState) (tea.Model, tea.Cmd) {
	if v == m.currentView {
		return m, nil
	}
	m.previousView = m.currentView
	m.currentView = v

	var cmd tea.Cmd
	switch v {
	case ViewDashboard:
		cmd = m.dashboardView.Load()
	case ViewProjects:
		cmd = m.projectsView.Init()
	case ViewTasks:
		cmd = m.tasksView.LoadTasks()
	case ViewTeams:
		cmd = m.teamsView.Init()
	case ViewAnalytics:
		cmd = m.analyticsView.Load()
	case ViewInvite:
		cmd = m.inviteView.Focus()
	}
	return m, cmd
}

// refreshActive reloads the active view from the backend.
func (m Model) refreshActive() tea.Cmd {
	switch m.currentView {
	case ViewDashboard:
		return m.dashboardView.Load()
	case ViewProjects:
		return m.projectsView.Init()
	case ViewTasks:
		return m.tasksView.LoadTasks()
	case ViewTeams:
		return m.teamsView.Init()
	case ViewNotifications:
		return m.poller.Refresh()
	case ViewInvite:
		return m.inviteView.LoadInvited()
	case ViewAnalytics:
		return m.analyticsView.Load()
	}
	return nil
}

func (m Model) executeCommand(cmd string) (tea.Model, tea.Cmd) {
	if v, ok := commandViews[cmd]; ok {
		return m.switchTo(v)
	}

	switch cmd {
	case "refresh":
		return m, m.refreshActive()
	case "theme":
		c := m.toggleTheme()
		return m, c
	case "logout":
		c := m.logout(state.InfoToast("Signed out"))
		return m, c
	case "quit", "q":
		return m, m.quit()
	}

	m.toast = state.ErrorToast(fmt.Sprintf("Unknown command: %s", cmd))
	return m, nil
}

// capturing reports whether the active view is taking text input.
func (m Model) capturing() bool {
	switch m.currentView {
	case ViewProjects:
		return m.projectsView.Capturing()
	case ViewTasks:
		return m.tasksView.Capturing()
	case ViewTeams:
		return m.teamsView.Capturing()
	case ViewInvite:
		return m.inviteView.Capturing()
	case ViewSettings:
		return m.settingsView.Capturing()
	}
	return false
}

// updateActiveView passes msg to the active view only.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewAuth:
		m.authView, cmd = m.authView.Update(msg)
	case ViewDashboard:
		m.dashboardView, cmd = m.dashboardView.Update(msg)
	case ViewProjects:
		m.projectsView, cmd = m.projectsView.Update(msg)
	case ViewTasks:
		m.tasksView, cmd = m.tasksView.Update(msg)
	case ViewTeams:
		m.teamsView, cmd = m.teamsView.Update(msg)
	case ViewNotifications:
		m.notificationsView, cmd = m.notificationsView.Update(msg)
	case ViewInvite:
		m.inviteView, cmd = m.inviteView.Update(msg)
	case ViewAnalytics:
		m.analyticsView, cmd = m.analyticsView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}
	return m, cmd
}

// broadcast delivers a background message to every view. Results of
// requests started by a view arrive after the user may have moved on,
// and each view ignores messages it does not own.
func (m Model) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.currentView == ViewAuth {
		m.authView, cmd = m.authView.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.currentView == ViewCommand {
		m.commandView, cmd = m.commandView.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.dashboardView, cmd = m.dashboardView.Update(msg)
	cmds = append(cmds, cmd)
	m.projectsView, cmd = m.projectsView.Update(msg)
	cmds = append(cmds, cmd)
	m.tasksView, cmd = m.tasksView.Update(msg)
	cmds = append(cmds, cmd)
	m.teamsView, cmd = m.teamsView.Update(msg)
	cmds = append(cmds, cmd)
	m.inviteView, cmd = m.inviteView.Update(msg)
	cmds = append(cmds, cmd)
	m.analyticsView, cmd = m.analyticsView.Update(msg)
	cmds = append(cmds, cmd)
	m.settingsView, cmd = m.settingsView.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) resize(w, h int) {
	m.authView.SetSize(w, h)
	m.dashboardView.SetSize(w, h)
	m.projectsView.SetSize(w, h)
	m.tasksView.SetSize(w, h)
	m.teamsView.SetSize(w, h)
	m.notificationsView.SetSize(w, h)
	m.inviteView.SetSize(w, h)
	m.analyticsView.SetSize(w, h)
	m.settingsView.SetSize(w, h)
	m.helpView.SetSize(w, h)
	m.commandView.SetSize(w, h)
}

// View renders the UI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var content string
	switch m.currentView {
	case ViewAuth:
		content = m.authView.View()
	case ViewDashboard:
		content = m.dashboardView.View()
	case ViewProjects:
		content = m.projectsView.View()
	case ViewTasks:
		content = m.tasksView.View()
	case ViewTeams:
		content = m.teamsView.View()
	case ViewNotifications:
		content = m.notificationsView.View()
	case ViewInvite:
		content = m.inviteView.View()
	case ViewAnalytics:
		content = m.analyticsView.View()
	case ViewSettings:
		content = m.settingsView.View()
	case ViewHelp:
		content = m.helpView.View()
	case ViewCommand:
		content = m.commandView.View()
	}

	header := m.layout.RenderHeader("MatchBox", m.headerTabs(), m.app.Notifications.Unread(), m.userLabel())
	statusBar := m.layout.RenderStatusBar(m.hints(), m.toast)
	return m.layout.RenderWithFrame(header, content, statusBar)
}

func (m Model) headerTabs() []ui.Tab {
	if m.app.Auth.User == nil {
		return nil
	}
	active := m.currentView
	if active == ViewHelp || active == ViewCommand {
		active = m.previousView
	}
	out := make([]ui.Tab, len(tabs))
	for i, v := range tabs {
		out[i] = ui.Tab{Label: fmt.Sprintf("%d %s", i+1, v), Active: v == active}
	}
	return out
}

func (m Model) userLabel() string {
	if u := m.app.Auth.User; u != nil {
		return u.DisplayName()
	}
	return ""
}

func (m Model) hints() string {
	hint := theme.HelpStyle.Render
	switch m.currentView {
	case ViewAuth:
		return hint("enter: submit | esc: back | ctrl+c: quit")
	case ViewHelp:
		return hint("?/esc: close help")
	case ViewCommand:
		return hint("enter: run | tab: complete | esc: cancel")
	}
	if m.capturing() {
		return hint("enter: submit | esc: cancel")
	}

	switch m.currentView {
	case ViewProjects:
		return hint("n: new | enter: open | r: refresh | tab: next view | ?: help")
	case ViewTasks:
		return hint("n: new | d: delete | t: mine/all | /: filter | ?: help")
	case ViewTeams:
		return hint("n: new | e: edit | d: delete | enter: members | ?: help")
	case ViewNotifications:
		return hint("a: accept | x: reject | m: mark read | r: refresh | ?: help")
	case ViewInvite:
		return hint("/: search | j/k: select | enter: invite | ?: help")
	case ViewSettings:
		return hint("enter: edit | t: theme | L: log out | ?: help")
	}
	return hint("1-8: views | r: refresh | :: command | ?: help | q: quit")
}
