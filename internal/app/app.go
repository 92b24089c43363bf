package app

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/nhle/matchbox/internal/api"
	"github.com/nhle/matchbox/internal/invite"
	"github.com/nhle/matchbox/internal/keys"
	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/state"
	"github.com/nhle/matchbox/internal/store"
	appsync "github.com/nhle/matchbox/internal/sync"
	"github.com/nhle/matchbox/internal/theme"
	"github.com/nhle/matchbox/internal/ui"
	analyticsview "github.com/nhle/matchbox/internal/ui/analytics"
	authview "github.com/nhle/matchbox/internal/ui/auth"
	"github.com/nhle/matchbox/internal/ui/command"
	"github.com/nhle/matchbox/internal/ui/dashboard"
	helpview "github.com/nhle/matchbox/internal/ui/help"
	inviteview "github.com/nhle/matchbox/internal/ui/invite"
	notificationsview "github.com/nhle/matchbox/internal/ui/notifications"
	"github.com/nhle/matchbox/internal/ui/projects"
	"github.com/nhle/matchbox/internal/ui/settings"
	"github.com/nhle/matchbox/internal/ui/tasks"
	"github.com/nhle/matchbox/internal/ui/teams"
)

// TokenVault persists the bearer token between runs.
type TokenVault interface {
	LoadToken() (string, error)
	SaveToken(token string) error
	DeleteToken() error
}

// Deps are the collaborators the root model is built from.
type Deps struct {
	Client     *api.Client
	Vault      TokenVault
	Store      store.Store
	Config     *model.AppConfig
	ConfigPath string
	Device     string
	Log        logrus.FieldLogger

	// Clock drives the search debouncer. Nil uses the wall clock.
	Clock invite.Clock
}

// Model is the root Bubble Tea model. It owns the shared state, routes
// messages to views, and runs the notification poller.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	ready        bool
	keys         *keys.KeyMap

	client  *api.Client
	vault   TokenVault
	store   store.Store
	cfg     *model.AppConfig
	cfgPath string
	log     logrus.FieldLogger

	app   state.App
	toast *state.Toast

	poller   *appsync.Poller
	handler  *invite.Handler
	tracker  *invite.Tracker
	debounce *invite.Debouncer

	authView          authview.Model
	dashboardView     dashboard.Model
	projectsView      projects.Model
	tasksView         tasks.Model
	teamsView         teams.Model
	notificationsView notificationsview.Model
	inviteView        inviteview.Model
	analyticsView     analyticsview.Model
	settingsView      settings.Model
	helpView          helpview.Model
	commandView       command.Model
}

// New creates the root model. The token, when present, is restored by Init.
func New(d Deps) Model {
	k := keys.DefaultKeyMap()
	client := d.Client
	log := d.Log

	var debounceOpts []invite.DebounceOption
	if d.Clock != nil {
		debounceOpts = append(debounceOpts, invite.WithClock(d.Clock))
	}
	debounce := invite.NewDebouncer(d.Config.Search.Debounce(), debounceOpts...)
	searcher := invite.NewSearcher(client, client, log)
	tracker := invite.NewTracker()
	interval := time.Duration(d.Config.Notifications.PollIntervalSec) * time.Second

	m := Model{
		currentView: ViewAuth,
		keys:        k,
		client:      client,
		vault:       d.Vault,
		store:       d.Store,
		cfg:         d.Config,
		cfgPath:     d.ConfigPath,
		log:         log,
		app:         state.NewApp(client.Token(), d.Config.Display.Theme),
		poller:      appsync.New(client, d.Store, interval, log),
		handler:     invite.NewHandler(client, log),
		tracker:     tracker,
		debounce:    debounce,

		authView:          authview.New(client, d.Device, 80, 24),
		dashboardView:     dashboard.New(client, 80, 24),
		projectsView:      projects.New(client, k, 80, 24),
		tasksView:         tasks.New(client, k, 80, 24),
		teamsView:         teams.New(client, k, 80, 24),
		notificationsView: notificationsview.New(k, tracker, 80, 24),
		inviteView:        inviteview.New(invite.NewFlow(searcher, debounce, ""), client, 80, 24),
		analyticsView:     analyticsview.New(client, 80, 24),
		settingsView:      settings.New(client, k, 80, 24),
		helpView:          helpview.New(k, 80, 24),
		commandView:       command.New(80, 24),
	}
	m.settingsView.SetTheme(m.app.Theme.Current)
	return m
}

// Init applies the theme, starts listening for settled searches and
// either restores the saved session or shows the sign-in screen.
func (m Model) Init() tea.Cmd {
	theme.Apply(m.app.Theme.Current)

	start := m.authView.Init()
	if m.app.Auth.IsAuthenticated() {
		start = m.restoreSession()
	}
	return tea.Batch(m.inviteView.Init(), start)
}

// Update handles messages and dispatches to the views.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		m.resize(m.layout.ContentWidth(), m.layout.ContentHeight())
		// Forward to the active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case tea.KeyMsg:
		m.toast = nil
		return m.handleKey(msg)

	case ui.ToastMsg:
		m.toast = msg.Toast
		return m, nil

	case ui.SessionExpiredMsg:
		cmd := m.logout(state.ErrorToast(sessionExpiredText))
		return m, cmd

	// === Session ===

	case authview.SignedInMsg:
		return m.signedIn(msg)

	case userLoadedMsg:
		return m.userLoaded(msg)

	case sessionFailedMsg:
		return m.sessionFailed(msg)

	case settings.UserUpdatedMsg:
		u := msg.User
		m.app.Auth = m.app.Auth.SetUser(&u)
		m.saveSession(u)
		return m, nil

	case settings.LogoutMsg:
		cmd := m.logout(state.InfoToast("Signed out"))
		return m, cmd

	case settings.ThemeToggledMsg:
		cmd := m.toggleTheme()
		return m, cmd

	// === Notifications ===

	case appsync.NotificationsFetchedMsg:
		return m.notificationsFetched(msg)

	case cachedNotificationsMsg:
		if msg.userID == m.app.Auth.UserID() && m.app.Notifications.Len() == 0 {
			m.setNotifications(m.app.Notifications.Reload(msg.list))
		}
		return m, nil

	case notificationsview.AcceptMsg:
		return m.accept(msg.Notification)

	case notificationsview.RejectMsg:
		return m.reject(msg.Notification)

	case notificationsview.MarkReadMsg:
		return m.markRead(msg.ID)

	case notificationsview.RefreshMsg:
		return m, m.poller.Refresh()

	case invite.ResolvedMsg:
		return m.resolved(msg)

	case invite.MarkedReadMsg:
		return m.markedRead(msg)

	// === Palette ===

	case command.CommandMsg:
		m.currentView = m.previousView
		return m.executeCommand(string(msg))

	case command.CancelMsg:
		m.currentView = m.previousView
		return m, nil
	}

	return m.broadcast(msg)
}

// handleKey applies global bindings unless the active view is taking
// text input, then passes the key to the active view.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, m.quit()
	}

	switch m.currentView {
	case ViewAuth, ViewCommand:
		return m.updateActiveView(msg)
	case ViewHelp:
		if key.Matches(msg, m.keys.Help, m.keys.Back) {
			m.currentView = m.previousView
		}
		return m, nil
	}

	if m.capturing() {
		return m.updateActiveView(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.Help):
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil
	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		cmd := m.commandView.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Logout):
		cmd := m.logout(state.InfoToast("Signed out"))
		return m, cmd
	case key.Matches(msg, m.keys.NextView):
		return m.switchTo(nextTab(m.currentView, 1))
	case key.Matches(msg, m.keys.PrevView):
		return m.switchTo(nextTab(m.currentView, -1))
	}

	if v, ok := m.tabForKey(msg); ok {
		return m.switchTo(v)
	}

	if key.Matches(msg, m.keys.Refresh) {
		switch m.currentView {
		case ViewDashboard:
			return m, m.dashboardView.Load()
		case ViewAnalytics:
			return m, m.analyticsView.Load()
		}
	}

	return m.updateActiveView(msg)
}

func (m Model) quit() tea.Cmd {
	m.poller.Stop()
	m.debounce.Stop()
	return tea.Quit
}

// App returns the shared state.
func (m Model) App() state.App {
	return m.app
}

// CurrentView returns the active view.
func (m Model) CurrentView() ViewState {
	return m.currentView
}

// Toast returns the toast on display, or nil.
func (m Model) Toast() *state.Toast {
	return m.toast
}
