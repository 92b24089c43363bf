package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/matchbox/internal/api"
	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/state"
	"github.com/nhle/matchbox/internal/theme"
	"github.com/nhle/matchbox/internal/ui"
	authview "github.com/nhle/matchbox/internal/ui/auth"
)

const sessionExpiredText = "Session expired. Sign in again."

var errNoSessionUser = errors.New("token does not name a user")

// userLoadedMsg carries the profile of the signed-in user.
type userLoadedMsg struct {
	user model.User
}

// sessionFailedMsg reports that a held token could not be turned into a
// session.
type sessionFailedMsg struct {
	err error
}

// restoreSession resumes the session for a token kept from a previous
// run. The cached profile stands in when the backend is unreachable.
func (m Model) restoreSession() tea.Cmd {
	client, cache, log := m.client, m.store, m.log
	token := m.app.Auth.Token

	return func() tea.Msg {
		info, err := api.InspectToken(token, time.Now())
		if err != nil {
			return sessionFailedMsg{err: err}
		}

		ctx := context.Background()
		cached, err := cache.LoadSession(ctx)
		if err != nil {
			log.WithError(err).Warn("loading cached session failed")
		}

		email := info.Subject
		if email == "" && cached != nil {
			email = cached.Email
		}
		if email == "" {
			return sessionFailedMsg{err: errNoSessionUser}
		}

		u, err := client.GetUser(ctx, email)
		if err != nil {
			if api.IsAuthError(err) || cached == nil || cached.Email != email {
				return sessionFailedMsg{err: err}
			}
			log.WithError(err).Warn("backend unreachable, using cached profile")
			return userLoadedMsg{user: *cached}
		}
		return userLoadedMsg{user: *u}
	}
}

func (m Model) sessionFailed(msg sessionFailedMsg) (tea.Model, tea.Cmd) {
	m.log.WithError(msg.err).Info("saved session not restored")

	toast := state.ErrorToast(api.Message(msg.err, "Could not restore session"))
	if errors.Is(msg.err, api.ErrTokenExpired) || api.IsAuthError(msg.err) {
		toast = state.ErrorToast(sessionExpiredText)
	}
	cmd := m.logout(toast)
	return m, cmd
}

func (m Model) signedIn(msg authview.SignedInMsg) (tea.Model, tea.Cmd) {
	m.client.SetToken(msg.Token)
	if err := m.vault.SaveToken(msg.Token); err != nil {
		m.log.WithError(err).Warn("saving token failed")
	}
	m.app.Auth = m.app.Auth.LoginSuccess(msg.User, msg.Token)

	if msg.User != nil {
		return m.userLoaded(userLoadedMsg{user: *msg.User})
	}

	client, email := m.client, msg.Email
	return m, func() tea.Msg {
		u, err := client.GetUser(context.Background(), email)
		if err != nil {
			return sessionFailedMsg{err: err}
		}
		return userLoadedMsg{user: *u}
	}
}

// userLoaded completes sign-in: every view learns the user, the
// notification poller starts and the dashboard opens.
func (m Model) userLoaded(msg userLoadedMsg) (tea.Model, tea.Cmd) {
	u := msg.user
	m.app.Auth = m.app.Auth.SetUser(&u)
	m.log.WithField("user_id", u.ID).Info("signed in")

	m.dashboardView.SetUser(u.ID)
	m.projectsView.SetUser(u.ID)
	m.tasksView.SetUser(u.ID)
	m.teamsView.SetUser(u.ID)
	m.inviteView.SetUser(u.ID)
	m.analyticsView.SetUser(u.ID)
	m.settingsView.SetUser(&u)
	m.saveSession(u)

	start := m.poller.Start(u.ID)

	m.currentView = ViewAuth
	next, open := m.switchTo(ViewDashboard)
	return next, tea.Batch(m.loadCachedNotifications(u.ID), start, open)
}

func (m Model) saveSession(u model.User) {
	if err := m.store.SaveSession(context.Background(), u); err != nil {
		m.log.WithError(err).Warn("caching session failed")
	}
}

// logout ends the session and returns to the sign-in screen with toast
// on display. It is safe to call while signed out.
func (m *Model) logout(toast *state.Toast) tea.Cmd {
	m.poller.Stop()
	m.debounce.Cancel()
	m.client.SetToken("")

	if err := m.vault.DeleteToken(); err != nil {
		m.log.WithError(err).Warn("deleting token failed")
	}
	if err := m.store.ClearSession(context.Background()); err != nil {
		m.log.WithError(err).Warn("clearing cached session failed")
	}

	m.app = m.app.Logout()
	m.notificationsView.SetItems(m.app.Notifications)
	m.inviteView.Reset()
	m.dashboardView.SetUser("")
	m.projectsView.SetUser("")
	m.tasksView.SetUser("")
	m.teamsView.SetUser("")
	m.inviteView.SetUser("")
	m.analyticsView.SetUser("")
	m.settingsView.SetUser(nil)

	m.toast = toast
	m.previousView = ViewAuth
	m.currentView = ViewAuth
	return m.authView.Reset()
}

// toggleTheme flips the theme and saves it to the config file.
func (m *Model) toggleTheme() tea.Cmd {
	m.app.Theme = m.app.Theme.Toggle()
	current := m.app.Theme.Current
	theme.Apply(current)
	m.settingsView.SetTheme(current)

	m.cfg.Display.Theme = current
	if err := model.SaveConfig(m.cfgPath, m.cfg); err != nil {
		m.log.WithError(err).Warn("saving theme failed")
		return ui.ShowToast(state.ErrorToast("Theme changed but could not be saved"))
	}
	return ui.ShowToast(state.InfoToast(fmt.Sprintf("Theme: %s", current)))
}
