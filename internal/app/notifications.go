package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/matchbox/internal/api"
	"github.com/nhle/matchbox/internal/invite"
	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/state"
	appsync "github.com/nhle/matchbox/internal/sync"
)

// cachedNotificationsMsg carries notifications kept from a previous run.
type cachedNotificationsMsg struct {
	userID string
	list   []model.Notification
}

func (m *Model) setNotifications(s state.Notifications) {
	m.app.Notifications = s
	m.notificationsView.SetItems(s)
}

// loadCachedNotifications shows the last known notifications until the
// first poll lands.
func (m Model) loadCachedNotifications(userID string) tea.Cmd {
	cache, log := m.store, m.log
	return func() tea.Msg {
		list, err := cache.CachedNotifications(context.Background(), userID)
		if err != nil {
			log.WithError(err).Warn("loading cached notifications failed")
			return nil
		}
		if len(list) == 0 {
			return nil
		}
		return cachedNotificationsMsg{userID: userID, list: list}
	}
}

func (m Model) notificationsFetched(msg appsync.NotificationsFetchedMsg) (tea.Model, tea.Cmd) {
	// Results for a previous session are dropped without re-arming the
	// wait; the current session has its own.
	if msg.UserID != m.app.Auth.UserID() {
		return m, nil
	}

	if msg.AuthError != nil {
		cmd := m.logout(state.ErrorToast(msg.AuthError.Message))
		return m, cmd
	}

	wait := m.poller.WaitForNextResult()
	if msg.Error != nil {
		m.toast = state.ErrorToast(api.Message(msg.Error, "Failed to load notifications"))
		return m, wait
	}

	next, added := msg.Apply(m.app.Notifications)
	m.setNotifications(next)
	if added > 0 {
		m.toast = state.InfoToast(newNotificationsText(added))
	}
	return m, wait
}

func newNotificationsText(n int) string {
	if n == 1 {
		return "1 new notification"
	}
	return fmt.Sprintf("%d new notifications", n)
}

func (m Model) accept(n model.Notification) (tea.Model, tea.Cmd) {
	if !m.tracker.Begin(n.ID, invite.Accepting) {
		return m, nil
	}
	return m, m.handler.AcceptCmd(n, m.app.Auth.UserID())
}

func (m Model) reject(n model.Notification) (tea.Model, tea.Cmd) {
	if !m.tracker.Begin(n.ID, invite.Rejecting) {
		return m, nil
	}
	return m, m.handler.RejectCmd(n)
}

// resolved applies a finished accept or reject. The invitation leaves
// the store only when the action succeeded.
func (m Model) resolved(msg invite.ResolvedMsg) (tea.Model, tea.Cmd) {
	m.tracker.Finish(msg.NotificationID)

	if api.IsAuthError(msg.Err) {
		cmd := m.logout(state.ErrorToast(sessionExpiredText))
		return m, cmd
	}

	m.setNotifications(msg.Apply(m.app.Notifications))

	accepting := msg.Action == invite.Accepting
	switch {
	case msg.Err != nil && accepting:
		m.toast = state.ErrorToast(api.Message(msg.Err, "Failed to accept invitation"))
	case msg.Err != nil:
		m.toast = state.ErrorToast(api.Message(msg.Err, "Failed to reject invitation"))
	case accepting:
		m.toast = state.SuccessToast("Invitation accepted")
		// The new membership shows up in the team list.
		return m, m.teamsView.Init()
	default:
		m.toast = state.SuccessToast("Invitation rejected")
	}
	return m, nil
}

// markRead marks id read at once and confirms with the backend.
func (m Model) markRead(id string) (tea.Model, tea.Cmd) {
	m.setNotifications(m.app.Notifications.MarkRead(id))
	return m, m.handler.MarkReadCmd(id)
}

func (m Model) markedRead(msg invite.MarkedReadMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if api.IsAuthError(msg.Err) {
			cmd := m.logout(state.ErrorToast(sessionExpiredText))
			return m, cmd
		}
		// Only the one record is rolled back; anything resolved while the
		// call ran stays resolved.
		m.setNotifications(m.app.Notifications.MarkUnread(msg.NotificationID))
		m.toast = state.ErrorToast(api.Message(msg.Err, "Failed to mark notification as read"))
		return m, nil
	}

	cache, log, userID := m.store, m.log, m.app.Auth.UserID()
	return m, func() tea.Msg {
		if err := cache.MarkNotificationRead(context.Background(), userID, msg.NotificationID); err != nil {
			log.WithError(err).Warn("updating cached notification failed")
		}
		return nil
	}
}
