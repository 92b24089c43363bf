// Package notifications renders the notification list and turns key
// presses into accept, reject and mark-read requests for the root model,
// which owns the notification store.
package notifications

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/nhle/matchbox/internal/invite"
	"github.com/nhle/matchbox/internal/keys"
	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/state"
	"github.com/nhle/matchbox/internal/theme"
)

// AcceptMsg requests accepting the invitation in Notification.
type AcceptMsg struct {
	Notification model.Notification
}

// RejectMsg requests rejecting the invitation in Notification.
type RejectMsg struct {
	Notification model.Notification
}

// MarkReadMsg requests marking a notification read.
type MarkReadMsg struct {
	ID string
}

// RefreshMsg requests an immediate fetch.
type RefreshMsg struct{}

// Model is the notification list view.
type Model struct {
	keys    *keys.KeyMap
	tracker *invite.Tracker
	items   []model.Notification
	cursor  int
	now     func() time.Time
	width   int
	height  int
}

// New creates the notifications view. tracker is shared with the root
// model so in-flight actions render as such.
func New(k *keys.KeyMap, tracker *invite.Tracker, width, height int) Model {
	return Model{keys: k, tracker: tracker, now: time.Now, width: width, height: height}
}

// SetItems replaces the rendered notifications, keeping the cursor on
// the same record where possible.
func (m *Model) SetItems(s state.Notifications) {
	selected := ""
	if n, ok := m.Selected(); ok {
		selected = n.ID
	}
	m.items = s.Items()
	m.cursor = 0
	for i, n := range m.items {
		if n.ID == selected {
			m.cursor = i
			break
		}
	}
}

// Selected returns the notification under the cursor.
func (m Model) Selected() (model.Notification, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return model.Notification{}, false
	}
	return m.items[m.cursor], true
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the notifications view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Down):
		if len(m.items) > 0 {
			m.cursor = (m.cursor + 1) % len(m.items)
		}
	case key.Matches(keyMsg, m.keys.Up):
		if len(m.items) > 0 {
			m.cursor--
			if m.cursor < 0 {
				m.cursor = len(m.items) - 1
			}
		}
	case key.Matches(keyMsg, m.keys.Refresh):
		return m, emit(RefreshMsg{})
	case key.Matches(keyMsg, m.keys.Accept):
		if n, ok := m.Selected(); ok && n.IsInvite() {
			return m, emit(AcceptMsg{Notification: n})
		}
	case key.Matches(keyMsg, m.keys.Reject):
		if n, ok := m.Selected(); ok && n.IsInvite() {
			return m, emit(RejectMsg{Notification: n})
		}
	case key.Matches(keyMsg, m.keys.MarkRead), key.Matches(keyMsg, m.keys.Select):
		if n, ok := m.Selected(); ok && !n.IsInvite() && !n.IsRead {
			return m, emit(MarkReadMsg{ID: n.ID})
		}
	}
	return m, nil
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// View renders the notification list.
func (m Model) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Notifications"))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(theme.MutedStyle.Italic(true).Render("You're all caught up."))
	}

	now := m.now()
	for i, n := range m.items {
		b.WriteString(m.renderItem(n, i == m.cursor, now))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("a accept | x reject | m mark read | r refresh"))
	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

func (m Model) renderItem(n model.Notification, selected bool, now time.Time) string {
	marker := " "
	label := n.Label()
	if !n.IsRead {
		marker = "●"
		label = theme.UnreadStyle.Render(label)
	}

	when := ""
	if !n.CreatedAt.IsZero() {
		when = humanize.RelTime(n.CreatedAt.Time, now, "ago", "from now")
	}

	status := ""
	if phase := m.tracker.Phase(n.ID); phase != invite.Presented {
		status = lipgloss.NewStyle().Foreground(theme.ColorYellow).Render(" " + phase.String() + "...")
	}

	head := fmt.Sprintf("%s %s %s%s  %s",
		marker,
		theme.NotificationTypeStyle(n.Type).Render(string(n.Type)),
		label,
		status,
		theme.MutedStyle.Render(when),
	)
	body := theme.MutedStyle.PaddingLeft(4).Render(n.Message)

	line := head + "\n" + body
	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
