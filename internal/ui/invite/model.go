package invite

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/matchbox/internal/api"
	inv "github.com/nhle/matchbox/internal/invite"
	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/state"
	"github.com/nhle/matchbox/internal/theme"
	"github.com/nhle/matchbox/internal/ui"
)

// InvitedLoadedMsg carries the members UserID has invited.
type InvitedLoadedMsg struct {
	UserID  string
	Members []model.InvitedMember
	Err     error
}

// Model is the search-and-invite view.
type Model struct {
	flow    inv.Flow
	invites api.InvitationService
	userID  string
	input   textinput.Model
	cursor  int
	invited []model.InvitedMember
	width   int
	height  int
}

// New creates the invite view around flow.
func New(flow inv.Flow, invites api.InvitationService, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "search people by name or email..."
	ti.Prompt = "/ "
	ti.Width = width - 6

	return Model{
		flow:    flow,
		invites: invites,
		input:   ti,
		width:   width,
		height:  height,
	}
}

// SetUser changes whose invites are sent and listed.
func (m *Model) SetUser(userID string) {
	m.userID = userID
	m.flow = m.flow.SetUser(userID)
}

// Reset clears the search box, results and invited list.
func (m *Model) Reset() {
	m.flow.Search = state.Search{}
	m.input.Reset()
	m.input.Blur()
	m.cursor = 0
	m.invited = nil
}

// Flow exposes the search state for rendering and tests.
func (m Model) Flow() inv.Flow {
	return m.flow
}

// Capturing reports whether the search box has keyboard focus.
func (m Model) Capturing() bool {
	return m.input.Focused()
}

// Init starts listening for settled queries. Call it once.
func (m Model) Init() tea.Cmd {
	return m.flow.Init()
}

// Focus gives keyboard focus to the search box and reloads the invited list.
func (m *Model) Focus() tea.Cmd {
	return tea.Batch(m.input.Focus(), m.LoadInvited())
}

// LoadInvited fetches the members the current user has invited.
func (m Model) LoadInvited() tea.Cmd {
	if m.userID == "" {
		return nil
	}
	invites, userID := m.invites, m.userID
	return func() tea.Msg {
		members, err := invites.InvitedMembers(context.Background(), userID)
		return InvitedLoadedMsg{UserID: userID, Members: members, Err: err}
	}
}

// Update handles messages for the invite view. Search and invite
// results are handled whichever view is active; answers for another
// user, or that land after sign-out, are dropped.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case inv.SettledMsg:
		if m.userID == "" {
			return m, m.flow.Init()
		}
		var cmd tea.Cmd
		m.flow, cmd = m.flow.Settled(msg)
		return m, cmd

	case inv.ResultsMsg:
		if m.userID == "" || msg.UserID != m.userID {
			return m, nil
		}
		if api.IsAuthError(msg.Err) {
			return m, func() tea.Msg { return ui.SessionExpiredMsg{} }
		}
		f, toast := m.flow.Results(msg)
		m.flow = f
		m.clampCursor()
		return m, ui.ShowToast(toast)

	case inv.InvitedMsg:
		if m.userID == "" || msg.UserID != m.userID {
			return m, nil
		}
		f, toast := m.flow.Invited(msg)
		m.flow = f
		if api.IsAuthError(msg.Err) {
			return m, func() tea.Msg { return ui.SessionExpiredMsg{} }
		}
		if msg.Err == nil {
			return m, tea.Batch(ui.ShowToast(toast), m.LoadInvited())
		}
		return m, ui.ShowToast(toast)

	case InvitedLoadedMsg:
		if m.userID == "" || msg.UserID != m.userID {
			return m, nil
		}
		if msg.Err != nil {
			return m, ui.FailureCmd(msg.Err, "Failed to load invited members")
		}
		m.invited = msg.Members
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	results := m.flow.Search.Results

	switch msg.String() {
	case "up":
		m.moveCursor(-1)
		return m, nil
	case "down":
		m.moveCursor(1)
		return m, nil
	case "enter":
		if m.cursor >= len(results) {
			return m, nil
		}
		f, cmd, toast := m.flow.Invite(results[m.cursor].Email)
		m.flow = f
		return m, tea.Batch(cmd, ui.ShowToast(toast))
	case "esc":
		if m.input.Focused() {
			m.input.Blur()
		}
		return m, nil
	}

	if !m.input.Focused() {
		switch msg.String() {
		case "/":
			cmd := m.Focus()
			return m, cmd
		case "j":
			m.moveCursor(1)
		case "k":
			m.moveCursor(-1)
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.flow.Type(m.input.Value())
	}
	return m, cmd
}

func (m *Model) moveCursor(delta int) {
	n := len(m.flow.Search.Results)
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor = (m.cursor + delta + n) % n
}

func (m *Model) clampCursor() {
	if n := len(m.flow.Search.Results); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

// View renders the invite view.
func (m Model) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Invite people"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	s := m.flow.Search
	switch {
	case s.Query == "":
		b.WriteString(theme.MutedStyle.Italic(true).Render("Type a name or email to search."))
	case len(s.Results) == 0:
		b.WriteString(theme.MutedStyle.Italic(true).Render(fmt.Sprintf("No people match %q.", s.Query)))
	}
	for i, r := range s.Results {
		status := r.Status()
		line := fmt.Sprintf("%-24s %-30s %s",
			r.FullName, theme.MutedStyle.Render(r.Email),
			theme.InvitationStyle(status).Render(string(status)),
		)
		if i == m.cursor {
			b.WriteString(theme.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(theme.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if len(m.invited) > 0 {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Bold(true).Render("Invited by you"))
		b.WriteString("\n")
		for _, im := range m.invited {
			b.WriteString(theme.ListItemStyle.Render(fmt.Sprintf("%s %s %s",
				im.FullName, theme.MutedStyle.Render(im.Email),
				theme.InvitationStyle(im.Status).Render(string(im.Status)))))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("↑/↓ select | enter invite | / search | esc leave search"))
	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}
