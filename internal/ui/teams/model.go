package teams

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nhle/matchbox/internal/api"
	"github.com/nhle/matchbox/internal/keys"
	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/state"
	"github.com/nhle/matchbox/internal/theme"
	"github.com/nhle/matchbox/internal/ui"
)

// ErrUserNotFound is returned when no user matches an email exactly.
var ErrUserNotFound = errors.New("no user with that email")

// Backend is what the teams view reads and writes.
type Backend interface {
	api.TeamService
	api.UserService
	api.InvitationService
}

type teamMode int

const (
	modeList teamMode = iota
	modeTeamForm
	modeConfirmDelete
	modeMembers
	modeMemberForm
	modeRoleForm
	modeConfirmRemove
)

type memberAction int

const (
	actionAdd memberAction = iota
	actionInvite
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name        string
	description string
	email       string
	role        model.TeamRole
	confirm     bool
}

type teamsLoadedMsg struct {
	teams []model.Team
	err   error
}

type teamLoadedMsg struct {
	team *model.Team
	err  error
}

// changedMsg reports a finished mutation. team is reloaded when set.
type changedMsg struct {
	text   string
	teamID string
	err    error
	failed string
}

// Model is the teams view.
type Model struct {
	mode        teamMode
	backend     Backend
	keys        *keys.KeyMap
	userID      string
	teams       []model.Team
	selectedIdx int
	team        *model.Team
	memberIdx   int
	editingID   string
	action      memberAction
	form        *huh.Form
	fb          *formBindings
	width       int
	height      int
}

// New creates the teams view.
func New(backend Backend, k *keys.KeyMap, width, height int) Model {
	return Model{
		backend: backend,
		keys:    k,
		fb:      &formBindings{},
		width:   width,
		height:  height,
	}
}

// SetUser selects whose teams are listed.
func (m *Model) SetUser(userID string) {
	m.userID = userID
}

// Capturing reports whether a form has keyboard focus.
func (m Model) Capturing() bool {
	switch m.mode {
	case modeList, modeMembers:
		return false
	default:
		return true
	}
}

// Init loads the team list.
func (m Model) Init() tea.Cmd {
	return m.loadTeams()
}

// Update handles messages for the teams view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case teamsLoadedMsg:
		if msg.err != nil {
			return m, ui.FailureCmd(msg.err, "Failed to load teams")
		}
		m.teams = msg.teams
		if m.selectedIdx >= len(m.teams) {
			m.selectedIdx = max(len(m.teams)-1, 0)
		}
		return m, nil

	case teamLoadedMsg:
		if m.team == nil {
			return m, nil
		}
		if msg.err != nil {
			m.team = nil
			m.mode = modeList
			return m, ui.FailureCmd(msg.err, "Failed to load team")
		}
		if msg.team.ID != m.team.ID {
			return m, nil
		}
		m.team = msg.team
		if m.memberIdx >= len(m.team.Members) {
			m.memberIdx = max(len(m.team.Members)-1, 0)
		}
		return m, nil

	case changedMsg:
		m.mode = m.restingMode()
		if errors.Is(msg.err, ErrUserNotFound) {
			return m, ui.ShowToast(state.ErrorToast(msg.err.Error()))
		}
		if msg.err != nil {
			return m, ui.FailureCmd(msg.err, msg.failed)
		}
		cmds := []tea.Cmd{m.loadTeams(), ui.ShowToast(state.SuccessToast(msg.text))}
		if msg.teamID != "" && m.team != nil {
			cmds = append(cmds, m.loadTeam(msg.teamID))
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		switch m.mode {
		case modeList:
			return m.handleListKey(msg)
		case modeMembers:
			return m.handleMembersKey(msg)
		}
	}

	if m.Capturing() {
		return m.updateForm(msg)
	}
	return m, nil
}

// restingMode is the mode a finished form returns to.
func (m Model) restingMode() teamMode {
	if m.team != nil {
		return modeMembers
	}
	return modeList
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if len(m.teams) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.teams)
		}
	case key.Matches(msg, m.keys.Up):
		if len(m.teams) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.teams) - 1
			}
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadTeams()
	case key.Matches(msg, m.keys.New):
		m.editingID = ""
		*m.fb = formBindings{}
		return m.openForm(modeTeamForm, m.buildTeamForm())
	case msg.String() == "e":
		t, ok := m.selectedTeam()
		if !ok {
			return m, nil
		}
		m.editingID = t.ID
		*m.fb = formBindings{name: t.Name, description: t.Description}
		return m.openForm(modeTeamForm, m.buildTeamForm())
	case key.Matches(msg, m.keys.Delete):
		t, ok := m.selectedTeam()
		if !ok {
			return m, nil
		}
		m.fb.confirm = false
		return m.openForm(modeConfirmDelete, m.buildConfirm(
			fmt.Sprintf("Delete team %q?", t.Name),
			"Only the team's creator can delete it.",
		))
	case key.Matches(msg, m.keys.Select):
		t, ok := m.selectedTeam()
		if !ok {
			return m, nil
		}
		m.team = &t
		m.memberIdx = 0
		m.mode = modeMembers
		return m, m.loadTeam(t.ID)
	}
	return m, nil
}

func (m Model) handleMembersKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.team = nil
		m.mode = modeList
	case key.Matches(msg, m.keys.Down):
		if n := len(m.team.Members); n > 0 {
			m.memberIdx = (m.memberIdx + 1) % n
		}
	case key.Matches(msg, m.keys.Up):
		if n := len(m.team.Members); n > 0 {
			m.memberIdx--
			if m.memberIdx < 0 {
				m.memberIdx = n - 1
			}
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadTeam(m.team.ID)
	case key.Matches(msg, m.keys.New):
		m.action = actionAdd
		*m.fb = formBindings{role: model.TeamRoleDeveloper}
		return m.openForm(modeMemberForm, m.buildMemberForm())
	case msg.String() == "i":
		m.action = actionInvite
		*m.fb = formBindings{}
		return m.openForm(modeMemberForm, m.buildMemberForm())
	case msg.String() == "e":
		mem, ok := m.selectedMember()
		if !ok {
			return m, nil
		}
		*m.fb = formBindings{role: mem.TeamRole}
		return m.openForm(modeRoleForm, m.buildRoleForm(mem))
	case key.Matches(msg, m.keys.Delete):
		mem, ok := m.selectedMember()
		if !ok {
			return m, nil
		}
		m.fb.confirm = false
		return m.openForm(modeConfirmRemove, m.buildConfirm(
			fmt.Sprintf("Remove %s from %s?", mem.FullName, m.team.Name), "",
		))
	}
	return m, nil
}

func (m Model) openForm(mode teamMode, f *huh.Form) (Model, tea.Cmd) {
	m.mode = mode
	m.form = f
	return m, f.Init()
}

func (m Model) selectedTeam() (model.Team, bool) {
	if len(m.teams) == 0 {
		return model.Team{}, false
	}
	return m.teams[m.selectedIdx], true
}

func (m Model) selectedMember() (model.Member, bool) {
	if m.team == nil || len(m.team.Members) == 0 {
		return model.Member{}, false
	}
	return m.team.Members[m.memberIdx], true
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
		return m.submit()
	case huh.StateAborted:
		m.mode = m.restingMode()
		return m, nil
	}
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	switch m.mode {
	case modeTeamForm:
		if m.editingID != "" {
			return m, m.updateTeam(m.editingID)
		}
		return m, m.createTeam()
	case modeConfirmDelete:
		if t, ok := m.selectedTeam(); ok && m.fb.confirm {
			return m, m.deleteTeam(t)
		}
	case modeMemberForm:
		if m.action == actionInvite {
			return m, m.inviteMember()
		}
		return m, m.addMember()
	case modeRoleForm:
		if mem, ok := m.selectedMember(); ok {
			return m, m.updateRole(mem)
		}
	case modeConfirmRemove:
		if mem, ok := m.selectedMember(); ok && m.fb.confirm {
			return m, m.removeMember(mem)
		}
	}
	m.mode = m.restingMode()
	return m, nil
}

func (m Model) buildTeamForm() *huh.Form {
	w, h := ui.FormSize(m.width, m.height)
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Team name").
				Value(&m.fb.name).
				Validate(ui.Required("Name")),
			huh.NewText().
				Title("Description").
				Placeholder("Optional description").
				Value(&m.fb.description),
		),
	).WithWidth(w).WithHeight(h)
}

func (m Model) buildMemberForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Email").
			Placeholder("teammate@example.com").
			Value(&m.fb.email).
			Validate(ui.Required("Email")),
	}
	if m.action == actionAdd {
		fields = append(fields, roleSelect(&m.fb.role))
	}
	w, h := ui.FormSize(m.width, m.height)
	return huh.NewForm(huh.NewGroup(fields...)).WithWidth(w).WithHeight(h)
}

func (m Model) buildRoleForm(mem model.Member) *huh.Form {
	w, h := ui.FormSize(m.width, m.height)
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(mem.FullName).Description(mem.Email),
			roleSelect(&m.fb.role),
		),
	).WithWidth(w).WithHeight(h)
}

func (m Model) buildConfirm(title, description string) *huh.Form {
	w, h := ui.FormSize(m.width, m.height)
	c := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("Cancel").
		Value(&m.fb.confirm)
	if description != "" {
		c = c.Description(description)
	}
	return huh.NewForm(huh.NewGroup(c)).WithWidth(w).WithHeight(h)
}

func roleSelect(v *model.TeamRole) huh.Field {
	opts := make([]huh.Option[model.TeamRole], len(model.TeamRoles))
	for i, r := range model.TeamRoles {
		opts[i] = huh.NewOption(roleLabel(r), r)
	}
	return huh.NewSelect[model.TeamRole]().
		Title("Role").
		Options(opts...).
		Value(v)
}

func roleLabel(r model.TeamRole) string {
	words := strings.ToLower(strings.ReplaceAll(string(r), "_", " "))
	return cases.Title(language.English).String(words)
}

// View renders the teams view.
func (m Model) View() string {
	switch m.mode {
	case modeList:
		return m.viewList()
	case modeMembers:
		return m.viewMembers()
	default:
		if m.form == nil {
			return ""
		}
		return lipgloss.NewStyle().Padding(1, 2).Render(m.formTitle() + "\n\n" + m.form.View())
	}
}

func (m Model) formTitle() string {
	title := ""
	switch m.mode {
	case modeTeamForm:
		title = "New team"
		if m.editingID != "" {
			title = "Edit team"
		}
	case modeMemberForm:
		title = "Add member to " + m.team.Name
		if m.action == actionInvite {
			title = "Invite to " + m.team.Name
		}
	case modeRoleForm:
		title = "Change role"
	}
	return lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render(title)
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Teams"))
	b.WriteString("\n\n")

	if len(m.teams) == 0 {
		b.WriteString(theme.MutedStyle.Italic(true).Render("No teams yet. Press 'n' to create one."))
	}
	for i, t := range m.teams {
		label := fmt.Sprintf("%s  %s",
			t.Name,
			theme.MutedStyle.Render(fmt.Sprintf("%d members, %d projects", memberCount(t), t.TotalProjects)),
		)
		if t.CreatedBy == m.userID {
			label += theme.MutedStyle.Render(" (owner)")
		}
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("n new | e edit | d delete | enter members | r refresh"))
	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

func (m Model) viewMembers() string {
	t := m.team
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue).Render(t.Name))
	b.WriteString("\n")
	if t.Description != "" {
		b.WriteString(theme.MutedStyle.Render(t.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(t.Members) == 0 {
		b.WriteString(theme.MutedStyle.Italic(true).Render("No members."))
	}
	for i, mem := range t.Members {
		joined := ""
		if !mem.JoinedAt.IsZero() {
			joined = " joined " + humanize.Time(mem.JoinedAt.Time)
		}
		label := fmt.Sprintf("%-24s %-28s %s%s",
			mem.FullName, mem.Email,
			lipgloss.NewStyle().Foreground(theme.ColorMagenta).Render(roleLabel(mem.TeamRole)),
			theme.MutedStyle.Render(joined),
		)
		if i == m.memberIdx {
			b.WriteString(theme.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	if len(t.ActiveProjects) > 0 {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Bold(true).Render("Active projects"))
		b.WriteString("\n")
		for _, p := range t.ActiveProjects {
			b.WriteString(theme.ListItemStyle.Render(fmt.Sprintf("%s %s %.0f%%",
				p.ProjectName, theme.StatusStyle(p.Status).Render(p.Status), p.Progress)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("n add member | i invite | e change role | d remove | esc back"))
	return theme.DetailPanelStyle.Width(m.width - 4).Render(b.String())
}

func memberCount(t model.Team) int {
	if t.TotalMembers > 0 {
		return t.TotalMembers
	}
	return len(t.Members)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) loadTeams() tea.Cmd {
	if m.userID == "" {
		return nil
	}
	backend, userID := m.backend, m.userID
	return func() tea.Msg {
		teams, err := backend.ListTeams(context.Background(), userID)
		return teamsLoadedMsg{teams: teams, err: err}
	}
}

func (m Model) loadTeam(id string) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		t, err := backend.GetTeam(context.Background(), id)
		return teamLoadedMsg{team: t, err: err}
	}
}

func (m Model) createTeam() tea.Cmd {
	backend := m.backend
	req := model.NewTeamRequest(strings.TrimSpace(m.fb.name), strings.TrimSpace(m.fb.description), m.userID)
	return func() tea.Msg {
		t, err := backend.CreateTeam(context.Background(), req)
		if err != nil {
			return changedMsg{err: err, failed: "Failed to create team"}
		}
		return changedMsg{text: fmt.Sprintf("Team %q created", t.Name)}
	}
}

func (m Model) updateTeam(id string) tea.Cmd {
	backend := m.backend
	update := model.TeamUpdate{
		Name:        strings.TrimSpace(m.fb.name),
		Description: strings.TrimSpace(m.fb.description),
	}
	return func() tea.Msg {
		_, err := backend.UpdateTeam(context.Background(), id, update)
		if err != nil {
			return changedMsg{err: err, failed: "Failed to update team"}
		}
		return changedMsg{text: "Team updated"}
	}
}

func (m Model) deleteTeam(t model.Team) tea.Cmd {
	backend, userID := m.backend, m.userID
	return func() tea.Msg {
		if err := backend.DeleteTeam(context.Background(), userID, t.ID); err != nil {
			return changedMsg{err: err, failed: "Failed to delete team"}
		}
		return changedMsg{text: fmt.Sprintf("Team %q deleted", t.Name)}
	}
}

func (m Model) addMember() tea.Cmd {
	backend, userID, teamID := m.backend, m.userID, m.team.ID
	email, role := strings.TrimSpace(m.fb.email), m.fb.role
	return func() tea.Msg {
		ctx := context.Background()
		u, err := ResolveUser(ctx, backend, email, userID)
		if err != nil {
			return changedMsg{err: err, failed: "Failed to add member"}
		}
		if err := backend.AddMember(ctx, teamID, model.AddMemberRequest{MemberID: u.ID, Role: role}); err != nil {
			return changedMsg{err: err, failed: "Failed to add member"}
		}
		return changedMsg{text: fmt.Sprintf("%s added", u.FullName), teamID: teamID}
	}
}

func (m Model) inviteMember() tea.Cmd {
	backend, userID, teamID := m.backend, m.userID, m.team.ID
	email := strings.TrimSpace(m.fb.email)
	return func() tea.Msg {
		ctx := context.Background()
		u, err := ResolveUser(ctx, backend, email, userID)
		if err != nil {
			return changedMsg{err: err, failed: "Failed to send invite"}
		}
		text, err := backend.InviteToTeam(ctx, teamID, u.ID)
		if err != nil {
			return changedMsg{err: err, failed: "Failed to send invite"}
		}
		if text == "" {
			text = "Invitation sent to " + u.Email
		}
		return changedMsg{text: text, teamID: teamID}
	}
}

func (m Model) updateRole(mem model.Member) tea.Cmd {
	backend, teamID, role := m.backend, m.team.ID, m.fb.role
	return func() tea.Msg {
		if err := backend.UpdateMemberRole(context.Background(), teamID, mem.ID, role); err != nil {
			return changedMsg{err: err, failed: "Failed to update role"}
		}
		return changedMsg{text: fmt.Sprintf("%s is now %s", mem.FullName, roleLabel(role)), teamID: teamID}
	}
}

func (m Model) removeMember(mem model.Member) tea.Cmd {
	backend, teamID := m.backend, m.team.ID
	return func() tea.Msg {
		if err := backend.RemoveMember(context.Background(), teamID, mem.ID); err != nil {
			return changedMsg{err: err, failed: "Failed to remove member"}
		}
		return changedMsg{text: fmt.Sprintf("%s removed", mem.FullName), teamID: teamID}
	}
}

// ResolveUser finds the user whose email matches exactly, using the
// search endpoint.
func ResolveUser(ctx context.Context, users api.UserService, email, currentUserID string) (model.UserSearchResult, error) {
	results, err := users.SearchUsers(ctx, email, currentUserID)
	if err != nil {
		return model.UserSearchResult{}, err
	}
	for _, r := range results {
		if strings.EqualFold(r.Email, email) {
			return r, nil
		}
	}
	return model.UserSearchResult{}, fmt.Errorf("%w: %s", ErrUserNotFound, email)
}
