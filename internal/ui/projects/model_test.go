package projects_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/matchbox/internal/api"
	"github.com/nhle/matchbox/internal/api/apitest"
	"github.com/nhle/matchbox/internal/keys"
	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/state"
	"github.com/nhle/matchbox/internal/ui"
	"github.com/nhle/matchbox/internal/ui/projects"
)

func run(t *testing.T, m projects.Model, cmd tea.Cmd) projects.Model {
	t.Helper()
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	return m
}

func setup(t *testing.T) (*apitest.Server, projects.Model) {
	t.Helper()
	srv := apitest.NewServer(t, "")
	srv.SetProjects([]model.Project{{ID: "p1", Slug: "apollo", Name: "Apollo"}})
	srv.SetTasks([]model.Task{
		{ID: "t1", TaskName: "Write docs", ProjectID: "p1"},
		{ID: "t2", TaskName: "Elsewhere", ProjectID: "p2"},
	})

	m := projects.New(api.NewClient(srv.URL, ""), keys.DefaultKeyMap(), 120, 40)
	m.SetUser("u1")
	m = run(t, m, m.Init())
	return srv, m
}

func TestDetail_ShowsProjectTasks(t *testing.T) {
	_, m := setup(t)
	assert.Contains(t, m.View(), "Apollo")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = run(t, m, cmd)

	view := m.View()
	assert.Contains(t, view, "Write docs")
	assert.NotContains(t, view, "Elsewhere")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.NotContains(t, m.View(), "Write docs")
}

func TestNew_WithoutTeamsAsksForOne(t *testing.T) {
	_, m := setup(t)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	require.NotNil(t, cmd)
	m, cmd = m.Update(cmd())

	assert.False(t, m.Capturing())
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, ui.ToastMsg{}, msg)
	assert.Equal(t, state.ToastInfo, msg.(ui.ToastMsg).Toast.Level)
}

func TestNew_OpensFormWhenTeamsExist(t *testing.T) {
	srv, m := setup(t)
	srv.SetTeams([]model.Team{{ID: "tm1", Name: "Core"}})

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	m = run(t, m, cmd)

	assert.True(t, m.Capturing())
}
