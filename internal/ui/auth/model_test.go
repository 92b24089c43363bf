package auth

import (
	"encoding/json"
	"net/http"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/matchbox/internal/api"
	"github.com/nhle/matchbox/internal/api/apitest"
	"github.com/nhle/matchbox/internal/model"
)

type tick struct{}

func newAuth(t *testing.T) (*apitest.Server, Model) {
	t.Helper()
	srv := apitest.NewServer(t, "tok")
	srv.AddUser(model.User{ID: "u1", FullName: "Ann Lee", Email: "ann@example.com"})
	return srv, New(api.NewClient(srv.URL, ""), "laptop", 100, 30)
}

// finish completes the current form with whatever the bindings hold.
func finish(m Model) (Model, tea.Cmd) {
	m.form.State = huh.StateCompleted
	return m.Update(tick{})
}

func TestLogin_EmitsSignedIn(t *testing.T) {
	srv, m := newAuth(t)

	m.fb.choice = choiceLogin
	m, _ = finish(m)
	require.Equal(t, modeLogin, m.mode)
	assert.Contains(t, m.View(), "Sign in")

	m.fb.email = "  ann@example.com "
	m.fb.password = "secret"
	m, cmd := finish(m)
	require.NotNil(t, cmd)
	assert.True(t, m.Loading())
	assert.Contains(t, m.View(), "Contacting server...")

	msg, ok := cmd().(SignedInMsg)
	require.True(t, ok)
	assert.Equal(t, "tok", msg.Token)
	assert.Equal(t, "ann@example.com", msg.Email)

	calls := srv.Calls(http.MethodPost, "/auth/login")
	require.Len(t, calls, 1)
	var req model.LoginRequest
	require.NoError(t, json.Unmarshal(calls[0].Body, &req))
	assert.Equal(t, "ann@example.com", req.Email)
	assert.Equal(t, "laptop", req.Device)
	assert.Equal(t, model.RoleUser, req.Role)
}

func TestLogin_RejectedClearsPassword(t *testing.T) {
	_, m := newAuth(t)
	m.fb.choice = choiceLogin
	m, _ = finish(m)

	m.fb.email = "nobody@example.com"
	m.fb.password = "secret"
	m, cmd := finish(m)
	require.NotNil(t, cmd)

	failed, ok := cmd().(authFailedMsg)
	require.True(t, ok)
	m, _ = m.Update(failed)

	assert.False(t, m.Loading())
	assert.Empty(t, m.fb.password)
	assert.Equal(t, "nobody@example.com", m.fb.email)
	assert.Equal(t, modeLogin, m.mode)
	assert.Contains(t, m.View(), "Invalid email or password")
}

func TestRegister_EmitsSignedInWithUser(t *testing.T) {
	_, m := newAuth(t)
	m.fb.choice = choiceRegister
	m, _ = finish(m)
	require.Equal(t, modeRegister, m.mode)

	m.fb.fullName = "Annie Hall"
	m.fb.username = "annie"
	m.fb.email = "annie@example.com"
	m.fb.password = "secret1"
	m, cmd := finish(m)
	require.NotNil(t, cmd)

	msg, ok := cmd().(SignedInMsg)
	require.True(t, ok)
	require.NotNil(t, msg.User)
	assert.Equal(t, "u-annie", msg.User.ID)
	assert.Equal(t, "annie@example.com", msg.Email)
}

func TestAbort(t *testing.T) {
	_, m := newAuth(t)

	m.fb.choice = choiceLogin
	m, _ = finish(m)
	m.form.State = huh.StateAborted
	m, cmd := m.Update(tick{})
	assert.Equal(t, modeChoose, m.mode, "leaving a form returns to the chooser")

	m.form.State = huh.StateAborted
	_, cmd = m.Update(tick{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestValidators(t *testing.T) {
	assert.Error(t, validateEmail(""))
	assert.ErrorIs(t, validateEmail("ann"), errInvalidEmail)
	assert.NoError(t, validateEmail("ann@example.com"))

	assert.ErrorIs(t, validatePassword("12345"), errShortPassword)
	assert.NoError(t, validatePassword("123456"))
}
