package settings

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
	"github.com/nhle/matchbox/internal/keys"
	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/state"
	"github.com/nhle/matchbox/internal/ui"
)

var ann = model.User{ID: "u1", FullName: "Ann Lee", Username: "ann", Email: "ann@example.com"}

func newSettings(t *testing.T) (*apitest.Server, Model) {
	t.Helper()
	srv := apitest.NewServer(t, "")
	srv.AddUser(ann)

	m := New(api.NewClient(srv.URL, ""), keys.DefaultKeyMap(), 100, 30)
	u := ann
	m.SetUser(&u)
	return srv, m
}

// submit completes the open form and returns the save result.
func submit(t *testing.T, m Model) (Model, tea.Msg) {
	t.Helper()
	m.form.State = huh.StateCompleted
	m, cmd := m.updateForm(nil)
	require.Equal(t, ModeSaving, m.mode)
	require.NotNil(t, cmd)

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, c := range batch {
		if msg, ok := c().(savedMsg); ok {
			return m, msg
		}
	}
	t.Fatal("no save command")
	return m, nil
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, collect(c)...)
	}
	return out
}

func TestProfileSave(t *testing.T) {
	srv, m := newSettings(t)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ModeProfile, m.mode)
	assert.True(t, m.Capturing())
	assert.Equal(t, "Ann Lee", m.fb.fullName, "form starts from the current profile")

	m.fb.fullName = "  Ann Marie Lee "
	m.fb.bio = "Builds things"
	m, saved := submit(t, m)

	m, cmd := m.Update(saved)
	assert.Equal(t, ModeMenu, m.mode)

	var updated *UserUpdatedMsg
	var toast *state.Toast
	for _, msg := range collect(cmd) {
		switch msg := msg.(type) {
		case UserUpdatedMsg:
			updated = &msg
		case ui.ToastMsg:
			toast = msg.Toast
		}
	}
	require.NotNil(t, updated)
	assert.Equal(t, "Ann Marie Lee", updated.User.FullName)
	assert.Equal(t, "Builds things", updated.User.Bio)
	require.NotNil(t, toast)
	assert.Equal(t, "Profile updated", toast.Text)
	assert.Contains(t, m.View(), "Ann Marie Lee")

	calls := srv.Calls(http.MethodPut, "/user/update/ann@example.com")
	require.Len(t, calls, 1)
}

func TestPasswordSave(t *testing.T) {
	srv, m := newSettings(t)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ModePassword, m.mode)

	m.fb.currentPassword = "old-secret"
	m.fb.newPassword = "new-secret"
	m.fb.confirmPassword = "new-secret"
	m, saved := submit(t, m)

	_, cmd := m.Update(saved)
	msgs := collect(cmd)
	require.Len(t, msgs, 1)
	toast, ok := msgs[0].(ui.ToastMsg)
	require.True(t, ok)
	assert.Equal(t, "Password changed", toast.Toast.Text)

	calls := srv.Calls(http.MethodPut, "/user/update-password/ann@example.com")
	require.Len(t, calls, 1)
	var body model.PasswordUpdate
	require.NoError(t, json.Unmarshal(calls[0].Body, &body))
	assert.Equal(t, model.PasswordUpdate{CurrentPassword: "old-secret", NewPassword: "new-secret"}, body)
}

func TestPasswordSave_FailureShowsError(t *testing.T) {
	srv, m := newSettings(t)
	srv.Fail(http.MethodPut, "/user/update-password/ann@example.com", http.StatusBadRequest, "current password is wrong")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.fb.currentPassword = "nope"
	m.fb.newPassword = "new-secret"
	m, saved := submit(t, m)

	m, cmd := m.Update(saved)
	assert.Equal(t, ModeMenu, m.mode)
	msgs := collect(cmd)
	require.Len(t, msgs, 1)
	toast, ok := msgs[0].(ui.ToastMsg)
	require.True(t, ok)
	assert.Equal(t, state.ToastError, toast.Toast.Level)
	assert.Equal(t, "current password is wrong", toast.Toast.Text)
}

func TestAbortedFormSavesNothing(t *testing.T) {
	srv, m := newSettings(t)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.form.State = huh.StateAborted
	m, cmd := m.updateForm(nil)

	assert.Nil(t, cmd)
	assert.Equal(t, ModeMenu, m.mode)
	assert.Empty(t, srv.Calls(http.MethodPut, "/user/update/ann@example.com"))
}

func TestMenuKeys(t *testing.T) {
	_, m := newSettings(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	require.NotNil(t, cmd)
	assert.Equal(t, ThemeToggledMsg{}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("L")})
	require.NotNil(t, cmd)
	assert.Equal(t, LogoutMsg{}, cmd())

	m.SetUser(nil)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ModeMenu, m.mode, "nothing to edit while signed out")
}
