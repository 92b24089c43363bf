package app

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/99designs/keyring"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/matchbox/internal/api"
	"github.com/nhle/matchbox/internal/api/apitest"
	"github.com/nhle/matchbox/internal/credential"
	"github.com/nhle/matchbox/internal/invite"
	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/state"
	"github.com/nhle/matchbox/internal/store"
	appsync "github.com/nhle/matchbox/internal/sync"
	"github.com/nhle/matchbox/internal/testutil"
	"github.com/nhle/matchbox/internal/ui"
	authview "github.com/nhle/matchbox/internal/ui/auth"
	"github.com/nhle/matchbox/internal/ui/command"
	notificationsview "github.com/nhle/matchbox/internal/ui/notifications"
	"github.com/nhle/matchbox/internal/ui/settings"
)

const testToken = "tok"

var ann = model.User{ID: "u1", FullName: "Ann Lee", Username: "ann", Email: "ann@example.com"}

type fixture struct {
	srv     *apitest.Server
	vault   *credential.Vault
	store   *store.SQLiteStore
	cfgPath string
	m       Model
}

func newFixture(t *testing.T, token string) *fixture {
	t.Helper()

	srv := apitest.NewServer(t, token)
	srv.AddUser(ann)

	ring := keyring.NewArrayKeyring(nil)
	vault := credential.NewVaultWith(func() (keyring.Keyring, error) { return ring, nil })
	st := testutil.NewTestStore(t)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := model.LoadConfig(cfgPath)
	require.NoError(t, err)

	client := api.NewClient(srv.URL, "", api.WithLogger(testutil.Logger()))
	m := New(Deps{
		Client:     client,
		Vault:      vault,
		Store:      st,
		Config:     cfg,
		ConfigPath: cfgPath,
		Device:     "test",
		Log:        testutil.Logger(),
	})
	t.Cleanup(func() {
		m.poller.Stop()
		m.debounce.Stop()
	})

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return &fixture{srv: srv, vault: vault, store: st, cfgPath: cfgPath, m: updated.(Model)}
}

func (f *fixture) update(msg tea.Msg) tea.Cmd {
	updated, cmd := f.m.Update(msg)
	f.m = updated.(Model)
	return cmd
}

func (f *fixture) signIn(t *testing.T) {
	t.Helper()
	u := ann
	f.update(authview.SignedInMsg{Token: testToken, Email: u.Email, User: &u})
	require.Equal(t, ViewDashboard, f.m.CurrentView())
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	f.signIn(t)
	f.srv.SetNotifications(ann.ID, testutil.Notifications())
	f.update(appsync.NotificationsFetchedMsg{
		UserID:        ann.ID,
		Notifications: testutil.Notifications(),
		Initial:       true,
	})
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSignedIn_StoresTokenAndOpensDashboard(t *testing.T) {
	fx := newFixture(t, testToken)

	fx.signIn(t)

	token, err := fx.vault.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, testToken, token)

	cached, err := fx.store.LoadSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, ann.Email, cached.Email)

	assert.Equal(t, ann.ID, fx.m.App().Auth.UserID())
	assert.True(t, fx.m.poller.Running())
}

func TestSignedIn_WithoutProfileFetchesUser(t *testing.T) {
	fx := newFixture(t, testToken)

	cmd := fx.update(authview.SignedInMsg{Token: testToken, Email: ann.Email})
	require.NotNil(t, cmd)
	assert.Equal(t, ViewAuth, fx.m.CurrentView())

	msg := cmd()
	require.IsType(t, userLoadedMsg{}, msg)
	fx.update(msg)

	assert.Equal(t, ViewDashboard, fx.m.CurrentView())
	assert.Equal(t, ann.ID, fx.m.App().Auth.UserID())
}

func TestNotificationsFetched_UpdatesUnreadCount(t *testing.T) {
	fx := newFixture(t, testToken)
	fx.seed(t)

	assert.Equal(t, 3, fx.m.App().Notifications.Len())
	assert.Equal(t, 2, fx.m.App().Notifications.Unread())
	assert.Nil(t, fx.m.Toast(), "first fetch is not announced")

	fresh := model.Notification{ID: "n4", Type: model.NotificationDueDate, Message: "New task"}
	fx.update(appsync.NotificationsFetchedMsg{
		UserID:        ann.ID,
		Notifications: append([]model.Notification{fresh}, testutil.Notifications()...),
	})

	assert.Equal(t, 3, fx.m.App().Notifications.Unread())
	require.NotNil(t, fx.m.Toast())
	assert.Equal(t, "1 new notification", fx.m.Toast().Text)
	assert.Contains(t, fx.m.View(), "3 unread")
}

func TestNotificationsFetched_IgnoresOtherUser(t *testing.T) {
	fx := newFixture(t, testToken)
	fx.signIn(t)

	cmd := fx.update(appsync.NotificationsFetchedMsg{
		UserID:        "someone-else",
		Notifications: testutil.Notifications(),
		Initial:       true,
	})

	assert.Nil(t, cmd)
	assert.Zero(t, fx.m.App().Notifications.Len())
}

func TestNotificationsFetched_ErrorKeepsStore(t *testing.T) {
	fx := newFixture(t, testToken)
	fx.seed(t)

	fx.update(appsync.NotificationsFetchedMsg{UserID: ann.ID, Error: errors.New("boom")})

	assert.Equal(t, 3, fx.m.App().Notifications.Len())
	require.NotNil(t, fx.m.Toast())
	assert.Equal(t, state.ToastError, fx.m.Toast().Level)
}

func TestPollerAuthError_LogsOut(t *testing.T) {
	fx := newFixture(t, testToken)
	fx.seed(t)

	fx.update(appsync.NotificationsFetchedMsg{
		UserID:    ann.ID,
		Error:     errors.New("401"),
		AuthError: &appsync.AuthErrorMsg{Message: sessionExpiredText},
	})

	assert.Equal(t, ViewAuth, fx.m.CurrentView())
	assert.False(t, fx.m.App().Auth.IsAuthenticated())
	assert.Zero(t, fx.m.App().Notifications.Len())
	assert.False(t, fx.m.poller.Running())
	require.NotNil(t, fx.m.Toast())
	assert.Equal(t, sessionExpiredText, fx.m.Toast().Text)

	_, err := fx.vault.LoadToken()
	assert.ErrorIs(t, err, credential.ErrNotFound)

	cached, err := fx.store.LoadSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestAccept_RemovesInvitationOnSuccess(t *testing.T) {
	fx := newFixture(t, testToken)
	fx.seed(t)
	n, ok := fx.m.App().Notifications.Get("n1")
	require.True(t, ok)

	cmd := fx.update(notificationsview.AcceptMsg{Notification: n})
	require.NotNil(t, cmd)
	assert.True(t, fx.m.tracker.Busy("n1"))

	dup := fx.update(notificationsview.AcceptMsg{Notification: n})
	assert.Nil(t, dup, "second accept while in flight is ignored")

	fx.update(cmd())

	_, ok = fx.m.App().Notifications.Get("n1")
	assert.False(t, ok)
	assert.False(t, fx.m.tracker.Busy("n1"))
	require.NotNil(t, fx.m.Toast())
	assert.Equal(t, "Invitation accepted", fx.m.Toast().Text)
	assert.Equal(t, 1, fx.srv.CallCount(http.MethodPost, "/team/invitations/iv1/accept"))
}

func TestAccept_KeepsInvitationOnFailure(t *testing.T) {
	fx := newFixture(t, testToken)
	fx.seed(t)
	fx.srv.Fail(http.MethodPost, "/team/invitations/iv1/accept", http.StatusInternalServerError, "invitation expired")
	n, _ := fx.m.App().Notifications.Get("n1")

	cmd := fx.update(notificationsview.AcceptMsg{Notification: n})
	require.NotNil(t, cmd)
	fx.update(cmd())

	_, ok := fx.m.App().Notifications.Get("n1")
	assert.True(t, ok)
	assert.False(t, fx.m.tracker.Busy("n1"))
	require.NotNil(t, fx.m.Toast())
	assert.Equal(t, state.ToastError, fx.m.Toast().Level)
	assert.Equal(t, "invitation expired", fx.m.Toast().Text)
}

func TestReject_RemovesLocallyWithoutBackendCall(t *testing.T) {
	fx := newFixture(t, testToken)
	fx.seed(t)
	n, _ := fx.m.App().Notifications.Get("n1")

	cmd := fx.update(notificationsview.RejectMsg{Notification: n})
	require.NotNil(t, cmd)
	fx.update(cmd())

	_, ok := fx.m.App().Notifications.Get("n1")
	assert.False(t, ok)
	assert.Equal(t, "Invitation rejected", fx.m.Toast().Text)
	assert.Zero(t, fx.srv.CallCount(http.MethodPost, "/team/invitations/iv1/accept"))
}

func TestMarkRead_IsOptimistic(t *testing.T) {
	fx := newFixture(t, testToken)
	fx.seed(t)

	cmd := fx.update(notificationsview.MarkReadMsg{ID: "n2"})
	require.NotNil(t, cmd)
	assert.Equal(t, 1, fx.m.App().Notifications.Unread(), "marked before the backend answers")

	fx.update(cmd())
	n, _ := fx.m.App().Notifications.Get("n2")
	assert.True(t, n.IsRead)
	assert.Nil(t, fx.m.Toast())
}

func TestMarkRead_RollsBackOnFailure(t *testing.T) {
	fx := newFixture(t, testToken)
	fx.seed(t)
	fx.srv.Fail(http.MethodPost, "/notifications/n2/read", http.StatusInternalServerError, "down")

	cmd := fx.update(notificationsview.MarkReadMsg{ID: "n2"})
	require.NotNil(t, cmd)
	assert.Equal(t, 1, fx.m.App().Notifications.Unread())

	fx.update(cmd())

	assert.Equal(t, 2, fx.m.App().Notifications.Unread())
	require.NotNil(t, fx.m.Toast())
	assert.Equal(t, state.ToastError, fx.m.Toast().Level)
}

func TestMarkRead_FailureKeepsAcceptedInvitationResolved(t *testing.T) {
	fx := newFixture(t, testToken)
	fx.seed(t)
	fx.srv.Fail(http.MethodPost, "/notifications/n2/read", http.StatusInternalServerError, "down")
	n1, _ := fx.m.App().Notifications.Get("n1")

	markCmd := fx.update(notificationsview.MarkReadMsg{ID: "n2"})
	require.NotNil(t, markCmd)
	acceptCmd := fx.update(notificationsview.AcceptMsg{Notification: n1})
	require.NotNil(t, acceptCmd)

	fx.update(acceptCmd())
	_, ok := fx.m.App().Notifications.Get("n1")
	require.False(t, ok)

	fx.update(markCmd())

	_, ok = fx.m.App().Notifications.Get("n1")
	assert.False(t, ok, "accepted invitation stays resolved")
	n2, ok := fx.m.App().Notifications.Get("n2")
	require.True(t, ok)
	assert.False(t, n2.IsRead)
}

func TestPoll_DoesNotBringBackResolvedInvitation(t *testing.T) {
	fx := newFixture(t, testToken)
	fx.seed(t)
	n1, _ := fx.m.App().Notifications.Get("n1")

	cmd := fx.update(notificationsview.RejectMsg{Notification: n1})
	require.NotNil(t, cmd)
	fx.update(cmd())
	fx.update(ui.ToastMsg{})

	fx.update(appsync.NotificationsFetchedMsg{
		UserID:        ann.ID,
		Notifications: testutil.Notifications(),
	})

	_, ok := fx.m.App().Notifications.Get("n1")
	assert.False(t, ok)
	assert.Nil(t, fx.m.Toast(), "nothing new to announce")
}

func TestLogout_ForgetsResolvedInvitations(t *testing.T) {
	fx := newFixture(t, testToken)
	fx.seed(t)
	n1, _ := fx.m.App().Notifications.Get("n1")
	fx.update(fx.update(notificationsview.RejectMsg{Notification: n1})())

	fx.update(settings.LogoutMsg{})
	fx.seed(t)

	_, ok := fx.m.App().Notifications.Get("n1")
	assert.True(t, ok)
}

func TestMarkedRead_AuthErrorLogsOut(t *testing.T) {
	fx := newFixture(t, testToken)
	fx.seed(t)

	fx.update(invite.MarkedReadMsg{
		NotificationID: "n2",
		Err:            &api.AuthError{Message: "unauthorized"},
	})

	assert.Equal(t, ViewAuth, fx.m.CurrentView())
}

func TestThemeToggle_PersistsConfig(t *testing.T) {
	fx := newFixture(t, testToken)
	fx.signIn(t)
	start := fx.m.App().Theme.Current

	fx.update(settings.ThemeToggledMsg{})

	assert.NotEqual(t, start, fx.m.App().Theme.Current)
	saved, err := model.LoadConfig(fx.cfgPath)
	require.NoError(t, err)
	assert.Equal(t, fx.m.App().Theme.Current, saved.Display.Theme)

	fx.update(settings.ThemeToggledMsg{})
	assert.Equal(t, start, fx.m.App().Theme.Current)
}

func TestKeyPress_ClearsToast(t *testing.T) {
	fx := newFixture(t, testToken)
	fx.signIn(t)

	fx.update(ui.ToastMsg{Toast: state.InfoToast("hello")})
	require.NotNil(t, fx.m.Toast())

	fx.update(keyPress("j"))
	assert.Nil(t, fx.m.Toast())
}

func TestNumberKeys_SwitchViews(t *testing.T) {
	fx := newFixture(t, testToken)
	fx.signIn(t)

	fx.update(keyPress("2"))
	assert.Equal(t, ViewProjects, fx.m.CurrentView())

	fx.update(keyPress("5"))
	assert.Equal(t, ViewNotifications, fx.m.CurrentView())

	fx.update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, ViewInvite, fx.m.CurrentView())
	assert.True(t, fx.m.capturing(), "opening invite focuses the search box")

	// Digits go to the search box while it has focus.
	fx.update(keyPress("1"))
	assert.Equal(t, ViewInvite, fx.m.CurrentView())
}

func TestHelp_OpensAndCloses(t *testing.T) {
	fx := newFixture(t, testToken)
	fx.signIn(t)

	fx.update(keyPress("?"))
	assert.Equal(t, ViewHelp, fx.m.CurrentView())

	fx.update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewDashboard, fx.m.CurrentView())
}

func TestCommandPalette(t *testing.T) {
	fx := newFixture(t, testToken)
	fx.signIn(t)

	fx.update(keyPress(":"))
	assert.Equal(t, ViewCommand, fx.m.CurrentView())

	fx.update(command.CommandMsg("teams"))
	assert.Equal(t, ViewTeams, fx.m.CurrentView())

	fx.update(keyPress(":"))
	fx.update(command.CommandMsg("bogus"))
	assert.Equal(t, ViewTeams, fx.m.CurrentView())
	require.NotNil(t, fx.m.Toast())
	assert.Equal(t, "Unknown command: bogus", fx.m.Toast().Text)

	fx.update(keyPress(":"))
	fx.update(command.CancelMsg{})
	assert.Equal(t, ViewTeams, fx.m.CurrentView())
}

func TestLogoutKey_ReturnsToSignIn(t *testing.T) {
	fx := newFixture(t, testToken)
	fx.seed(t)

	fx.update(keyPress("L"))

	assert.Equal(t, ViewAuth, fx.m.CurrentView())
	assert.False(t, fx.m.App().Auth.IsAuthenticated())
	assert.Zero(t, fx.m.App().Notifications.Len())
	_, err := fx.vault.LoadToken()
	assert.ErrorIs(t, err, credential.ErrNotFound)
}

func signedToken(t *testing.T, subject string, expires time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: subject, ExpiresAt: jwt.NewNumericDate(expires)}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func TestRestoreSession(t *testing.T) {
	token := signedToken(t, ann.Email, time.Now().Add(time.Hour))
	fx := newFixture(t, token)
	fx.m.client.SetToken(token)
	fx.m.app = state.NewApp(token, model.ThemeDark)

	msg := fx.m.restoreSession()()
	require.IsType(t, userLoadedMsg{}, msg)

	fx.update(msg)
	assert.Equal(t, ViewDashboard, fx.m.CurrentView())
	assert.Equal(t, ann.ID, fx.m.App().Auth.UserID())
}

func TestRestoreSession_FallsBackToCachedProfile(t *testing.T) {
	token := signedToken(t, ann.Email, time.Now().Add(time.Hour))
	fx := newFixture(t, token)
	fx.m.client.SetToken(token)
	fx.m.app = state.NewApp(token, model.ThemeDark)
	require.NoError(t, fx.store.SaveSession(context.Background(), ann))
	fx.srv.Fail(http.MethodGet, "/user/"+ann.Email, http.StatusBadGateway, "upstream down")

	msg := fx.m.restoreSession()()

	require.IsType(t, userLoadedMsg{}, msg)
	assert.Equal(t, ann.ID, msg.(userLoadedMsg).user.ID)
}

func TestRestoreSession_ExpiredToken(t *testing.T) {
	token := signedToken(t, ann.Email, time.Now().Add(-time.Minute))
	fx := newFixture(t, token)
	fx.m.app = state.NewApp(token, model.ThemeDark)
	require.NoError(t, fx.vault.SaveToken(token))

	msg := fx.m.restoreSession()()
	require.IsType(t, sessionFailedMsg{}, msg)
	assert.ErrorIs(t, msg.(sessionFailedMsg).err, api.ErrTokenExpired)

	fx.update(msg)
	assert.Equal(t, ViewAuth, fx.m.CurrentView())
	require.NotNil(t, fx.m.Toast())
	assert.Equal(t, sessionExpiredText, fx.m.Toast().Text)
	_, err := fx.vault.LoadToken()
	assert.ErrorIs(t, err, credential.ErrNotFound)
}
