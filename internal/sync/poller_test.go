package sync_test

import (
	"net/http"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/matchbox/internal/api"
	"github.com/nhle/matchbox/internal/api/apitest"
	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/state"
	"github.com/nhle/matchbox/internal/sync"
	"github.com/nhle/matchbox/internal/testutil"
)

const token = "tok"

// next runs cmd with a deadline so a missing result fails the test
// instead of hanging it.
func next(t *testing.T, cmd tea.Cmd) sync.NotificationsFetchedMsg {
	t.Helper()
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	select {
	case msg := <-done:
		out, ok := msg.(sync.NotificationsFetchedMsg)
		require.True(t, ok, "unexpected message %T", msg)
		return out
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for poll result")
	}
	return sync.NotificationsFetchedMsg{}
}

func TestPoller_InitialThenMerge(t *testing.T) {
	srv := apitest.NewServer(t, token)
	srv.SetNotifications("u1", testutil.Notifications())
	client := api.NewClient(srv.URL, token, api.WithLogger(testutil.Logger()))
	cache := testutil.NewTestStore(t)

	p := sync.New(client, cache, time.Hour, testutil.Logger())
	t.Cleanup(p.Stop)

	start := p.Start("u1")
	require.NotNil(t, start)
	assert.Nil(t, p.Start("u1"), "second Start is a no-op")

	first := next(t, start)
	require.NoError(t, first.Error)
	assert.True(t, first.Initial)

	store, added := first.Apply(state.Notifications{}.Add(model.Notification{ID: "stale"}))
	assert.Zero(t, added)
	assert.Equal(t, 3, store.Len(), "first fetch replaces the store")
	_, ok := store.Get("stale")
	assert.False(t, ok)

	cached, err := cache.CachedNotifications(t.Context(), "u1")
	require.NoError(t, err)
	assert.Len(t, cached, 3)

	srv.PushNotification("u1", model.Notification{ID: "n9", Type: model.NotificationDueDate})
	p.Refresh()

	second := next(t, p.WaitForNextResult())
	require.NoError(t, second.Error)
	assert.False(t, second.Initial)

	store, added = second.Apply(store.MarkRead("n2"))
	assert.Equal(t, 1, added)
	assert.Equal(t, 4, store.Len())
	assert.Equal(t, "n9", store.Items()[0].ID)
	n2, _ := store.Get("n2")
	assert.True(t, n2.IsRead)

	assert.Equal(t, sync.SyncIdle, p.Status().State)
	assert.False(t, p.Status().LastSync.IsZero())
}

func TestFetchedApply_SkipsResolved(t *testing.T) {
	store := state.NewNotifications(testutil.Notifications()).Resolve("n1")

	for _, initial := range []bool{true, false} {
		msg := sync.NotificationsFetchedMsg{UserID: "u1", Notifications: testutil.Notifications(), Initial: initial}
		after, added := msg.Apply(store)
		assert.Zero(t, added)
		_, ok := after.Get("n1")
		assert.False(t, ok, "initial=%v", initial)
	}
}

func TestPoller_AuthError(t *testing.T) {
	srv := apitest.NewServer(t, token)
	client := api.NewClient(srv.URL, "expired", api.WithLogger(testutil.Logger()))

	p := sync.New(client, nil, time.Hour, testutil.Logger())
	t.Cleanup(p.Stop)

	start := p.Start("u1")
	msg := next(t, start)

	require.Error(t, msg.Error)
	require.NotNil(t, msg.AuthError)
	assert.Equal(t, sync.SyncError, p.Status().State)

	store := state.NewNotifications(testutil.Notifications())
	after, added := msg.Apply(store)
	assert.Zero(t, added)
	assert.Equal(t, store.Items(), after.Items())
}

func TestPoller_ServerErrorIsNotAuth(t *testing.T) {
	srv := apitest.NewServer(t, token)
	srv.Fail(http.MethodGet, "/notifications", http.StatusInternalServerError, "down")
	client := api.NewClient(srv.URL, token, api.WithLogger(testutil.Logger()))

	p := sync.New(client, nil, time.Hour, testutil.Logger())
	t.Cleanup(p.Stop)

	start := p.Start("u1")
	msg := next(t, start)
	require.Error(t, msg.Error)
	assert.Nil(t, msg.AuthError)
}

func TestPoller_RestartResetsInitial(t *testing.T) {
	srv := apitest.NewServer(t, token)
	srv.SetNotifications("u1", testutil.Notifications())
	client := api.NewClient(srv.URL, token, api.WithLogger(testutil.Logger()))

	p := sync.New(client, nil, time.Hour, testutil.Logger())
	t.Cleanup(p.Stop)

	start := p.Start("u1")
	first := next(t, start)
	assert.True(t, first.Initial)

	p.Stop()
	assert.False(t, p.Running())

	start = p.Start("u1")
	again := next(t, start)
	assert.True(t, again.Initial)
}
