package invite_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/matchbox/internal/api"
	"github.com/nhle/matchbox/internal/api/apitest"
	"github.com/nhle/matchbox/internal/invite"
	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/state"
	"github.com/nhle/matchbox/internal/testutil"
)

const token = "tok"

func newBackend(t *testing.T) (*apitest.Server, *api.Client) {
	t.Helper()
	srv := apitest.NewServer(t, token)
	return srv, api.NewClient(srv.URL, token, api.WithLogger(testutil.Logger()))
}

func inviteNotifications() []model.Notification {
	return []model.Notification{
		{ID: "n1", Type: model.NotificationInvite, InvitationID: "iv1", Title: "Join Core"},
		{ID: "n2", Type: model.NotificationDueDate, Title: "Due soon"},
	}
}

func TestHandler_AcceptRemovesOnSuccess(t *testing.T) {
	srv, client := newBackend(t)
	srv.SetNotifications("u1", inviteNotifications())
	h := invite.NewHandler(client, testutil.Logger())

	store := state.NewNotifications(inviteNotifications())
	n, _ := store.Get("n1")

	msg := h.AcceptCmd(n, "u1")()
	res, ok := msg.(invite.ResolvedMsg)
	require.True(t, ok)
	assert.True(t, res.Resolved())
	assert.Equal(t, invite.Accepting, res.Action)

	store = res.Apply(store)
	_, found := store.Get("n1")
	assert.False(t, found)
	assert.Equal(t, 1, store.Len())

	calls := srv.Calls(http.MethodPost, "/team/invitations/iv1/accept")
	require.Len(t, calls, 1)
	assert.Equal(t, "u1", calls[0].Query.Get("receiverId"))
}

func TestHandler_AcceptFailureLeavesStoreUntouched(t *testing.T) {
	srv, client := newBackend(t)
	srv.Fail(http.MethodPost, "/team/invitations/iv1/accept", http.StatusInternalServerError, "boom")
	h := invite.NewHandler(client, testutil.Logger())

	store := state.NewNotifications(inviteNotifications())
	n, _ := store.Get("n1")

	res := h.Accept(t.Context(), n, "u1")
	require.Error(t, res.Err)
	assert.False(t, res.Resolved())
	assert.Equal(t, http.StatusInternalServerError, api.StatusCode(res.Err))

	after := res.Apply(store)
	assert.Equal(t, store.Items(), after.Items())
}

func TestHandler_AcceptRejectsBadInput(t *testing.T) {
	srv, client := newBackend(t)
	h := invite.NewHandler(client, testutil.Logger())

	tests := []struct {
		name   string
		n      model.Notification
		userID string
		want   error
	}{
		{"not an invite", model.Notification{ID: "n2", Type: model.NotificationDueDate}, "u1", invite.ErrNotInvitation},
		{"missing invitation id", model.Notification{ID: "n3", Type: model.NotificationInvite}, "u1", model.ErrInviteWithoutInvitation},
		{"no user", model.Notification{ID: "n1", Type: model.NotificationInvite, InvitationID: "iv1"}, "", invite.ErrNoUser},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := h.Accept(t.Context(), tc.n, tc.userID)
			assert.ErrorIs(t, res.Err, tc.want)
		})
	}
	assert.Zero(t, srv.CallCount(http.MethodPost, "/team/invitations/iv1/accept"))
}

func TestHandler_RejectIsLocal(t *testing.T) {
	srv, client := newBackend(t)
	h := invite.NewHandler(client, testutil.Logger())

	store := state.NewNotifications(inviteNotifications())
	n, _ := store.Get("n1")

	res := h.Reject(n)
	assert.True(t, res.Resolved())
	assert.Equal(t, invite.Rejecting, res.Action)
	assert.Equal(t, 1, res.Apply(store).Len())

	msg := h.RejectCmd(n)()
	assert.IsType(t, invite.ResolvedMsg{}, msg)

	other, _ := store.Get("n2")
	assert.ErrorIs(t, h.Reject(other).Err, invite.ErrNotInvitation)

	for _, c := range []string{"/team/invitations/iv1/accept", "/notifications/n1/read"} {
		assert.Zero(t, srv.CallCount(http.MethodPost, c))
	}
}

func TestHandler_MarkRead(t *testing.T) {
	srv, client := newBackend(t)
	srv.SetNotifications("u1", inviteNotifications())
	h := invite.NewHandler(client, testutil.Logger())

	msg := h.MarkReadCmd("n2")().(invite.MarkedReadMsg)
	require.NoError(t, msg.Err)
	assert.Equal(t, "n2", msg.NotificationID)

	srv.Fail(http.MethodPost, "/notifications/n1/read", http.StatusBadGateway, "")
	msg = h.MarkReadCmd("n1")().(invite.MarkedReadMsg)
	require.Error(t, msg.Err)
	assert.Equal(t, "n1", msg.NotificationID)
}

func TestTracker(t *testing.T) {
	tr := invite.NewTracker()
	assert.Equal(t, invite.Presented, tr.Phase("n1"))
	assert.False(t, tr.Busy("n1"))

	require.True(t, tr.Begin("n1", invite.Accepting))
	assert.True(t, tr.Busy("n1"))
	assert.False(t, tr.Begin("n1", invite.Rejecting), "second action while one is in flight")
	assert.False(t, tr.Begin("n2", invite.Presented))
	assert.Equal(t, "accepting", tr.Phase("n1").String())

	tr.Finish("n1")
	assert.Equal(t, invite.Presented, tr.Phase("n1"))
	assert.True(t, tr.Begin("n1", invite.Rejecting))
}
