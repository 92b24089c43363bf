package invite_test

import (
	"net/http"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/matchbox/internal/api/apitest"
	"github.com/nhle/matchbox/internal/invite"
	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/state"
	"github.com/nhle/matchbox/internal/testutil"
)

type flowFixture struct {
	srv      *apitest.Server
	clock    *manualClock
	searcher *invite.Searcher
	flow     invite.Flow
}

func newFlow(t *testing.T) *flowFixture {
	t.Helper()
	srv, client := newBackend(t)
	srv.SetSearchResults("ann", []model.UserSearchResult{
		{ID: "u1", FullName: "Anna", Email: "anna@x.io", InvitationStatus: model.InvitationNone},
	})

	clock := &manualClock{}
	d := invite.NewDebouncer(500*time.Millisecond, invite.WithClock(clock))
	t.Cleanup(d.Stop)

	searcher := invite.NewSearcher(client, client, testutil.Logger())
	return &flowFixture{
		srv:      srv,
		clock:    clock,
		searcher: searcher,
		flow:     invite.NewFlow(searcher, d, "me"),
	}
}

// search types query, lets it settle and applies the backend's answer.
func (fx *flowFixture) search(t *testing.T, query string) *state.Toast {
	t.Helper()
	fx.flow.Type(query)
	fx.clock.AdvanceTo(fx.clock.now + 500*time.Millisecond)

	settled, ok := fx.flow.Init()().(invite.SettledMsg)
	require.True(t, ok)
	require.Equal(t, query, settled.Value)

	var cmd tea.Cmd
	fx.flow, cmd = fx.flow.Settled(settled)
	require.NotNil(t, cmd)
	require.True(t, fx.flow.Search.Loading)

	msg := fx.searcher.SearchCmd(fx.flow.Search.Query, "me")().(invite.ResultsMsg)
	var toast *state.Toast
	fx.flow, toast = fx.flow.Results(msg)
	return toast
}

func TestFlow_InviteFailureRollsBack(t *testing.T) {
	fx := newFlow(t)
	fx.srv.Fail(http.MethodPost, "/team/invite", http.StatusInternalServerError, "mail server down")

	require.Nil(t, fx.search(t, "ann"))
	require.Len(t, fx.flow.Search.Results, 1)
	assert.Equal(t, model.InvitationNone, fx.flow.Search.Results[0].InvitationStatus)

	f, cmd, toast := fx.flow.Invite("anna@x.io")
	require.Nil(t, toast)
	require.NotNil(t, cmd)
	assert.Equal(t, model.InvitationPending, f.Search.Results[0].InvitationStatus,
		"PENDING is set before the network call runs")
	assert.Zero(t, fx.srv.CallCount(http.MethodPost, "/team/invite"))

	invited := cmd().(invite.InvitedMsg)
	require.Error(t, invited.Err)

	f, toast = f.Invited(invited)
	require.NotNil(t, toast)
	assert.Equal(t, state.ToastError, toast.Level)
	assert.Equal(t, "mail server down", toast.Text)
	assert.Equal(t, model.InvitationNone, f.Search.Results[0].InvitationStatus)

	calls := fx.srv.Calls(http.MethodPost, "/team/invite")
	require.Len(t, calls, 1)
	assert.Equal(t, "me", calls[0].Query.Get("inviterId"))
	assert.Equal(t, "anna@x.io", calls[0].Query.Get("email"))
}

func TestFlow_InviteFailureKeepsNewerResults(t *testing.T) {
	fx := newFlow(t)
	fx.srv.SetSearchResults("bob", []model.UserSearchResult{
		{ID: "u9", FullName: "Bob", Email: "bob@x.io", InvitationStatus: model.InvitationNone},
	})
	fx.srv.Fail(http.MethodPost, "/team/invite", http.StatusInternalServerError, "down")
	require.Nil(t, fx.search(t, "ann"))

	var cmd tea.Cmd
	fx.flow, cmd, _ = fx.flow.Invite("anna@x.io")
	require.NotNil(t, cmd)
	require.Nil(t, fx.search(t, "bob"))

	var toast *state.Toast
	fx.flow, toast = fx.flow.Invited(cmd().(invite.InvitedMsg))

	require.NotNil(t, toast)
	assert.Equal(t, "bob", fx.flow.Search.Query)
	require.Len(t, fx.flow.Search.Results, 1)
	assert.Equal(t, "bob@x.io", fx.flow.Search.Results[0].Email)
}

func TestFlow_InviteSuccessKeepsPending(t *testing.T) {
	fx := newFlow(t)
	require.Nil(t, fx.search(t, "ann"))

	f, cmd, _ := fx.flow.Invite("anna@x.io")
	require.NotNil(t, cmd)

	f, toast := f.Invited(cmd().(invite.InvitedMsg))
	require.NotNil(t, toast)
	assert.Equal(t, state.ToastSuccess, toast.Level)
	assert.Equal(t, "Invitation sent to anna@x.io", toast.Text)
	assert.Equal(t, model.InvitationPending, f.Search.Results[0].InvitationStatus)

	_, cmd, toast = f.Invite("anna@x.io")
	assert.Nil(t, cmd, "a pending user cannot be invited again")
	require.NotNil(t, toast)
	assert.Equal(t, "Anna is already pending", toast.Text)
}

func TestFlow_SearchFailureClearsResults(t *testing.T) {
	fx := newFlow(t)
	require.Nil(t, fx.search(t, "ann"))
	require.Len(t, fx.flow.Search.Results, 1)

	fx.srv.Fail(http.MethodGet, "/user/search", http.StatusServiceUnavailable, "")
	toast := fx.search(t, "anna")

	require.NotNil(t, toast)
	assert.Equal(t, state.ToastError, toast.Level)
	assert.Empty(t, fx.flow.Search.Results)
	assert.Error(t, fx.flow.Search.Err)
}

func TestFlow_BlankQuerySkipsBackend(t *testing.T) {
	fx := newFlow(t)

	fx.flow.Type("   ")
	fx.clock.AdvanceTo(time.Second)
	settled := fx.flow.Init()().(invite.SettledMsg)

	f, cmd := fx.flow.Settled(settled)
	require.NotNil(t, cmd)
	assert.Empty(t, f.Search.Query)
	assert.False(t, f.Search.Loading)

	results, err := fx.searcher.Search(t.Context(), "  ", "me")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, fx.srv.CallCount(http.MethodGet, "/user/search"))
}

func TestFlow_UnknownEmailIsIgnored(t *testing.T) {
	fx := newFlow(t)
	require.Nil(t, fx.search(t, "ann"))

	f, cmd, toast := fx.flow.Invite("nobody@x.io")
	assert.Nil(t, cmd)
	assert.Nil(t, toast)
	assert.Equal(t, fx.flow.Search.Results, f.Search.Results)
}
