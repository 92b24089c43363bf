package state_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/state"
)

func annResults() []model.UserSearchResult {
	return []model.UserSearchResult{
		{ID: "u1", FullName: "Anna", Email: "anna@x.io", InvitationStatus: model.InvitationNone},
		{ID: "u2", FullName: "Annabel", Email: "annabel@x.io", InvitationStatus: model.InvitationAccepted},
	}
}

func TestSearch_SettleBlankClears(t *testing.T) {
	s := state.Search{}.Settle("ann").Replace(annResults())
	require.Len(t, s.Results, 2)

	cleared := s.Settle("   ")
	assert.Empty(t, cleared.Query)
	assert.Empty(t, cleared.Results)
	assert.False(t, cleared.Loading)
}

func TestSearch_ReplaceKeepsBackendOrder(t *testing.T) {
	s := state.Search{}.Settle(" ann ")
	assert.Equal(t, "ann", s.Query)
	assert.True(t, s.Loading)

	reversed := []model.UserSearchResult{annResults()[1], annResults()[0]}
	s = s.Replace(reversed)
	assert.False(t, s.Loading)
	assert.Equal(t, "u2", s.Results[0].ID)
	assert.Equal(t, "u1", s.Results[1].ID)

	s = s.Replace(annResults()[:1])
	assert.Len(t, s.Results, 1, "results are replaced, not merged")
}

func TestSearch_Fail(t *testing.T) {
	s := state.Search{}.Settle("ann").Replace(annResults())
	s = s.Settle("anna").Fail(errors.New("boom"))

	assert.Empty(t, s.Results)
	assert.EqualError(t, s.Err, "boom")
	assert.False(t, s.Loading)
}

func TestSearch_BeginInviteAndRollback(t *testing.T) {
	s := state.Search{}.Settle("ann").Replace(annResults())

	next, snap, ok := s.BeginInvite("anna@x.io")
	require.True(t, ok)

	got, _ := next.Find("anna@x.io")
	assert.Equal(t, model.InvitationPending, got.InvitationStatus)
	assert.False(t, got.CanInvite())

	orig, _ := s.Find("anna@x.io")
	assert.Equal(t, model.InvitationNone, orig.InvitationStatus, "receiver must not change")

	restored := next.Rollback(snap)
	got, _ = restored.Find("anna@x.io")
	assert.Equal(t, model.InvitationNone, got.InvitationStatus)
	assert.Equal(t, s.Results, restored.Results)
}

func TestSearch_RollbackTouchesOnlyTarget(t *testing.T) {
	s := state.Search{}.Settle("ann").Replace(append(annResults(),
		model.UserSearchResult{ID: "u3", FullName: "Annie", Email: "annie@x.io"}))

	s, annaSnap, _ := s.BeginInvite("anna@x.io")
	s, _, _ = s.BeginInvite("annie@x.io")

	restored := s.Rollback(annaSnap)
	anna, _ := restored.Find("anna@x.io")
	annie, _ := restored.Find("annie@x.io")
	assert.Equal(t, model.InvitationNone, anna.InvitationStatus)
	assert.Equal(t, model.InvitationPending, annie.InvitationStatus)

	newer := s.Settle("bob").Replace([]model.UserSearchResult{{ID: "u9", FullName: "Bob", Email: "bob@x.io"}})
	after := newer.Rollback(annaSnap)
	assert.Equal(t, "bob", after.Query)
	assert.Equal(t, newer.Results, after.Results)
}

func TestSearch_BeginInviteUnknownEmail(t *testing.T) {
	s := state.Search{}.Settle("ann").Replace(annResults())

	next, _, ok := s.BeginInvite("nobody@x.io")
	assert.False(t, ok)
	assert.Equal(t, s.Results, next.Results)
}
