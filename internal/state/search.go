package state

import (
	"strings"

	"github.com/nhle/matchbox/internal/model"
)

// Snapshot is the status a result had before an optimistic invite.
type Snapshot struct {
	Email  string
	Status model.InvitationStatus
}

// Search is the user search panel state. Results keep backend order.
type Search struct {
	Query   string
	Results []model.UserSearchResult
	Loading bool
	Err     error
}

// Settle records the query a fetch is about to run for. A blank query
// clears the results and needs no fetch.
func (s Search) Settle(query string) Search {
	query = strings.TrimSpace(query)
	if query == "" {
		return Search{}
	}
	s.Query = query
	s.Loading = true
	s.Err = nil
	return s
}

// Replace swaps in a fetched result set wholesale.
func (s Search) Replace(results []model.UserSearchResult) Search {
	s.Results = append([]model.UserSearchResult(nil), results...)
	s.Loading = false
	s.Err = nil
	return s
}

// Fail clears the results after a failed fetch.
func (s Search) Fail(err error) Search {
	s.Results = nil
	s.Loading = false
	s.Err = err
	return s
}

// BeginInvite marks the result with email as PENDING and returns its
// status from before. ok is false when no result matches.
func (s Search) BeginInvite(email string) (next Search, snap Snapshot, ok bool) {
	snap = Snapshot{Email: email}
	results := append([]model.UserSearchResult(nil), s.Results...)
	for i := range results {
		if results[i].Email == email {
			if !ok {
				snap.Status = results[i].InvitationStatus
			}
			results[i].InvitationStatus = model.InvitationPending
			ok = true
		}
	}
	if !ok {
		return s, snap, false
	}
	s.Results = results
	return s, snap, true
}

// Rollback puts back the status saved by BeginInvite. Only a result that
// is still PENDING under the same email is touched; results from a newer
// query and other pending invites are left alone.
func (s Search) Rollback(snap Snapshot) Search {
	results := append([]model.UserSearchResult(nil), s.Results...)
	for i := range results {
		if results[i].Email == snap.Email && results[i].InvitationStatus == model.InvitationPending {
			results[i].InvitationStatus = snap.Status
		}
	}
	s.Results = results
	return s
}

// Find returns the result with email.
func (s Search) Find(email string) (model.UserSearchResult, bool) {
	for _, r := range s.Results {
		if r.Email == email {
			return r, true
		}
	}
	return model.UserSearchResult{}, false
}
