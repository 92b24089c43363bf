package invite

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/nhle/matchbox/internal/api"
	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/state"
)

// ResultsMsg carries the answer to a user search made for UserID.
type ResultsMsg struct {
	UserID  string
	Query   string
	Results []model.UserSearchResult
	Err     error
}

// InvitedMsg carries the answer to an invite. Snapshot holds the invited
// result's status from before the optimistic PENDING mark.
type InvitedMsg struct {
	UserID   string
	Email    string
	Message  string
	Snapshot state.Snapshot
	Err      error
}

// Searcher runs user searches and platform invites.
type Searcher struct {
	users   api.UserService
	invites api.InvitationService
	log     logrus.FieldLogger
}

// NewSearcher creates a Searcher.
func NewSearcher(users api.UserService, invites api.InvitationService, log logrus.FieldLogger) *Searcher {
	return &Searcher{users: users, invites: invites, log: log}
}

// Search looks up users matching query on behalf of userID. A blank query
// returns no results without asking the backend. On failure the result
// list is empty and the error is returned.
func (s *Searcher) Search(ctx context.Context, query, userID string) ([]model.UserSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	results, err := s.users.SearchUsers(ctx, query, userID)
	if err != nil {
		s.log.WithField("query", query).WithError(err).Error("user search failed")
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"query":   query,
		"results": len(results),
	}).Debug("user search settled")
	return results, nil
}

// Invite invites email to the platform on behalf of inviterID and returns
// the backend's confirmation message.
func (s *Searcher) Invite(ctx context.Context, inviterID, email string) (string, error) {
	msg, err := s.invites.InviteToPlatform(ctx, inviterID, email)
	if err != nil {
		s.log.WithField("email", email).WithError(err).Error("invite failed")
		return "", err
	}
	s.log.WithField("email", email).Info("invite sent")
	return msg, nil
}

// SearchCmd runs Search in the background.
func (s *Searcher) SearchCmd(query, userID string) tea.Cmd {
	return func() tea.Msg {
		results, err := s.Search(context.Background(), query, userID)
		return ResultsMsg{UserID: userID, Query: query, Results: results, Err: err}
	}
}

// InviteCmd runs Invite in the background.
func (s *Searcher) InviteCmd(inviterID, email string, snapshot state.Snapshot) tea.Cmd {
	return func() tea.Msg {
		msg, err := s.Invite(context.Background(), inviterID, email)
		return InvitedMsg{UserID: inviterID, Email: email, Message: msg, Snapshot: snapshot, Err: err}
	}
}
