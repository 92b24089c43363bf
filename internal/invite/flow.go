package invite

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/nhle/matchbox/internal/api"
	"github.com/nhle/matchbox/internal/state"
)

// Flow drives the search-and-invite panel. Its methods run on the Update
// loop: state changes happen immediately and network work is returned as
// commands.
type Flow struct {
	Search state.Search

	searcher *Searcher
	debounce *Debouncer
	userID   string
}

// NewFlow creates a Flow searching on behalf of userID.
func NewFlow(searcher *Searcher, debounce *Debouncer, userID string) Flow {
	return Flow{searcher: searcher, debounce: debounce, userID: userID}
}

// SetUser changes the user searches and invites are made for.
func (f Flow) SetUser(userID string) Flow {
	f.userID = userID
	return f
}

// Init starts listening for settled queries.
func (f Flow) Init() tea.Cmd {
	return f.debounce.Wait()
}

// Type records a keystroke. Only the query that survives the debounce
// wait reaches Settled.
func (f Flow) Type(query string) {
	f.debounce.Trigger(query)
}

// Settled starts a search for a settled query.
func (f Flow) Settled(msg SettledMsg) (Flow, tea.Cmd) {
	f.Search = f.Search.Settle(msg.Value)
	if f.Search.Query == "" {
		return f, f.debounce.Wait()
	}
	return f, tea.Batch(
		f.debounce.Wait(),
		f.searcher.SearchCmd(f.Search.Query, f.userID),
	)
}

// Results applies a search answer. Answers are applied in arrival order,
// even when a newer query has settled since.
func (f Flow) Results(msg ResultsMsg) (Flow, *state.Toast) {
	if msg.Query != f.Search.Query {
		f.searcher.log.WithFields(logrus.Fields{
			"query":   msg.Query,
			"current": f.Search.Query,
		}).Debug("applying search results for an older query")
	}
	if msg.Err != nil {
		f.Search = f.Search.Fail(msg.Err)
		return f, state.ErrorToast(api.Message(msg.Err, "Search failed"))
	}
	f.Search = f.Search.Replace(msg.Results)
	return f, nil
}

// Invite marks email PENDING right away and returns the command that sends
// the invite.
func (f Flow) Invite(email string) (Flow, tea.Cmd, *state.Toast) {
	r, ok := f.Search.Find(email)
	if !ok {
		return f, nil, nil
	}
	if !r.CanInvite() {
		return f, nil, state.InfoToast(r.FullName + " is already " + strings.ToLower(string(r.Status())))
	}

	next, snap, _ := f.Search.BeginInvite(email)
	f.Search = next
	return f, f.searcher.InviteCmd(f.userID, email, snap), nil
}

// Invited settles an invite. A failure puts back the invited result's
// previous status when it is still on screen.
func (f Flow) Invited(msg InvitedMsg) (Flow, *state.Toast) {
	if msg.Err != nil {
		f.Search = f.Search.Rollback(msg.Snapshot)
		return f, state.ErrorToast(api.Message(msg.Err, "Failed to send invite"))
	}
	text := msg.Message
	if text == "" {
		text = "Invitation sent to " + msg.Email
	}
	return f, state.SuccessToast(text)
}
