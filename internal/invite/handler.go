package invite

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/nhle/matchbox/internal/api"
	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/state"
)

var (
	// ErrNotInvitation is returned when an invite action targets a
	// notification that is not an invitation.
	ErrNotInvitation = errors.New("notification is not an invitation")

	// ErrNoUser is returned when an invitation is accepted before the
	// current user's profile has loaded.
	ErrNoUser = errors.New("current user unknown")
)

// Resolution is the outcome of an accept or reject action.
type Resolution struct {
	NotificationID string
	Action         Phase
	Err            error
}

// Resolved reports whether the invitation was resolved.
func (r Resolution) Resolved() bool {
	return r.Err == nil
}

// Apply folds the outcome into the store. A resolved invitation is
// removed for the rest of the session; a failed one is left exactly as
// it was.
func (r Resolution) Apply(s state.Notifications) state.Notifications {
	if r.Err != nil {
		return s
	}
	return s.Resolve(r.NotificationID)
}

// ResolvedMsg reports a finished accept or reject.
type ResolvedMsg struct {
	Resolution
}

// MarkedReadMsg reports the outcome of a mark-read call.
type MarkedReadMsg struct {
	NotificationID string
	Err            error
}

// Handler performs invitation and notification actions.
type Handler struct {
	backend api.NotificationService
	log     logrus.FieldLogger
}

// NewHandler creates a Handler.
func NewHandler(backend api.NotificationService, log logrus.FieldLogger) *Handler {
	return &Handler{backend: backend, log: log}
}

// Accept accepts n on behalf of userID. Nothing is changed locally until
// the backend confirms.
func (h *Handler) Accept(ctx context.Context, n model.Notification, userID string) Resolution {
	res := Resolution{NotificationID: n.ID, Action: Accepting}
	logger := h.log.WithFields(logrus.Fields{
		"notification_id": n.ID,
		"invitation_id":   n.InvitationID,
	})

	switch {
	case !n.IsInvite():
		res.Err = ErrNotInvitation
	case n.Validate() != nil:
		res.Err = n.Validate()
	case userID == "":
		res.Err = ErrNoUser
	}
	if res.Err != nil {
		logger.WithError(res.Err).Warn("cannot accept invitation")
		return res
	}

	if err := h.backend.AcceptInvitation(ctx, n.InvitationID, userID); err != nil {
		logger.WithError(err).Error("accepting invitation failed")
		res.Err = err
		return res
	}

	logger.Info("invitation accepted")
	return res
}

// Reject dismisses n. The backend has no reject endpoint, so the
// invitation stays open server-side and may reappear on the next fetch.
func (h *Handler) Reject(n model.Notification) Resolution {
	res := Resolution{NotificationID: n.ID, Action: Rejecting}
	if !n.IsInvite() {
		res.Err = ErrNotInvitation
		return res
	}
	h.log.WithFields(logrus.Fields{
		"notification_id": n.ID,
		"invitation_id":   n.InvitationID,
	}).Info("invitation rejected locally")
	return res
}

// MarkRead marks a notification read on the backend.
func (h *Handler) MarkRead(ctx context.Context, id string) error {
	if err := h.backend.MarkNotificationRead(ctx, id); err != nil {
		h.log.WithField("notification_id", id).WithError(err).Error("marking notification read failed")
		return err
	}
	return nil
}

// AcceptCmd runs Accept in the background.
func (h *Handler) AcceptCmd(n model.Notification, userID string) tea.Cmd {
	return func() tea.Msg {
		return ResolvedMsg{h.Accept(context.Background(), n, userID)}
	}
}

// RejectCmd runs Reject as a command so both actions report the same way.
func (h *Handler) RejectCmd(n model.Notification) tea.Cmd {
	return func() tea.Msg {
		return ResolvedMsg{h.Reject(n)}
	}
}

// MarkReadCmd marks id read on the backend in the background.
func (h *Handler) MarkReadCmd(id string) tea.Cmd {
	return func() tea.Msg {
		err := h.MarkRead(context.Background(), id)
		return MarkedReadMsg{NotificationID: id, Err: err}
	}
}
