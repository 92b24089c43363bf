package model

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NotificationType identifies what a notification is about.
type NotificationType string

const (
	NotificationInvite        NotificationType = "INVITE"
	NotificationProjectAssign NotificationType = "PROJECT_ASSIGN"
	NotificationDueDate       NotificationType = "DUE_DATE"
)

// ErrInviteWithoutInvitation is returned by Validate for an INVITE
// notification that carries no invitation id.
var ErrInviteWithoutInvitation = errors.New("invite notification has no invitation id")

// Notification represents an alert surfaced to the current user.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	// Type identifies the kind of notification (use Notification* constants).
	Type NotificationType `json:"type"`

	// Title is the optional headline. Label falls back to the type.
	Title string `json:"title"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// CreatedAt is when the backend generated this notification.
	CreatedAt Timestamp `json:"createdAt"`

	// IsRead indicates whether the user has seen this notification.
	IsRead bool `json:"isRead"`

	// InvitationID is set for INVITE notifications and is the id used
	// for the accept call.
	InvitationID string `json:"invitationId,omitempty"`
}

// IsInvite reports whether n is an invitation awaiting accept or reject.
func (n Notification) IsInvite() bool {
	return n.Type == NotificationInvite
}

// Validate checks the invitation invariant.
func (n Notification) Validate() error {
	if n.IsInvite() && strings.TrimSpace(n.InvitationID) == "" {
		return ErrInviteWithoutInvitation
	}
	return nil
}

// Label returns the title, or a readable form of the type when the
// title is empty ("PROJECT_ASSIGN" becomes "Project Assign").
func (n Notification) Label() string {
	if n.Title != "" {
		return n.Title
	}
	words := strings.ReplaceAll(string(n.Type), "_", " ")
	return cases.Title(language.English).String(strings.ToLower(words))
}
