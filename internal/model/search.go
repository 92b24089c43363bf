package model

// InvitationStatus is the platform invitation state of a searched user
// relative to the current user.
type InvitationStatus string

const (
	InvitationNone     InvitationStatus = "NONE"
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationRejected InvitationStatus = "REJECTED"
)

// UserSearchResult is one row returned by the user search endpoint.
type UserSearchResult struct {
	ID               string           `json:"id"`
	FullName         string           `json:"fullName"`
	Email            string           `json:"email"`
	InvitationStatus InvitationStatus `json:"invitationStatus"`
	Avatar           string           `json:"avatar,omitempty"`
}

// Status returns the invitation status, treating an absent value as NONE.
func (r UserSearchResult) Status() InvitationStatus {
	if r.InvitationStatus == "" {
		return InvitationNone
	}
	return r.InvitationStatus
}

// CanInvite reports whether an invite action is offered for r.
func (r UserSearchResult) CanInvite() bool {
	switch r.Status() {
	case InvitationPending, InvitationAccepted:
		return false
	default:
		return true
	}
}
