package api

import (
	"context"
	"net/url"

	"github.com/nhle/matchbox/internal/model"
)

// InviteToPlatform invites email to MatchBox on behalf of inviterID and
// returns the backend's confirmation message.
func (c *Client) InviteToPlatform(ctx context.Context, inviterID, email string) (string, error) {
	q := url.Values{"inviterId": {inviterID}, "email": {email}}
	var msg string
	if err := c.post(ctx, "/team/invite", q, nil, &msg); err != nil {
		return "", err
	}
	return msg, nil
}

// InviteToTeam invites an existing user to a team.
func (c *Client) InviteToTeam(ctx context.Context, teamID, userID string) (string, error) {
	var msg string
	q := url.Values{"userId": {userID}}
	if err := c.post(ctx, "/team/"+pathEscape(teamID)+"/invite", q, nil, &msg); err != nil {
		return "", err
	}
	return msg, nil
}

// InvitedMembers lists the users senderID has invited.
func (c *Client) InvitedMembers(ctx context.Context, senderID string) ([]model.InvitedMember, error) {
	var members []model.InvitedMember
	if err := c.get(ctx, "/team/members/"+pathEscape(senderID), nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}
