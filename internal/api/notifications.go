package api

import (
	"context"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/nhle/matchbox/internal/model"
)

// ListNotifications returns userID's notifications, most recent first.
// INVITE records without an invitation id cannot be acted on and are
// dropped with a warning.
func (c *Client) ListNotifications(ctx context.Context, userID string) ([]model.Notification, error) {
	var raw []model.Notification
	if err := c.get(ctx, "/notifications", url.Values{"userId": {userID}}, &raw); err != nil {
		return nil, err
	}

	out := raw[:0]
	for _, n := range raw {
		if err := n.Validate(); err != nil {
			c.log.WithFields(logrus.Fields{
				"notification_id": n.ID,
				"type":            n.Type,
			}).WithError(err).Warn("dropping malformed notification")
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// MarkNotificationRead marks a notification as read on the backend.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.post(ctx, "/notifications/"+pathEscape(id)+"/read", nil, nil, nil)
}

// AcceptInvitation accepts an invitation on behalf of receiverID.
func (c *Client) AcceptInvitation(ctx context.Context, invitationID, receiverID string) error {
	q := url.Values{"receiverId": {receiverID}}
	return c.post(ctx, "/team/invitations/"+pathEscape(invitationID)+"/accept", q, nil, nil)
}
