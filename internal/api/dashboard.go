package api

import (
	"context"

	"github.com/nhle/matchbox/internal/model"
)

// UpcomingDeadlines returns the nearest due dates for userID.
func (c *Client) UpcomingDeadlines(ctx context.Context, userID string) ([]model.Deadline, error) {
	var deadlines []model.Deadline
	path := "/dashboard/users/" + pathEscape(userID) + "/upcoming-deadlines"
	if err := c.get(ctx, path, nil, &deadlines); err != nil {
		return nil, err
	}
	return deadlines, nil
}
