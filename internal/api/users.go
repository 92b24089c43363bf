package api

import (
	"context"
	"net/url"

	"github.com/nhle/matchbox/internal/model"
)

// GetUser fetches a profile by email.
func (c *Client) GetUser(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := c.get(ctx, "/user/"+pathEscape(email), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser saves profile fields and settings.
func (c *Client) UpdateUser(ctx context.Context, email string, update model.UserUpdate) (*model.User, error) {
	var u model.User
	if err := c.put(ctx, "/user/update/"+pathEscape(email), nil, update, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdatePassword changes the user's password.
func (c *Client) UpdatePassword(ctx context.Context, email string, update model.PasswordUpdate) error {
	return c.put(ctx, "/user/update-password/"+pathEscape(email), nil, update, nil)
}

// SearchUsers finds users matching query, annotated with their invitation
// status relative to currentUserID. Order is the backend's.
func (c *Client) SearchUsers(ctx context.Context, query, currentUserID string) ([]model.UserSearchResult, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("currentUserId", currentUserID)

	var results []model.UserSearchResult
	if err := c.get(ctx, "/user/search", q, &results); err != nil {
		return nil, err
	}
	return results, nil
}
