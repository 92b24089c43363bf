package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/nhle/matchbox/internal/model"
)

// ListTeams returns the teams userID belongs to.
func (c *Client) ListTeams(ctx context.Context, userID string) ([]model.Team, error) {
	var teams []model.Team
	if err := c.get(ctx, "/team", url.Values{"userId": {userID}}, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// GetTeam fetches a team with its members.
func (c *Client) GetTeam(ctx context.Context, teamID string) (*model.Team, error) {
	var t model.Team
	if err := c.get(ctx, "/team/"+pathEscape(teamID), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTeam creates a team.
func (c *Client) CreateTeam(ctx context.Context, req model.TeamRequest) (*model.Team, error) {
	var t model.Team
	if err := c.post(ctx, "/team", nil, req, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTeam edits a team's name and description. The endpoint only
// accepts multipart form data.
func (c *Client) UpdateTeam(ctx context.Context, teamID string, update model.TeamUpdate) (*model.Team, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("name", update.Name); err != nil {
		return nil, fmt.Errorf("writing form field: %w", err)
	}
	if err := w.WriteField("description", update.Description); err != nil {
		return nil, fmt.Errorf("writing form field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	var t model.Team
	err := c.send(ctx, http.MethodPut, "/team/update/"+pathEscape(teamID), nil,
		&buf, w.FormDataContentType(), &t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTeam deletes a team. Only its creator may do so.
func (c *Client) DeleteTeam(ctx context.Context, creatorID, teamID string) error {
	q := url.Values{"creatorId": {creatorID}, "teamId": {teamID}}
	return c.delete(ctx, "/team/delete", q, nil)
}

// AddMember adds an existing user to a team with a role.
func (c *Client) AddMember(ctx context.Context, teamID string, req model.AddMemberRequest) error {
	return c.post(ctx, "/team/add-member", url.Values{"teamId": {teamID}}, req, nil)
}

// UpdateMemberRole changes a member's team role.
func (c *Client) UpdateMemberRole(ctx context.Context, teamID, memberID string, role model.TeamRole) error {
	q := url.Values{"teamId": {teamID}, "memberId": {memberID}}
	return c.put(ctx, "/team/update-role", q, string(role), nil)
}

// RemoveMember removes a member from a team.
func (c *Client) RemoveMember(ctx context.Context, teamID, memberID string) error {
	q := url.Values{"teamId": {teamID}, "memberId": {memberID}}
	return c.delete(ctx, "/team/delete-member", q, nil)
}

// ActiveMemberCount returns the number of active members across
// userID's teams.
func (c *Client) ActiveMemberCount(ctx context.Context, userID string) (int, error) {
	var n int
	path := "/team/users/" + pathEscape(userID) + "/teams/active-members/count"
	if err := c.get(ctx, path, nil, &n); err != nil {
		return 0, err
	}
	return n, nil
}
