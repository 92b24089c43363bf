package api

import (
	"context"
	"net/url"

	"github.com/nhle/matchbox/internal/model"
)

// ListProjects returns every project visible to userID.
func (c *Client) ListProjects(ctx context.Context, userID string) ([]model.Project, error) {
	var projects []model.Project
	q := url.Values{"userId": {userID}}
	if err := c.get(ctx, "/project/user", q, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// ProjectsByTeam returns the projects owned by a team.
func (c *Client) ProjectsByTeam(ctx context.Context, teamID string) ([]model.Project, error) {
	var projects []model.Project
	if err := c.get(ctx, "/project/team/"+pathEscape(teamID), nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject fetches a single project by slug.
func (c *Client) GetProject(ctx context.Context, slug string) (*model.Project, error) {
	var p model.Project
	if err := c.get(ctx, "/project/"+pathEscape(slug), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, req model.ProjectRequest) (*model.Project, error) {
	var p model.Project
	if err := c.post(ctx, "/project", nil, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// TotalProjects returns the number of projects userID belongs to.
func (c *Client) TotalProjects(ctx context.Context, userID string) (int, error) {
	var n int
	if err := c.get(ctx, "/project/total-projects/"+pathEscape(userID), nil, &n); err != nil {
		return 0, err
	}
	return n, nil
}
