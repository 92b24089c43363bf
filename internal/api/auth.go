package api

import (
	"context"

	"github.com/nhle/matchbox/internal/model"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.post(ctx, "/auth/login", nil, req, &resp); err != nil {
		return nil, err
	}
	if resp.Email == "" {
		resp.Email = req.Email
	}
	return &resp, nil
}

// Register creates an account and returns its bearer token.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.post(ctx, "/auth/register", nil, req, &resp); err != nil {
		return nil, err
	}
	if resp.Email == "" {
		resp.Email = req.Email
	}
	return &resp, nil
}
