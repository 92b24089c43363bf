package api

import (
	"context"

	"github.com/nhle/matchbox/internal/model"
)

func analyticsPath(kind, userID string) string {
	return "/analytics/" + kind + "/" + pathEscape(userID)
}

// Overview returns the headline analytics cards.
func (c *Client) Overview(ctx context.Context, userID string) ([]model.StatCard, error) {
	var cards []model.StatCard
	if err := c.get(ctx, analyticsPath("overview", userID), nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// TeamPerformance returns per-member productivity.
func (c *Client) TeamPerformance(ctx context.Context, userID string) ([]model.MemberPerformance, error) {
	var rows []model.MemberPerformance
	if err := c.get(ctx, analyticsPath("team-performance", userID), nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ProjectProgress returns completion and on-time rates per project.
func (c *Client) ProjectProgress(ctx context.Context, userID string) ([]model.ProjectProgress, error) {
	var rows []model.ProjectProgress
	if err := c.get(ctx, analyticsPath("project-progress", userID), nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// WeeklySummary returns this week's counters.
func (c *Client) WeeklySummary(ctx context.Context, userID string) (*model.WeeklySummary, error) {
	var s model.WeeklySummary
	if err := c.get(ctx, analyticsPath("weekly-summary", userID), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// TopPerformer returns the best performing member.
func (c *Client) TopPerformer(ctx context.Context, userID string) (*model.TopPerformer, error) {
	var p model.TopPerformer
	if err := c.get(ctx, analyticsPath("top-performer", userID), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// OverallHealth returns the aggregate health score.
func (c *Client) OverallHealth(ctx context.Context, userID string) (*model.OverallHealth, error) {
	var h model.OverallHealth
	if err := c.get(ctx, analyticsPath("overall-health", userID), nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}
