package api

import (
	"context"

	"github.com/nhle/matchbox/internal/model"
)

// MyTasks returns the tasks assigned to userID.
func (c *Client) MyTasks(ctx context.Context, userID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.get(ctx, "/task/my-task/"+pathEscape(userID), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// AllTasks returns every task across userID's projects.
func (c *Client) AllTasks(ctx context.Context, userID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.get(ctx, "/task/all-task/"+pathEscape(userID), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// TasksByProject returns the tasks of one project.
func (c *Client) TasksByProject(ctx context.Context, projectID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.get(ctx, "/task/project/"+pathEscape(projectID), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, req model.TaskRequest) (*model.Task, error) {
	if req.SubtaskIDs == nil {
		req.SubtaskIDs = []string{}
	}
	var t model.Task
	if err := c.post(ctx, "/task", nil, req, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTask deletes a task by id.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.delete(ctx, "/task/"+pathEscape(id), nil, nil)
}

// CompletedTaskCount returns how many of userID's tasks are completed.
func (c *Client) CompletedTaskCount(ctx context.Context, userID string) (int, error) {
	var n int
	if err := c.get(ctx, "/task/total-task/completed/"+pathEscape(userID), nil, &n); err != nil {
		return 0, err
	}
	return n, nil
}

// InProgressSummary returns the in-progress task summary for userID.
func (c *Client) InProgressSummary(ctx context.Context, userID string) (*model.InProgressSummary, error) {
	var s model.InProgressSummary
	path := "/task/users/" + pathEscape(userID) + "/tasks/in-progress/summary"
	if err := c.get(ctx, path, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
