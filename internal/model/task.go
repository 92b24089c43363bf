package model

import "time"

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
)

// Task is a unit of work inside a project.
type Task struct {
	ID                  string     `json:"id"`
	TaskName            string     `json:"taskName"`
	Title               string     `json:"title,omitempty"`
	Description         string     `json:"description"`
	ProjectID           string     `json:"projectId"`
	Priority            Priority   `json:"priority"`
	Status              TaskStatus `json:"status"`
	AssignedTo          []string   `json:"assignedTo,omitempty"`
	CreatedDate         Timestamp  `json:"createdDate"`
	DueDate             Timestamp  `json:"dueDate"`
	CompletedPercentage float64    `json:"completedPercentage"`
	LastUpdated         Timestamp  `json:"lastUpdated"`
}

// Name returns the task name, falling back to the title field that some
// endpoints use instead.
func (t Task) Name() string {
	if t.TaskName != "" {
		return t.TaskName
	}
	return t.Title
}

// IsOverdue reports whether the due date has passed on an unfinished task.
func (t Task) IsOverdue(now time.Time) bool {
	return !t.DueDate.IsZero() && t.DueDate.Before(now) && t.Status != TaskCompleted
}

// TaskRequest is the create-task payload.
type TaskRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       TaskStatus `json:"status"`
	Priority     Priority   `json:"priority"`
	StartDate    Timestamp  `json:"startDate"`
	DueDate      Timestamp  `json:"dueDate"`
	ProjectID    string     `json:"projectId"`
	AssignedToID []string   `json:"assignedToId"`
	CreatedByID  string     `json:"createdById"`
	TeamID       string     `json:"teamId"`
	ParentTaskID *string    `json:"parentTaskId"`
	SubtaskIDs   []string   `json:"subtaskIds"`
}

// InProgressSummary is returned by the in-progress summary endpoint.
type InProgressSummary struct {
	InProgress      int     `json:"inProgress"`
	Total           int     `json:"total"`
	AverageProgress float64 `json:"averageProgress"`
}

// Deadline is an upcoming due date shown on the dashboard.
type Deadline struct {
	TaskID      string    `json:"taskId"`
	TaskName    string    `json:"taskName"`
	ProjectName string    `json:"projectName"`
	DueDate     Timestamp `json:"dueDate"`
}
