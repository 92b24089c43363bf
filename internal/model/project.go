package model

// Status is the lifecycle state shared by projects.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	// StatusUpcoming keeps the backend's spelling.
	StatusUpcoming Status = "UPCOMMING"
)

// Priority is the urgency of a project or task.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Visibility controls who can see a project.
type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

// Project is a grouping container for tasks owned by a team.
type Project struct {
	ID             string    `json:"id"`
	Slug           string    `json:"slug,omitempty"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Status         Status    `json:"status"`
	TotalTasks     int       `json:"totalTasks"`
	CompletedTasks int       `json:"completedTasks"`
	StartDate      Timestamp `json:"startDate"`
	DueDate        Timestamp `json:"dueDate"`
	Priority       Priority  `json:"priority"`
	Collaborators  []string  `json:"collaborators,omitempty"`
	Progress       float64   `json:"progress"`
	LastUpdated    Timestamp `json:"lastUpdated"`
	TeamID         string    `json:"teamId,omitempty"`
}

// Key returns the identifier used by GET /project/{slug}.
func (p Project) Key() string {
	if p.Slug != "" {
		return p.Slug
	}
	return p.ID
}

// ProjectRequest is the create-project payload.
type ProjectRequest struct {
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	CreatorID       string     `json:"creatorId"`
	TeamID          string     `json:"teamId"`
	CollaboratorIDs []string   `json:"collaboratorIds"`
	Status          Status     `json:"status"`
	Priority        Priority   `json:"priority"`
	Visibility      Visibility `json:"visibility"`
	StartDate       Timestamp  `json:"startDate"`
	DueDate         Timestamp  `json:"dueDate"`
}
