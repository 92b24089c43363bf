package model

// StatCard is one headline metric on the analytics overview.
type StatCard struct {
	Title       string  `json:"title"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit,omitempty"`
	Change      string  `json:"change,omitempty"`
	Description string  `json:"description"`
}

// MemberPerformance is one row of the team performance panel.
type MemberPerformance struct {
	Name       string  `json:"name"`
	Tasks      int     `json:"tasks"`
	Completed  int     `json:"completed"`
	Efficiency float64 `json:"efficiency"`
}

// ProjectProgress is one row of the project progress panel.
type ProjectProgress struct {
	Name       string  `json:"name"`
	Completion float64 `json:"completion"`
	OnTime     float64 `json:"onTime"`
}

// WeeklySummary holds this week's task counters.
type WeeklySummary struct {
	TasksCompleted int `json:"tasksCompleted"`
	NewTasks       int `json:"newTasks"`
	Overdue        int `json:"overdue"`
}

// TopPerformer is the member with the best completion record.
type TopPerformer struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	CompletedTasks int     `json:"completedTasks"`
	Efficiency     float64 `json:"efficiency"`
}

// OverallHealth is the aggregate health score across the user's projects.
type OverallHealth struct {
	Score       float64 `json:"score"`
	Status      string  `json:"status"`
	OnTrack     int     `json:"onTrack"`
	AtRisk      int     `json:"atRisk"`
	Delayed     int     `json:"delayed"`
	Description string  `json:"description,omitempty"`
}

// Analytics bundles every analytics panel for one user.
type Analytics struct {
	Overview        []StatCard
	TeamPerformance []MemberPerformance
	ProjectProgress []ProjectProgress
	Weekly          WeeklySummary
	TopPerformer    *TopPerformer
	Health          OverallHealth
}

// DashboardSummary bundles the dashboard counters.
type DashboardSummary struct {
	TotalProjects  int
	CompletedTasks int
	InProgress     InProgressSummary
	ActiveMembers  int
	Deadlines      []Deadline
}
