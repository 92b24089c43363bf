package api

import (
	"context"

	"github.com/nhle/matchbox/internal/model"
)

// AuthService signs users in and up.
type AuthService interface {
	Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error)
}

// UserService reads and edits user profiles.
type UserService interface {
	GetUser(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, email string, update model.UserUpdate) (*model.User, error)
	UpdatePassword(ctx context.Context, email string, update model.PasswordUpdate) error
	SearchUsers(ctx context.Context, query, currentUserID string) ([]model.UserSearchResult, error)
}

// ProjectService manages projects.
type ProjectService interface {
	ListProjects(ctx context.Context, userID string) ([]model.Project, error)
	ProjectsByTeam(ctx context.Context, teamID string) ([]model.Project, error)
	GetProject(ctx context.Context, slug string) (*model.Project, error)
	CreateProject(ctx context.Context, req model.ProjectRequest) (*model.Project, error)
	TotalProjects(ctx context.Context, userID string) (int, error)
}

// TaskService manages tasks.
type TaskService interface {
	MyTasks(ctx context.Context, userID string) ([]model.Task, error)
	AllTasks(ctx context.Context, userID string) ([]model.Task, error)
	TasksByProject(ctx context.Context, projectID string) ([]model.Task, error)
	CreateTask(ctx context.Context, req model.TaskRequest) (*model.Task, error)
	DeleteTask(ctx context.Context, id string) error
	CompletedTaskCount(ctx context.Context, userID string) (int, error)
	InProgressSummary(ctx context.Context, userID string) (*model.InProgressSummary, error)
}

// TeamService manages teams and their members.
type TeamService interface {
	ListTeams(ctx context.Context, userID string) ([]model.Team, error)
	GetTeam(ctx context.Context, teamID string) (*model.Team, error)
	CreateTeam(ctx context.Context, req model.TeamRequest) (*model.Team, error)
	UpdateTeam(ctx context.Context, teamID string, update model.TeamUpdate) (*model.Team, error)
	DeleteTeam(ctx context.Context, creatorID, teamID string) error
	AddMember(ctx context.Context, teamID string, req model.AddMemberRequest) error
	UpdateMemberRole(ctx context.Context, teamID, memberID string, role model.TeamRole) error
	RemoveMember(ctx context.Context, teamID, memberID string) error
	ActiveMemberCount(ctx context.Context, userID string) (int, error)
}

// NotificationService reads notifications and resolves invitations.
type NotificationService interface {
	ListNotifications(ctx context.Context, userID string) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	AcceptInvitation(ctx context.Context, invitationID, receiverID string) error
}

// InvitationService sends invitations.
type InvitationService interface {
	InviteToPlatform(ctx context.Context, inviterID, email string) (string, error)
	InviteToTeam(ctx context.Context, teamID, userID string) (string, error)
	InvitedMembers(ctx context.Context, senderID string) ([]model.InvitedMember, error)
}

// AnalyticsService reads the precomputed analytics panels.
type AnalyticsService interface {
	Overview(ctx context.Context, userID string) ([]model.StatCard, error)
	TeamPerformance(ctx context.Context, userID string) ([]model.MemberPerformance, error)
	ProjectProgress(ctx context.Context, userID string) ([]model.ProjectProgress, error)
	WeeklySummary(ctx context.Context, userID string) (*model.WeeklySummary, error)
	TopPerformer(ctx context.Context, userID string) (*model.TopPerformer, error)
	OverallHealth(ctx context.Context, userID string) (*model.OverallHealth, error)
}

// DashboardService reads dashboard-only data.
type DashboardService interface {
	UpcomingDeadlines(ctx context.Context, userID string) ([]model.Deadline, error)
}

// Backend is the full MatchBox backend contract. Every business rule
// lives behind it; the client only renders and forwards.
type Backend interface {
	AuthService
	UserService
	ProjectService
	TaskService
	TeamService
	NotificationService
	InvitationService
	AnalyticsService
	DashboardService
}
