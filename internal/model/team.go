package model

// TeamRole is a member's role inside one team.
type TeamRole string

const (
	TeamRoleLead      TeamRole = "TEAM_LEAD"
	TeamRoleDeveloper TeamRole = "DEVELOPER"
	TeamRoleDesigner  TeamRole = "DESIGNER"
	TeamRoleTester    TeamRole = "TESTER"
	TeamRoleManager   TeamRole = "MANAGER"
)

// TeamRoles lists the assignable roles in display order.
var TeamRoles = []TeamRole{
	TeamRoleLead,
	TeamRoleDeveloper,
	TeamRoleDesigner,
	TeamRoleTester,
	TeamRoleManager,
}

// Member is a user's membership in a team.
type Member struct {
	ID       string    `json:"id"`
	FullName string    `json:"fullName"`
	Email    string    `json:"email"`
	TeamRole TeamRole  `json:"teamRole"`
	Avatar   string    `json:"avatar,omitempty"`
	JoinedAt Timestamp `json:"joinedAt"`
}

// ActiveProject summarizes a team project on the team card.
type ActiveProject struct {
	ProjectID   string  `json:"projectId"`
	ProjectName string  `json:"projectName"`
	Status      string  `json:"status"`
	Progress    float64 `json:"progress"`
}

// Team is a group of members working on shared projects.
type Team struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Avatar         string          `json:"avatar,omitempty"`
	CreatedBy      string          `json:"createdBy"`
	Members        []Member        `json:"members"`
	ActiveProjects []ActiveProject `json:"activeProjects,omitempty"`
	TotalMembers   int             `json:"totalMembers"`
	TotalProjects  int             `json:"totalProjects"`
	CreatedAt      Timestamp       `json:"createdAt"`
	UpdatedAt      Timestamp       `json:"updatedAt"`
}

// MemberSeed is an initial member in a create-team request.
type MemberSeed struct {
	ID   string   `json:"id"`
	Role TeamRole `json:"role"`
}

// TeamRequest is the create-team payload. The creator is seeded as lead.
type TeamRequest struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Avatar      string       `json:"avatar"`
	CreatedBy   string       `json:"createdBy"`
	Members     []MemberSeed `json:"members"`
}

// NewTeamRequest builds a request with the creator as team lead.
func NewTeamRequest(name, description, creatorID string) TeamRequest {
	return TeamRequest{
		Name:        name,
		Description: description,
		CreatedBy:   creatorID,
		Members:     []MemberSeed{{ID: creatorID, Role: TeamRoleLead}},
	}
}

// TeamUpdate carries the editable team fields sent as multipart form data.
type TeamUpdate struct {
	Name        string
	Description string
}

// AddMemberRequest is the add-member payload.
type AddMemberRequest struct {
	MemberID string   `json:"memberId"`
	Role     TeamRole `json:"role"`
}

// InvitedMember is a user the current user has invited.
type InvitedMember struct {
	ID       string           `json:"id"`
	FullName string           `json:"fullName"`
	Email    string           `json:"email"`
	Status   InvitationStatus `json:"status"`
}
