package model

// Role is the platform-wide role of a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ThemeName is the persisted UI theme preference.
type ThemeName string

const (
	ThemeLight ThemeName = "LIGHT"
	ThemeDark  ThemeName = "DARK"
)

// UserSettings holds per-user preferences stored by the backend.
type UserSettings struct {
	Theme                           ThemeName `json:"theme"`
	EmailNotifications              bool      `json:"emailNotifications"`
	TaskAssignmentNotifications     bool      `json:"taskAssignmentNotifications"`
	ProjectUpdateNotifications      bool      `json:"projectUpdateNotifications"`
	CommentsAndMentionNotifications bool      `json:"commentsAndMentionNotifications"`
	WeeklySummary                   bool      `json:"weeklySummary"`
	TwoFactorAuth                   bool      `json:"twoFactorAuth"`
}

// User is the profile of a MatchBox account.
type User struct {
	ID       string       `json:"id"`
	FullName string       `json:"fullName"`
	Username string       `json:"username"`
	Email    string       `json:"email"`
	Bio      string       `json:"bio,omitempty"`
	Active   bool         `json:"active"`
	LastSeen Timestamp    `json:"lastSeen"`
	Role     Role         `json:"role"`
	Settings UserSettings `json:"settings"`
}

// DisplayName returns the full name, falling back to the username and
// then the email.
func (u User) DisplayName() string {
	switch {
	case u.FullName != "":
		return u.FullName
	case u.Username != "":
		return u.Username
	default:
		return u.Email
	}
}

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the sign-in payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
	Device   string `json:"device,omitempty"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	User  *User  `json:"user,omitempty"`
}

// UserUpdate carries the editable profile fields.
type UserUpdate struct {
	FullName string        `json:"fullName,omitempty"`
	Username string        `json:"username,omitempty"`
	Bio      string        `json:"bio,omitempty"`
	Settings *UserSettings `json:"settings,omitempty"`
}

// PasswordUpdate is the change-password payload.
type PasswordUpdate struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
