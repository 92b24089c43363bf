package state

import "github.com/nhle/matchbox/internal/model"

// Auth tracks the signed-in user and their bearer token.
type Auth struct {
	User    *model.User
	Token   string
	Loading bool
	Err     error
}

// NewAuth restores a session from a persisted token. The user profile is
// filled in later with SetUser.
func NewAuth(token string) Auth {
	return Auth{Token: token}
}

// IsAuthenticated reports whether a token is held.
func (a Auth) IsAuthenticated() bool {
	return a.Token != ""
}

// UserID returns the signed-in user's id, or "" before the profile loads.
func (a Auth) UserID() string {
	if a.User == nil {
		return ""
	}
	return a.User.ID
}

// StartLoading marks a sign-in or sign-up as in flight.
func (a Auth) StartLoading() Auth {
	a.Loading = true
	a.Err = nil
	return a
}

// LoginSuccess records a completed sign-in or sign-up.
func (a Auth) LoginSuccess(user *model.User, token string) Auth {
	return Auth{User: user, Token: token}
}

// SetUser attaches the profile fetched for the current token.
func (a Auth) SetUser(user *model.User) Auth {
	a.User = user
	return a
}

// Failure records a failed sign-in. A held token is kept.
func (a Auth) Failure(err error) Auth {
	a.Loading = false
	a.Err = err
	return a
}

// Logout drops the user and token.
func (a Auth) Logout() Auth {
	return Auth{}
}
