package state

import "github.com/nhle/matchbox/internal/model"

// App is the state shared across views.
type App struct {
	Auth          Auth
	Notifications Notifications
	Theme         Theme
}

// NewApp builds the initial state from a persisted token and theme.
func NewApp(token string, theme model.ThemeName) App {
	return App{
		Auth:  NewAuth(token),
		Theme: NewTheme(theme),
	}
}

// Logout clears the session and everything fetched for it. The theme is
// a device preference and survives.
func (a App) Logout() App {
	a.Auth = a.Auth.Logout()
	a.Notifications = a.Notifications.Clear()
	return a
}
