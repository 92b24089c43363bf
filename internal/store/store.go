package store

import (
	"context"

	"github.com/nhle/matchbox/internal/model"
)

// Store is the local cache kept between runs. The backend stays the
// source of truth; nothing here is sent back to it.
type Store interface {
	// === Session ===

	// SaveSession remembers the signed-in user's profile.
	SaveSession(ctx context.Context, user model.User) error
	// LoadSession returns the remembered profile, or nil when signed out.
	LoadSession(ctx context.Context) (*model.User, error)
	ClearSession(ctx context.Context) error

	// === Device ===

	// Device returns this installation's id, creating it on first use.
	Device(ctx context.Context) (Device, error)

	// === Notifications cache ===

	// ReplaceNotifications stores list as userID's notifications in order.
	ReplaceNotifications(ctx context.Context, userID string, list []model.Notification) error
	CachedNotifications(ctx context.Context, userID string) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id string) error

	Close() error
}
