// Package testutil holds shared test helpers.
package testutil

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err, "creating test store")

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// Logger returns a logger that discards its output.
func Logger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Notifications returns a fixed list: an unread invitation, an unread
// assignment and a read due-date reminder, most recent first.
func Notifications() []model.Notification {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return []model.Notification{
		{
			ID:           "n1",
			Type:         model.NotificationInvite,
			Title:        "Team invitation",
			Message:      "Ann invited you to Core",
			InvitationID: "iv1",
			CreatedAt:    model.NewTimestamp(base),
		},
		{
			ID:        "n2",
			Type:      model.NotificationProjectAssign,
			Message:   "You were added to Apollo",
			CreatedAt: model.NewTimestamp(base.Add(-time.Hour)),
		},
		{
			ID:        "n3",
			Type:      model.NotificationDueDate,
			Message:   "Write docs is due tomorrow",
			IsRead:    true,
			CreatedAt: model.NewTimestamp(base.Add(-24 * time.Hour)),
		},
	}
}
