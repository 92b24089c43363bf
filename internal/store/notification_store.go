package store

import (
	"context"
	"fmt"
	"time"

	"github.com/nhle/matchbox/internal/model"
)

// notificationRow is the cached form of a notification.
type notificationRow struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	Position     int       `db:"position"`
	Type         string    `db:"type"`
	Title        string    `db:"title"`
	Message      string    `db:"message"`
	IsRead       int       `db:"is_read"`
	InvitationID string    `db:"invitation_id"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r notificationRow) toModel() model.Notification {
	return model.Notification{
		ID:           r.ID,
		Type:         model.NotificationType(r.Type),
		Title:        r.Title,
		Message:      r.Message,
		CreatedAt:    model.NewTimestamp(r.CreatedAt),
		IsRead:       r.IsRead != 0,
		InvitationID: r.InvitationID,
	}
}

// ReplaceNotifications stores list as userID's cached notifications,
// keeping list order.
func (s *SQLiteStore) ReplaceNotifications(
	ctx context.Context,
	userID string,
	list []model.Notification,
) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM notifications WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("clearing cached notifications: %w", err)
	}

	const query = `
		INSERT OR REPLACE INTO notifications (
			id, user_id, position, type, title,
			message, is_read, invitation_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing notification insert: %w", err)
	}
	defer stmt.Close()

	for i, n := range list {
		_, err = stmt.ExecContext(ctx,
			n.ID, userID, i, string(n.Type), n.Title,
			n.Message, boolToInt(n.IsRead), n.InvitationID, n.CreatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("caching notification %s: %w", n.ID, err)
		}
	}

	return tx.Commit()
}

// CachedNotifications returns userID's cached notifications in the order
// they were stored.
func (s *SQLiteStore) CachedNotifications(
	ctx context.Context,
	userID string,
) ([]model.Notification, error) {
	var rows []notificationRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, position, type, title, message,
			is_read, invitation_id, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY position`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying cached notifications: %w", err)
	}

	out := make([]model.Notification, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// MarkNotificationRead marks a single cached notification as read.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, userID, id string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE user_id = ? AND id = ?", userID, id,
	)
	if err != nil {
		return fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	return nil
}
