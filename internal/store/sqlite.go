package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/matchbox/internal/model"
)

// Device identifies this installation to the backend at sign-in.
type Device struct {
	ID    string `db:"device_id"`
	Label string `db:"label"`
}

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// An in-memory database exists per connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// SaveSession stores user as the signed-in profile.
func (s *SQLiteStore) SaveSession(ctx context.Context, user model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshaling session user: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session (id, email, user_json, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			user_json = excluded.user_json,
			updated_at = excluded.updated_at`,
		user.Email, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// LoadSession returns the stored profile, or nil when there is none.
func (s *SQLiteStore) LoadSession(ctx context.Context) (*model.User, error) {
	var data string
	err := s.db.GetContext(ctx, &data, "SELECT user_json FROM session WHERE id = 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	var user model.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("unmarshaling session user: %w", err)
	}
	return &user, nil
}

// ClearSession forgets the signed-in profile and its cached notifications.
func (s *SQLiteStore) ClearSession(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM session"); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM notifications"); err != nil {
		return fmt.Errorf("clearing notification cache: %w", err)
	}
	return tx.Commit()
}

// Device returns the installation id, generating it on first use.
func (s *SQLiteStore) Device(ctx context.Context) (Device, error) {
	var d Device
	err := s.db.GetContext(ctx, &d, "SELECT device_id, label FROM device WHERE id = 1")
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Device{}, fmt.Errorf("loading device: %w", err)
	}

	d = Device{ID: uuid.NewString(), Label: deviceLabel()}
	_, err = s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO device (id, device_id, label) VALUES (1, ?, ?)",
		d.ID, d.Label,
	)
	if err != nil {
		return Device{}, fmt.Errorf("creating device: %w", err)
	}

	// Another process may have won the insert.
	if err := s.db.GetContext(ctx, &d, "SELECT device_id, label FROM device WHERE id = 1"); err != nil {
		return Device{}, fmt.Errorf("loading device: %w", err)
	}
	return d, nil
}

func deviceLabel() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "matchbox-tui"
	}
	return "matchbox-tui@" + host
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
