package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS session (
	id         INTEGER PRIMARY KEY CHECK(id = 1),
	email      TEXT NOT NULL,
	user_json  TEXT NOT NULL DEFAULT '{}',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS device (
	id         INTEGER PRIMARY KEY CHECK(id = 1),
	device_id  TEXT NOT NULL,
	label      TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS notifications (
	id            TEXT NOT NULL,
	user_id       TEXT NOT NULL,
	position      INTEGER NOT NULL,
	type          TEXT NOT NULL,
	title         TEXT NOT NULL DEFAULT '',
	message       TEXT NOT NULL DEFAULT '',
	is_read       INTEGER NOT NULL DEFAULT 0 CHECK(is_read IN (0, 1)),
	invitation_id TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL,
	PRIMARY KEY (user_id, id)
);

CREATE INDEX IF NOT EXISTS idx_notifications_user_position
	ON notifications(user_id, position);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
