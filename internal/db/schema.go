package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. The partial unique indexes on
// swap_requests back the pending-swap invariants: an item can be pledged as
// the offered side of at most one pending request, and a requester can have
// at most one pending request per requested item.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    email         TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    points        INTEGER NOT NULL DEFAULT 0,
    is_admin      INTEGER NOT NULL DEFAULT 0,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_active
    ON users(email) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS items (
    id          INTEGER PRIMARY KEY,
    owner_id    INTEGER NOT NULL REFERENCES users(id),
    title       TEXT NOT NULL,
    description TEXT,
    category    TEXT NOT NULL CHECK (category IN ('male', 'female', 'kids')),
    size        TEXT NOT NULL CHECK (size IN ('S', 'M', 'L', 'XL')),
    image_url   TEXT,
    points_cost INTEGER NOT NULL CHECK (points_cost > 0),
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at  DATETIME
);

CREATE INDEX IF NOT EXISTS idx_items_owner ON items(owner_id);

CREATE TABLE IF NOT EXISTS swap_requests (
    id                INTEGER PRIMARY KEY,
    requester_id      INTEGER NOT NULL REFERENCES users(id),
    requested_item_id INTEGER NOT NULL REFERENCES items(id),
    offered_item_id   INTEGER REFERENCES items(id),
    kind              TEXT NOT NULL CHECK (kind IN ('exchange', 'points')),
    status            TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'completed', 'declined')),
    created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK ((kind = 'exchange') = (offered_item_id IS NOT NULL))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_swaps_offered_pending
    ON swap_requests(offered_item_id) WHERE status = 'pending' AND offered_item_id IS NOT NULL;

CREATE UNIQUE INDEX IF NOT EXISTS idx_swaps_requester_item_pending
    ON swap_requests(requester_id, requested_item_id) WHERE status = 'pending';

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
