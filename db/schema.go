// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) the SQLite database file at path.
func Open(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Polls (weekly and quarterly share one table; kind tells them apart)
CREATE TABLE IF NOT EXISTS polls (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL DEFAULT 'weekly' CHECK (kind IN ('weekly', 'quarterly')),
    created_at TEXT NOT NULL,
    posted_channel_id TEXT NOT NULL DEFAULT '',
    posted_message_id TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_polls_kind_created ON polls(kind, created_at);

-- Options (user-submitted ideas)
CREATE TABLE IF NOT EXISTS options (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    poll_id TEXT NOT NULL,
    text TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    author_id TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_options_poll_id ON options(poll_id);

-- Votes (multi-select; toggled per click)
CREATE TABLE IF NOT EXISTS votes (
    poll_id TEXT NOT NULL,
    option_id INTEGER NOT NULL,
    user_id TEXT NOT NULL,
    UNIQUE (poll_id, option_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_votes_poll_id ON votes(poll_id);

-- Availability slots ("Fr-19" weekly, "2026-01-05" quarterly)
CREATE TABLE IF NOT EXISTS availability (
    poll_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    slot TEXT NOT NULL,
    UNIQUE (poll_id, user_id, slot)
);

CREATE INDEX IF NOT EXISTS idx_availability_poll_id ON availability(poll_id);

-- Shadow rows for platform-native scheduled events
CREATE TABLE IF NOT EXISTS tracked_events (
    discord_event_id TEXT NOT NULL UNIQUE,
    guild_id TEXT NOT NULL DEFAULT '',
    posted_channel_id TEXT NOT NULL DEFAULT '',
    posted_message_id TEXT NOT NULL DEFAULT '',
    start_time TEXT NOT NULL DEFAULT '',
    updated_at TEXT NOT NULL
);

-- RSVPs for tracked events
CREATE TABLE IF NOT EXISTS event_rsvps (
    discord_event_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    status TEXT NOT NULL,
    UNIQUE (discord_event_id, user_id)
);

-- Bot-authored events (form-created; independent of tracked_events)
CREATE TABLE IF NOT EXISTS created_events (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    start_time TEXT NOT NULL,
    end_time TEXT NOT NULL DEFAULT '',
    participants TEXT NOT NULL DEFAULT '',
    location TEXT NOT NULL DEFAULT '',
    posted_channel_id TEXT NOT NULL DEFAULT '',
    posted_message_id TEXT NOT NULL DEFAULT ''
);

-- Daily digest bookkeeping, one row per target channel
CREATE TABLE IF NOT EXISTS summary_markers (
    channel_id TEXT NOT NULL UNIQUE,
    last_message_id TEXT NOT NULL DEFAULT '',
    snapshot TEXT NOT NULL DEFAULT '[]'
);
`
