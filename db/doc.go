// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles opening the SQLite database and creating the schema.

# Schema Creation

CreateSchema initializes all required tables:

	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - polls: weekly and quarterly polls plus their live announcement message
  - options: submitted ideas per poll
  - votes: (poll, option, user) toggled votes
  - availability: (poll, user, slot) availability selections
  - tracked_events: shadow rows for platform-native scheduled events
  - event_rsvps: interest markers per tracked event
  - created_events: bot-authored events created via a form
  - summary_markers: last digest message and match snapshot per channel

# Conventions

Timestamps are stored as ISO-8601 strings in UTC. "No live message" is an
empty posted_channel_id/posted_message_id pair. Uniqueness constraints on
votes, availability and event_rsvps are the safety net against
double-insertion; cascade deletes are done explicitly by the callers.
*/
package db
