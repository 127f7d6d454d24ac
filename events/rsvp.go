// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jhartmann/clubplan/chat"
	"github.com/jhartmann/clubplan/models"
)

// ToggleRSVP flips the user's "interested" marker for an event and
// refreshes the live announcement. Returns whether the user is marked
// interested after the toggle.
func (s *Syncer) ToggleRSVP(eventID, userID string) (interested bool, err error) {
	var status string
	err = s.db.QueryRow(`
		SELECT status FROM event_rsvps WHERE discord_event_id = ? AND user_id = ?
	`, eventID, userID).Scan(&status)

	switch {
	case err == sql.ErrNoRows:
		_, err = s.db.Exec(`
			INSERT OR REPLACE INTO event_rsvps (discord_event_id, user_id, status) VALUES (?, ?, ?)
		`, eventID, userID, models.StatusInterested)
		if err != nil {
			return false, fmt.Errorf("failed to insert rsvp: %w", err)
		}
		interested = true
	case err != nil:
		return false, fmt.Errorf("failed to query rsvp: %w", err)
	default:
		_, err = s.db.Exec(`
			DELETE FROM event_rsvps WHERE discord_event_id = ? AND user_id = ?
		`, eventID, userID)
		if err != nil {
			return false, fmt.Errorf("failed to delete rsvp: %w", err)
		}
		interested = false
	}

	// Best effort: a stale announcement must not fail the RSVP itself.
	if err := s.refreshMessage(eventID); err != nil {
		slog.Error("failed to refresh announcement after rsvp", "event_id", eventID, "error", err)
	}
	return interested, nil
}

// rsvpUserIDs lists interested users, sorted.
func (s *Syncer) rsvpUserIDs(eventID string) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT user_id FROM event_rsvps WHERE discord_event_id = ?
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rsvps: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		users = append(users, uid)
	}
	sort.Strings(users)
	return users, rows.Err()
}

// refreshMessage re-renders the live announcement in place, using the same
// fetch-before-trust pattern as the update path: a missing message clears
// the stored reference and is not re-posted here.
func (s *Syncer) refreshMessage(eventID string) error {
	channelID, messageID, err := s.postedRef(eventID)
	if err != nil {
		return err
	}
	if messageID == "" {
		return nil
	}

	if _, err := s.chat.FetchMessage(channelID, messageID); err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			return s.clearPostedRef(eventID)
		}
		return err
	}

	msg, err := s.storedMessage(eventID, 0)
	if err != nil {
		return err
	}
	if err := s.chat.EditMessage(channelID, messageID, msg); err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			return s.clearPostedRef(eventID)
		}
		return err
	}
	return nil
}
