// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package summary

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jhartmann/clubplan/chat"
	"github.com/jhartmann/clubplan/match"
	"github.com/jhartmann/clubplan/models"
)

// Digest posts the twice-daily match summary. Each posting replaces the
// previous digest message in the channel and only happens when matches
// appeared that the last digest did not contain.
type Digest struct {
	db        *sql.DB
	chat      chat.Client
	channelID string
}

func NewDigest(db *sql.DB, client chat.Client, channelID string) *Digest {
	return &Digest{db: db, chat: client, channelID: channelID}
}

// Post computes the poll's current matches, diffs them against the stored
// snapshot, and posts a digest if anything new appeared. Reports whether a
// message was posted.
func (d *Digest) Post(pollID string) (bool, error) {
	current, err := match.ComputeMatches(d.db, pollID)
	if err != nil {
		return false, fmt.Errorf("failed to compute matches: %w", err)
	}

	lastMessageID, snapshot, err := d.marker()
	if err != nil {
		return false, err
	}

	fresh := match.DiffSnapshot(current, snapshot)
	if len(fresh) == 0 {
		slog.Info("digest skipped, no new matches", "poll_id", pollID)
		return false, nil
	}

	// Replace, don't spam: drop the previous digest first and tolerate it
	// having been deleted by hand.
	if lastMessageID != "" {
		if err := d.chat.DeleteMessage(d.channelID, lastMessageID); err != nil && !errors.Is(err, chat.ErrNotFound) {
			slog.Error("failed to delete previous digest", "channel_id", d.channelID, "error", err)
		}
	}

	sentID, err := d.chat.SendMessage(d.channelID, digestMessage(current, fresh))
	if err != nil {
		return false, fmt.Errorf("failed to post digest: %w", err)
	}

	encoded, err := match.EncodeSnapshot(current)
	if err != nil {
		return false, err
	}
	if err := d.saveMarker(sentID, encoded); err != nil {
		return false, err
	}

	slog.Info("digest posted", "poll_id", pollID, "message_id", sentID, "new_matches", len(fresh))
	return true, nil
}

func (d *Digest) marker() (lastMessageID, snapshot string, err error) {
	err = d.db.QueryRow(`
		SELECT last_message_id, snapshot FROM summary_markers WHERE channel_id = ?
	`, d.channelID).Scan(&lastMessageID, &snapshot)
	if err == sql.ErrNoRows {
		return "", "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to query summary marker: %w", err)
	}
	return lastMessageID, snapshot, nil
}

func (d *Digest) saveMarker(messageID, snapshot string) error {
	_, err := d.db.Exec(`
		INSERT INTO summary_markers (channel_id, last_message_id, snapshot)
		VALUES (?, ?, ?)
		ON CONFLICT(channel_id) DO UPDATE SET
			last_message_id = excluded.last_message_id,
			snapshot = excluded.snapshot
	`, d.channelID, messageID, snapshot)
	if err != nil {
		return fmt.Errorf("failed to save summary marker: %w", err)
	}
	return nil
}

func digestMessage(all, fresh []match.OptionMatches) chat.Message {
	freshKeys := make(map[string]bool)
	for _, om := range fresh {
		for _, sm := range om.Slots {
			freshKeys[fmt.Sprintf("%d|%s", om.OptionID, sm.Slot)] = true
		}
	}

	msg := chat.Message{
		Title:       "Match digest",
		Description: "Current best times per idea. New since the last digest are marked.",
	}
	for _, om := range all {
		var lines []string
		for _, sm := range om.Slots {
			line := fmt.Sprintf("%s: %s", models.SlotLabel(sm.Slot), strings.Join(sm.UserIDs, ", "))
			if freshKeys[fmt.Sprintf("%d|%s", om.OptionID, sm.Slot)] {
				line += " (new)"
			}
			lines = append(lines, line)
		}
		msg.Fields = append(msg.Fields, chat.Field{Name: om.OptionText, Value: strings.Join(lines, "\n")})
	}
	return msg
}
