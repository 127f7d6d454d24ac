// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jhartmann/clubplan/chat"
	"github.com/jhartmann/clubplan/schedule"
)

// Notification is one scheduled-event lifecycle notification from the
// platform: created, updated, or deleted (deleted carries only the id).
type Notification struct {
	EventID     string
	GuildID     string
	Name        string
	Description string
	StartTime   time.Time
}

// Syncer maintains an at-most-1:1 mapping between an external scheduled
// event and a single live announcement message. The load-bearing invariant
// is fetch-before-trust: a stored message reference is never assumed valid;
// it is verified on every path, and self-healed to empty on not-found.
type Syncer struct {
	db        *sql.DB
	chat      chat.Client
	sched     *schedule.Scheduler
	channelID string
	loc       *time.Location
	now       func() time.Time
}

func NewSyncer(db *sql.DB, client chat.Client, sched *schedule.Scheduler, channelID string, loc *time.Location) *Syncer {
	return &Syncer{
		db:        db,
		chat:      client,
		sched:     sched,
		channelID: channelID,
		loc:       loc,
		now:       time.Now,
	}
}

// HandleCreated processes an "event created" notification. Duplicate
// notifications are harmless: the upsert keeps the posted reference, and a
// still-live announcement is never re-posted.
func (s *Syncer) HandleCreated(n Notification) error {
	_, err := s.ensureAnnouncement(n)
	return err
}

// ensureAnnouncement upserts the shadow row, verifies any recorded
// announcement, posts one if none is live, and (re)schedules reminders.
// Reports whether a new message was posted.
func (s *Syncer) ensureAnnouncement(n Notification) (posted bool, err error) {
	if err := s.upsertTracked(n); err != nil {
		return false, err
	}

	channelID, messageID, err := s.postedRef(n.EventID)
	if err != nil {
		return false, err
	}

	if messageID != "" {
		_, err := s.chat.FetchMessage(channelID, messageID)
		switch {
		case err == nil:
			// Announcement is live; never re-post. Reminders are still
			// rescheduled because start_time may have moved.
			s.ScheduleReminders(n.EventID, n.StartTime)
			return false, nil
		case errors.Is(err, chat.ErrNotFound):
			if err := s.clearPostedRef(n.EventID); err != nil {
				return false, err
			}
		default:
			// Transient failure: favor under-posting over duplicates.
			return false, fmt.Errorf("failed to verify announcement for event %s: %w", n.EventID, err)
		}
	}

	msg := s.announcementMessage(n.Name, n.Description, n.StartTime)
	sentID, err := s.chat.SendMessage(s.channelID, msg)
	if err != nil {
		return false, fmt.Errorf("failed to post announcement for event %s: %w", n.EventID, err)
	}
	if err := s.setPostedRef(n.EventID, s.channelID, sentID); err != nil {
		return false, err
	}
	slog.Info("event announcement posted", "event_id", n.EventID, "message_id", sentID)

	s.ScheduleReminders(n.EventID, n.StartTime)
	return true, nil
}

// HandleUpdated stores the new start time, reschedules reminders, and
// edits the live announcement in place. A vanished announcement clears the
// stored reference but is not re-posted here; the next created-style
// reconciliation (or a manual sync) recovers it.
func (s *Syncer) HandleUpdated(n Notification) error {
	_, err := s.db.Exec(`
		UPDATE tracked_events SET start_time = ?, updated_at = ? WHERE discord_event_id = ?
	`, formatTime(n.StartTime), s.now().UTC().Format(time.RFC3339), n.EventID)
	if err != nil {
		return fmt.Errorf("failed to update event %s: %w", n.EventID, err)
	}

	s.ScheduleReminders(n.EventID, n.StartTime)

	channelID, messageID, err := s.postedRef(n.EventID)
	if err != nil {
		return err
	}
	if messageID == "" {
		return nil
	}

	if _, err := s.chat.FetchMessage(channelID, messageID); err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			slog.Info("announcement missing during update, clearing reference", "event_id", n.EventID)
			return s.clearPostedRef(n.EventID)
		}
		return fmt.Errorf("failed to verify announcement for event %s: %w", n.EventID, err)
	}

	msg, err := s.storedMessage(n.EventID, 0)
	if err != nil {
		return err
	}
	if err := s.chat.EditMessage(channelID, messageID, msg); err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			return s.clearPostedRef(n.EventID)
		}
		return fmt.Errorf("failed to edit announcement for event %s: %w", n.EventID, err)
	}
	return nil
}

// HandleDeleted best-effort deletes the live announcement, then drops the
// shadow row, its RSVPs, and any pending reminders.
func (s *Syncer) HandleDeleted(eventID string) error {
	channelID, messageID, err := s.postedRef(eventID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if messageID != "" {
		if err := s.chat.DeleteMessage(channelID, messageID); err != nil && !errors.Is(err, chat.ErrNotFound) {
			slog.Error("failed to delete announcement", "event_id", eventID, "error", err)
		}
	}

	for _, h := range reminderOffsets {
		s.sched.Cancel(reminderJobID(h, eventID))
	}

	if _, err := s.db.Exec(`DELETE FROM tracked_events WHERE discord_event_id = ?`, eventID); err != nil {
		return fmt.Errorf("failed to delete tracked event %s: %w", eventID, err)
	}
	if _, err := s.db.Exec(`DELETE FROM event_rsvps WHERE discord_event_id = ?`, eventID); err != nil {
		return fmt.Errorf("failed to delete rsvps for event %s: %w", eventID, err)
	}

	slog.Info("event deleted", "event_id", eventID)
	return nil
}

// SyncAll reconciles the platform's current scheduled-event list against
// the local shadow rows, posting announcements for events whose message is
// missing. Returns how many announcements were newly posted.
func (s *Syncer) SyncAll(list []Notification) (int, error) {
	posted := 0
	for _, n := range list {
		p, err := s.ensureAnnouncement(n)
		if err != nil {
			slog.Error("failed to sync event", "event_id", n.EventID, "error", err)
			continue
		}
		if p {
			posted++
		}
	}
	return posted, nil
}

// RescheduleAll re-schedules reminders for every known event; called once
// on startup. Offsets that passed while the process was down fire
// immediately if the event has not started yet.
func (s *Syncer) RescheduleAll() error {
	rows, err := s.db.Query(`SELECT discord_event_id, start_time FROM tracked_events`)
	if err != nil {
		return fmt.Errorf("failed to query tracked events: %w", err)
	}
	defer rows.Close()

	type pair struct {
		id    string
		start time.Time
	}
	var all []pair
	for rows.Next() {
		var id, startRaw string
		if err := rows.Scan(&id, &startRaw); err != nil {
			return err
		}
		all = append(all, pair{id, parseTime(startRaw)})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range all {
		s.ScheduleReminders(p.id, p.start)
	}

	return s.rescheduleAllCreated()
}

// upsertTracked inserts or refreshes the shadow row, preserving any
// recorded announcement reference across duplicate notifications.
func (s *Syncer) upsertTracked(n Notification) error {
	_, err := s.db.Exec(`
		INSERT INTO tracked_events (discord_event_id, guild_id, start_time, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(discord_event_id) DO UPDATE SET
			guild_id = excluded.guild_id,
			start_time = excluded.start_time,
			updated_at = excluded.updated_at
	`, n.EventID, n.GuildID, formatTime(n.StartTime), s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert event %s: %w", n.EventID, err)
	}
	return nil
}

func (s *Syncer) postedRef(eventID string) (channelID, messageID string, err error) {
	err = s.db.QueryRow(`
		SELECT posted_channel_id, posted_message_id FROM tracked_events WHERE discord_event_id = ?
	`, eventID).Scan(&channelID, &messageID)
	if err == sql.ErrNoRows {
		return "", "", sql.ErrNoRows
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to query event %s: %w", eventID, err)
	}
	return channelID, messageID, nil
}

func (s *Syncer) setPostedRef(eventID, channelID, messageID string) error {
	_, err := s.db.Exec(`
		UPDATE tracked_events SET posted_channel_id = ?, posted_message_id = ?, updated_at = ?
		WHERE discord_event_id = ?
	`, channelID, messageID, s.now().UTC().Format(time.RFC3339), eventID)
	if err != nil {
		return fmt.Errorf("failed to record announcement for event %s: %w", eventID, err)
	}
	return nil
}

func (s *Syncer) clearPostedRef(eventID string) error {
	return s.setPostedRef(eventID, "", "")
}

// announcementMessage renders the initial announcement from notification
// fields (the shadow row does not keep name/description).
func (s *Syncer) announcementMessage(name, description string, start time.Time) chat.Message {
	if name == "" {
		name = "Event"
	}
	msg := chat.Message{Title: name, Description: description}
	if !start.IsZero() {
		msg.Fields = append(msg.Fields, chat.Field{
			Name:  "Start",
			Value: start.In(s.loc).Format("02.01.2006 15:04 MST"),
		})
	}
	return msg
}

// storedMessage rebuilds the announcement from the shadow row and RSVPs;
// used by edits and reminders, where the notification is long gone.
// hoursLeft > 0 annotates the title with the remaining time.
func (s *Syncer) storedMessage(eventID string, hoursLeft int) (chat.Message, error) {
	var startRaw string
	err := s.db.QueryRow(`
		SELECT start_time FROM tracked_events WHERE discord_event_id = ?
	`, eventID).Scan(&startRaw)
	if err != nil {
		return chat.Message{}, fmt.Errorf("failed to query event %s: %w", eventID, err)
	}

	title := "Event"
	if hoursLeft > 0 {
		title = fmt.Sprintf("Event — starts in ~%d hours", hoursLeft)
	}
	msg := chat.Message{Title: title, Description: "Details"}

	if start := parseTime(startRaw); !start.IsZero() {
		msg.Fields = append(msg.Fields, chat.Field{
			Name:  "Start",
			Value: start.In(s.loc).Format("02.01.2006 15:04 MST"),
		})
	}

	names, err := s.rsvpUserIDs(eventID)
	if err != nil {
		return chat.Message{}, err
	}
	value := "Nobody yet"
	if len(names) > 0 {
		value = strings.Join(names, ", ")
	}
	msg.Fields = append(msg.Fields, chat.Field{Name: "Interested", Value: value})

	return msg, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
