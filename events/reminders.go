// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jhartmann/clubplan/chat"
)

// Reminder offsets in hours before event start. Platform-native events get
// 24h and 2h; bot-authored events get 24h and 1h (see created.go).
var reminderOffsets = []int{24, 2}

func reminderJobID(hours int, eventID string) string {
	return fmt.Sprintf("event_reminder_%d_%s", hours, eventID)
}

// ScheduleReminders cancels any pending reminders for the event and
// schedules fresh ones relative to start. Always safe to call again, for
// example after an update notification. An offset that already passed
// while the event is still ahead fires immediately instead of being
// dropped; offsets past the start are skipped.
func (s *Syncer) ScheduleReminders(eventID string, start time.Time) {
	for _, h := range reminderOffsets {
		s.sched.Cancel(reminderJobID(h, eventID))
	}
	if start.IsZero() {
		return
	}

	now := s.now()
	for _, h := range reminderOffsets {
		hours := h
		at := start.Add(-time.Duration(hours) * time.Hour)
		switch {
		case at.After(now):
			s.sched.ScheduleAt(reminderJobID(hours, eventID), at, func() {
				if err := s.runReminder(eventID, hours); err != nil {
					slog.Error("reminder failed", "event_id", eventID, "hours", hours, "error", err)
				}
			})
		case now.Before(start):
			if err := s.runReminder(eventID, hours); err != nil {
				slog.Error("late reminder failed", "event_id", eventID, "hours", hours, "error", err)
			}
		}
	}
}

// runReminder replaces the live announcement with one annotated
// "starts in ~N hours": delete the old message (tolerating that it is
// already gone), send the new one, record the new reference. At most one
// live message per event at all times.
func (s *Syncer) runReminder(eventID string, hours int) error {
	channelID, messageID, err := s.postedRef(eventID)
	if err != nil {
		// Row gone (event deleted between scheduling and firing): nothing
		// to remind about.
		return nil
	}

	if messageID != "" {
		_, err := s.chat.FetchMessage(channelID, messageID)
		switch {
		case err == nil:
			if err := s.chat.DeleteMessage(channelID, messageID); err != nil && !errors.Is(err, chat.ErrNotFound) {
				slog.Error("failed to delete old announcement", "event_id", eventID, "error", err)
			}
		case errors.Is(err, chat.ErrNotFound):
			slog.Info("old announcement missing before reminder, clearing reference", "event_id", eventID)
			if err := s.clearPostedRef(eventID); err != nil {
				return err
			}
		default:
			slog.Error("failed to verify old announcement", "event_id", eventID, "error", err)
		}
	}

	msg, err := s.storedMessage(eventID, hours)
	if err != nil {
		return err
	}
	sentID, err := s.chat.SendMessage(s.channelID, msg)
	if err != nil {
		return fmt.Errorf("failed to send reminder for event %s: %w", eventID, err)
	}
	if err := s.setPostedRef(eventID, s.channelID, sentID); err != nil {
		return err
	}

	slog.Info("reminder posted", "event_id", eventID, "hours", hours, "message_id", sentID)
	return nil
}
