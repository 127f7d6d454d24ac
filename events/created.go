// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhartmann/clubplan/chat"
	"github.com/jhartmann/clubplan/models"
)

// Bot-authored events remind closer to start than tracked ones.
var createdReminderOffsets = []int{24, 1}

func createdReminderJobID(hours int, eventID string) string {
	return fmt.Sprintf("created_event_reminder_%d_%s", hours, eventID)
}

// CreatedEventInput carries the raw form fields for a bot-authored event.
// Times are entered as "YYYY-MM-DD HH:MM" in the display timezone; the end
// time is optional.
type CreatedEventInput struct {
	Title        string
	Description  string
	StartTime    string
	EndTime      string
	Participants string
	Location     string
}

// CreateEvent validates the form, persists the event, posts its
// announcement, and schedules reminders. Malformed fields surface
// ErrInvalidInput with a corrective hint and leave no partial state.
func (s *Syncer) CreateEvent(pollID string, in CreatedEventInput) (models.CreatedEvent, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.CreatedEvent{}, fmt.Errorf("title must not be empty: %w", models.ErrInvalidInput)
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", strings.TrimSpace(in.StartTime), s.loc)
	if err != nil {
		return models.CreatedEvent{}, fmt.Errorf("start %q is not a time, use YYYY-MM-DD HH:MM: %w",
			in.StartTime, models.ErrInvalidInput)
	}

	var end time.Time
	if raw := strings.TrimSpace(in.EndTime); raw != "" {
		end, err = time.ParseInLocation("2006-01-02 15:04", raw, s.loc)
		if err != nil {
			return models.CreatedEvent{}, fmt.Errorf("end %q is not a time, use YYYY-MM-DD HH:MM: %w",
				in.EndTime, models.ErrInvalidInput)
		}
	}

	ev := models.CreatedEvent{
		ID:           uuid.NewString(),
		PollID:       pollID,
		Title:        title,
		Description:  strings.TrimSpace(in.Description),
		StartTime:    start,
		EndTime:      end,
		Participants: strings.TrimSpace(in.Participants),
		Location:     strings.TrimSpace(in.Location),
	}

	_, err = s.db.Exec(`
		INSERT INTO created_events (id, poll_id, title, description, start_time, end_time, participants, location)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.ID, ev.PollID, ev.Title, ev.Description, formatTime(ev.StartTime), formatTime(ev.EndTime),
		ev.Participants, ev.Location)
	if err != nil {
		return models.CreatedEvent{}, fmt.Errorf("failed to insert created event: %w", err)
	}

	msg := s.createdMessage(ev, 0)
	sentID, err := s.chat.SendMessage(s.channelID, msg)
	if err != nil {
		return models.CreatedEvent{}, fmt.Errorf("failed to post created event %s: %w", ev.ID, err)
	}
	ev.PostedChannelID = s.channelID
	ev.PostedMessageID = sentID
	if _, err := s.db.Exec(`
		UPDATE created_events SET posted_channel_id = ?, posted_message_id = ? WHERE id = ?
	`, ev.PostedChannelID, ev.PostedMessageID, ev.ID); err != nil {
		return models.CreatedEvent{}, fmt.Errorf("failed to record created event message: %w", err)
	}

	slog.Info("created event posted", "event_id", ev.ID, "message_id", sentID)

	s.scheduleCreatedReminders(ev.ID, ev.StartTime)
	return ev, nil
}

// scheduleCreatedReminders mirrors ScheduleReminders with the 24h/1h
// offsets and the created_event job id namespace.
func (s *Syncer) scheduleCreatedReminders(eventID string, start time.Time) {
	for _, h := range createdReminderOffsets {
		s.sched.Cancel(createdReminderJobID(h, eventID))
	}
	if start.IsZero() {
		return
	}

	now := s.now()
	for _, h := range createdReminderOffsets {
		hours := h
		at := start.Add(-time.Duration(hours) * time.Hour)
		switch {
		case at.After(now):
			s.sched.ScheduleAt(createdReminderJobID(hours, eventID), at, func() {
				if err := s.runCreatedReminder(eventID, hours); err != nil {
					slog.Error("created-event reminder failed", "event_id", eventID, "hours", hours, "error", err)
				}
			})
		case now.Before(start):
			if err := s.runCreatedReminder(eventID, hours); err != nil {
				slog.Error("late created-event reminder failed", "event_id", eventID, "hours", hours, "error", err)
			}
		}
	}
}

// runCreatedReminder replaces the event's announcement with the annotated
// one, same single-live-message discipline as tracked events.
func (s *Syncer) runCreatedReminder(eventID string, hours int) error {
	ev, err := s.getCreatedEvent(eventID)
	if err != nil {
		return nil // event deleted between scheduling and firing
	}

	if ev.PostedMessageID != "" {
		_, err := s.chat.FetchMessage(ev.PostedChannelID, ev.PostedMessageID)
		switch {
		case err == nil:
			if err := s.chat.DeleteMessage(ev.PostedChannelID, ev.PostedMessageID); err != nil && !errors.Is(err, chat.ErrNotFound) {
				slog.Error("failed to delete old created-event message", "event_id", eventID, "error", err)
			}
		case errors.Is(err, chat.ErrNotFound):
			if _, err := s.db.Exec(`
				UPDATE created_events SET posted_channel_id = '', posted_message_id = '' WHERE id = ?
			`, eventID); err != nil {
				return err
			}
		default:
			slog.Error("failed to verify old created-event message", "event_id", eventID, "error", err)
		}
	}

	sentID, err := s.chat.SendMessage(s.channelID, s.createdMessage(ev, hours))
	if err != nil {
		return fmt.Errorf("failed to send created-event reminder %s: %w", eventID, err)
	}
	if _, err := s.db.Exec(`
		UPDATE created_events SET posted_channel_id = ?, posted_message_id = ? WHERE id = ?
	`, s.channelID, sentID, eventID); err != nil {
		return err
	}

	slog.Info("created-event reminder posted", "event_id", eventID, "hours", hours, "message_id", sentID)
	return nil
}

func (s *Syncer) getCreatedEvent(eventID string) (models.CreatedEvent, error) {
	var ev models.CreatedEvent
	var startRaw, endRaw string
	err := s.db.QueryRow(`
		SELECT id, poll_id, title, description, start_time, end_time, participants, location,
		       posted_channel_id, posted_message_id
		FROM created_events WHERE id = ?
	`, eventID).Scan(&ev.ID, &ev.PollID, &ev.Title, &ev.Description, &startRaw, &endRaw,
		&ev.Participants, &ev.Location, &ev.PostedChannelID, &ev.PostedMessageID)
	if err != nil {
		return models.CreatedEvent{}, fmt.Errorf("failed to query created event %s: %w", eventID, err)
	}
	ev.StartTime = parseTime(startRaw)
	ev.EndTime = parseTime(endRaw)
	return ev, nil
}

func (s *Syncer) createdMessage(ev models.CreatedEvent, hoursLeft int) chat.Message {
	title := ev.Title
	if hoursLeft > 0 {
		title = fmt.Sprintf("%s — starts in ~%d hours", ev.Title, hoursLeft)
	}
	msg := chat.Message{Title: title, Description: ev.Description}

	if !ev.StartTime.IsZero() {
		msg.Fields = append(msg.Fields, chat.Field{
			Name:  "Start",
			Value: ev.StartTime.In(s.loc).Format("02.01.2006 15:04 MST"),
		})
	}
	if !ev.EndTime.IsZero() {
		msg.Fields = append(msg.Fields, chat.Field{
			Name:  "End",
			Value: ev.EndTime.In(s.loc).Format("02.01.2006 15:04 MST"),
		})
	}
	if ev.Location != "" {
		msg.Fields = append(msg.Fields, chat.Field{Name: "Location", Value: ev.Location})
	}
	if ev.Participants != "" {
		msg.Fields = append(msg.Fields, chat.Field{Name: "Participants", Value: ev.Participants})
	}
	return msg
}

// rescheduleAllCreated restores reminder jobs for bot-authored events on
// startup.
func (s *Syncer) rescheduleAllCreated() error {
	rows, err := s.db.Query(`SELECT id, start_time FROM created_events`)
	if err != nil {
		return fmt.Errorf("failed to query created events: %w", err)
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
		s.scheduleCreatedReminders(p.id, p.start)
	}
	return nil
}
