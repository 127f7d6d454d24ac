// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Poll kind constants
const (
	KindWeekly    = "weekly"
	KindQuarterly = "quarterly"
)

// RSVP status constants
const (
	StatusInterested = "interested"
	StatusGoing      = "going"
)

// Weekly slot grid: day codes Monday-first, one-hour evening buckets.
var WeekDays = []string{"Mo", "Di", "Mi", "Do", "Fr", "Sa", "So"}

const (
	FirstHour = 12
	LastHour  = 23
)

// Domain types

type Poll struct {
	ID              string
	Kind            string
	CreatedAt       time.Time
	PostedChannelID string
	PostedMessageID string
}

type Option struct {
	ID          int64
	PollID      string
	Text        string
	Description string
	CreatedAt   time.Time
	AuthorID    string
}

type Vote struct {
	PollID   string
	OptionID int64
	UserID   string
}

// TrackedEvent shadows a platform-native scheduled event. Empty posted
// channel/message ids mean "no live announcement currently posted."
type TrackedEvent struct {
	DiscordEventID  string
	GuildID         string
	PostedChannelID string
	PostedMessageID string
	StartTime       time.Time
	UpdatedAt       time.Time
}

type EventRSVP struct {
	DiscordEventID string
	UserID         string
	Status         string
}

// CreatedEvent is a bot-authored event, created from a form rather than a
// platform notification. Lifecycle is independent from TrackedEvent.
type CreatedEvent struct {
	ID              string
	PollID          string
	Title           string
	Description     string
	StartTime       time.Time
	EndTime         time.Time
	Participants    string
	Location        string
	PostedChannelID string
	PostedMessageID string
}

// WeeklySlot builds the canonical "<day-code>-<hour>" slot key.
func WeeklySlot(day string, hour int) string {
	return fmt.Sprintf("%s-%d", day, hour)
}

// ParseWeeklySlot splits a weekly slot key back into day code and hour.
func ParseWeeklySlot(slot string) (day string, hour int, err error) {
	i := strings.LastIndexByte(slot, '-')
	if i <= 0 {
		return "", 0, fmt.Errorf("malformed slot %q", slot)
	}
	day = slot[:i]
	hour, err = strconv.Atoi(slot[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("malformed slot %q: %w", slot, err)
	}
	return day, hour, nil
}

// IsDaySlot reports whether slot is a quarterly whole-day slot (ISO date).
func IsDaySlot(slot string) bool {
	_, err := time.Parse("2006-01-02", slot)
	return err == nil
}

// SlotLabel renders a slot key for display. Weekly slots become an hour
// range ("Fr. 19:00 - 20:00"), quarterly day slots pass through unchanged.
func SlotLabel(slot string) string {
	if IsDaySlot(slot) {
		return slot
	}
	day, hour, err := ParseWeeklySlot(slot)
	if err != nil || hour < 0 || hour > 23 {
		return slot
	}
	return fmt.Sprintf("%s. %02d:00 - %02d:00", day, hour, (hour+1)%24)
}
