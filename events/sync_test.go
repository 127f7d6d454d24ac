// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jhartmann/clubplan/schedule"
	"github.com/jhartmann/clubplan/testutil"
)

const testChannel = "events-chan"

func newTestSyncer(t *testing.T) (*Syncer, *sql.DB, *testutil.FakeChat) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	fake := testutil.NewFakeChat()
	sched := schedule.New(time.UTC)
	t.Cleanup(sched.Stop)

	return NewSyncer(db, fake, sched, testChannel, time.UTC), db, fake
}

func testNotification(eventID string, start time.Time) Notification {
	return Notification{
		EventID:     eventID,
		GuildID:     "guild-1",
		Name:        "Club night",
		Description: "Monthly meetup",
		StartTime:   start,
	}
}

func TestHandleCreatedPostsOnce(t *testing.T) {
	s, _, fake := newTestSyncer(t)
	start := time.Now().Add(100 * time.Hour)

	if err := s.HandleCreated(testNotification("ev-1", start)); err != nil {
		t.Fatalf("HandleCreated failed: %v", err)
	}
	if len(fake.Sent) != 1 {
		t.Fatalf("Expected 1 message posted, got %d", len(fake.Sent))
	}

	// Duplicate notification while the message is live: no second post.
	if err := s.HandleCreated(testNotification("ev-1", start)); err != nil {
		t.Fatalf("HandleCreated (duplicate) failed: %v", err)
	}
	if len(fake.Sent) != 1 {
		t.Errorf("Expected no repost for duplicate notification, got %d sends", len(fake.Sent))
	}
	if fake.LiveCount(testChannel) != 1 {
		t.Errorf("Expected exactly 1 live message, got %d", fake.LiveCount(testChannel))
	}
}

func TestHandleCreatedSelfHealsDeletedMessage(t *testing.T) {
	s, _, fake := newTestSyncer(t)
	start := time.Now().Add(100 * time.Hour)

	if err := s.HandleCreated(testNotification("ev-1", start)); err != nil {
		t.Fatalf("HandleCreated failed: %v", err)
	}

	// Moderator deletes the announcement by hand.
	fake.Drop(testChannel, fake.Sent[0])

	if err := s.HandleCreated(testNotification("ev-1", start)); err != nil {
		t.Fatalf("HandleCreated after manual delete failed: %v", err)
	}
	if len(fake.Sent) != 2 {
		t.Fatalf("Expected a fresh announcement, got %d sends", len(fake.Sent))
	}

	channelID, messageID, err := s.postedRef("ev-1")
	if err != nil {
		t.Fatalf("postedRef failed: %v", err)
	}
	if channelID != testChannel || messageID != fake.Sent[1] {
		t.Errorf("Expected reference to new message, got %q/%q", channelID, messageID)
	}
}

func TestHandleCreatedAbortsOnTransientFetchError(t *testing.T) {
	s, _, fake := newTestSyncer(t)
	start := time.Now().Add(100 * time.Hour)

	if err := s.HandleCreated(testNotification("ev-1", start)); err != nil {
		t.Fatalf("HandleCreated failed: %v", err)
	}

	fake.FetchErr = errors.New("rate limited")
	if err := s.HandleCreated(testNotification("ev-1", start)); err == nil {
		t.Fatal("Expected transient fetch failure to abort")
	}
	if len(fake.Sent) != 1 {
		t.Errorf("Expected no post on transient failure, got %d sends", len(fake.Sent))
	}
}

func TestHandleUpdatedEditsInPlace(t *testing.T) {
	s, db, fake := newTestSyncer(t)
	start := time.Now().Add(100 * time.Hour)

	if err := s.HandleCreated(testNotification("ev-1", start)); err != nil {
		t.Fatalf("HandleCreated failed: %v", err)
	}

	moved := start.Add(24 * time.Hour)
	if err := s.HandleUpdated(testNotification("ev-1", moved)); err != nil {
		t.Fatalf("HandleUpdated failed: %v", err)
	}

	if len(fake.Sent) != 1 {
		t.Errorf("Expected edit in place, got %d sends", len(fake.Sent))
	}

	var storedStart string
	if err := db.QueryRow(`
		SELECT start_time FROM tracked_events WHERE discord_event_id = 'ev-1'
	`).Scan(&storedStart); err != nil {
		t.Fatalf("Failed to read start_time: %v", err)
	}
	if storedStart != moved.UTC().Format(time.RFC3339) {
		t.Errorf("Expected stored start %s, got %s", moved.UTC().Format(time.RFC3339), storedStart)
	}
}

func TestHandleUpdatedMissingMessageClearsRefWithoutRepost(t *testing.T) {
	s, _, fake := newTestSyncer(t)
	start := time.Now().Add(100 * time.Hour)

	if err := s.HandleCreated(testNotification("ev-1", start)); err != nil {
		t.Fatalf("HandleCreated failed: %v", err)
	}
	fake.Drop(testChannel, fake.Sent[0])

	if err := s.HandleUpdated(testNotification("ev-1", start.Add(time.Hour))); err != nil {
		t.Fatalf("HandleUpdated failed: %v", err)
	}

	if len(fake.Sent) != 1 {
		t.Errorf("Expected no repost on update, got %d sends", len(fake.Sent))
	}
	_, messageID, err := s.postedRef("ev-1")
	if err != nil {
		t.Fatalf("postedRef failed: %v", err)
	}
	if messageID != "" {
		t.Errorf("Expected cleared reference, got %q", messageID)
	}
}

func TestHandleDeletedRemovesEverything(t *testing.T) {
	s, db, fake := newTestSyncer(t)
	start := time.Now().Add(100 * time.Hour)

	if err := s.HandleCreated(testNotification("ev-1", start)); err != nil {
		t.Fatalf("HandleCreated failed: %v", err)
	}
	testutil.AddTestRSVP(t, db, "ev-1", "alice")

	if err := s.HandleDeleted("ev-1"); err != nil {
		t.Fatalf("HandleDeleted failed: %v", err)
	}

	if fake.LiveCount(testChannel) != 0 {
		t.Errorf("Expected announcement deleted, %d live", fake.LiveCount(testChannel))
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM tracked_events`).Scan(&n); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected tracked row gone, got %d", n)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM event_rsvps`).Scan(&n); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected rsvps gone, got %d", n)
	}

	for _, h := range []int{24, 2} {
		if s.sched.Pending(reminderJobID(h, "ev-1")) {
			t.Errorf("Expected %dh reminder cancelled after delete", h)
		}
	}
}

func TestHandleDeletedUnknownEvent(t *testing.T) {
	s, _, _ := newTestSyncer(t)

	if err := s.HandleDeleted("never-seen"); err != nil {
		t.Errorf("Expected delete of unknown event to be a no-op, got %v", err)
	}
}

func TestSyncAllRecoversMissingMessages(t *testing.T) {
	s, _, fake := newTestSyncer(t)
	start := time.Now().Add(100 * time.Hour)

	n1 := testNotification("ev-1", start)
	n2 := testNotification("ev-2", start)

	if err := s.HandleCreated(n1); err != nil {
		t.Fatalf("HandleCreated failed: %v", err)
	}
	if err := s.HandleCreated(n2); err != nil {
		t.Fatalf("HandleCreated failed: %v", err)
	}

	// ev-1's announcement vanishes while the bot is offline.
	fake.Drop(testChannel, fake.Sent[0])

	posted, err := s.SyncAll([]Notification{n1, n2})
	if err != nil {
		t.Fatalf("SyncAll failed: %v", err)
	}
	if posted != 1 {
		t.Errorf("Expected exactly 1 recovered announcement, got %d", posted)
	}
	if fake.LiveCount(testChannel) != 2 {
		t.Errorf("Expected 2 live messages after sync, got %d", fake.LiveCount(testChannel))
	}
}

func TestScheduleRemindersRegistersPendingJobs(t *testing.T) {
	s, _, _ := newTestSyncer(t)
	start := time.Now().Add(100 * time.Hour)

	if err := s.HandleCreated(testNotification("ev-1", start)); err != nil {
		t.Fatalf("HandleCreated failed: %v", err)
	}

	for _, h := range []int{24, 2} {
		if !s.sched.Pending(reminderJobID(h, "ev-1")) {
			t.Errorf("Expected pending %dh reminder", h)
		}
	}
}

func TestReminderReplacesAnnouncement(t *testing.T) {
	s, _, fake := newTestSyncer(t)

	// Event 12h out: the 24h reminder is late and fires immediately, the
	// 2h reminder stays pending.
	base := time.Now()
	s.now = func() time.Time { return base }
	start := base.Add(12 * time.Hour)

	if err := s.HandleCreated(testNotification("ev-1", start)); err != nil {
		t.Fatalf("HandleCreated failed: %v", err)
	}

	// Initial announcement plus the immediate 24h reminder replacement.
	if len(fake.Sent) != 2 {
		t.Fatalf("Expected announcement + immediate late reminder, got %d sends", len(fake.Sent))
	}
	if len(fake.Deleted) != 1 || fake.Deleted[0] != fake.Sent[0] {
		t.Errorf("Expected original announcement deleted, got %v", fake.Deleted)
	}
	if fake.LiveCount(testChannel) != 1 {
		t.Errorf("Expected 1 live message, got %d", fake.LiveCount(testChannel))
	}

	_, messageID, err := s.postedRef("ev-1")
	if err != nil {
		t.Fatalf("postedRef failed: %v", err)
	}
	if messageID != fake.Sent[1] {
		t.Errorf("Expected reference to reminder message, got %q", messageID)
	}

	if !s.sched.Pending(reminderJobID(2, "ev-1")) {
		t.Error("Expected 2h reminder still pending")
	}
	if s.sched.Pending(reminderJobID(24, "ev-1")) {
		t.Error("Expected 24h reminder not pending after firing immediately")
	}
}

func TestRemindersSkippedForPastEvent(t *testing.T) {
	s, _, fake := newTestSyncer(t)

	base := time.Now()
	s.now = func() time.Time { return base }
	start := base.Add(-time.Hour)

	if err := s.HandleCreated(testNotification("ev-1", start)); err != nil {
		t.Fatalf("HandleCreated failed: %v", err)
	}

	// Just the announcement; no reminders for an event already started.
	if len(fake.Sent) != 1 {
		t.Errorf("Expected only the announcement, got %d sends", len(fake.Sent))
	}
	for _, h := range []int{24, 2} {
		if s.sched.Pending(reminderJobID(h, "ev-1")) {
			t.Errorf("Expected no pending %dh reminder for past event", h)
		}
	}
}

func TestRescheduleAllRestoresJobs(t *testing.T) {
	s, db, _ := newTestSyncer(t)
	start := time.Now().Add(100 * time.Hour)

	testutil.CreateTrackedEvent(t, db, "ev-1", start)

	if err := s.RescheduleAll(); err != nil {
		t.Fatalf("RescheduleAll failed: %v", err)
	}
	for _, h := range []int{24, 2} {
		if !s.sched.Pending(reminderJobID(h, "ev-1")) {
			t.Errorf("Expected restored %dh reminder", h)
		}
	}
}
