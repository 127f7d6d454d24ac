// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jhartmann/clubplan/chat"
	"github.com/jhartmann/clubplan/db"
	"github.com/jhartmann/clubplan/models"
)

// SetupTestDB creates a fresh SQLite database in a per-test temp directory
// with the full schema applied.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// CreateTestPoll inserts a poll row and returns its ID.
// kind should be models.KindWeekly or models.KindQuarterly.
func CreateTestPoll(t *testing.T, conn *sql.DB, kind string) string {
	t.Helper()

	pollID := fmt.Sprintf("test-%s-%d", kind, time.Now().UnixNano())
	_, err := conn.Exec(`
		INSERT INTO polls (id, kind, created_at) VALUES (?, ?, ?)
	`, pollID, kind, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	return pollID
}

// AddTestOption adds an option to a poll and returns the option ID.
func AddTestOption(t *testing.T, conn *sql.DB, pollID, text, authorID string) int64 {
	t.Helper()

	res, err := conn.Exec(`
		INSERT INTO options (poll_id, text, description, created_at, author_id)
		VALUES (?, ?, '', ?, ?)
	`, pollID, text, time.Now().UTC().Format(time.RFC3339), authorID)
	if err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read option id: %v", err)
	}
	return id
}

// AddTestVote records a vote for an option.
func AddTestVote(t *testing.T, conn *sql.DB, pollID string, optionID int64, userID string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO votes (poll_id, option_id, user_id) VALUES (?, ?, ?)
	`, pollID, optionID, userID)
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}
}

// AddAvailability records availability slots for a user.
func AddAvailability(t *testing.T, conn *sql.DB, pollID, userID string, slots ...string) {
	t.Helper()

	for _, slot := range slots {
		_, err := conn.Exec(`
			INSERT INTO availability (poll_id, user_id, slot) VALUES (?, ?, ?)
		`, pollID, userID, slot)
		if err != nil {
			t.Fatalf("Failed to create test availability: %v", err)
		}
	}
}

// CreateTrackedEvent inserts a tracked-event shadow row.
func CreateTrackedEvent(t *testing.T, conn *sql.DB, eventID string, start time.Time) {
	t.Helper()

	startRaw := ""
	if !start.IsZero() {
		startRaw = start.UTC().Format(time.RFC3339)
	}
	_, err := conn.Exec(`
		INSERT INTO tracked_events (discord_event_id, guild_id, start_time, updated_at)
		VALUES (?, 'guild-1', ?, ?)
	`, eventID, startRaw, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create tracked event: %v", err)
	}
}

// AddTestRSVP marks a user interested in an event.
func AddTestRSVP(t *testing.T, conn *sql.DB, eventID, userID string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO event_rsvps (discord_event_id, user_id, status) VALUES (?, ?, ?)
	`, eventID, userID, models.StatusInterested)
	if err != nil {
		t.Fatalf("Failed to create test rsvp: %v", err)
	}
}

// FakeChat is an in-memory chat.Client. It stores messages keyed by
// channel and id, records every send and delete, and can be scripted to
// fail fetches to exercise the self-healing paths.
type FakeChat struct {
	mu sync.Mutex

	nextID   int
	messages map[string]chat.Message // "channel|id"

	Sent    []string // message ids in send order
	Deleted []string // message ids in delete order

	// FetchErr, when set, is returned by every FetchMessage call.
	FetchErr error
}

func NewFakeChat() *FakeChat {
	return &FakeChat{messages: make(map[string]chat.Message)}
}

func (f *FakeChat) key(channelID, messageID string) string {
	return channelID + "|" + messageID
}

func (f *FakeChat) SendMessage(channelID string, msg chat.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := fmt.Sprintf("msg-%d", f.nextID)
	f.messages[f.key(channelID, id)] = msg
	f.Sent = append(f.Sent, id)
	return id, nil
}

func (f *FakeChat) EditMessage(channelID, messageID string, msg chat.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	k := f.key(channelID, messageID)
	if _, ok := f.messages[k]; !ok {
		return chat.ErrNotFound
	}
	f.messages[k] = msg
	return nil
}

func (f *FakeChat) DeleteMessage(channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	k := f.key(channelID, messageID)
	if _, ok := f.messages[k]; !ok {
		return chat.ErrNotFound
	}
	delete(f.messages, k)
	f.Deleted = append(f.Deleted, messageID)
	return nil
}

func (f *FakeChat) FetchMessage(channelID, messageID string) (chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FetchErr != nil {
		return chat.Message{}, f.FetchErr
	}
	msg, ok := f.messages[f.key(channelID, messageID)]
	if !ok {
		return chat.Message{}, chat.ErrNotFound
	}
	return msg, nil
}

// Drop removes a message behind the bot's back, simulating a moderator
// deleting it by hand.
func (f *FakeChat) Drop(channelID, messageID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.messages, f.key(channelID, messageID))
}

// Live reports whether a message currently exists.
func (f *FakeChat) Live(channelID, messageID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.messages[f.key(channelID, messageID)]
	return ok
}

// Message returns a stored message for assertions.
func (f *FakeChat) Message(channelID, messageID string) (chat.Message, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.messages[f.key(channelID, messageID)]
	return msg, ok
}

// LiveCount counts messages currently live in a channel.
func (f *FakeChat) LiveCount(channelID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for k := range f.messages {
		if len(k) > len(channelID) && k[:len(channelID)+1] == channelID+"|" {
			n++
		}
	}
	return n
}
