// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhartmann/clubplan/models"
)

// Manager owns the poll lifecycle: poll creation, idea submission, vote
// toggling, and availability staging/persistence. Persisted state lives in
// the store; the only in-process state is the map of tentative,
// not-yet-submitted availability selections, which is deliberately lost on
// restart (resubmitting is cheap).
type Manager struct {
	db  *sql.DB
	now func() time.Time

	mu     sync.Mutex
	staged map[string]map[string]bool // pollID + "\x00" + userID -> slot set
}

func NewManager(db *sql.DB) *Manager {
	return &Manager{
		db:     db,
		now:    time.Now,
		staged: make(map[string]map[string]bool),
	}
}

func stageKey(pollID, userID string) string {
	return pollID + "\x00" + userID
}

// CreateWeeklyPoll inserts a new weekly poll. The id is the creation
// timestamp at second precision; two polls cannot be created by the same
// process within the same second through normal flow.
func (m *Manager) CreateWeeklyPoll() (string, error) {
	now := m.now().UTC()
	pollID := now.Format("20060102-150405")

	_, err := m.db.Exec(`
		INSERT INTO polls (id, kind, created_at) VALUES (?, ?, ?)
	`, pollID, models.KindWeekly, now.Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("failed to insert poll: %w", err)
	}

	slog.Info("poll created", "poll_id", pollID, "kind", models.KindWeekly)
	return pollID, nil
}

// CreateQuarterlyPoll inserts the poll for the given quarter start if it
// does not exist yet. The id is derived from the quarter start date, so
// the once-per-quarter check is a primary-key conflict.
func (m *Manager) CreateQuarterlyPoll(quarterStart time.Time) (pollID string, created bool, err error) {
	pollID = QuarterPollID(quarterStart)

	res, err := m.db.Exec(`
		INSERT OR IGNORE INTO polls (id, kind, created_at) VALUES (?, ?, ?)
	`, pollID, models.KindQuarterly, m.now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", false, fmt.Errorf("failed to insert quarterly poll: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return "", false, err
	}
	if n > 0 {
		slog.Info("poll created", "poll_id", pollID, "kind", models.KindQuarterly)
	}
	return pollID, n > 0, nil
}

// CurrentPoll returns the most recently created poll of the given kind.
// Older polls remain queryable but are considered superseded.
func (m *Manager) CurrentPoll(kind string) (models.Poll, error) {
	var p models.Poll
	var createdAt string
	err := m.db.QueryRow(`
		SELECT id, kind, created_at, posted_channel_id, posted_message_id
		FROM polls WHERE kind = ? ORDER BY created_at DESC LIMIT 1
	`, kind).Scan(&p.ID, &p.Kind, &createdAt, &p.PostedChannelID, &p.PostedMessageID)
	if err == sql.ErrNoRows {
		return models.Poll{}, fmt.Errorf("no %s poll: %w", kind, models.ErrNotFound)
	}
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query poll: %w", err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return p, nil
}

// GetPoll loads a poll by id.
func (m *Manager) GetPoll(pollID string) (models.Poll, error) {
	var p models.Poll
	var createdAt string
	err := m.db.QueryRow(`
		SELECT id, kind, created_at, posted_channel_id, posted_message_id
		FROM polls WHERE id = ?
	`, pollID).Scan(&p.ID, &p.Kind, &createdAt, &p.PostedChannelID, &p.PostedMessageID)
	if err == sql.ErrNoRows {
		return models.Poll{}, fmt.Errorf("poll %s: %w", pollID, models.ErrNotFound)
	}
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query poll: %w", err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return p, nil
}

// SetPostedMessage records the live announcement message for a poll. The
// reference is always maintained here; there is no text-matching recovery.
func (m *Manager) SetPostedMessage(pollID, channelID, messageID string) error {
	_, err := m.db.Exec(`
		UPDATE polls SET posted_channel_id = ?, posted_message_id = ? WHERE id = ?
	`, channelID, messageID, pollID)
	if err != nil {
		return fmt.Errorf("failed to update poll message ref: %w", err)
	}
	return nil
}

// ClearPostedMessage drops a stale announcement reference.
func (m *Manager) ClearPostedMessage(pollID string) error {
	return m.SetPostedMessage(pollID, "", "")
}

// AddOption inserts a user-submitted idea. Blank text is rejected with
// ErrInvalidInput; duplicate text is allowed by design.
func (m *Manager) AddOption(pollID, text, description, authorID string) (int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("option text must not be empty: %w", models.ErrInvalidInput)
	}

	res, err := m.db.Exec(`
		INSERT INTO options (poll_id, text, description, created_at, author_id)
		VALUES (?, ?, ?, ?, ?)
	`, pollID, text, strings.TrimSpace(description), m.now().UTC().Format(time.RFC3339), authorID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert option: %w", err)
	}

	optionID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	slog.Info("option added", "poll_id", pollID, "option_id", optionID, "author_id", authorID)
	return optionID, nil
}

// Options lists a poll's options in submission order.
func (m *Manager) Options(pollID string) ([]models.Option, error) {
	rows, err := m.db.Query(`
		SELECT id, poll_id, text, description, created_at, author_id
		FROM options WHERE poll_id = ? ORDER BY id
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	var opts []models.Option
	for rows.Next() {
		var o models.Option
		var createdAt string
		if err := rows.Scan(&o.ID, &o.PollID, &o.Text, &o.Description, &createdAt, &o.AuthorID); err != nil {
			return nil, err
		}
		o.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		opts = append(opts, o)
	}

	return opts, rows.Err()
}

// DeleteOwnOption removes an option and all its votes, but only for the
// option's author. Anyone else gets ErrNotAuthorized, surfaced to the user
// rather than logged as a bug.
func (m *Manager) DeleteOwnOption(pollID string, optionID int64, actingUserID string) error {
	var authorID string
	err := m.db.QueryRow(`
		SELECT author_id FROM options WHERE poll_id = ? AND id = ?
	`, pollID, optionID).Scan(&authorID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("option %d: %w", optionID, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to query option: %w", err)
	}

	if authorID != actingUserID {
		return fmt.Errorf("only the author may delete an idea: %w", models.ErrNotAuthorized)
	}

	// Votes first, then the option; no FK cascade is relied on.
	if _, err := m.db.Exec(`DELETE FROM votes WHERE poll_id = ? AND option_id = ?`, pollID, optionID); err != nil {
		return fmt.Errorf("failed to delete votes: %w", err)
	}
	if _, err := m.db.Exec(`DELETE FROM options WHERE poll_id = ? AND id = ?`, pollID, optionID); err != nil {
		return fmt.Errorf("failed to delete option: %w", err)
	}

	slog.Info("option deleted", "poll_id", pollID, "option_id", optionID, "author_id", actingUserID)
	return nil
}

// ToggleVote flips the user's vote on an option: insert if absent, delete
// if present. Idempotent per click, not per state.
func (m *Manager) ToggleVote(pollID string, optionID int64, userID string) (voted bool, err error) {
	res, err := m.db.Exec(`
		DELETE FROM votes WHERE poll_id = ? AND option_id = ? AND user_id = ?
	`, pollID, optionID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete vote: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	_, err = m.db.Exec(`
		INSERT OR IGNORE INTO votes (poll_id, option_id, user_id) VALUES (?, ?, ?)
	`, pollID, optionID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to insert vote: %w", err)
	}
	return true, nil
}

// Voters lists the user ids that voted for an option, sorted.
func (m *Manager) Voters(pollID string, optionID int64) ([]string, error) {
	rows, err := m.db.Query(`
		SELECT user_id FROM votes WHERE poll_id = ? AND option_id = ?
	`, pollID, optionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
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

// StageSlot toggles a slot in the user's tentative selection. Nothing is
// persisted until SubmitAvailability. Returns whether the slot is selected
// after the toggle.
func (m *Manager) StageSlot(pollID, userID, slot string) (selected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := stageKey(pollID, userID)
	set := m.staged[k]
	if set == nil {
		set = make(map[string]bool)
		m.staged[k] = set
	}
	if set[slot] {
		delete(set, slot)
		return false
	}
	set[slot] = true
	return true
}

// StagedSlots returns the user's tentative selection, sorted.
func (m *Manager) StagedSlots(pollID, userID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var slots []string
	for slot := range m.staged[stageKey(pollID, userID)] {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	return slots
}

// SubmitAvailability persists the user's staged selection, replacing any
// previously persisted set, then clears the staging area.
func (m *Manager) SubmitAvailability(pollID, userID string) error {
	slots := m.StagedSlots(pollID, userID)

	if err := m.ReplaceAvailability(pollID, userID, slots); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.staged, stageKey(pollID, userID))
	m.mu.Unlock()

	slog.Info("availability submitted", "poll_id", pollID, "user_id", userID, "slots", len(slots))
	return nil
}

// ReplaceAvailability persists exactly the given slot set for the user:
// delete-all-then-insert, no union with the prior set.
func (m *Manager) ReplaceAvailability(pollID, userID string, slots []string) error {
	if _, err := m.db.Exec(`
		DELETE FROM availability WHERE poll_id = ? AND user_id = ?
	`, pollID, userID); err != nil {
		return fmt.Errorf("failed to clear availability: %w", err)
	}

	for _, slot := range slots {
		if _, err := m.db.Exec(`
			INSERT OR IGNORE INTO availability (poll_id, user_id, slot) VALUES (?, ?, ?)
		`, pollID, userID, slot); err != nil {
			return fmt.Errorf("failed to insert availability: %w", err)
		}
	}
	return nil
}

// ClearAvailability is the explicit "forget me": it removes both the
// persisted rows and any staged selection for the user.
func (m *Manager) ClearAvailability(pollID, userID string) error {
	if _, err := m.db.Exec(`
		DELETE FROM availability WHERE poll_id = ? AND user_id = ?
	`, pollID, userID); err != nil {
		return fmt.Errorf("failed to clear availability: %w", err)
	}

	m.mu.Lock()
	delete(m.staged, stageKey(pollID, userID))
	m.mu.Unlock()

	slog.Info("availability cleared", "poll_id", pollID, "user_id", userID)
	return nil
}

// Availability returns the user's persisted slots, sorted.
func (m *Manager) Availability(pollID, userID string) ([]string, error) {
	rows, err := m.db.Query(`
		SELECT slot FROM availability WHERE poll_id = ? AND user_id = ?
	`, pollID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability: %w", err)
	}
	defer rows.Close()

	var slots []string
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	return slots, rows.Err()
}
