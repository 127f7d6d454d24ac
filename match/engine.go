// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package match

import (
	"database/sql"
	"fmt"
	"sort"
)

// SlotMatch is one qualifying time slot for an option: the slot key and the
// voters of that option who marked themselves available then. UserIDs are
// sorted for stable rendering and snapshotting.
type SlotMatch struct {
	Slot    string   `json:"slot"`
	UserIDs []string `json:"user_ids"`
}

// OptionMatches carries the maximal slots for one option. Only the slots
// with the highest participant count appear; ties are all surfaced.
type OptionMatches struct {
	OptionID   int64       `json:"option_id"`
	OptionText string      `json:"option_text"`
	Slots      []SlotMatch `json:"slots"`
}

// ComputeMatches computes, per option of the poll, the best common time
// slots among that option's voters. An option qualifies only with at least
// two distinct voters, and a slot only when at least two of those voters
// are available then. Options without a qualifying slot are omitted
// entirely. The result is ordered by option id.
//
// Every call re-reads the store; there is no caching.
func ComputeMatches(db *sql.DB, pollID string) ([]OptionMatches, error) {
	optionTexts, optionOrder, err := getOptionTexts(db, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get options: %w", err)
	}

	votesByOption, err := getVotesByOption(db, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get votes: %w", err)
	}

	availabilityByUser, err := getAvailabilityByUser(db, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get availability: %w", err)
	}

	var result []OptionMatches
	for _, optionID := range optionOrder {
		voters := votesByOption[optionID]
		// Threshold is on voters of the option, not slot participants.
		if len(voters) < 2 {
			continue
		}

		slotVoters := make(map[string][]string)
		for _, uid := range voters {
			for slot := range availabilityByUser[uid] {
				slotVoters[slot] = append(slotVoters[slot], uid)
			}
		}

		maxCount := 0
		for _, users := range slotVoters {
			if len(users) >= 2 && len(users) > maxCount {
				maxCount = len(users)
			}
		}
		if maxCount == 0 {
			continue
		}

		var slots []SlotMatch
		for slot, users := range slotVoters {
			if len(users) != maxCount {
				continue
			}
			sort.Strings(users)
			slots = append(slots, SlotMatch{Slot: slot, UserIDs: users})
		}
		sort.Slice(slots, func(i, j int) bool { return slots[i].Slot < slots[j].Slot })

		result = append(result, OptionMatches{
			OptionID:   optionID,
			OptionText: optionTexts[optionID],
			Slots:      slots,
		})
	}

	return result, nil
}

// getOptionTexts retrieves option texts and the id ordering for a poll.
func getOptionTexts(db *sql.DB, pollID string) (map[int64]string, []int64, error) {
	rows, err := db.Query(`
		SELECT id, text FROM options WHERE poll_id = ? ORDER BY id
	`, pollID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	texts := make(map[int64]string)
	var order []int64
	for rows.Next() {
		var id int64
		var text string
		if err := rows.Scan(&id, &text); err != nil {
			return nil, nil, err
		}
		texts[id] = text
		order = append(order, id)
	}

	return texts, order, rows.Err()
}

// getVotesByOption retrieves voter ids grouped by option.
func getVotesByOption(db *sql.DB, pollID string) (map[int64][]string, error) {
	rows, err := db.Query(`
		SELECT option_id, user_id FROM votes WHERE poll_id = ? ORDER BY option_id
	`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	votes := make(map[int64][]string)
	for rows.Next() {
		var optionID int64
		var userID string
		if err := rows.Scan(&optionID, &userID); err != nil {
			return nil, err
		}
		votes[optionID] = append(votes[optionID], userID)
	}

	return votes, rows.Err()
}

// getAvailabilityByUser retrieves each user's slot set for the poll.
func getAvailabilityByUser(db *sql.DB, pollID string) (map[string]map[string]bool, error) {
	rows, err := db.Query(`
		SELECT user_id, slot FROM availability WHERE poll_id = ?
	`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	avail := make(map[string]map[string]bool)
	for rows.Next() {
		var userID, slot string
		if err := rows.Scan(&userID, &slot); err != nil {
			return nil, err
		}
		if avail[userID] == nil {
			avail[userID] = make(map[string]bool)
		}
		avail[userID][slot] = true
	}

	return avail, rows.Err()
}
