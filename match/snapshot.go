// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package match

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The digest diff is keyed by option id, not option text, so that two
// options with identical text (or a text edit through the DB) cannot make
// the diff misbehave.

type snapshotEntry struct {
	OptionID int64    `json:"option_id"`
	Slot     string   `json:"slot"`
	UserIDs  []string `json:"user_ids"`
}

func entryKey(e snapshotEntry) string {
	return fmt.Sprintf("%d|%s|%s", e.OptionID, e.Slot, strings.Join(e.UserIDs, ","))
}

func flatten(matches []OptionMatches) []snapshotEntry {
	var entries []snapshotEntry
	for _, om := range matches {
		for _, sm := range om.Slots {
			entries = append(entries, snapshotEntry{
				OptionID: om.OptionID,
				Slot:     sm.Slot,
				UserIDs:  sm.UserIDs,
			})
		}
	}
	return entries
}

// EncodeSnapshot serializes a match result for storage in the summary
// marker. SlotMatch user ids are already sorted, so encoding is stable.
func EncodeSnapshot(matches []OptionMatches) (string, error) {
	entries := flatten(matches)
	if entries == nil {
		entries = []snapshotEntry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return string(raw), nil
}

// DiffSnapshot returns the matches present in current but absent from the
// previously stored snapshot: the "newly appeared" entries for the digest.
// A malformed or empty previous snapshot counts as "nothing seen yet".
func DiffSnapshot(current []OptionMatches, previous string) []OptionMatches {
	seen := make(map[string]bool)
	var prevEntries []snapshotEntry
	if previous != "" {
		// Tolerate garbage: an unreadable snapshot just means every
		// current match is reported as new.
		_ = json.Unmarshal([]byte(previous), &prevEntries)
	}
	for _, e := range prevEntries {
		seen[entryKey(e)] = true
	}

	var fresh []OptionMatches
	for _, om := range current {
		var newSlots []SlotMatch
		for _, sm := range om.Slots {
			k := entryKey(snapshotEntry{OptionID: om.OptionID, Slot: sm.Slot, UserIDs: sm.UserIDs})
			if !seen[k] {
				newSlots = append(newSlots, sm)
			}
		}
		if len(newSlots) > 0 {
			fresh = append(fresh, OptionMatches{
				OptionID:   om.OptionID,
				OptionText: om.OptionText,
				Slots:      newSlots,
			})
		}
	}
	return fresh
}
