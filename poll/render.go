// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"fmt"
	"strings"

	"github.com/jhartmann/clubplan/chat"
	"github.com/jhartmann/clubplan/match"
	"github.com/jhartmann/clubplan/models"
)

// OptionView is one option as rendered: vote count, voters, and the best
// common slots (all ties) if any.
type OptionView struct {
	OptionID    int64
	Text        string
	Description string
	VoteCount   int
	VoterIDs    []string
	BestSlots   []match.SlotMatch
}

// PollView is the display projection of a poll. Building it has no side
// effects; rendering twice with no intervening writes yields identical
// output.
type PollView struct {
	PollID  string
	Kind    string
	Options []OptionView
}

// Render combines options, votes and matching-engine output into a view.
func (m *Manager) Render(pollID string) (PollView, error) {
	p, err := m.GetPoll(pollID)
	if err != nil {
		return PollView{}, err
	}

	opts, err := m.Options(pollID)
	if err != nil {
		return PollView{}, err
	}

	matches, err := match.ComputeMatches(m.db, pollID)
	if err != nil {
		return PollView{}, fmt.Errorf("failed to compute matches: %w", err)
	}
	bestByOption := make(map[int64][]match.SlotMatch, len(matches))
	for _, om := range matches {
		bestByOption[om.OptionID] = om.Slots
	}

	view := PollView{PollID: p.ID, Kind: p.Kind}
	for _, o := range opts {
		voters, err := m.Voters(pollID, o.ID)
		if err != nil {
			return PollView{}, err
		}
		view.Options = append(view.Options, OptionView{
			OptionID:    o.ID,
			Text:        o.Text,
			Description: o.Description,
			VoteCount:   len(voters),
			VoterIDs:    voters,
			BestSlots:   bestByOption[o.ID],
		})
	}

	return view, nil
}

// ChatMessage converts the view into the display payload the platform
// layer posts.
func (v PollView) ChatMessage() chat.Message {
	msg := chat.Message{}
	switch v.Kind {
	case models.KindQuarterly:
		msg.Title = "Quarterly planning"
		msg.Description = "Add ideas, vote, and pick the days you are free."
	default:
		msg.Title = "What should we do this week?"
		msg.Description = "Add ideas, vote, and pick the hours you are free."
	}

	for _, o := range v.Options {
		var b strings.Builder
		fmt.Fprintf(&b, "%d vote(s)", o.VoteCount)
		if o.Description != "" {
			b.WriteString("\n")
			b.WriteString(o.Description)
		}
		if len(o.VoterIDs) > 0 {
			b.WriteString("\nVoters: ")
			b.WriteString(strings.Join(o.VoterIDs, ", "))
		}
		if len(o.BestSlots) > 0 {
			b.WriteString("\nBest times:")
			for _, sm := range o.BestSlots {
				fmt.Fprintf(&b, "\n%s: %s", models.SlotLabel(sm.Slot), strings.Join(sm.UserIDs, ", "))
			}
		}
		msg.Fields = append(msg.Fields, chat.Field{Name: o.Text, Value: b.String()})
	}

	return msg
}
