// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"reflect"
	"strings"
	"testing"

	"github.com/jhartmann/clubplan/models"
	"github.com/jhartmann/clubplan/testutil"
)

func TestRenderIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	m := NewManager(db)

	pollID := testutil.CreateTestPoll(t, db, models.KindWeekly)
	optionID := testutil.AddTestOption(t, db, pollID, "Bouldering", "alice")
	testutil.AddTestVote(t, db, pollID, optionID, "alice")
	testutil.AddTestVote(t, db, pollID, optionID, "bob")
	testutil.AddAvailability(t, db, pollID, "alice", "Fr-19")
	testutil.AddAvailability(t, db, pollID, "bob", "Fr-19")

	first, err := m.Render(pollID)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	second, err := m.Render(pollID)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical views without writes:\n%v\n%v", first, second)
	}
}

func TestRenderIncludesMatches(t *testing.T) {
	db := testutil.SetupTestDB(t)
	m := NewManager(db)

	pollID := testutil.CreateTestPoll(t, db, models.KindWeekly)
	optionID := testutil.AddTestOption(t, db, pollID, "Bouldering", "alice")
	testutil.AddTestVote(t, db, pollID, optionID, "alice")
	testutil.AddTestVote(t, db, pollID, optionID, "bob")
	testutil.AddAvailability(t, db, pollID, "alice", "Fr-19")
	testutil.AddAvailability(t, db, pollID, "bob", "Fr-19")

	view, err := m.Render(pollID)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(view.Options) != 1 {
		t.Fatalf("Expected 1 option, got %d", len(view.Options))
	}
	o := view.Options[0]
	if o.VoteCount != 2 {
		t.Errorf("Expected 2 votes, got %d", o.VoteCount)
	}
	if len(o.BestSlots) != 1 || o.BestSlots[0].Slot != "Fr-19" {
		t.Errorf("Expected best slot Fr-19, got %v", o.BestSlots)
	}
}

func TestChatMessageWeeklyVsQuarterly(t *testing.T) {
	weekly := PollView{Kind: models.KindWeekly}
	if msg := weekly.ChatMessage(); msg.Title != "What should we do this week?" {
		t.Errorf("Unexpected weekly title %q", msg.Title)
	}

	quarterly := PollView{Kind: models.KindQuarterly}
	if msg := quarterly.ChatMessage(); msg.Title != "Quarterly planning" {
		t.Errorf("Unexpected quarterly title %q", msg.Title)
	}
}

func TestChatMessageFieldContent(t *testing.T) {
	view := PollView{
		Kind: models.KindWeekly,
		Options: []OptionView{
			{
				Text:      "Bouldering",
				VoteCount: 2,
				VoterIDs:  []string{"alice", "bob"},
			},
		},
	}

	msg := view.ChatMessage()
	if len(msg.Fields) != 1 {
		t.Fatalf("Expected 1 field, got %d", len(msg.Fields))
	}
	if msg.Fields[0].Name != "Bouldering" {
		t.Errorf("Expected field name Bouldering, got %q", msg.Fields[0].Name)
	}
	if !strings.Contains(msg.Fields[0].Value, "2 vote(s)") {
		t.Errorf("Expected vote count in field, got %q", msg.Fields[0].Value)
	}
	if !strings.Contains(msg.Fields[0].Value, "alice, bob") {
		t.Errorf("Expected voters in field, got %q", msg.Fields[0].Value)
	}
}
