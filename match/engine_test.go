// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package match

import (
	"reflect"
	"testing"

	"github.com/jhartmann/clubplan/models"
	"github.com/jhartmann/clubplan/testutil"
)

func TestComputeMatchesBasic(t *testing.T) {
	db := testutil.SetupTestDB(t)

	pollID := testutil.CreateTestPoll(t, db, models.KindWeekly)
	bouldering := testutil.AddTestOption(t, db, pollID, "Bouldering", "alice")
	cinema := testutil.AddTestOption(t, db, pollID, "Cinema", "bob")

	// Bouldering: three voters, two of them share Fr-19.
	testutil.AddTestVote(t, db, pollID, bouldering, "alice")
	testutil.AddTestVote(t, db, pollID, bouldering, "bob")
	testutil.AddTestVote(t, db, pollID, bouldering, "carol")

	// Cinema: only one voter, must not appear at all.
	testutil.AddTestVote(t, db, pollID, cinema, "dave")

	testutil.AddAvailability(t, db, pollID, "alice", "Fr-19", "Sa-20")
	testutil.AddAvailability(t, db, pollID, "bob", "Fr-19")
	testutil.AddAvailability(t, db, pollID, "carol", "Mo-12")
	testutil.AddAvailability(t, db, pollID, "dave", "Fr-19")

	got, err := ComputeMatches(db, pollID)
	if err != nil {
		t.Fatalf("ComputeMatches failed: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("Expected 1 option with matches, got %d", len(got))
	}
	if got[0].OptionID != bouldering {
		t.Errorf("Expected option %d, got %d", bouldering, got[0].OptionID)
	}
	want := []SlotMatch{{Slot: "Fr-19", UserIDs: []string{"alice", "bob"}}}
	if !reflect.DeepEqual(got[0].Slots, want) {
		t.Errorf("Expected slots %v, got %v", want, got[0].Slots)
	}
}

func TestComputeMatchesNonVoterAvailabilityIgnored(t *testing.T) {
	db := testutil.SetupTestDB(t)

	pollID := testutil.CreateTestPoll(t, db, models.KindWeekly)
	optionID := testutil.AddTestOption(t, db, pollID, "Bouldering", "alice")

	testutil.AddTestVote(t, db, pollID, optionID, "alice")
	testutil.AddTestVote(t, db, pollID, optionID, "bob")

	// Carol marked Fr-19 but never voted for the option. Her availability
	// must not create a match.
	testutil.AddAvailability(t, db, pollID, "alice", "Fr-19")
	testutil.AddAvailability(t, db, pollID, "carol", "Fr-19")

	got, err := ComputeMatches(db, pollID)
	if err != nil {
		t.Fatalf("ComputeMatches failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no matches, got %v", got)
	}
}

func TestComputeMatchesTiesAllSurfaced(t *testing.T) {
	db := testutil.SetupTestDB(t)

	pollID := testutil.CreateTestPoll(t, db, models.KindWeekly)
	optionID := testutil.AddTestOption(t, db, pollID, "Bouldering", "alice")

	testutil.AddTestVote(t, db, pollID, optionID, "alice")
	testutil.AddTestVote(t, db, pollID, optionID, "bob")
	testutil.AddTestVote(t, db, pollID, optionID, "carol")

	// Fr-19 and Sa-20 both have two participants; Mo-12 has only one.
	testutil.AddAvailability(t, db, pollID, "alice", "Fr-19", "Sa-20", "Mo-12")
	testutil.AddAvailability(t, db, pollID, "bob", "Fr-19")
	testutil.AddAvailability(t, db, pollID, "carol", "Sa-20")

	got, err := ComputeMatches(db, pollID)
	if err != nil {
		t.Fatalf("ComputeMatches failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 option, got %d", len(got))
	}

	want := []SlotMatch{
		{Slot: "Fr-19", UserIDs: []string{"alice", "bob"}},
		{Slot: "Sa-20", UserIDs: []string{"alice", "carol"}},
	}
	if !reflect.DeepEqual(got[0].Slots, want) {
		t.Errorf("Expected slots %v, got %v", want, got[0].Slots)
	}
}

func TestComputeMatchesLargerGroupWins(t *testing.T) {
	db := testutil.SetupTestDB(t)

	pollID := testutil.CreateTestPoll(t, db, models.KindWeekly)
	optionID := testutil.AddTestOption(t, db, pollID, "Bouldering", "alice")

	for _, uid := range []string{"alice", "bob", "carol"} {
		testutil.AddTestVote(t, db, pollID, optionID, uid)
	}

	// Sa-20 has all three, Fr-19 only two. Only Sa-20 may appear.
	testutil.AddAvailability(t, db, pollID, "alice", "Fr-19", "Sa-20")
	testutil.AddAvailability(t, db, pollID, "bob", "Fr-19", "Sa-20")
	testutil.AddAvailability(t, db, pollID, "carol", "Sa-20")

	got, err := ComputeMatches(db, pollID)
	if err != nil {
		t.Fatalf("ComputeMatches failed: %v", err)
	}
	if len(got) != 1 || len(got[0].Slots) != 1 {
		t.Fatalf("Expected exactly one maximal slot, got %v", got)
	}
	if got[0].Slots[0].Slot != "Sa-20" {
		t.Errorf("Expected Sa-20, got %s", got[0].Slots[0].Slot)
	}
	if len(got[0].Slots[0].UserIDs) != 3 {
		t.Errorf("Expected 3 participants, got %v", got[0].Slots[0].UserIDs)
	}
}

func TestComputeMatchesEmptyPoll(t *testing.T) {
	db := testutil.SetupTestDB(t)

	pollID := testutil.CreateTestPoll(t, db, models.KindWeekly)

	got, err := ComputeMatches(db, pollID)
	if err != nil {
		t.Fatalf("ComputeMatches failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no matches for empty poll, got %v", got)
	}
}
