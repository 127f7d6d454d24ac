// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package summary

import (
	"strings"
	"testing"

	"github.com/jhartmann/clubplan/models"
	"github.com/jhartmann/clubplan/testutil"
)

const digestChannel = "poll-chan"

func TestPostSkipsWithoutMatches(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fake := testutil.NewFakeChat()
	d := NewDigest(db, fake, digestChannel)

	pollID := testutil.CreateTestPoll(t, db, models.KindWeekly)

	posted, err := d.Post(pollID)
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if posted {
		t.Error("Expected no digest without matches")
	}
	if len(fake.Sent) != 0 {
		t.Errorf("Expected no message, got %d", len(fake.Sent))
	}
}

func TestPostThenSkipWhenUnchanged(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fake := testutil.NewFakeChat()
	d := NewDigest(db, fake, digestChannel)

	pollID := testutil.CreateTestPoll(t, db, models.KindWeekly)
	optionID := testutil.AddTestOption(t, db, pollID, "Bouldering", "alice")
	testutil.AddTestVote(t, db, pollID, optionID, "alice")
	testutil.AddTestVote(t, db, pollID, optionID, "bob")
	testutil.AddAvailability(t, db, pollID, "alice", "Fr-19")
	testutil.AddAvailability(t, db, pollID, "bob", "Fr-19")

	posted, err := d.Post(pollID)
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if !posted {
		t.Fatal("Expected first digest to post")
	}
	if len(fake.Sent) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(fake.Sent))
	}

	// Same matches on the next run: nothing new, nothing posted.
	posted, err = d.Post(pollID)
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if posted {
		t.Error("Expected unchanged matches to be skipped")
	}
	if len(fake.Sent) != 1 {
		t.Errorf("Expected no second message, got %d", len(fake.Sent))
	}
}

func TestPostReplacesPreviousDigest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fake := testutil.NewFakeChat()
	d := NewDigest(db, fake, digestChannel)

	pollID := testutil.CreateTestPoll(t, db, models.KindWeekly)
	optionID := testutil.AddTestOption(t, db, pollID, "Bouldering", "alice")
	testutil.AddTestVote(t, db, pollID, optionID, "alice")
	testutil.AddTestVote(t, db, pollID, optionID, "bob")
	testutil.AddAvailability(t, db, pollID, "alice", "Fr-19")
	testutil.AddAvailability(t, db, pollID, "bob", "Fr-19")

	if _, err := d.Post(pollID); err != nil {
		t.Fatalf("Post failed: %v", err)
	}

	// A new participant makes the entry new again.
	testutil.AddTestVote(t, db, pollID, optionID, "carol")
	testutil.AddAvailability(t, db, pollID, "carol", "Fr-19")

	posted, err := d.Post(pollID)
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if !posted {
		t.Fatal("Expected changed matches to post")
	}
	if len(fake.Sent) != 2 {
		t.Fatalf("Expected 2 sends total, got %d", len(fake.Sent))
	}
	if fake.LiveCount(digestChannel) != 1 {
		t.Errorf("Expected previous digest replaced, %d live", fake.LiveCount(digestChannel))
	}

	msg, ok := fake.Message(digestChannel, fake.Sent[1])
	if !ok {
		t.Fatal("Expected second digest live")
	}
	if len(msg.Fields) != 1 || !strings.Contains(msg.Fields[0].Value, "(new)") {
		t.Errorf("Expected new entry marked, got %+v", msg.Fields)
	}
}

func TestPostToleratesHandDeletedDigest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fake := testutil.NewFakeChat()
	d := NewDigest(db, fake, digestChannel)

	pollID := testutil.CreateTestPoll(t, db, models.KindWeekly)
	optionID := testutil.AddTestOption(t, db, pollID, "Bouldering", "alice")
	testutil.AddTestVote(t, db, pollID, optionID, "alice")
	testutil.AddTestVote(t, db, pollID, optionID, "bob")
	testutil.AddAvailability(t, db, pollID, "alice", "Fr-19")
	testutil.AddAvailability(t, db, pollID, "bob", "Fr-19")

	if _, err := d.Post(pollID); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	fake.Drop(digestChannel, fake.Sent[0])

	testutil.AddTestVote(t, db, pollID, optionID, "carol")
	testutil.AddAvailability(t, db, pollID, "carol", "Fr-19")

	posted, err := d.Post(pollID)
	if err != nil {
		t.Fatalf("Post after manual delete failed: %v", err)
	}
	if !posted {
		t.Error("Expected digest despite missing previous message")
	}
}
