// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package schedule

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleAtFires(t *testing.T) {
	s := New(time.UTC)
	defer s.Stop()

	done := make(chan struct{})
	s.ScheduleAt("job-1", time.Now().Add(10*time.Millisecond), func() {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected job to fire")
	}

	// The id is released once the job ran.
	time.Sleep(10 * time.Millisecond)
	if s.Pending("job-1") {
		t.Error("Expected job no longer pending after firing")
	}
}

func TestScheduleAtReplacesSameID(t *testing.T) {
	s := New(time.UTC)
	defer s.Stop()

	var first, second atomic.Int32
	done := make(chan struct{})

	s.ScheduleAt("job-1", time.Now().Add(50*time.Millisecond), func() {
		first.Add(1)
	})
	s.ScheduleAt("job-1", time.Now().Add(10*time.Millisecond), func() {
		second.Add(1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected replacement job to fire")
	}

	// Give the replaced timer a chance to misfire if replacement is broken.
	time.Sleep(100 * time.Millisecond)
	if first.Load() != 0 {
		t.Error("Expected replaced job never to fire")
	}
	if second.Load() != 1 {
		t.Errorf("Expected replacement to fire once, got %d", second.Load())
	}
}

func TestCancelPendingJob(t *testing.T) {
	s := New(time.UTC)
	defer s.Stop()

	var fired atomic.Int32
	s.ScheduleAt("job-1", time.Now().Add(30*time.Millisecond), func() {
		fired.Add(1)
	})
	s.Cancel("job-1")

	if s.Pending("job-1") {
		t.Error("Expected job gone after cancel")
	}

	time.Sleep(100 * time.Millisecond)
	if fired.Load() != 0 {
		t.Error("Expected cancelled job never to fire")
	}
}

func TestCancelAbsentJobIsNoop(t *testing.T) {
	s := New(time.UTC)
	defer s.Stop()

	s.Cancel("never-scheduled")
}

func TestScheduleAtPastTimeFiresImmediately(t *testing.T) {
	s := New(time.UTC)
	defer s.Stop()

	done := make(chan struct{})
	s.ScheduleAt("job-1", time.Now().Add(-time.Hour), func() {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected past-due job to fire immediately")
	}
}

func TestAddCronRejectsBadSpec(t *testing.T) {
	s := New(time.UTC)
	defer s.Stop()

	if err := s.AddCron("not a cron spec", func() {}); err == nil {
		t.Error("Expected error for malformed spec")
	}
	if err := s.AddCron("0 12 * * 0", func() {}); err != nil {
		t.Errorf("Expected valid spec to register, got %v", err)
	}
}

func TestJobPanicIsContained(t *testing.T) {
	s := New(time.UTC)
	defer s.Stop()

	done := make(chan struct{})
	s.ScheduleAt("panicky", time.Now().Add(5*time.Millisecond), func() {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected panicking job to run")
	}
	// Reaching this point without the test binary dying is the assertion.
}
