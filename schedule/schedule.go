// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package schedule

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs two kinds of jobs: cron-style recurring jobs and one-shot
// date-triggered jobs keyed by a stable id. Re-scheduling a one-shot job
// under the same id replaces the pending one, so callers can always
// cancel-and-recreate instead of accumulating duplicates.
type Scheduler struct {
	cron *cron.Cron

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a stopped scheduler whose cron expressions are evaluated in
// loc (the configured display timezone).
func New(loc *time.Location) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		timers: make(map[string]*time.Timer),
	}
}

// Start begins firing recurring jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the cron loop and cancels all pending one-shot jobs.
// In-flight jobs are allowed to complete.
func (s *Scheduler) Stop() {
	s.cron.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// AddCron registers a recurring job with a standard 5-field cron spec
// ("0 12 * * 0" is Sunday 12:00 in the scheduler's timezone).
func (s *Scheduler) AddCron(spec string, job func()) error {
	if _, err := s.cron.AddFunc(spec, job); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return nil
}

// ScheduleAt registers a one-shot job to run at the given wall-clock time,
// replacing any pending job with the same id. Times already in the past
// fire almost immediately; callers that want different past-due behavior
// must check before scheduling.
func (s *Scheduler) ScheduleAt(id string, at time.Time, job func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.timers[id]; ok {
		old.Stop()
	}

	d := time.Until(at)
	if d < 0 {
		d = 0
	}
	s.timers[id] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()

		defer func() {
			if r := recover(); r != nil {
				slog.Error("scheduled job panicked", "job_id", id, "panic", r)
			}
		}()
		job()
	})
}

// Cancel removes a pending one-shot job. Ignored if absent; an in-flight
// job is allowed to complete.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// Pending reports whether a one-shot job with the given id is scheduled.
func (s *Scheduler) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[id]
	return ok
}
