// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package schedule is a thin wrapper over two trigger kinds.

Recurring jobs use robfig/cron with standard 5-field specs, evaluated in
the configured display timezone. One-shot jobs are keyed by a stable id
(for example "event_reminder_24_<event_id>") so that rescheduling after an
event update is a replace, not an accumulation of duplicate jobs.

All work runs on the goroutines the triggers fire on; the jobs themselves
are expected to be short (a handful of DB statements and network sends).
*/
package schedule
