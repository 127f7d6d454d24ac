// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package events synchronizes external scheduled events with announcement
messages.

The Syncer keeps an at-most-1:1 mapping between a platform scheduled event
and one live announcement, across the three lifecycle notifications
(created/updated/deleted), while tolerating moderators deleting bot
messages at any time.

# Fetch before trust

The load-bearing invariant: a stored message reference is never assumed
valid. Every path that would act on one first fetches it. Not-found heals
the row (the reference is cleared) instead of erroring; any other fetch
failure aborts the current notification, favoring under-posting over
duplicate-posting.

  - created: verify, re-post only if nothing is live, reschedule reminders;
  - updated: store the new start time, reschedule, edit in place; a
    vanished message clears the reference but is NOT re-posted here;
  - deleted: best-effort delete the message, drop the row and its RSVPs.

# Reminders

Reminders fire 24h and 2h before start (24h and 1h for bot-authored
events). Each firing replaces the announcement: delete the old message
(tolerating "already gone"), send a fresh one annotated with the remaining
time, record the new reference. Re-scheduling is cancel-then-create keyed
by a stable job id, so update notifications never accumulate duplicates.
An offset that passed while the process was down fires immediately as long
as the event itself is still ahead.

RescheduleAll restores all reminder jobs from the store on startup, and
SyncAll reconciles the platform's event list after an outage.
*/
package events
