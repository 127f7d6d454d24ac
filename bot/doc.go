// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package bot wires the application together and routes interactions.

Context is the dependency container built once in main: store handle,
scheduler, chat client, and the poll/events/digest managers. RegisterJobs
installs the recurring jobs (weekly poll, twice-daily digest, quarterly
check) and HandleInteraction dispatches every button click or form
submission by component id.

The error policy lives at this boundary: ErrInvalidInput and
ErrNotAuthorized become the reply text, ErrNotFound becomes a gentle
"gone" reply, everything else is logged and answered generically.
*/
package bot
