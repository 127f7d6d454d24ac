// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package poll is the poll lifecycle manager.

One Manager serves both the weekly and the quarterly flow; the only
difference between them is slot granularity (hour buckets vs whole days),
which is data, not code.

A poll is never explicitly closed: the most recently created poll of a
kind is "the current one" and older polls are merely superseded.

Operations follow toggle/replace semantics throughout:

  - ToggleVote: insert-if-absent / delete-if-present per click;
  - StageSlot: toggles a slot in the in-memory tentative selection only;
  - SubmitAvailability: replaces the persisted set with the staged one
    (delete-all-then-insert), then clears the staging area;
  - ClearAvailability: removes persisted rows and the staged set;
  - DeleteOwnOption: author-only, cascades to the option's votes.

Render produces a side-effect-free projection combining options, votes and
the matching engine's best slots, converted to a chat.Message for posting.
*/
package poll
