// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain types shared across the bot.

# Entities

  - Poll: a weekly or quarterly poll, including the reference to its live
    announcement message (channel id + message id).
  - Option: a user-submitted idea inside a poll.
  - Vote: a (poll, option, user) triple; a user may vote for several
    options in the same poll.
  - TrackedEvent: local shadow of a platform-native scheduled event.
  - EventRSVP: a (event, user) interest marker.
  - CreatedEvent: a bot-authored event created via a form.

# Slots

Availability is keyed by slot strings. Weekly polls use "<day-code>-<hour>"
(for example "Fr-19", hours 12-23 only); quarterly polls use whole days as
ISO dates ("2026-01-05"). WeeklySlot, ParseWeeklySlot and SlotLabel convert
between the key and display forms.

# Errors

The package also carries the error taxonomy sentinels (ErrNotFound,
ErrNotAuthorized, ErrInvalidInput) that boundary handlers dispatch on.
*/
package models
