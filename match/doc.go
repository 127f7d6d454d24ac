// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package match is the availability-matching engine.

ComputeMatches intersects each option's voter set with the voters'
availability and keeps, per option, exactly the slots with the maximum
participant count (ties included). The rules an implementer must not relax:

  - an option with fewer than two voters never matches, regardless of
    availability;
  - a slot qualifies only when at least two of that option's voters are
    available then;
  - all maximal slots are surfaced, never an arbitrary one;
  - options without a qualifying slot are omitted from the result.

The engine is stateless and re-reads the store on every call. Snapshot
encoding and DiffSnapshot support the daily digest's "newly appeared
matches" computation, keyed by option id.
*/
package match
