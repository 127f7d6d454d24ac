// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package summary posts the twice-daily match digest.

A digest run recomputes the current poll's matches, diffs them against the
snapshot stored with the channel's summary marker (keyed by option id), and
posts only when new matches appeared. The previous digest message is
deleted first so the channel holds at most one digest, and the marker is
updated with the new message id and snapshot.
*/
package summary
