// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the ClubPlan Discord bot.

ClubPlan runs a club's weekly rhythm: a Sunday activity poll with
per-user availability voting, an availability-matching digest, a
quarterly planning poll, and announcement/reminder handling for the
server's scheduled events. State lives in a single SQLite file.

# Starting the Bot

The bot requires environment variables or CLI flags for configuration:

	BOT_TOKEN=... CHANNEL_ID=... go run main.go

Or with flags:

	go run main.go -token <token> -poll-channel <id>

# Configuration

Required settings:

  - BOT_TOKEN (-token): Discord bot token

Optional settings:

  - POLL_DB (-db): SQLite file path (default: polls.sqlite)
  - CHANNEL_ID (--poll-channel): weekly poll and digest channel
  - EVENTS_CHANNEL_ID (--events-channel): event announcement channel
  - QUARTER_POLL_CHANNEL_ID (--quarter-channel): quarterly poll channel
  - POST_TIMEZONE (--tz): display timezone (default: Europe/Berlin)

A channel left unset disables the feature that posts to it.

# Architecture

The bot uses a manager-based architecture with dependency injection:

  - bot: wiring, recurring jobs, interaction routing
  - poll: poll lifecycle, ideas, votes, availability
  - match: availability-overlap computation and digest snapshots
  - events: scheduled-event sync, reminders, RSVPs
  - summary: twice-daily match digest
  - schedule: cron and one-shot job scheduling
  - chat: transport-neutral message surface
  - discord: gateway and REST adapter
  - models: shared types and the error taxonomy
  - db: schema creation
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
