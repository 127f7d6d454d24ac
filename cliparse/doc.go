// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles process configuration.

Configuration comes from CLI flags with environment-variable fallback; a
.env file is loaded first when present (godotenv).

Required settings:

  - BOT_TOKEN (-token): bot credential token. Missing token is a startup
    failure; the process exits before connecting.

Optional settings:

  - POLL_DB (-db): SQLite database path (default: polls.sqlite)
  - CHANNEL_ID (-poll-channel): weekly poll channel
  - EVENTS_CHANNEL_ID (-events-channel): event announcements channel
  - QUARTER_POLL_CHANNEL_ID (-quarter-channel): quarterly poll channel
  - POST_TIMEZONE (-tz): display timezone, IANA name (default: Europe/Berlin)

Channel ids left empty disable the corresponding feature rather than
failing startup.
*/
package cliparse
