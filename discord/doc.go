// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package discord adapts the core to the Discord gateway and REST API.

Client implements chat.Client on top of discordgo, rendering messages as
single embeds and translating unknown-message REST errors into
chat.ErrNotFound. RegisterHandlers feeds gateway notifications into the
event syncer and component interactions into the bot router; everything
past this package is transport-neutral.
*/
package discord
